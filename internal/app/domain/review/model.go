// Package review defines tool review records.
package review

import "time"

// Review is a single user review of a tool. One review per (user, tool)
// pair; rating is on a 1-5 scale.
type Review struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	ToolID    int64     `json:"toolId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}
