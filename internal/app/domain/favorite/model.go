// Package favorite defines the user/tool favorite join records.
package favorite

import "time"

// Favorite marks a tool as favorited by a user.
type Favorite struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	ToolID    int64     `json:"toolId"`
	CreatedAt time.Time `json:"createdAt"`
}
