// Package catalog defines the tool catalog entities.
package catalog

import (
	"encoding/json"
	"time"
)

// Category groups tools under a navigable slug.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	ToolCount   int       `json:"toolCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Tool is a catalog entry. Rating is the rounded average of all review
// ratings; UsageCount and ReviewCount are maintained by the storage layer
// inside the same transaction as the rows they summarize.
type Tool struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	Description      string          `json:"description"`
	ShortDescription string          `json:"shortDescription"`
	CategoryID       int64           `json:"categoryId"`
	Icon             string          `json:"icon"`
	IsPremium        bool            `json:"isPremium"`
	IsAIGenerated    bool            `json:"isAiGenerated"`
	UsageCount       int             `json:"usageCount"`
	Rating           int             `json:"rating"`
	ReviewCount      int             `json:"reviewCount"`
	Tags             []string        `json:"tags"`
	Metadata         json.RawMessage `json:"metadata,omitempty"`
	IsActive         bool            `json:"isActive"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// ListType selects a predefined tool listing.
type ListType string

const (
	ListDefault ListType = ""
	ListFree    ListType = "free"
	ListPremium ListType = "premium"
	ListPopular ListType = "popular"
	ListRecent  ListType = "recent"
)
