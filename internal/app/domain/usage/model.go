// Package usage defines tool usage tracking records.
package usage

import (
	"encoding/json"
	"time"
)

// Usage records a single "use tool" action. UserID is nil for anonymous
// callers; SessionID always identifies the caller's session.
type Usage struct {
	ID        int64           `json:"id"`
	UserID    *string         `json:"userId"`
	ToolID    int64           `json:"toolId"`
	SessionID string          `json:"sessionId"`
	UsedAt    time.Time       `json:"usedAt"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// Stats aggregates usage for one tool.
type Stats struct {
	Count       int `json:"count"`
	UniqueUsers int `json:"uniqueUsers"`
}
