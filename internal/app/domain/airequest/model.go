// Package airequest defines requests for tools that do not exist yet.
package airequest

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle state of an AI tool request. Transitions are
// exposed through the storage layer but nothing in this service drives them;
// requests stay pending until an external pipeline moves them.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Request captures a user's ask for a tool to be generated.
type Request struct {
	ID              int64           `json:"id"`
	UserID          string          `json:"userId"`
	Query           string          `json:"query"`
	Status          Status          `json:"status"`
	GeneratedToolID int64           `json:"generatedToolId,omitempty"`
	Metadata        json.RawMessage `json:"metadata,omitempty"`
	RequestedAt     time.Time       `json:"requestedAt"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
}
