// Package user defines the account entity owned by the external login
// provider. Rows are upserted on every login callback and never deleted.
package user

import "time"

// Plan is the subscription tier attached to a user.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// Valid reports whether p is a known plan.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// User mirrors the identity provider's profile claims. ID is the provider's
// subject string, not a local serial.
type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	ProfileImageURL string     `json:"profileImageUrl"`
	Plan            Plan       `json:"plan"`
	PlanExpiresAt   *time.Time `json:"planExpiresAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
