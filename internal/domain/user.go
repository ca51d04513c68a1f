package domain

import "time"

// Role is the authorization role carried by a user and its tokens.
type Role string

const (
	RoleUser Role = "USER"
)

// User represents a locally known identity created from a provider login.
type User struct {
	ID         int64     `json:"id" db:"id"`
	Username   string    `json:"username" db:"username"`
	Email      string    `json:"email" db:"email"`
	Name       string    `json:"name" db:"name"`
	Provider   string    `json:"provider" db:"provider"`
	ProviderID string    `json:"provider_id" db:"provider_id"`
	Role       Role      `json:"role" db:"role"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Username derives the local username for a provider identity.
func Username(provider, providerID string) string {
	return provider + "_" + providerID
}
