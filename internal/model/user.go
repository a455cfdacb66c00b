package model

import "time"

// User represents an application user record as stored in the `users`
// table. IsAdmin is decided once at registration time by the configured
// allow-list; there is no later promotion path.
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
