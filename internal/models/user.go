package models

import "time"

// Roles a user account can hold. Role is assigned at registration and
// never changed through the public API.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
)

// User represents a user account in the system.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"` // Never expose this to the client
	Role         string     `json:"role"`
	DateOfBirth  *time.Time `json:"dateOfBirth,omitempty"`
	Gender       *string    `json:"gender,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}
