package models

import "time"

// Activity represents a loggable action in the system.
type Activity struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "post.created", "post.liked"
	Level     string    `json:"level"` // e.g., "info", "warn"
	Message   string    `json:"message"`
	PostID    *string   `json:"postId,omitempty"` // Nullable for system-wide entries
	CreatedAt time.Time `json:"createdAt"`
}
