package model

import "time"

// Notification kind constants.
const (
	NotifyConflict      = "conflict"
	NotifyGuardRejected = "guard-rejected"
)

// Notification is a user-visible event surfaced by the sync core:
// a conflict the automatic retry could not resolve, or a write refused
// by the guard. The UI polls unread notifications; ordinary queued-retry
// network failures never produce one.
type Notification struct {
	ID        string    `json:"id" db:"id"`
	Kind      string    `json:"kind" db:"kind"`
	EntityID  string    `json:"entity_id" db:"entity_id"`
	Message   string    `json:"message" db:"message"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
