package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntityType identifies which table an entity lives in and which wire
// shape the remote service expects for it.
type EntityType string

const (
	TypeCard       EntityType = "card"
	TypeCollection EntityType = "collection"
	TypeEvent      EntityType = "event"
	TypeTodo       EntityType = "todo"
)

// TempIDPrefix marks a client-generated provisional identifier. The
// server never issues ids with this prefix, so prefix checks are a
// reliable way to tell a provisional record from a confirmed one.
const TempIDPrefix = "temp-"

// NewTempID generates a provisional identifier for an entity created
// before the server has confirmed it.
func NewTempID() string {
	return TempIDPrefix + uuid.New().String()
}

// IsTempID reports whether id is a client-generated provisional id.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// Base holds the fields shared by every entity type: identity, workspace
// scoping, display timestamps, soft-delete state, and sync metadata.
//
// UpdatedAt doubles as the optimistic-concurrency token: the sync engine
// sends the last value it observed as a precondition, and the server
// rejects the write if its copy has moved past it.
type Base struct {
	ID          string `json:"id" db:"id"`
	WorkspaceID string `json:"workspace_id" db:"workspace_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Soft delete. Deleted rows stay in the store (trash semantics) and
	// are excluded from active-state queries.
	Deleted   bool       `json:"deleted" db:"deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`

	// Sync metadata.
	Synced        bool       `json:"synced" db:"synced"`
	LastModified  time.Time  `json:"last_modified" db:"last_modified"`
	ServerVersion *time.Time `json:"server_version,omitempty" db:"server_version"`
	LocalOnly     bool       `json:"local_only" db:"local_only"`
}

// Touch records a local modification: bumps UpdatedAt/LastModified and
// clears the synced flag so the change is picked up by the next sync pass.
func (b *Base) Touch(now time.Time) {
	b.UpdatedAt = now
	b.LastModified = now
	b.Synced = false
}

// MarkDeleted flips the soft-delete flag and stamps DeletedAt.
func (b *Base) MarkDeleted(now time.Time) {
	b.Deleted = true
	b.DeletedAt = &now
	b.Touch(now)
}

// Entity is the common surface of the four tagged variants. The sync
// engine and facade move entities through storage and the wire without
// caring which variant they hold.
type Entity interface {
	EntityType() EntityType
	EntityBase() *Base
	Validate() error
}

// NewEntity returns a zero value of the variant for typ, for decoding
// wire payloads into.
func NewEntity(typ EntityType) (Entity, bool) {
	switch typ {
	case TypeCard:
		return &Card{}, true
	case TypeCollection:
		return &Collection{}, true
	case TypeEvent:
		return &CalendarEvent{}, true
	case TypeTodo:
		return &Todo{}, true
	default:
		return nil, false
	}
}

// ConfirmServer records a server acknowledgement: the entity now carries
// a canonical id, the server's timestamp becomes the conflict-detection
// baseline, and the record is no longer local-only.
func (b *Base) ConfirmServer(serverUpdatedAt time.Time) {
	b.Synced = true
	b.LocalOnly = false
	b.ServerVersion = &serverUpdatedAt
	b.UpdatedAt = serverUpdatedAt
}
