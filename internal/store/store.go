package store

import (
	"context"
	"time"

	"github.com/pawkit/pawkit/internal/model"
)

// ListOptions controls entity listing. Default queries exclude
// soft-deleted rows; trash views opt in.
type ListOptions struct {
	IncludeDeleted bool
}

// Queue op constants.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// QueueOp is one pending remote mutation in the durable sync queue.
// Payload is the JSON snapshot of the entity at enqueue time;
// BaseVersion is the precondition timestamp the remote write carries.
type QueueOp struct {
	Seq         int64            `db:"seq"`
	EntityType  model.EntityType `db:"entity_type"`
	EntityID    string           `db:"entity_id"`
	Op          string           `db:"op"`
	Payload     []byte           `db:"payload"`
	BaseVersion *time.Time       `db:"base_version"`
	RetryCount  int              `db:"retry_count"`
	CreatedAt   time.Time        `db:"created_at"`
}

// Store defines the persistence interface for the local-first store:
// entity tables partitioned by workspace, the durable sync queue,
// user-visible notifications, and the key-value metadata table that
// backs the write lease and migration flags.
type Store interface {
	// === Cards ===

	SaveCard(ctx context.Context, card *model.Card) error
	GetCardByID(ctx context.Context, id string) (*model.Card, error)
	GetCards(ctx context.Context, workspaceID string, opts ListOptions) ([]model.Card, error)

	// === Collections ===

	SaveCollection(ctx context.Context, col *model.Collection) error
	GetCollectionByID(ctx context.Context, id string) (*model.Collection, error)
	GetCollections(ctx context.Context, workspaceID string, opts ListOptions) ([]model.Collection, error)

	// === Calendar events ===

	SaveEvent(ctx context.Context, ev *model.CalendarEvent) error
	GetEventByID(ctx context.Context, id string) (*model.CalendarEvent, error)
	GetEvents(ctx context.Context, workspaceID string, opts ListOptions) ([]model.CalendarEvent, error)

	// === Todos ===

	SaveTodo(ctx context.Context, todo *model.Todo) error
	GetTodoByID(ctx context.Context, id string) (*model.Todo, error)
	GetTodos(ctx context.Context, workspaceID string, opts ListOptions) ([]model.Todo, error)

	// === Variant dispatch ===

	SaveEntity(ctx context.Context, e model.Entity) error
	GetEntityByID(ctx context.Context, typ model.EntityType, id string) (model.Entity, error)

	// === Lifecycle ===

	// SoftDelete marks a row deleted without removing it (trash).
	SoftDelete(ctx context.Context, typ model.EntityType, id string, now time.Time) error

	// Purge hard-deletes rows. Only the dedupe pass and trash cleanup
	// use this; ordinary deletes are soft.
	Purge(ctx context.Context, typ model.EntityType, ids []string) error

	// PurgeTrash hard-deletes soft-deleted rows older than the cutoff
	// across all entity tables. Returns the number of rows removed.
	PurgeTrash(ctx context.Context, workspaceID string, olderThan time.Time) (int, error)

	// RewriteID replaces a temporary id with its server-assigned
	// canonical id: the primary key, foreign references (collection
	// parents, recurrence parents), and pending queue entries.
	RewriteID(ctx context.Context, typ model.EntityType, oldID, newID string) error

	// ResolveID follows a recorded temp→canonical rewrite, returning the
	// input id unchanged when none exists.
	ResolveID(ctx context.Context, id string) (string, error)

	// === Sync queue ===

	Enqueue(ctx context.Context, op QueueOp) error
	PendingOps(ctx context.Context) ([]QueueOp, error)
	DequeueOp(ctx context.Context, seq int64) error
	BumpRetry(ctx context.Context, seq int64) error
	// DeleteOpsFor drops every pending op targeting an entity. Used when
	// a never-synced local entity is deleted before its create drained.
	DeleteOpsFor(ctx context.Context, typ model.EntityType, entityID string) error

	// === Notifications ===

	CreateNotification(ctx context.Context, n model.Notification) error
	GetUnreadNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error

	// === Metadata ===

	SetMetadata(ctx context.Context, key, value string) error
	// GetMetadata returns the stored value, or "" if the key is unset.
	GetMetadata(ctx context.Context, key string) (string, error)

	Close() error
}
