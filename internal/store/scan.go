package store

import (
	"time"

	"github.com/pawkit/pawkit/internal/model"
)

// baseRow buffers the shared trailing columns of every entity table
// (created_at .. local_only) during a scan. SQLite stores booleans as
// integers and the nullable timestamps need indirection, so rows are
// scanned into this buffer and then applied to the model.
type baseRow struct {
	createdAt     time.Time
	updatedAt     time.Time
	deleted       int
	deletedAt     *time.Time
	synced        int
	lastModified  time.Time
	serverVersion *time.Time
	localOnly     int
}

// targets returns scan destinations in schema column order.
func (r *baseRow) targets() []interface{} {
	return []interface{}{
		&r.createdAt, &r.updatedAt,
		&r.deleted, &r.deletedAt,
		&r.synced, &r.lastModified, &r.serverVersion, &r.localOnly,
	}
}

// apply copies the buffered columns onto the model's Base.
func (r *baseRow) apply(b *model.Base) {
	b.CreatedAt = r.createdAt
	b.UpdatedAt = r.updatedAt
	b.Deleted = r.deleted != 0
	b.DeletedAt = r.deletedAt
	b.Synced = r.synced != 0
	b.LastModified = r.lastModified
	b.ServerVersion = r.serverVersion
	b.LocalOnly = r.localOnly != 0
}

// baseArgs returns the shared trailing columns as exec arguments in
// schema column order.
func baseArgs(b model.Base) []interface{} {
	return []interface{}{
		b.CreatedAt.UTC(), b.UpdatedAt.UTC(),
		boolToInt(b.Deleted), nullableTime(b.DeletedAt),
		boolToInt(b.Synced), b.LastModified.UTC(), nullableTime(b.ServerVersion),
		boolToInt(b.LocalOnly),
	}
}
