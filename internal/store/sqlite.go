package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pawkit/pawkit/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// tableFor maps an entity type to its table name.
func tableFor(typ model.EntityType) (string, error) {
	switch typ {
	case model.TypeCard:
		return "cards", nil
	case model.TypeCollection:
		return "collections", nil
	case model.TypeEvent:
		return "events", nil
	case model.TypeTodo:
		return "todos", nil
	default:
		return "", fmt.Errorf("unknown entity type %q", typ)
	}
}

// SoftDelete marks a row deleted without removing it.
func (s *SQLiteStore) SoftDelete(
	ctx context.Context,
	typ model.EntityType,
	id string,
	now time.Time,
) error {
	table, err := tableFor(typ)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s SET
			deleted = 1, deleted_at = ?, updated_at = ?, last_modified = ?, synced = 0
		WHERE id = ?`, table)
	result, err := s.db.ExecContext(ctx, query, now.UTC(), now.UTC(), now.UTC(), id)
	if err != nil {
		return fmt.Errorf("soft-deleting %s %s: %w", typ, id, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%s %s: %w", typ, id, model.ErrNotFound)
	}
	return nil
}

// Purge hard-deletes rows by id.
func (s *SQLiteStore) Purge(
	ctx context.Context,
	typ model.EntityType,
	ids []string,
) error {
	if len(ids) == 0 {
		return nil
	}

	table, err := tableFor(typ)
	if err != nil {
		return err
	}

	query, args, err := sqlx.In(
		fmt.Sprintf("DELETE FROM %s WHERE id IN (?)", table), ids)
	if err != nil {
		return fmt.Errorf("building purge query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("purging %d %s rows: %w", len(ids), typ, err)
	}
	return nil
}

// PurgeTrash hard-deletes soft-deleted rows older than the cutoff.
func (s *SQLiteStore) PurgeTrash(
	ctx context.Context,
	workspaceID string,
	olderThan time.Time,
) (int, error) {
	total := 0
	for _, table := range []string{"cards", "collections", "events", "todos"} {
		query := fmt.Sprintf(`
			DELETE FROM %s
			WHERE workspace_id = ? AND deleted = 1 AND deleted_at IS NOT NULL AND deleted_at < ?`,
			table)
		result, err := s.db.ExecContext(ctx, query, workspaceID, olderThan.UTC())
		if err != nil {
			return total, fmt.Errorf("purging trash from %s: %w", table, err)
		}
		rows, _ := result.RowsAffected()
		total += int(rows)
	}
	return total, nil
}

// RewriteID replaces a temporary id with its canonical id in the entity
// table, in foreign references, and in pending queue entries, all within
// one transaction.
func (s *SQLiteStore) RewriteID(
	ctx context.Context,
	typ model.EntityType,
	oldID, newID string,
) error {
	table, err := tableFor(typ)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// A confirmed id must never coexist with its temp form. If the
	// canonical row already exists (e.g. it arrived via a server merge),
	// drop the temp row instead of renaming onto a conflict.
	var existing int
	if err := tx.GetContext(ctx, &existing,
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", table), newID); err != nil {
		return fmt.Errorf("checking canonical id %s: %w", newID, err)
	}
	if existing > 0 {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), oldID); err != nil {
			return fmt.Errorf("dropping shadowed temp row %s: %w", oldID, err)
		}
	} else {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("UPDATE %s SET id = ? WHERE id = ?", table), newID, oldID); err != nil {
			return fmt.Errorf("rewriting %s id %s -> %s: %w", typ, oldID, newID, err)
		}
	}

	switch typ {
	case model.TypeCollection:
		if _, err := tx.ExecContext(ctx,
			"UPDATE collections SET parent_id = ? WHERE parent_id = ?", newID, oldID); err != nil {
			return fmt.Errorf("rewriting collection parents: %w", err)
		}
	case model.TypeEvent:
		if _, err := tx.ExecContext(ctx,
			"UPDATE events SET recurrence_parent_id = ? WHERE recurrence_parent_id = ?",
			newID, oldID); err != nil {
			return fmt.Errorf("rewriting recurrence parents: %w", err)
		}
	}

	// Wiki-links in note content reference entities by id; rewrite the
	// exact [[old-id]] token wherever it appears.
	if _, err := tx.ExecContext(ctx,
		"UPDATE cards SET content = REPLACE(content, ?, ?) WHERE content LIKE ?",
		"[["+oldID+"]]", "[["+newID+"]]", "%[["+oldID+"]]%"); err != nil {
		return fmt.Errorf("rewriting wiki-links: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE sync_queue SET entity_id = ? WHERE entity_type = ? AND entity_id = ?",
		newID, string(typ), oldID); err != nil {
		return fmt.Errorf("rewriting queued ops: %w", err)
	}

	// Record the mapping so callers holding the temp id can resolve the
	// canonical one after a sync pass.
	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)",
		rewriteKey(oldID), newID); err != nil {
		return fmt.Errorf("recording id rewrite: %w", err)
	}

	return tx.Commit()
}

// rewriteKey is the metadata key recording a temp→canonical id mapping.
func rewriteKey(tempID string) string {
	return "id_rewrite:" + tempID
}

// ResolveID returns the canonical id for a temporary id that has been
// rewritten, or the id itself when no rewrite is recorded.
func (s *SQLiteStore) ResolveID(ctx context.Context, id string) (string, error) {
	resolved, err := s.GetMetadata(ctx, rewriteKey(id))
	if err != nil {
		return "", err
	}
	if resolved == "" {
		return id, nil
	}
	return resolved, nil
}

// CreateNotification inserts a new notification record.
func (s *SQLiteStore) CreateNotification(
	ctx context.Context,
	n model.Notification,
) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, kind, entity_id, message, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.Kind, n.EntityID, n.Message, boolToInt(n.Read), n.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

// GetUnreadNotifications retrieves all notifications that have not been
// read, ordered by creation time descending.
func (s *SQLiteStore) GetUnreadNotifications(
	ctx context.Context,
) ([]model.Notification, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM notifications WHERE read = 0 ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("querying unread notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var (
			n       model.Notification
			readInt int
		)
		if err := rows.Scan(
			&n.ID, &n.Kind, &n.EntityID, &n.Message, &readInt, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning notification row: %w", err)
		}
		n.Read = readInt != 0
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// MarkNotificationRead marks a single notification as read.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	return nil
}

// SetMetadata stores a key-value pair in the metadata table.
func (s *SQLiteStore) SetMetadata(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)", key, value,
	)
	if err != nil {
		return fmt.Errorf("setting metadata %q: %w", key, err)
	}
	return nil
}

// GetMetadata retrieves a metadata value, returning "" if unset.
func (s *SQLiteStore) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value,
		"SELECT value FROM metadata WHERE key = ?", key,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting metadata %q: %w", key, err)
	}
	return value, nil
}

// activeFilter appends the soft-delete filter unless trash is requested.
func activeFilter(query string, opts ListOptions) string {
	if opts.IncludeDeleted {
		return query
	}
	if strings.Contains(query, "WHERE") {
		return query + " AND deleted = 0"
	}
	return query + " WHERE deleted = 0"
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullableTime converts a *time.Time to a UTC value or nil for storage.
func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}
