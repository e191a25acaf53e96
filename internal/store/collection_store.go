package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pawkit/pawkit/internal/model"
)

// SaveCollection inserts or replaces a collection row.
func (s *SQLiteStore) SaveCollection(ctx context.Context, col *model.Collection) error {
	args := []interface{}{
		col.ID, col.WorkspaceID,
		col.Name, col.Slug, col.ParentID,
		boolToInt(col.Pinned), boolToInt(col.IsPrivate),
	}
	args = append(args, baseArgs(col.Base)...)

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO collections (
			id, workspace_id,
			name, slug, parent_id, pinned, is_private,
			created_at, updated_at, deleted, deleted_at,
			synced, last_modified, server_version, local_only
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("saving collection %s: %w", col.ID, err)
	}
	return nil
}

// GetCollectionByID retrieves a single collection by id, deleted or not.
func (s *SQLiteStore) GetCollectionByID(
	ctx context.Context,
	id string,
) (*model.Collection, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT * FROM collections WHERE id = ?", id)
	col, err := scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("collection %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting collection %s: %w", id, err)
	}
	return &col, nil
}

// GetCollections retrieves all collections in a workspace ordered by name.
func (s *SQLiteStore) GetCollections(
	ctx context.Context,
	workspaceID string,
	opts ListOptions,
) ([]model.Collection, error) {
	query := activeFilter("SELECT * FROM collections WHERE workspace_id = ?", opts)
	query += " ORDER BY name"

	rows, err := s.db.QueryxContext(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	var cols []model.Collection
	for rows.Next() {
		col, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

// scanCollection scans one collection row in schema column order.
func scanCollection(r rowScanner) (model.Collection, error) {
	var (
		col       model.Collection
		pinned    int
		isPrivate int
		base      baseRow
	)

	targets := []interface{}{
		&col.ID, &col.WorkspaceID,
		&col.Name, &col.Slug, &col.ParentID, &pinned, &isPrivate,
	}
	targets = append(targets, base.targets()...)

	if err := r.Scan(targets...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Collection{}, err
		}
		return model.Collection{}, fmt.Errorf("scanning collection row: %w", err)
	}

	col.Pinned = pinned != 0
	col.IsPrivate = isPrivate != 0
	base.apply(&col.Base)

	return col, nil
}
