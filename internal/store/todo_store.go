package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pawkit/pawkit/internal/model"
)

// SaveTodo inserts or replaces a todo row. Defaults an empty status to
// open and sort_order to max+1 for new rows so fresh todos land at the
// end of the list.
func (s *SQLiteStore) SaveTodo(ctx context.Context, todo *model.Todo) error {
	if todo.Status == "" {
		todo.Status = model.TodoStatusOpen
	}
	if todo.SortOrder == 0 {
		var maxOrder int
		err := s.db.GetContext(ctx, &maxOrder,
			"SELECT COALESCE(MAX(sort_order), 0) FROM todos WHERE workspace_id = ?",
			todo.WorkspaceID)
		if err != nil {
			return fmt.Errorf("getting max sort_order: %w", err)
		}
		todo.SortOrder = maxOrder + 1
	}

	args := []interface{}{
		todo.ID, todo.WorkspaceID,
		todo.Title, todo.Status, todo.DueDate, todo.SortOrder,
	}
	args = append(args, baseArgs(todo.Base)...)

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO todos (
			id, workspace_id,
			title, status, due_date, sort_order,
			created_at, updated_at, deleted, deleted_at,
			synced, last_modified, server_version, local_only
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("saving todo %s: %w", todo.ID, err)
	}
	return nil
}

// GetTodoByID retrieves a single todo by id, deleted or not.
func (s *SQLiteStore) GetTodoByID(ctx context.Context, id string) (*model.Todo, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT * FROM todos WHERE id = ?", id)
	todo, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("todo %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting todo %s: %w", id, err)
	}
	return &todo, nil
}

// GetTodos retrieves all todos in a workspace in list order.
func (s *SQLiteStore) GetTodos(
	ctx context.Context,
	workspaceID string,
	opts ListOptions,
) ([]model.Todo, error) {
	query := activeFilter("SELECT * FROM todos WHERE workspace_id = ?", opts)
	query += " ORDER BY sort_order"

	rows, err := s.db.QueryxContext(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}
	defer rows.Close()

	var todos []model.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

// scanTodo scans one todo row in schema column order.
func scanTodo(r rowScanner) (model.Todo, error) {
	var (
		todo model.Todo
		base baseRow
	)

	targets := []interface{}{
		&todo.ID, &todo.WorkspaceID,
		&todo.Title, &todo.Status, &todo.DueDate, &todo.SortOrder,
	}
	targets = append(targets, base.targets()...)

	if err := r.Scan(targets...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Todo{}, err
		}
		return model.Todo{}, fmt.Errorf("scanning todo row: %w", err)
	}

	base.apply(&todo.Base)
	return todo, nil
}
