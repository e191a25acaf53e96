package datastore

import (
	"context"
	"time"

	"github.com/pawkit/pawkit/internal/model"
	"github.com/pawkit/pawkit/internal/store"
)

// CreateTodo creates a todo under a temporary id. SortOrder zero is
// replaced by the store with max+1 so new items land at the bottom.
func (ds *DataStore) CreateTodo(ctx context.Context, todo model.Todo) (*model.Todo, error) {
	var created *model.Todo

	err := ds.mutate(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		todo.ID = model.NewTempID()
		todo.WorkspaceID = ds.workspaceID
		todo.CreatedAt = now
		todo.UpdatedAt = now
		todo.LastModified = now
		todo.Synced = false
		todo.LocalOnly = true
		if todo.Status == "" {
			todo.Status = model.TodoStatusOpen
		}

		if err := todo.Validate(); err != nil {
			return err
		}

		if err := ds.store.SaveTodo(ctx, &todo); err != nil {
			return err
		}
		ds.mem.putTodo(todo)

		if err := ds.enqueueAndSync(ctx, &todo, store.OpCreate); err != nil {
			return err
		}

		final, err := ds.resolveTodo(ctx, todo.ID)
		if err != nil {
			return err
		}
		created = final
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateTodo applies caller changes to an existing todo.
func (ds *DataStore) UpdateTodo(ctx context.Context, todo model.Todo) (*model.Todo, error) {
	var updated *model.Todo

	err := ds.mutate(ctx, func(ctx context.Context) error {
		existing, err := ds.store.GetTodoByID(ctx, todo.ID)
		if err != nil {
			return err
		}

		todo.Base = existing.Base
		todo.Touch(time.Now().UTC())

		if err := todo.Validate(); err != nil {
			return err
		}

		if err := ds.store.SaveTodo(ctx, &todo); err != nil {
			return err
		}
		ds.mem.putTodo(todo)

		op := store.OpUpdate
		if todo.LocalOnly && !todo.Synced {
			if err := ds.store.DeleteOpsFor(ctx, model.TypeTodo, todo.ID); err != nil {
				return err
			}
			op = store.OpCreate
		}
		if err := ds.enqueueAndSync(ctx, &todo, op); err != nil {
			return err
		}

		final, err := ds.resolveTodo(ctx, todo.ID)
		if err != nil {
			return err
		}
		updated = final
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ToggleTodo flips a todo between open and complete.
func (ds *DataStore) ToggleTodo(ctx context.Context, id string) (*model.Todo, error) {
	todo, err := ds.store.GetTodoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if todo.Status == model.TodoStatusComplete {
		todo.Status = model.TodoStatusOpen
	} else {
		todo.Status = model.TodoStatusComplete
	}
	return ds.UpdateTodo(ctx, *todo)
}

// DeleteTodo soft-deletes a todo and queues the remote delete.
func (ds *DataStore) DeleteTodo(ctx context.Context, id string) error {
	return ds.mutate(ctx, func(ctx context.Context) error {
		todo, err := ds.store.GetTodoByID(ctx, id)
		if err != nil {
			return err
		}
		return ds.softDelete(ctx, todo)
	})
}

func (ds *DataStore) resolveTodo(ctx context.Context, id string) (*model.Todo, error) {
	resolved, err := ds.store.ResolveID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ds.store.GetTodoByID(ctx, resolved)
}

// Todos returns the workspace's active todos by sort order.
func (ds *DataStore) Todos() []model.Todo {
	return ds.mem.todoList()
}
