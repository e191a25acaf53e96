package datastore

import (
	"context"
	"fmt"
	"time"

	"github.com/pawkit/pawkit/internal/model"
	"github.com/pawkit/pawkit/internal/store"
)

// CreateCollection creates a collection under a temporary id. The slug
// is derived from the name; a parent, if given, must exist and must not
// introduce a cycle.
func (ds *DataStore) CreateCollection(ctx context.Context, col model.Collection) (*model.Collection, error) {
	var created *model.Collection

	err := ds.mutate(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		col.ID = model.NewTempID()
		col.WorkspaceID = ds.workspaceID
		col.Slug = model.Slugify(col.Name)
		col.CreatedAt = now
		col.UpdatedAt = now
		col.LastModified = now
		col.Synced = false
		col.LocalOnly = true

		if err := col.Validate(); err != nil {
			return err
		}
		if col.ParentID != nil {
			if _, ok := ds.mem.collection(*col.ParentID); !ok {
				return fmt.Errorf("%w: parent collection %s", model.ErrNotFound, *col.ParentID)
			}
		}

		if err := ds.store.SaveCollection(ctx, &col); err != nil {
			return err
		}
		ds.mem.putCollection(col)

		if err := ds.enqueueAndSync(ctx, &col, store.OpCreate); err != nil {
			return err
		}

		final, err := ds.resolveCollection(ctx, col.ID)
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

// UpdateCollection applies caller changes, re-deriving the slug when the
// name changed and rejecting parent moves that would create a cycle.
func (ds *DataStore) UpdateCollection(ctx context.Context, col model.Collection) (*model.Collection, error) {
	var updated *model.Collection

	err := ds.mutate(ctx, func(ctx context.Context) error {
		existing, err := ds.store.GetCollectionByID(ctx, col.ID)
		if err != nil {
			return err
		}

		col.Base = existing.Base
		if col.Name != existing.Name {
			col.Slug = model.Slugify(col.Name)
		} else if col.Slug == "" {
			col.Slug = existing.Slug
		}
		col.Touch(time.Now().UTC())

		if err := col.Validate(); err != nil {
			return err
		}
		if col.ParentID != nil {
			if _, ok := ds.mem.collection(*col.ParentID); !ok {
				return fmt.Errorf("%w: parent collection %s", model.ErrNotFound, *col.ParentID)
			}
			if err := ds.checkNoCycle(col.ID, *col.ParentID); err != nil {
				return err
			}
		}

		if err := ds.store.SaveCollection(ctx, &col); err != nil {
			return err
		}
		ds.mem.putCollection(col)

		op := store.OpUpdate
		if col.LocalOnly && !col.Synced {
			if err := ds.store.DeleteOpsFor(ctx, model.TypeCollection, col.ID); err != nil {
				return err
			}
			op = store.OpCreate
		}
		if err := ds.enqueueAndSync(ctx, &col, op); err != nil {
			return err
		}

		final, err := ds.resolveCollection(ctx, col.ID)
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

// DeleteCollection soft-deletes a collection. The policy selects what
// happens to its children: cascade-delete every descendant, or reparent
// direct children to the deleted collection's parent.
func (ds *DataStore) DeleteCollection(ctx context.Context, id string, policy model.DeletePolicy) error {
	return ds.mutate(ctx, func(ctx context.Context) error {
		col, err := ds.store.GetCollectionByID(ctx, id)
		if err != nil {
			return err
		}

		switch policy {
		case model.CascadeDelete:
			for _, descID := range ds.descendants(id) {
				desc, err := ds.store.GetCollectionByID(ctx, descID)
				if err != nil {
					return err
				}
				if err := ds.softDelete(ctx, desc); err != nil {
					return err
				}
			}
		case model.ReparentChildren:
			for _, child := range ds.children(id) {
				child.ParentID = col.ParentID
				child.Touch(time.Now().UTC())
				if err := ds.store.SaveCollection(ctx, &child); err != nil {
					return err
				}
				ds.mem.putCollection(child)
				if err := ds.enqueueAndSync(ctx, &child, store.OpUpdate); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("%w: unknown delete policy %d", model.ErrValidation, policy)
		}

		return ds.softDelete(ctx, col)
	})
}

// resolveCollection follows any temp→canonical rewrite and returns the
// current stored collection.
func (ds *DataStore) resolveCollection(ctx context.Context, id string) (*model.Collection, error) {
	resolved, err := ds.store.ResolveID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ds.store.GetCollectionByID(ctx, resolved)
}

// Collections returns the workspace's active collections by name.
func (ds *DataStore) Collections() []model.Collection {
	return ds.mem.collectionList()
}

// CollectionByID returns one active collection from the projection.
func (ds *DataStore) CollectionByID(id string) (model.Collection, bool) {
	return ds.mem.collection(id)
}
