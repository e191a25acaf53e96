// Package datastore is the single point of mutation for Pawkit entities.
// Every write follows the same local-first sequence: write-guard check,
// local store write, in-memory projection update, then a background-able
// remote attempt. The remote leg can fail — the local write never rolls
// back because of it.
package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pawkit/pawkit/internal/guard"
	"github.com/pawkit/pawkit/internal/model"
	"github.com/pawkit/pawkit/internal/store"
	syncengine "github.com/pawkit/pawkit/internal/sync"
)

// Options configures a DataStore.
type Options struct {
	WorkspaceID string

	// SyncEnabled gates the immediate remote attempt after each local
	// write. Writes are queued either way; with sync disabled they wait
	// for an explicit pass.
	SyncEnabled bool

	Logger zerolog.Logger
}

// DataStore orchestrates the local-first write path and exposes query
// helpers over the in-memory projection.
type DataStore struct {
	store  store.Store
	lease  *guard.Lease
	engine *syncengine.Engine
	logger zerolog.Logger

	workspaceID string
	syncEnabled bool

	mem *projection
}

// New creates a DataStore and loads the in-memory projection for the
// workspace.
func New(
	ctx context.Context,
	st store.Store,
	lease *guard.Lease,
	engine *syncengine.Engine,
	opts Options,
) (*DataStore, error) {
	if opts.WorkspaceID == "" {
		return nil, fmt.Errorf("%w: datastore needs a workspace id", model.ErrValidation)
	}

	ds := &DataStore{
		store:       st,
		lease:       lease,
		engine:      engine,
		logger:      opts.Logger.With().Str("component", "datastore").Logger(),
		workspaceID: opts.WorkspaceID,
		syncEnabled: opts.SyncEnabled,
		mem:         newProjection(),
	}

	if err := ds.reloadAll(ctx); err != nil {
		return nil, err
	}
	return ds, nil
}

// Lease exposes the write lease for explicit takeover flows.
func (ds *DataStore) Lease() *guard.Lease {
	return ds.lease
}

// checkGuard refuses mutations from a session that does not hold the
// write lease. The rejection is recorded as a user-visible notification
// and returned; it is never silently retried.
func (ds *DataStore) checkGuard(ctx context.Context) error {
	err := ds.lease.Check(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrGuardRejected) {
		n := model.Notification{
			Kind:    model.NotifyGuardRejected,
			Message: "This session is not the active writer. Use “take over” to write from here.",
		}
		if nerr := ds.store.CreateNotification(ctx, n); nerr != nil {
			ds.logger.Error().Err(nerr).Msg("recording guard notification")
		}
	}
	return err
}

// mutate runs the uniform mutation sequence around fn, which performs
// the local store write and projection update. The guard check happens
// before any other step so another session cannot grab the lease between
// the local write and the remote attempt.
func (ds *DataStore) mutate(ctx context.Context, fn func(context.Context) error) error {
	if err := ds.checkGuard(ctx); err != nil {
		return err
	}

	if err := fn(ctx); err != nil {
		return err
	}

	// A successful local write keeps the lease alive.
	if err := ds.lease.Renew(ctx); err != nil {
		ds.logger.Error().Err(err).Msg("renewing write lease")
	}

	return nil
}

// enqueueAndSync records the remote op and, when sync is enabled,
// attempts it immediately. Failure leaves the op queued; only the
// projection for the entity's type is refreshed so confirmed ids show up.
func (ds *DataStore) enqueueAndSync(ctx context.Context, e model.Entity, opKind string) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling %s payload: %w", e.EntityType(), err)
	}

	op := store.QueueOp{
		EntityType:  e.EntityType(),
		EntityID:    e.EntityBase().ID,
		Op:          opKind,
		Payload:     payload,
		BaseVersion: e.EntityBase().ServerVersion,
	}
	if err := ds.store.Enqueue(ctx, op); err != nil {
		return err
	}

	if !ds.syncEnabled || ds.engine == nil {
		return nil
	}

	if _, err := ds.engine.RunPass(ctx); err != nil {
		// The op stays queued; local state is already authoritative.
		ds.logger.Warn().Err(err).Msg("immediate sync attempt failed")
		return nil
	}

	return ds.reloadType(ctx, e.EntityType())
}

// reloadAll refreshes the projection from the local store.
func (ds *DataStore) reloadAll(ctx context.Context) error {
	for _, typ := range []model.EntityType{
		model.TypeCard, model.TypeCollection, model.TypeEvent, model.TypeTodo,
	} {
		if err := ds.reloadType(ctx, typ); err != nil {
			return err
		}
	}
	return nil
}

func (ds *DataStore) reloadType(ctx context.Context, typ model.EntityType) error {
	opts := store.ListOptions{}
	switch typ {
	case model.TypeCard:
		cards, err := ds.store.GetCards(ctx, ds.workspaceID, opts)
		if err != nil {
			return err
		}
		ds.mem.setCards(cards)
	case model.TypeCollection:
		cols, err := ds.store.GetCollections(ctx, ds.workspaceID, opts)
		if err != nil {
			return err
		}
		ds.mem.setCollections(cols)
	case model.TypeEvent:
		events, err := ds.store.GetEvents(ctx, ds.workspaceID, opts)
		if err != nil {
			return err
		}
		ds.mem.setEvents(events)
	case model.TypeTodo:
		todos, err := ds.store.GetTodos(ctx, ds.workspaceID, opts)
		if err != nil {
			return err
		}
		ds.mem.setTodos(todos)
	}
	return nil
}

// softDelete is the shared delete path: mark deleted locally, drop from
// the projection, and queue the remote delete. An entity the server has
// never seen is finished locally — its queued create is dropped and no
// remote delete is sent.
func (ds *DataStore) softDelete(ctx context.Context, e model.Entity) error {
	base := e.EntityBase()
	now := time.Now().UTC()

	if err := ds.store.SoftDelete(ctx, e.EntityType(), base.ID, now); err != nil {
		return err
	}
	ds.mem.remove(e.EntityType(), base.ID)

	if base.LocalOnly && !base.Synced {
		return ds.store.DeleteOpsFor(ctx, e.EntityType(), base.ID)
	}

	base.MarkDeleted(now)
	return ds.enqueueAndSync(ctx, e, store.OpDelete)
}

// PurgeTrash hard-deletes soft-deleted entities older than the cutoff.
func (ds *DataStore) PurgeTrash(ctx context.Context, olderThan time.Time) (int, error) {
	if err := ds.checkGuard(ctx); err != nil {
		return 0, err
	}
	return ds.store.PurgeTrash(ctx, ds.workspaceID, olderThan)
}

// UnreadNotifications surfaces pending conflict/guard notifications.
func (ds *DataStore) UnreadNotifications(ctx context.Context) ([]model.Notification, error) {
	return ds.store.GetUnreadNotifications(ctx)
}
