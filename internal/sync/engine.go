// Package sync drains the durable queue of pending local mutations to
// the remote entity service. Every write has already succeeded locally;
// this package only decides what happens on the remote leg: confirm,
// resolve a conflict, or leave the op queued for the next pass.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	gosync "sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pawkit/pawkit/internal/model"
	"github.com/pawkit/pawkit/internal/remote"
	"github.com/pawkit/pawkit/internal/store"
)

// lastSyncKey is the metadata key recording the last completed pass.
const lastSyncKey = "last_sync_at"

// Stats summarizes one sync pass.
type Stats struct {
	// Ran is false when the pass was skipped because another pass was
	// already in flight.
	Ran       bool
	Synced    int
	Conflicts int
	Queued    int
}

// Engine reconciles local pending mutations with the remote service.
type Engine struct {
	store  store.Store
	client *remote.Client
	logger zerolog.Logger

	// passMu serializes sync passes. Re-entrant RunPass calls while a
	// pass is in flight are ignored, not queued.
	passMu gosync.Mutex

	triggerCh chan struct{}
}

// New creates a sync engine. The client may be nil when remote sync is
// disabled; RunPass then reports a skipped pass.
func New(st store.Store, client *remote.Client, logger zerolog.Logger) *Engine {
	return &Engine{
		store:     st,
		client:    client,
		logger:    logger.With().Str("component", "sync").Logger(),
		triggerCh: make(chan struct{}, 1),
	}
}

// Trigger requests an immediate pass from the Run loop without blocking.
func (e *Engine) Trigger() {
	select {
	case e.triggerCh <- struct{}{}:
	default:
	}
}

// Run executes sync passes on a timer and on Trigger until ctx is done.
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 60 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.runLogged(ctx)
		case <-e.triggerCh:
			e.runLogged(ctx)
		}
	}
}

func (e *Engine) runLogged(ctx context.Context) {
	stats, err := e.RunPass(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("sync pass failed")
		return
	}
	if stats.Ran && (stats.Synced > 0 || stats.Conflicts > 0 || stats.Queued > 0) {
		e.logger.Info().
			Int("synced", stats.Synced).
			Int("conflicts", stats.Conflicts).
			Int("queued", stats.Queued).
			Msg("sync pass complete")
	}
}

// RunPass drains the queue once. Only one pass runs at a time; a call
// arriving while another pass is in flight returns immediately with
// Ran=false.
func (e *Engine) RunPass(ctx context.Context) (Stats, error) {
	if e.client == nil {
		return Stats{}, nil
	}
	if !e.passMu.TryLock() {
		return Stats{}, nil
	}
	defer e.passMu.Unlock()

	ops, err := e.store.PendingOps(ctx)
	if err != nil {
		return Stats{Ran: true}, fmt.Errorf("loading pending ops: %w", err)
	}

	stats := Stats{Ran: true}
	for _, op := range ops {
		outcome, err := e.processOp(ctx, op)
		if err != nil {
			return stats, err
		}
		switch outcome {
		case outcomeSynced:
			stats.Synced++
		case outcomeConflict:
			stats.Conflicts++
		case outcomeQueued:
			stats.Queued++
		}
	}

	if err := e.store.SetMetadata(ctx, lastSyncKey,
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return stats, fmt.Errorf("recording last sync time: %w", err)
	}
	return stats, nil
}

type outcome int

const (
	outcomeSynced outcome = iota
	outcomeConflict
	outcomeQueued
)

// processOp pushes one queued mutation to the remote service.
func (e *Engine) processOp(ctx context.Context, op store.QueueOp) (outcome, error) {
	switch op.Op {
	case store.OpCreate:
		return e.processCreate(ctx, op)
	case store.OpUpdate:
		return e.processUpdate(ctx, op)
	case store.OpDelete:
		return e.processDelete(ctx, op)
	default:
		// Unknown op kind: drop it rather than wedging the queue.
		e.logger.Warn().Str("op", op.Op).Int64("seq", op.Seq).Msg("dropping unknown queue op")
		return outcomeSynced, e.store.DequeueOp(ctx, op.Seq)
	}
}

func (e *Engine) processCreate(ctx context.Context, op store.QueueOp) (outcome, error) {
	rec, err := e.client.Create(ctx, op.EntityType, op.Payload)
	if err != nil {
		return e.handleRemoteFailure(ctx, op, err)
	}

	if err := e.confirmCreate(ctx, op, rec); err != nil {
		return outcomeQueued, err
	}

	e.logger.Debug().
		Str("type", string(op.EntityType)).
		Str("temp_id", op.EntityID).
		Str("id", rec.ID).
		Msg("create confirmed")
	return outcomeSynced, e.store.DequeueOp(ctx, op.Seq)
}

// confirmCreate rewrites a temporary id to the server-assigned canonical
// id and applies the server's representation locally.
func (e *Engine) confirmCreate(ctx context.Context, op store.QueueOp, rec *remote.Record) error {
	localID := op.EntityID
	if rec.ID != "" && rec.ID != localID {
		if err := e.store.RewriteID(ctx, op.EntityType, localID, rec.ID); err != nil {
			return fmt.Errorf("rewriting temp id %s: %w", localID, err)
		}
		localID = rec.ID
	}
	return e.applyServer(ctx, op.EntityType, localID, rec)
}

func (e *Engine) processUpdate(ctx context.Context, op store.QueueOp) (outcome, error) {
	base := e.baseVersion(ctx, op)

	rec, err := e.client.Update(ctx, op.EntityID, op.Payload, base)
	if err == nil {
		if err := e.applyServer(ctx, op.EntityType, op.EntityID, rec); err != nil {
			return outcomeQueued, err
		}
		return outcomeSynced, e.store.DequeueOp(ctx, op.Seq)
	}

	if remote.IsConflict(err) {
		return e.resolveConflict(ctx, op)
	}
	return e.handleRemoteFailure(ctx, op, err)
}

func (e *Engine) processDelete(ctx context.Context, op store.QueueOp) (outcome, error) {
	err := e.client.Delete(ctx, op.EntityID)
	if err != nil && !remote.IsNotFound(err) {
		return e.handleRemoteFailure(ctx, op, err)
	}

	e.logger.Debug().
		Str("type", string(op.EntityType)).
		Str("id", op.EntityID).
		Msg("delete confirmed")
	return outcomeSynced, e.store.DequeueOp(ctx, op.Seq)
}

// resolveConflict runs the fetch-merge-retry protocol: pull the
// authoritative copy, merge keeping the local edit's fields except where
// the server is authoritative, persist the merge, and retry the update
// once against the server's timestamp. A second rejection keeps the
// local merged version and surfaces a notification; local data is never
// discarded.
func (e *Engine) resolveConflict(ctx context.Context, op store.QueueOp) (outcome, error) {
	rec, err := e.client.Get(ctx, op.EntityID)
	if remote.IsNotFound(err) {
		// Deleted remotely while we edited it locally. Local wins:
		// recreate the entity from our copy.
		return e.recreateRemote(ctx, op)
	}
	if err != nil {
		return e.handleRemoteFailure(ctx, op, err)
	}

	merged, err := e.merge(ctx, op, rec)
	if err != nil {
		return outcomeQueued, err
	}

	if err := e.store.SaveEntity(ctx, merged); err != nil {
		return outcomeQueued, fmt.Errorf("persisting merged entity: %w", err)
	}

	payload, err := json.Marshal(merged)
	if err != nil {
		return outcomeQueued, fmt.Errorf("marshaling merged entity: %w", err)
	}

	retryRec, err := e.client.Update(ctx, op.EntityID, payload, rec.UpdatedAt)
	if err == nil {
		if err := e.applyServer(ctx, op.EntityType, op.EntityID, retryRec); err != nil {
			return outcomeQueued, err
		}
		e.logger.Debug().
			Str("id", op.EntityID).
			Msg("conflict resolved on retry")
		return outcomeSynced, e.store.DequeueOp(ctx, op.Seq)
	}

	if remote.IsNetwork(err) {
		return e.handleRemoteFailure(ctx, op, err)
	}

	// Retry rejected too. Keep the local merged version and tell the
	// user; the op leaves the queue so it is not retried endlessly.
	e.logger.Warn().Str("id", op.EntityID).Msg("conflict retry rejected, keeping local merge")
	n := model.Notification{
		Kind:     model.NotifyConflict,
		EntityID: op.EntityID,
		Message:  fmt.Sprintf("Your change to %s conflicted with an edit elsewhere; kept your version locally.", op.EntityID),
	}
	if err := e.store.CreateNotification(ctx, n); err != nil {
		return outcomeConflict, fmt.Errorf("recording conflict notification: %w", err)
	}
	return outcomeConflict, e.store.DequeueOp(ctx, op.Seq)
}

// recreateRemote re-posts an entity whose server copy vanished during
// conflict resolution.
func (e *Engine) recreateRemote(ctx context.Context, op store.QueueOp) (outcome, error) {
	rec, err := e.client.Create(ctx, op.EntityType, op.Payload)
	if err != nil {
		return e.handleRemoteFailure(ctx, op, err)
	}
	if err := e.confirmCreate(ctx, op, rec); err != nil {
		return outcomeQueued, err
	}
	return outcomeSynced, e.store.DequeueOp(ctx, op.Seq)
}

// handleRemoteFailure sorts a remote error into "stay queued" (network
// trouble) or "terminal" (the server understood us and said no).
func (e *Engine) handleRemoteFailure(ctx context.Context, op store.QueueOp, err error) (outcome, error) {
	if remote.IsNetwork(err) {
		e.logger.Debug().Err(err).
			Str("id", op.EntityID).
			Int("retries", op.RetryCount).
			Msg("remote unreachable, op stays queued")
		if berr := e.store.BumpRetry(ctx, op.Seq); berr != nil {
			return outcomeQueued, berr
		}
		return outcomeQueued, nil
	}

	// Terminal rejection (validation and the like): dropping the op is
	// safe because the local write is untouched; surface it instead of
	// retrying forever.
	e.logger.Warn().Err(err).Str("id", op.EntityID).Msg("remote rejected op")
	n := model.Notification{
		Kind:     model.NotifyConflict,
		EntityID: op.EntityID,
		Message:  fmt.Sprintf("The server rejected a change to %s: %v", op.EntityID, err),
	}
	if nerr := e.store.CreateNotification(ctx, n); nerr != nil {
		return outcomeConflict, fmt.Errorf("recording rejection notification: %w", nerr)
	}
	return outcomeConflict, e.store.DequeueOp(ctx, op.Seq)
}

// baseVersion picks the precondition timestamp for an update: the
// version captured at enqueue time, falling back to the entity's last
// known server version.
func (e *Engine) baseVersion(ctx context.Context, op store.QueueOp) time.Time {
	if op.BaseVersion != nil {
		return *op.BaseVersion
	}
	ent, err := e.store.GetEntityByID(ctx, op.EntityType, op.EntityID)
	if err != nil {
		return time.Time{}
	}
	if sv := ent.EntityBase().ServerVersion; sv != nil {
		return *sv
	}
	return ent.EntityBase().UpdatedAt
}

// applyServer makes the server's returned representation the canonical
// local record: decode it over the local variant, restore CreatedAt
// (server-origin writes never reset it), and stamp the sync metadata.
func (e *Engine) applyServer(
	ctx context.Context,
	typ model.EntityType,
	id string,
	rec *remote.Record,
) error {
	local, err := e.store.GetEntityByID(ctx, typ, id)
	if err != nil {
		return fmt.Errorf("loading local record %s: %w", id, err)
	}
	createdAt := local.EntityBase().CreatedAt

	ent := local
	if len(rec.Entity) > 0 {
		fresh, ok := model.NewEntity(typ)
		if !ok {
			return fmt.Errorf("unknown entity type %q", typ)
		}
		if err := json.Unmarshal(rec.Entity, fresh); err != nil {
			return fmt.Errorf("decoding server entity %s: %w", id, err)
		}
		ent = fresh
	}

	base := ent.EntityBase()
	base.ID = id
	if !createdAt.IsZero() {
		base.CreatedAt = createdAt
	}
	base.ConfirmServer(rec.UpdatedAt)

	if err := e.store.SaveEntity(ctx, ent); err != nil {
		return fmt.Errorf("saving server record %s: %w", id, err)
	}
	return nil
}

// merge builds the conflict-merge record: the local copy's user-editable
// fields win, the server's copy wins for server-authoritative fields
// (fetched page metadata and derived values).
func (e *Engine) merge(
	ctx context.Context,
	op store.QueueOp,
	rec *remote.Record,
) (model.Entity, error) {
	local, err := e.store.GetEntityByID(ctx, op.EntityType, op.EntityID)
	if err != nil {
		return nil, fmt.Errorf("loading local record for merge: %w", err)
	}

	server, ok := model.NewEntity(op.EntityType)
	if !ok {
		return nil, fmt.Errorf("unknown entity type %q", op.EntityType)
	}
	if len(rec.Entity) > 0 {
		if err := json.Unmarshal(rec.Entity, server); err != nil {
			return nil, fmt.Errorf("decoding server entity for merge: %w", err)
		}
	}

	merged := mergeEntities(local, server)
	base := merged.EntityBase()
	base.ID = op.EntityID
	base.ServerVersion = &rec.UpdatedAt
	base.Synced = false
	return merged, nil
}

// mergeEntities keeps the local variant and overlays the fields the
// server owns. Only cards carry server-authoritative domain fields;
// the other variants are entirely user-authored.
func mergeEntities(local, server model.Entity) model.Entity {
	lc, lok := local.(*model.Card)
	sc, sok := server.(*model.Card)
	if lok && sok {
		merged := *lc
		if sc.Domain != "" {
			merged.Domain = sc.Domain
		}
		if sc.Description != "" {
			merged.Description = sc.Description
		}
		if sc.ImageURL != "" {
			merged.ImageURL = sc.ImageURL
		}
		return &merged
	}
	return local
}
