package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pawkit/pawkit/internal/model"
)

// Enqueue appends a pending remote mutation to the durable sync queue.
func (s *SQLiteStore) Enqueue(ctx context.Context, op QueueOp) error {
	if op.CreatedAt.IsZero() {
		op.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_queue (entity_type, entity_id, op, payload, base_version, retry_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(op.EntityType), op.EntityID, op.Op, string(op.Payload),
		nullableTime(op.BaseVersion), op.RetryCount, op.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("enqueueing %s %s for %s: %w", op.Op, op.EntityType, op.EntityID, err)
	}
	return nil
}

// PendingOps returns all queued mutations in enqueue order.
func (s *SQLiteStore) PendingOps(ctx context.Context) ([]QueueOp, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM sync_queue ORDER BY seq",
	)
	if err != nil {
		return nil, fmt.Errorf("querying sync queue: %w", err)
	}
	defer rows.Close()

	var ops []QueueOp
	for rows.Next() {
		var (
			op         QueueOp
			entityType string
			payload    string
		)
		if err := rows.Scan(
			&op.Seq, &entityType, &op.EntityID, &op.Op,
			&payload, &op.BaseVersion, &op.RetryCount, &op.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning queue row: %w", err)
		}
		op.EntityType = model.EntityType(entityType)
		op.Payload = []byte(payload)
		ops = append(ops, op)
	}

	return ops, rows.Err()
}

// DequeueOp removes a completed queue entry.
func (s *SQLiteStore) DequeueOp(ctx context.Context, seq int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sync_queue WHERE seq = ?", seq)
	if err != nil {
		return fmt.Errorf("dequeueing op %d: %w", seq, err)
	}
	return nil
}

// BumpRetry increments the retry counter on a queue entry that failed
// with a network error and stays queued.
func (s *SQLiteStore) BumpRetry(ctx context.Context, seq int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE sync_queue SET retry_count = retry_count + 1 WHERE seq = ?", seq)
	if err != nil {
		return fmt.Errorf("bumping retry for op %d: %w", seq, err)
	}
	return nil
}

// DeleteOpsFor drops every pending op targeting an entity.
func (s *SQLiteStore) DeleteOpsFor(
	ctx context.Context,
	typ model.EntityType,
	entityID string,
) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM sync_queue WHERE entity_type = ? AND entity_id = ?",
		string(typ), entityID)
	if err != nil {
		return fmt.Errorf("dropping queued ops for %s %s: %w", typ, entityID, err)
	}
	return nil
}
