package model

import "errors"

// Error taxonomy for the sync core. Callers branch on these with
// errors.Is; everything else is wrapped context.
var (
	// ErrGuardRejected means a mutation was attempted by a session that
	// does not hold the write lease. Never retried automatically; the
	// user takes over explicitly.
	ErrGuardRejected = errors.New("another session holds the write lease")

	// ErrConflict means the remote rejected a write because its copy
	// changed after we last read it.
	ErrConflict = errors.New("remote copy was modified concurrently")

	// ErrValidation means the payload was malformed. The local write is
	// rejected before it reaches the queue.
	ErrValidation = errors.New("invalid entity")

	// ErrNotFound means the entity does not exist locally.
	ErrNotFound = errors.New("entity not found")
)
