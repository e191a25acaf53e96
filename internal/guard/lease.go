// Package guard implements single-active-session write arbitration.
//
// The lease is a shared marker in the store's metadata table. Before any
// mutation the facade checks the marker against its own session id;
// a mismatch refuses the write. Every successful mutation renews the
// marker. There is no automatic expiry: a stale holder is displaced only
// by an explicit user takeover. The lease is cooperative, not a lock —
// a writer that skips the check can still corrupt the store.
package guard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pawkit/pawkit/internal/model"
)

// leaseKey is the metadata key holding the active-session marker.
const leaseKey = "active_session"

// MetadataStore is the shared storage area the lease marker lives in.
type MetadataStore interface {
	SetMetadata(ctx context.Context, key, value string) error
	GetMetadata(ctx context.Context, key string) (string, error)
}

// Holder describes the session currently holding the lease.
type Holder struct {
	SessionID string    `json:"session_id"`
	Name      string    `json:"name,omitempty"`
	RenewedAt time.Time `json:"renewed_at"`
}

// Lease is this session's handle on the write lease.
type Lease struct {
	meta      MetadataStore
	sessionID string
	name      string
}

// New creates a lease handle with a fresh random session id. The name
// is a human-readable label shown when another session is refused.
func New(meta MetadataStore, name string) *Lease {
	return NewWithID(meta, uuid.New().String(), name)
}

// NewWithID creates a lease handle with a caller-supplied session id.
// Callers whose session outlives a single process persist the id and
// pass it back on the next start, so a claimed lease stays valid across
// restarts and a takeover durably transfers write access.
func NewWithID(meta MetadataStore, sessionID, name string) *Lease {
	return &Lease{
		meta:      meta,
		sessionID: sessionID,
		name:      name,
	}
}

// SessionID returns this session's identifier.
func (l *Lease) SessionID() string {
	return l.sessionID
}

// holder reads the current marker. A nil holder means the lease is free.
func (l *Lease) holder(ctx context.Context) (*Holder, error) {
	raw, err := l.meta.GetMetadata(ctx, leaseKey)
	if err != nil {
		return nil, fmt.Errorf("reading lease marker: %w", err)
	}
	if raw == "" {
		return nil, nil
	}

	var h Holder
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		// A corrupt marker is treated as free rather than wedging every
		// write behind an unparseable holder.
		return nil, nil
	}
	return &h, nil
}

// Check refuses the mutation if another session holds the lease.
// A free lease passes; the caller claims it on the Renew that follows a
// successful write.
func (l *Lease) Check(ctx context.Context) error {
	h, err := l.holder(ctx)
	if err != nil {
		return err
	}
	if h == nil || h.SessionID == l.sessionID {
		return nil
	}

	name := h.Name
	if name == "" {
		name = h.SessionID
	}
	return fmt.Errorf("%w (held by %s)", model.ErrGuardRejected, name)
}

// Renew stamps the marker with this session, claiming a free lease or
// keeping an owned one alive. It must not be called after a failed Check.
func (l *Lease) Renew(ctx context.Context) error {
	return l.write(ctx)
}

// Takeover overwrites the marker with this session regardless of the
// current holder. This is the explicit "use this tab" user action.
func (l *Lease) Takeover(ctx context.Context) error {
	return l.write(ctx)
}

// Release clears the marker if this session holds it.
func (l *Lease) Release(ctx context.Context) error {
	h, err := l.holder(ctx)
	if err != nil {
		return err
	}
	if h == nil || h.SessionID != l.sessionID {
		return nil
	}
	if err := l.meta.SetMetadata(ctx, leaseKey, ""); err != nil {
		return fmt.Errorf("releasing lease: %w", err)
	}
	return nil
}

// CurrentHolder reports who holds the lease, or nil if it is free.
func (l *Lease) CurrentHolder(ctx context.Context) (*Holder, error) {
	return l.holder(ctx)
}

func (l *Lease) write(ctx context.Context) error {
	data, err := json.Marshal(Holder{
		SessionID: l.sessionID,
		Name:      l.name,
		RenewedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encoding lease marker: %w", err)
	}
	if err := l.meta.SetMetadata(ctx, leaseKey, string(data)); err != nil {
		return fmt.Errorf("writing lease marker: %w", err)
	}
	return nil
}
