package remote

import (
	"errors"
	"fmt"

	"github.com/pawkit/pawkit/internal/model"
)

// ConflictError reports a failed optimistic-concurrency precondition:
// the server's copy changed after the client last read it.
type ConflictError struct {
	EntityID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on entity %s: %v", e.EntityID, model.ErrConflict)
}

// Is lets errors.Is(err, model.ErrConflict) match.
func (e *ConflictError) Is(target error) bool {
	return target == model.ErrConflict
}

// NotFoundError reports a missing remote entity.
type NotFoundError struct {
	EntityID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("remote entity %s not found", e.EntityID)
}

// Is lets errors.Is(err, model.ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == model.ErrNotFound
}

// NetworkError wraps transport failures, timeouts, and 5xx responses.
// Operations failing this way stay in the durable queue and are retried
// on the next sync pass.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetwork reports whether err is (or wraps) a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
