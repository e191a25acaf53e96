// Package testutil provides shared helpers for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/pawkit/pawkit/internal/model"
	"github.com/pawkit/pawkit/internal/store"
)

// Workspace is the workspace id used by test fixtures.
const Workspace = "test-workspace"

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// NewBase returns an entity base stamped the way the facade stamps new
// entities, with a fixed id so tests stay deterministic.
func NewBase(id string, at time.Time) model.Base {
	return model.Base{
		ID:           id,
		WorkspaceID:  Workspace,
		CreatedAt:    at,
		UpdatedAt:    at,
		LastModified: at,
		Synced:       false,
		LocalOnly:    true,
	}
}
