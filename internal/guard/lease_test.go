package guard_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawkit/pawkit/internal/guard"
	"github.com/pawkit/pawkit/internal/model"
	"github.com/pawkit/pawkit/tests/testutil"
)

func TestFreeLeasePassesCheck(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	lease := guard.New(s, "tab-1")
	assert.NoError(t, lease.Check(ctx))

	holder, err := lease.CurrentHolder(ctx)
	require.NoError(t, err)
	assert.Nil(t, holder)
}

func TestSecondSessionRejected(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	first := guard.New(s, "tab-1")
	require.NoError(t, first.Renew(ctx))

	second := guard.New(s, "tab-2")
	err := second.Check(ctx)
	require.ErrorIs(t, err, model.ErrGuardRejected)
	assert.Contains(t, err.Error(), "tab-1")

	// The holder keeps passing its own checks.
	assert.NoError(t, first.Check(ctx))
}

func TestTakeoverDisplacesHolder(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	first := guard.New(s, "tab-1")
	require.NoError(t, first.Renew(ctx))

	second := guard.New(s, "tab-2")
	require.NoError(t, second.Takeover(ctx))

	assert.NoError(t, second.Check(ctx))
	assert.ErrorIs(t, first.Check(ctx), model.ErrGuardRejected)

	holder, err := second.CurrentHolder(ctx)
	require.NoError(t, err)
	require.NotNil(t, holder)
	assert.Equal(t, second.SessionID(), holder.SessionID)
}

func TestLeaseNeverExpiresOnItsOwn(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	first := guard.New(s, "tab-1")
	require.NoError(t, first.Renew(ctx))

	// No matter how many times another session checks, a stale holder
	// stays in place until an explicit takeover.
	second := guard.New(s, "tab-2")
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, second.Check(ctx), model.ErrGuardRejected)
	}
}

func TestReleaseClearsOwnLeaseOnly(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	first := guard.New(s, "tab-1")
	require.NoError(t, first.Renew(ctx))

	// Another session releasing is a no-op.
	second := guard.New(s, "tab-2")
	require.NoError(t, second.Release(ctx))
	assert.ErrorIs(t, second.Check(ctx), model.ErrGuardRejected)

	require.NoError(t, first.Release(ctx))
	assert.NoError(t, second.Check(ctx))
}

func TestStableSessionIDSurvivesRestart(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	// Three consecutive runs of a process sharing one persisted session
	// id: the lease claimed by the first run is still held by the later
	// ones, and a takeover transfers durably rather than to a handle
	// that dies with its process.
	first := guard.NewWithID(s, "profile-1", "laptop")
	require.NoError(t, first.Renew(ctx))

	second := guard.NewWithID(s, "profile-1", "laptop")
	require.NoError(t, second.Check(ctx))
	require.NoError(t, second.Takeover(ctx))

	third := guard.NewWithID(s, "profile-1", "laptop")
	assert.NoError(t, third.Check(ctx))

	// A different profile is still refused.
	other := guard.NewWithID(s, "profile-2", "desktop")
	assert.ErrorIs(t, other.Check(ctx), model.ErrGuardRejected)
}

func TestCorruptMarkerTreatedAsFree(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetMetadata(ctx, "active_session", "{not json"))

	lease := guard.New(s, "tab-1")
	assert.NoError(t, lease.Check(ctx))

	holder, err := lease.CurrentHolder(ctx)
	require.NoError(t, err)
	assert.Nil(t, holder)
}
