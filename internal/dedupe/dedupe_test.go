package dedupe_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawkit/pawkit/internal/dedupe"
	"github.com/pawkit/pawkit/internal/model"
	"github.com/pawkit/pawkit/internal/store"
	"github.com/pawkit/pawkit/tests/testutil"
)

func urlCard(id, rawURL string, at time.Time) model.Card {
	return model.Card{
		Base: testutil.NewBase(id, at),
		Type: model.CardTypeURL,
		URL:  rawURL,
	}
}

func keptIDs(r dedupe.Result) []string {
	ids := make([]string, 0, len(r.Kept))
	for _, c := range r.Kept {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestCanonicalBeatsTemp(t *testing.T) {
	now := time.Now()
	temp := urlCard(model.NewTempID(), "https://example.com/post", now.Add(-time.Hour))
	canonical := urlCard("srv-1", "https://example.com/post", now)

	// The temp copy is older, but canonical still wins.
	result := dedupe.Cards([]model.Card{temp, canonical})
	assert.Equal(t, []string{"srv-1"}, keptIDs(result))
	assert.Equal(t, []string{temp.ID}, result.Removed)
}

func TestOldestWinsSameKind(t *testing.T) {
	now := time.Now()
	older := urlCard("srv-1", "https://example.com/post", now.Add(-time.Hour))
	newer := urlCard("srv-2", "https://example.com/post", now)

	result := dedupe.Cards([]model.Card{newer, older})
	assert.Equal(t, []string{"srv-1"}, keptIDs(result))
	assert.Equal(t, []string{"srv-2"}, result.Removed)
}

func TestURLNormalization(t *testing.T) {
	now := time.Now()
	a := urlCard("srv-1", "https://Example.com/post/", now.Add(-time.Minute))
	b := urlCard("srv-2", "http://example.com/post", now)

	result := dedupe.Cards([]model.Card{a, b})
	assert.Equal(t, []string{"srv-1"}, keptIDs(result))
}

func TestDistinctKeysUntouched(t *testing.T) {
	now := time.Now()
	cards := []model.Card{
		urlCard("srv-1", "https://example.com/a", now),
		urlCard("srv-2", "https://example.com/b", now),
		{
			Base:  testutil.NewBase("srv-3", now),
			Type:  model.CardTypeText,
			Title: "Shopping list",
		},
	}

	result := dedupe.Cards(cards)
	assert.Equal(t, []string{"srv-1", "srv-2", "srv-3"}, keptIDs(result))
	assert.Empty(t, result.Removed)
}

func TestTitleKeyCaseInsensitive(t *testing.T) {
	now := time.Now()
	a := model.Card{Base: testutil.NewBase("srv-1", now.Add(-time.Minute)), Type: model.CardTypeText, Title: "Reading List"}
	b := model.Card{Base: testutil.NewBase("srv-2", now), Type: model.CardTypeText, Title: "reading list"}

	result := dedupe.Cards([]model.Card{a, b})
	assert.Equal(t, []string{"srv-1"}, keptIDs(result))
}

func TestExactIDRepeatNotPurged(t *testing.T) {
	now := time.Now()
	card := urlCard("srv-1", "https://example.com/post", now)

	// The same id appearing twice collapses to one copy, and the
	// surviving id must never land on the purge list.
	result := dedupe.Cards([]model.Card{card, card})
	assert.Equal(t, []string{"srv-1"}, keptIDs(result))
	assert.Empty(t, result.Removed)
}

func TestIdempotent(t *testing.T) {
	now := time.Now()
	cards := []model.Card{
		urlCard(model.NewTempID(), "https://example.com/post", now.Add(-time.Hour)),
		urlCard("srv-1", "https://example.com/post", now),
		urlCard("srv-2", "https://example.com/other", now),
	}

	first := dedupe.Cards(cards)
	second := dedupe.Cards(first.Kept)
	assert.Equal(t, keptIDs(first), keptIDs(second))
	assert.Empty(t, second.Removed)
}

func TestRunPurgesLosersAndQueuedOps(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	tempID := model.NewTempID()
	temp := urlCard(tempID, "https://example.com/post", now.Add(-time.Hour))
	canonical := urlCard("srv-1", "https://example.com/post", now)
	require.NoError(t, s.SaveCard(ctx, &temp))
	require.NoError(t, s.SaveCard(ctx, &canonical))

	require.NoError(t, s.Enqueue(ctx, store.QueueOp{
		EntityType: model.TypeCard, EntityID: tempID, Op: store.OpCreate, Payload: []byte(`{}`),
	}))

	kept, err := dedupe.Run(ctx, s, testutil.Workspace)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "srv-1", kept[0].ID)

	_, err = s.GetCardByID(ctx, tempID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	ops, err := s.PendingOps(ctx)
	require.NoError(t, err)
	assert.Empty(t, ops)
}
