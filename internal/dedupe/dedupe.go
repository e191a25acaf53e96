// Package dedupe collapses accidental duplicate cards: the same logical
// item existing under both a temporary and a server-confirmed id after a
// race, or same-key repeats introduced by a merge.
package dedupe

import (
	"context"
	"fmt"

	"github.com/pawkit/pawkit/internal/model"
	"github.com/pawkit/pawkit/internal/store"
)

// Result lists the surviving cards (input order preserved) and the ids
// scheduled for removal from the store.
type Result struct {
	Kept    []model.Card
	Removed []string
}

// Cards runs the deduplication pass over an in-memory card list.
//
// Cards sharing a content key are collapsed to one survivor: a canonical
// id beats a temporary one; between two ids of the same kind the older
// record by CreatedAt wins, so the user is never surprised by losing
// content they already saw. A second pass drops exact-id repeats, which
// guards against store corruption. The pass is idempotent.
func Cards(cards []model.Card) Result {
	type group struct {
		winner int // index into cards
	}
	groups := make(map[string]*group, len(cards))

	loser := make(map[int]bool)

	for i := range cards {
		key := cards[i].ContentKey()
		g, ok := groups[key]
		if !ok {
			groups[key] = &group{winner: i}
			continue
		}

		keep, drop := pick(&cards[g.winner], g.winner, &cards[i], i)
		loser[drop] = true
		g.winner = keep
	}

	seenID := make(map[string]bool, len(cards))
	var kept []model.Card
	var removed []string
	removedID := make(map[string]bool)

	for i := range cards {
		if loser[i] {
			if !removedID[cards[i].ID] {
				removedID[cards[i].ID] = true
				removed = append(removed, cards[i].ID)
			}
			continue
		}
		// Exact-id repeats: should not occur after the key pass, but a
		// corrupt store can produce them.
		if seenID[cards[i].ID] {
			continue
		}
		seenID[cards[i].ID] = true
		kept = append(kept, cards[i])
	}

	// A surviving copy under the same id means the id itself is not a
	// duplicate; never purge an id that is still kept.
	var final []string
	for _, id := range removed {
		if !seenID[id] {
			final = append(final, id)
		}
	}

	return Result{Kept: kept, Removed: final}
}

// pick returns (winner index, loser index) for two cards sharing a key.
func pick(a *model.Card, ai int, b *model.Card, bi int) (int, int) {
	aTemp := model.IsTempID(a.ID)
	bTemp := model.IsTempID(b.ID)

	// Exactly one temporary: the temp record is the duplicate.
	if aTemp != bTemp {
		if aTemp {
			return bi, ai
		}
		return ai, bi
	}

	// Same kind: oldest wins.
	if b.CreatedAt.Before(a.CreatedAt) {
		return bi, ai
	}
	return ai, bi
}

// Run executes a deduplication pass against the store: loads the
// workspace's active cards, collapses duplicates, and purges the losing
// rows in the same pass. The returned list never includes deleted or
// shadowed ids.
func Run(
	ctx context.Context,
	st store.Store,
	workspaceID string,
) ([]model.Card, error) {
	cards, err := st.GetCards(ctx, workspaceID, store.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("loading cards for dedupe: %w", err)
	}

	result := Cards(cards)

	if len(result.Removed) > 0 {
		if err := st.Purge(ctx, model.TypeCard, result.Removed); err != nil {
			return nil, fmt.Errorf("purging duplicate cards: %w", err)
		}
		for _, id := range result.Removed {
			if err := st.DeleteOpsFor(ctx, model.TypeCard, id); err != nil {
				return nil, fmt.Errorf("dropping queued ops for duplicate %s: %w", id, err)
			}
		}
	}

	return result.Kept, nil
}
