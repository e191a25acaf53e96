package datastore

import (
	"context"
	"fmt"
	"time"

	"github.com/pawkit/pawkit/internal/crossref"
	"github.com/pawkit/pawkit/internal/dedupe"
	"github.com/pawkit/pawkit/internal/model"
	"github.com/pawkit/pawkit/internal/store"
)

// CreateCard creates a card under a temporary id, persists it locally,
// and attempts the remote create. The returned card carries the
// canonical id when the immediate sync confirmed it, the temporary id
// otherwise.
func (ds *DataStore) CreateCard(ctx context.Context, card model.Card) (*model.Card, error) {
	var created *model.Card

	err := ds.mutate(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		card.ID = model.NewTempID()
		card.WorkspaceID = ds.workspaceID
		card.CreatedAt = now
		card.UpdatedAt = now
		card.LastModified = now
		card.Synced = false
		card.LocalOnly = true

		if err := card.Validate(); err != nil {
			return err
		}

		if err := ds.store.SaveCard(ctx, &card); err != nil {
			return err
		}
		ds.mem.putCard(card)

		if err := ds.enqueueAndSync(ctx, &card, store.OpCreate); err != nil {
			return err
		}

		final, err := ds.resolveCard(ctx, card.ID)
		if err != nil {
			return err
		}
		created = final
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateCard applies caller changes to an existing card. The card's ID
// must reference a stored row; server-managed sync fields on the input
// are ignored.
func (ds *DataStore) UpdateCard(ctx context.Context, card model.Card) (*model.Card, error) {
	var updated *model.Card

	err := ds.mutate(ctx, func(ctx context.Context) error {
		existing, err := ds.store.GetCardByID(ctx, card.ID)
		if err != nil {
			return err
		}

		// Carry identity and sync metadata forward; the caller only
		// owns the user-editable fields.
		card.Base = existing.Base
		card.Touch(time.Now().UTC())

		if err := card.Validate(); err != nil {
			return err
		}

		if err := ds.store.SaveCard(ctx, &card); err != nil {
			return err
		}
		ds.mem.putCard(card)

		op := store.OpUpdate
		if card.LocalOnly && !card.Synced {
			// Never confirmed remotely: fold the edit into the pending
			// create instead of patching an id the server has not seen.
			if err := ds.store.DeleteOpsFor(ctx, model.TypeCard, card.ID); err != nil {
				return err
			}
			op = store.OpCreate
		}
		if err := ds.enqueueAndSync(ctx, &card, op); err != nil {
			return err
		}

		final, err := ds.resolveCard(ctx, card.ID)
		if err != nil {
			return err
		}
		updated = final
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCard soft-deletes a card and queues the remote delete.
func (ds *DataStore) DeleteCard(ctx context.Context, id string) error {
	return ds.mutate(ctx, func(ctx context.Context) error {
		card, err := ds.store.GetCardByID(ctx, id)
		if err != nil {
			return err
		}
		return ds.softDelete(ctx, card)
	})
}

// resolveCard follows any temp→canonical rewrite and returns the
// current stored card.
func (ds *DataStore) resolveCard(ctx context.Context, id string) (*model.Card, error) {
	resolved, err := ds.store.ResolveID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ds.store.GetCardByID(ctx, resolved)
}

// Cards returns the workspace's active cards, newest first.
func (ds *DataStore) Cards() []model.Card {
	return ds.mem.cardList()
}

// CardByID returns one active card from the projection.
func (ds *DataStore) CardByID(id string) (model.Card, bool) {
	return ds.mem.card(id)
}

// CardsInCollection returns active cards carrying the collection's
// membership tag.
func (ds *DataStore) CardsInCollection(slug string) []model.Card {
	var out []model.Card
	for _, c := range ds.mem.cardList() {
		if c.InCollection(slug) {
			out = append(out, c)
		}
	}
	return out
}

// Backlinks returns active cards whose content wiki-links to the given
// entity id.
func (ds *DataStore) Backlinks(id string) []model.Card {
	var out []model.Card
	for _, c := range ds.mem.cardList() {
		for _, target := range crossref.ExtractWikiLinks(c.Content) {
			if target == id {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// DedupeCards collapses duplicate cards in the workspace, purges the
// losers from the local store, and refreshes the projection.
func (ds *DataStore) DedupeCards(ctx context.Context) ([]model.Card, error) {
	var kept []model.Card

	err := ds.mutate(ctx, func(ctx context.Context) error {
		var err error
		kept, err = dedupe.Run(ctx, ds.store, ds.workspaceID)
		if err != nil {
			return fmt.Errorf("dedupe pass: %w", err)
		}
		ds.mem.setCards(kept)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return kept, nil
}
