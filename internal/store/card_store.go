package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pawkit/pawkit/internal/model"
)

// SaveCard inserts or replaces a card row.
func (s *SQLiteStore) SaveCard(ctx context.Context, card *model.Card) error {
	tags, err := json.Marshal(card.Tags)
	if err != nil {
		return fmt.Errorf("marshaling tags for card %s: %w", card.ID, err)
	}
	scheduled, err := json.Marshal(card.ScheduledDates)
	if err != nil {
		return fmt.Errorf("marshaling scheduled dates for card %s: %w", card.ID, err)
	}

	args := []interface{}{
		card.ID, card.WorkspaceID,
		card.Type, card.Title, card.URL, card.Content,
		card.Domain, card.Description, card.ImageURL,
		string(tags), boolToInt(card.Pinned), string(scheduled),
	}
	args = append(args, baseArgs(card.Base)...)

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO cards (
			id, workspace_id,
			type, title, url, content,
			domain, description, image_url,
			tags, pinned, scheduled_dates,
			created_at, updated_at, deleted, deleted_at,
			synced, last_modified, server_version, local_only
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("saving card %s: %w", card.ID, err)
	}
	return nil
}

// GetCardByID retrieves a single card by id, deleted or not.
func (s *SQLiteStore) GetCardByID(ctx context.Context, id string) (*model.Card, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT * FROM cards WHERE id = ?", id)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("card %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting card %s: %w", id, err)
	}
	return &card, nil
}

// GetCards retrieves all cards in a workspace, newest first.
func (s *SQLiteStore) GetCards(
	ctx context.Context,
	workspaceID string,
	opts ListOptions,
) ([]model.Card, error) {
	query := activeFilter("SELECT * FROM cards WHERE workspace_id = ?", opts)
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryxContext(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("querying cards: %w", err)
	}
	defer rows.Close()

	var cards []model.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

// rowScanner is the subset of sqlx.Row/sqlx.Rows used by the scan helpers.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

var _ rowScanner = (*sqlx.Row)(nil)
var _ rowScanner = (*sqlx.Rows)(nil)

// scanCard scans one card row in schema column order.
func scanCard(r rowScanner) (model.Card, error) {
	var (
		card      model.Card
		pinned    int
		tags      string
		scheduled string
		base      baseRow
	)

	targets := []interface{}{
		&card.ID, &card.WorkspaceID,
		&card.Type, &card.Title, &card.URL, &card.Content,
		&card.Domain, &card.Description, &card.ImageURL,
		&tags, &pinned, &scheduled,
	}
	targets = append(targets, base.targets()...)

	if err := r.Scan(targets...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Card{}, err
		}
		return model.Card{}, fmt.Errorf("scanning card row: %w", err)
	}

	card.Pinned = pinned != 0
	base.apply(&card.Base)

	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &card.Tags); err != nil {
			return model.Card{}, fmt.Errorf("unmarshaling card tags: %w", err)
		}
	}
	if scheduled != "" {
		if err := json.Unmarshal([]byte(scheduled), &card.ScheduledDates); err != nil {
			return model.Card{}, fmt.Errorf("unmarshaling scheduled dates: %w", err)
		}
	}

	return card, nil
}
