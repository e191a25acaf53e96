package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pawkit/pawkit/internal/model"
)

// SaveEvent inserts or replaces a calendar event row.
func (s *SQLiteStore) SaveEvent(ctx context.Context, ev *model.CalendarEvent) error {
	var recurrence *string
	if ev.Recurrence != nil {
		data, err := json.Marshal(ev.Recurrence)
		if err != nil {
			return fmt.Errorf("marshaling recurrence for event %s: %w", ev.ID, err)
		}
		str := string(data)
		recurrence = &str
	}

	excluded, err := json.Marshal(ev.ExcludedDates)
	if err != nil {
		return fmt.Errorf("marshaling excluded dates for event %s: %w", ev.ID, err)
	}

	args := []interface{}{
		ev.ID, ev.WorkspaceID,
		ev.Title, ev.Date, ev.EndDate, ev.StartTime, ev.EndTime,
		recurrence, string(excluded), ev.RecurrenceParentID, boolToInt(ev.IsException),
	}
	args = append(args, baseArgs(ev.Base)...)

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO events (
			id, workspace_id,
			title, date, end_date, start_time, end_time,
			recurrence, excluded_dates, recurrence_parent_id, is_exception,
			created_at, updated_at, deleted, deleted_at,
			synced, last_modified, server_version, local_only
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("saving event %s: %w", ev.ID, err)
	}
	return nil
}

// GetEventByID retrieves a single event by id, deleted or not.
func (s *SQLiteStore) GetEventByID(
	ctx context.Context,
	id string,
) (*model.CalendarEvent, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT * FROM events WHERE id = ?", id)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting event %s: %w", id, err)
	}
	return &ev, nil
}

// GetEvents retrieves all events in a workspace ordered by anchor date.
func (s *SQLiteStore) GetEvents(
	ctx context.Context,
	workspaceID string,
	opts ListOptions,
) ([]model.CalendarEvent, error) {
	query := activeFilter("SELECT * FROM events WHERE workspace_id = ?", opts)
	query += " ORDER BY date, start_time"

	rows, err := s.db.QueryxContext(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []model.CalendarEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// scanEvent scans one event row in schema column order.
func scanEvent(r rowScanner) (model.CalendarEvent, error) {
	var (
		ev          model.CalendarEvent
		recurrence  *string
		excluded    string
		isException int
		base        baseRow
	)

	targets := []interface{}{
		&ev.ID, &ev.WorkspaceID,
		&ev.Title, &ev.Date, &ev.EndDate, &ev.StartTime, &ev.EndTime,
		&recurrence, &excluded, &ev.RecurrenceParentID, &isException,
	}
	targets = append(targets, base.targets()...)

	if err := r.Scan(targets...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.CalendarEvent{}, err
		}
		return model.CalendarEvent{}, fmt.Errorf("scanning event row: %w", err)
	}

	ev.IsException = isException != 0
	base.apply(&ev.Base)

	if recurrence != nil && *recurrence != "" {
		var rule model.Recurrence
		if err := json.Unmarshal([]byte(*recurrence), &rule); err != nil {
			return model.CalendarEvent{}, fmt.Errorf("unmarshaling recurrence: %w", err)
		}
		ev.Recurrence = &rule
	}
	if excluded != "" {
		if err := json.Unmarshal([]byte(excluded), &ev.ExcludedDates); err != nil {
			return model.CalendarEvent{}, fmt.Errorf("unmarshaling excluded dates: %w", err)
		}
	}

	return ev, nil
}
