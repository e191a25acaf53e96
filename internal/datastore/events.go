package datastore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pawkit/pawkit/internal/model"
	"github.com/pawkit/pawkit/internal/recur"
	"github.com/pawkit/pawkit/internal/store"
)

// CreateEvent creates a calendar event under a temporary id.
func (ds *DataStore) CreateEvent(ctx context.Context, ev model.CalendarEvent) (*model.CalendarEvent, error) {
	var created *model.CalendarEvent

	err := ds.mutate(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		ev.ID = model.NewTempID()
		ev.WorkspaceID = ds.workspaceID
		ev.CreatedAt = now
		ev.UpdatedAt = now
		ev.LastModified = now
		ev.Synced = false
		ev.LocalOnly = true

		if err := ev.Validate(); err != nil {
			return err
		}

		if err := ds.store.SaveEvent(ctx, &ev); err != nil {
			return err
		}
		ds.mem.putEvent(ev)

		if err := ds.enqueueAndSync(ctx, &ev, store.OpCreate); err != nil {
			return err
		}

		final, err := ds.resolveEvent(ctx, ev.ID)
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

// UpdateEvent applies caller changes to an existing event.
func (ds *DataStore) UpdateEvent(ctx context.Context, ev model.CalendarEvent) (*model.CalendarEvent, error) {
	var updated *model.CalendarEvent

	err := ds.mutate(ctx, func(ctx context.Context) error {
		existing, err := ds.store.GetEventByID(ctx, ev.ID)
		if err != nil {
			return err
		}

		ev.Base = existing.Base
		ev.Touch(time.Now().UTC())

		if err := ev.Validate(); err != nil {
			return err
		}

		if err := ds.store.SaveEvent(ctx, &ev); err != nil {
			return err
		}
		ds.mem.putEvent(ev)

		op := store.OpUpdate
		if ev.LocalOnly && !ev.Synced {
			if err := ds.store.DeleteOpsFor(ctx, model.TypeEvent, ev.ID); err != nil {
				return err
			}
			op = store.OpCreate
		}
		if err := ds.enqueueAndSync(ctx, &ev, op); err != nil {
			return err
		}

		final, err := ds.resolveEvent(ctx, ev.ID)
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

// DeleteEvent soft-deletes an event and queues the remote delete.
func (ds *DataStore) DeleteEvent(ctx context.Context, id string) error {
	return ds.mutate(ctx, func(ctx context.Context) error {
		ev, err := ds.store.GetEventByID(ctx, id)
		if err != nil {
			return err
		}
		return ds.softDelete(ctx, ev)
	})
}

// ExcludeOccurrence removes a single date from a recurring event's
// expansion. Only exclusions and exceptions may deviate per-occurrence;
// the parent rule itself is never mutated by expansion.
func (ds *DataStore) ExcludeOccurrence(ctx context.Context, id, date string) (*model.CalendarEvent, error) {
	ev, err := ds.store.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev.Recurrence == nil {
		return nil, fmt.Errorf("%w: event %s is not recurring", model.ErrValidation, id)
	}
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: bad occurrence date %q", model.ErrValidation, date)
	}
	if ev.IsExcluded(date) {
		return ev, nil
	}

	ev.ExcludedDates = append(ev.ExcludedDates, date)
	return ds.UpdateEvent(ctx, *ev)
}

// CreateException detaches one occurrence of a recurring event into a
// standalone exception instance: the occurrence date is excluded from
// the parent and a new event linked via RecurrenceParentID is created
// with the caller's overrides.
func (ds *DataStore) CreateException(
	ctx context.Context,
	parentID, date string,
	override model.CalendarEvent,
) (*model.CalendarEvent, error) {
	parent, err := ds.ExcludeOccurrence(ctx, parentID, date)
	if err != nil {
		return nil, err
	}

	override.Date = date
	override.Recurrence = nil
	override.RecurrenceParentID = &parent.ID
	override.IsException = true
	if override.Title == "" {
		override.Title = parent.Title
	}
	if override.StartTime == "" {
		override.StartTime = parent.StartTime
	}
	if override.EndTime == "" {
		override.EndTime = parent.EndTime
	}

	return ds.CreateEvent(ctx, override)
}

// resolveEvent follows any temp→canonical rewrite and returns the
// current stored event.
func (ds *DataStore) resolveEvent(ctx context.Context, id string) (*model.CalendarEvent, error) {
	resolved, err := ds.store.ResolveID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ds.store.GetEventByID(ctx, resolved)
}

// Events returns the workspace's active events by date.
func (ds *DataStore) Events() []model.CalendarEvent {
	return ds.mem.eventList()
}

// Agenda expands every active event into concrete occurrences within
// [rangeStart, rangeEnd], sorted by date then start time. Expansion is a
// pure read; it never touches the store.
func (ds *DataStore) Agenda(rangeStart, rangeEnd string) []recur.Instance {
	events := ds.mem.eventList()

	var out []recur.Instance
	for i := range events {
		out = append(out, recur.Expand(&events[i], rangeStart, rangeEnd)...)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].InstanceDate == out[j].InstanceDate {
			if out[i].Event.StartTime == out[j].Event.StartTime {
				return out[i].Event.ID < out[j].Event.ID
			}
			return out[i].Event.StartTime < out[j].Event.StartTime
		}
		return out[i].InstanceDate < out[j].InstanceDate
	})
	return out
}
