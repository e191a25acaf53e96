package store

import (
	"context"
	"fmt"

	"github.com/pawkit/pawkit/internal/model"
)

// SaveEntity dispatches to the typed save for whichever variant e holds.
func (s *SQLiteStore) SaveEntity(ctx context.Context, e model.Entity) error {
	switch v := e.(type) {
	case *model.Card:
		return s.SaveCard(ctx, v)
	case *model.Collection:
		return s.SaveCollection(ctx, v)
	case *model.CalendarEvent:
		return s.SaveEvent(ctx, v)
	case *model.Todo:
		return s.SaveTodo(ctx, v)
	default:
		return fmt.Errorf("unknown entity variant %T", e)
	}
}

// GetEntityByID dispatches to the typed getter for typ.
func (s *SQLiteStore) GetEntityByID(
	ctx context.Context,
	typ model.EntityType,
	id string,
) (model.Entity, error) {
	switch typ {
	case model.TypeCard:
		return s.GetCardByID(ctx, id)
	case model.TypeCollection:
		return s.GetCollectionByID(ctx, id)
	case model.TypeEvent:
		return s.GetEventByID(ctx, id)
	case model.TypeTodo:
		return s.GetTodoByID(ctx, id)
	default:
		return nil, fmt.Errorf("unknown entity type %q", typ)
	}
}
