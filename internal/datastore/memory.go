package datastore

import (
	"sort"
	gosync "sync"

	"github.com/pawkit/pawkit/internal/model"
)

// projection is the per-session in-memory view of the workspace. It is
// what queries read, so the UI reflects a mutation before any network
// round trip. Projections are not shared across sessions.
type projection struct {
	mu          gosync.RWMutex
	cards       map[string]model.Card
	collections map[string]model.Collection
	events      map[string]model.CalendarEvent
	todos       map[string]model.Todo
}

func newProjection() *projection {
	return &projection{
		cards:       make(map[string]model.Card),
		collections: make(map[string]model.Collection),
		events:      make(map[string]model.CalendarEvent),
		todos:       make(map[string]model.Todo),
	}
}

func (p *projection) setCards(cards []model.Card) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cards = make(map[string]model.Card, len(cards))
	for _, c := range cards {
		p.cards[c.ID] = c
	}
}

func (p *projection) setCollections(cols []model.Collection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.collections = make(map[string]model.Collection, len(cols))
	for _, c := range cols {
		p.collections[c.ID] = c
	}
}

func (p *projection) setEvents(events []model.CalendarEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = make(map[string]model.CalendarEvent, len(events))
	for _, e := range events {
		p.events[e.ID] = e
	}
}

func (p *projection) setTodos(todos []model.Todo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.todos = make(map[string]model.Todo, len(todos))
	for _, t := range todos {
		p.todos[t.ID] = t
	}
}

func (p *projection) putCard(c model.Card) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cards[c.ID] = c
}

func (p *projection) putCollection(c model.Collection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.collections[c.ID] = c
}

func (p *projection) putEvent(e model.CalendarEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[e.ID] = e
}

func (p *projection) putTodo(t model.Todo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.todos[t.ID] = t
}

func (p *projection) remove(typ model.EntityType, id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch typ {
	case model.TypeCard:
		delete(p.cards, id)
	case model.TypeCollection:
		delete(p.collections, id)
	case model.TypeEvent:
		delete(p.events, id)
	case model.TypeTodo:
		delete(p.todos, id)
	}
}

// cardList returns active cards newest-first.
func (p *projection) cardList() []model.Card {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]model.Card, 0, len(p.cards))
	for _, c := range p.cards {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// collectionList returns active collections by name.
func (p *projection) collectionList() []model.Collection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]model.Collection, 0, len(p.collections))
	for _, c := range p.collections {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// eventList returns active events by date.
func (p *projection) eventList() []model.CalendarEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]model.CalendarEvent, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date == out[j].Date {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].Date < out[j].Date
	})
	return out
}

// todoList returns active todos in list order.
func (p *projection) todoList() []model.Todo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]model.Todo, 0, len(p.todos))
	for _, t := range p.todos {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

func (p *projection) card(id string) (model.Card, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.cards[id]
	return c, ok
}

func (p *projection) collection(id string) (model.Collection, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.collections[id]
	return c, ok
}
