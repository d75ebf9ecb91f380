package memory

import (
	"context"
	"sync"

	"github.com/adrian-inthe/events7/internal/domain"
)

// SeedEvents is the initial content of a fresh store.
func SeedEvents() []domain.Event {
	return []domain.Event{
		{ID: 1, Name: "Event One", Description: "First event", Category: domain.CategoryApp, Priority: 5},
		{ID: 2, Name: "Event Two", Description: "Second event", Category: domain.CategoryAds, Priority: 8},
	}
}

// EventRepository keeps events in insertion order. Every lookup-then-mutate
// sequence runs under a single lock.
type EventRepository struct {
	mu     sync.RWMutex
	events []domain.Event
	nextID int
}

func NewEventRepository(seed ...domain.Event) *EventRepository {
	r := &EventRepository{nextID: 1}
	for _, e := range seed {
		r.events = append(r.events, e)
		if e.ID >= r.nextID {
			r.nextID = e.ID + 1
		}
	}
	return r
}

func (r *EventRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]domain.Event, len(r.events))
	copy(events, r.events)
	return events, nil
}

func (r *EventRepository) GetEvent(ctx context.Context, id int) (domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.Event{}, domain.ErrEventNotFound
	}
	return r.events[i], nil
}

func (r *EventRepository) InsertEvent(ctx context.Context, fields domain.EventFields) (domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event := domain.Event{ID: r.nextID}.WithFields(fields)
	r.nextID++
	r.events = append(r.events, event)
	return event, nil
}

func (r *EventRepository) ReplaceEvent(ctx context.Context, event domain.Event, expected domain.Category) (domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, err := r.indexOfExpected(event.ID, expected)
	if err != nil {
		return domain.Event{}, err
	}
	r.events[i] = event
	return event, nil
}

func (r *EventRepository) RemoveEvent(ctx context.Context, id int, expected domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, err := r.indexOfExpected(id, expected)
	if err != nil {
		return err
	}
	r.events = append(r.events[:i], r.events[i+1:]...)
	return nil
}

func (r *EventRepository) indexOfExpected(id int, expected domain.Category) (int, error) {
	i := r.indexOf(id)
	if i < 0 {
		return -1, domain.ErrEventNotFound
	}
	if r.events[i].Category != expected {
		return -1, domain.ErrEventChanged
	}
	return i, nil
}

func (r *EventRepository) indexOf(id int) int {
	for i, e := range r.events {
		if e.ID == id {
			return i
		}
	}
	return -1
}
