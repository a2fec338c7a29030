package events

import (
	"context"
	"fmt"
	"sync"
)

// EventStore persists table events in the order they were emitted
type EventStore interface {
	Append(ctx context.Context, event Event) error
	LoadEvents(ctx context.Context, tableID string) ([]Event, error)
	LoadRound(ctx context.Context, tableID, roundID string) ([]Event, error)
}

// InMemoryEventStore keeps one append-only log and indexes it by table.
// Events are lost with the process.
type InMemoryEventStore struct {
	mu      sync.RWMutex
	log     []Event
	byTable map[string][]int // positions in log
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{byTable: make(map[string][]int)}
}

func (s *InMemoryEventStore) Append(_ context.Context, event Event) error {
	tableID := GetTableID(event)
	if tableID == "" {
		return fmt.Errorf("event %s has no table id", event.EventName())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byTable[tableID] = append(s.byTable[tableID], len(s.log))
	s.log = append(s.log, event)
	return nil
}

func (s *InMemoryEventStore) LoadEvents(ctx context.Context, tableID string) ([]Event, error) {
	return s.LoadRound(ctx, tableID, "")
}

// LoadRound returns one round of a table. An empty roundID returns every round.
func (s *InMemoryEventStore) LoadRound(_ context.Context, tableID, roundID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Event{}
	for _, i := range s.byTable[tableID] {
		if e := s.log[i]; roundID == "" || GetRoundID(e) == roundID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Len returns how many events the store holds across all tables
func (s *InMemoryEventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.log)
}
