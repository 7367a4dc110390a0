package memory

import (
	"context"
	"sync"

	id "fellinglicence/pkg/domain"
	audit "fellinglicence/pkg/platform/audit"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.ApplicationID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.ApplicationID][]audit.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.ApplicationID][]audit.Event)
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ApplicationID] = append(s.events[event.ApplicationID], event)
	return nil
}

func (s *InMemoryStore) ListByApplication(_ context.Context, applicationID id.ApplicationID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[applicationID]...), nil
}

// ListByAction returns every event with the given action across applications.
func (s *InMemoryStore) ListByAction(_ context.Context, action audit.AuditEvent) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []audit.Event
	for _, events := range s.events {
		for _, e := range events {
			if e.Action == string(action) {
				matched = append(matched, e)
			}
		}
	}
	return matched, nil
}
