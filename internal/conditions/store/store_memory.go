package store

import (
	"context"
	"slices"
	"sync"

	"fellinglicence/internal/conditions/models"
	"fellinglicence/internal/conditions/service"
	id "fellinglicence/pkg/domain"
)

// InMemoryStore keeps condition records per application. Pair it with
// service.ShardedTx: writes made through Stage become visible to readers in a
// single step.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.ApplicationID][]models.ConditionRecord
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.ApplicationID][]models.ConditionRecord)}
}

func (s *InMemoryStore) ClearConditionsForApplication(_ context.Context, applicationID id.ApplicationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, applicationID)
	return nil
}

func (s *InMemoryStore) SaveConditionsForApplication(_ context.Context, applicationID id.ApplicationID, records []models.ConditionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.records[applicationID] = append(s.records[applicationID], cloneRecord(r))
	}
	return nil
}

func (s *InMemoryStore) GetConditionsForApplication(_ context.Context, applicationID id.ApplicationID) ([]models.ConditionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.records[applicationID]
	out := make([]models.ConditionRecord, 0, len(stored))
	for _, r := range stored {
		out = append(out, cloneRecord(r))
	}
	return out, nil
}

// Stage starts a buffered unit of work over the store.
func (s *InMemoryStore) Stage() service.StagedStore {
	return &stagedWrites{
		base:    s,
		cleared: make(map[id.ApplicationID]bool),
		pending: make(map[id.ApplicationID][]models.ConditionRecord),
	}
}

// stagedWrites is not safe for concurrent use; ShardedTx hands it to one fn.
type stagedWrites struct {
	base    *InMemoryStore
	cleared map[id.ApplicationID]bool
	pending map[id.ApplicationID][]models.ConditionRecord
}

func (w *stagedWrites) ClearConditionsForApplication(_ context.Context, applicationID id.ApplicationID) error {
	w.cleared[applicationID] = true
	delete(w.pending, applicationID)
	return nil
}

func (w *stagedWrites) SaveConditionsForApplication(_ context.Context, applicationID id.ApplicationID, records []models.ConditionRecord) error {
	for _, r := range records {
		w.pending[applicationID] = append(w.pending[applicationID], cloneRecord(r))
	}
	return nil
}

func (w *stagedWrites) GetConditionsForApplication(ctx context.Context, applicationID id.ApplicationID) ([]models.ConditionRecord, error) {
	out := []models.ConditionRecord{}
	if !w.cleared[applicationID] {
		committed, err := w.base.GetConditionsForApplication(ctx, applicationID)
		if err != nil {
			return nil, err
		}
		out = committed
	}
	for _, r := range w.pending[applicationID] {
		out = append(out, cloneRecord(r))
	}
	return out, nil
}

// Commit publishes every clear and save under one lock.
func (w *stagedWrites) Commit() {
	w.base.mu.Lock()
	defer w.base.mu.Unlock()
	for applicationID := range w.cleared {
		delete(w.base.records, applicationID)
	}
	for applicationID, records := range w.pending {
		w.base.records[applicationID] = append(w.base.records[applicationID], records...)
	}
}

// cloneRecord copies the slices so callers cannot mutate stored state.
func cloneRecord(r models.ConditionRecord) models.ConditionRecord {
	r.AppliesToCompartmentIDs = slices.Clone(r.AppliesToCompartmentIDs)
	r.ConditionsText = slices.Clone(r.ConditionsText)
	r.Parameters = slices.Clone(r.Parameters)
	return r
}
