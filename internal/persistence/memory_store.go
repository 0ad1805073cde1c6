package persistence

import (
	"context"
	"slices"
	"sync"

	"github.com/petrijr/workflows/pkg/api"
)

// InMemoryStore is a simple, goroutine-safe implementation of
// DefinitionStore and EventStore backed by maps.
//
// Definitions are kept encoded so callers never share extension data with
// the store, and so the in-memory backend round-trips exactly like the
// durable ones.
type InMemoryStore struct {
	mu          sync.RWMutex
	definitions map[string][]byte
	events      map[string][]api.ChangeEvent
}

// NewInMemoryStore creates a new InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		definitions: make(map[string][]byte),
		events:      make(map[string][]api.ChangeEvent),
	}
}

// Ensure InMemoryStore implements the interfaces.
var _ DefinitionStore = (*InMemoryStore)(nil)

var _ EventStore = (*InMemoryStore)(nil)

func (s *InMemoryStore) SaveDefinition(ctx context.Context, def api.Definition) error {
	data, err := EncodeDefinition(def)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.definitions[def.ID] = data
	return nil
}

func (s *InMemoryStore) GetDefinition(ctx context.Context, id string) (api.Definition, error) {
	s.mu.RLock()
	data, ok := s.definitions[id]
	s.mu.RUnlock()

	if !ok {
		return api.Definition{}, ErrDefinitionNotFound
	}
	return DecodeDefinition(data)
}

func (s *InMemoryStore) ListDefinitions(ctx context.Context) ([]api.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.definitions))
	for id := range s.definitions {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	result := make([]api.Definition, 0, len(ids))
	for _, id := range ids {
		def, err := DecodeDefinition(s.definitions[id])
		if err != nil {
			return nil, err
		}
		result = append(result, def)
	}
	return result, nil
}

func (s *InMemoryStore) DeleteDefinition(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.definitions[id]; !ok {
		return ErrDefinitionNotFound
	}
	delete(s.definitions, id)
	return nil
}

func (s *InMemoryStore) AppendEvent(ctx context.Context, ev api.ChangeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events[ev.WorkflowID] = append(s.events[ev.WorkflowID], ev)
	return nil
}

func (s *InMemoryStore) ListEvents(ctx context.Context, workflowID string) ([]api.ChangeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.events[workflowID]), nil
}
