package engine

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/petrijr/workflows/pkg/api"
)

type typeRegistry struct {
	mu   sync.RWMutex
	byID map[string]api.WorkflowType
}

func newTypeRegistry() *typeRegistry {
	return &typeRegistry{
		byID: make(map[string]api.WorkflowType),
	}
}

func (r *typeRegistry) Register(typ api.WorkflowType) error {
	if typ == nil {
		return fmt.Errorf("%w: nil workflow type", ErrInvalidType)
	}
	if !api.ValidID(typ.ID()) {
		return fmt.Errorf("%w: type id %q", ErrInvalidType, typ.ID())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[typ.ID()]; exists {
		return fmt.Errorf("%w: %q", ErrTypeRegistered, typ.ID())
	}
	r.byID[typ.ID()] = typ
	return nil
}

func (r *typeRegistry) Get(id string) (api.WorkflowType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typ, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, id)
	}
	return typ, nil
}

// All returns the registered types ordered by id.
func (r *typeRegistry) All() []api.WorkflowType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]api.WorkflowType, 0, len(r.byID))
	for _, typ := range r.byID {
		out = append(out, typ)
	}
	slices.SortFunc(out, func(a, b api.WorkflowType) int {
		return cmp.Compare(a.ID(), b.ID())
	})
	return out
}
