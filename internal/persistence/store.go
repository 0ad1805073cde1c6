package persistence

import (
	"context"
	"errors"

	"github.com/petrijr/workflows/pkg/api"
)

var (
	// ErrDefinitionNotFound is returned when a workflow definition is not found.
	ErrDefinitionNotFound = errors.New("workflow definition not found")
)

// DefinitionStore handles storage of workflow definitions.
//
// Stores are safe for concurrent use; they provide the mutual exclusion
// the in-memory graph itself does not.
type DefinitionStore interface {
	// SaveDefinition inserts or replaces the definition with def.ID.
	SaveDefinition(ctx context.Context, def api.Definition) error
	GetDefinition(ctx context.Context, id string) (api.Definition, error)
	// ListDefinitions returns every stored definition ordered by id.
	ListDefinitions(ctx context.Context) ([]api.Definition, error)
	// DeleteDefinition removes a definition. Missing ids yield ErrDefinitionNotFound.
	DeleteDefinition(ctx context.Context, id string) error
}
