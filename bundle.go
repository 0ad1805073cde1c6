package workflows

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/petrijr/workflows/pkg/api"
	"github.com/petrijr/workflows/pkg/loader"
)

// Bundle wires a Manager to a SQLite database and a fixed set of workflow
// types, and seeds it from definition files.
type Bundle struct {
	Manager *Manager
}

// NewSQLiteBundle constructs a Manager that keeps definitions and history in
// db and registers types on it.
//
// Typical usage:
//
//	db, _ := sql.Open("sqlite", "file:workflows.db?_journal=WAL")
//	bundle, err := workflows.NewSQLiteBundle(db, editorial.New())
//	_, err = bundle.Import(ctx, "config/articles.yaml")
func NewSQLiteBundle(db *sql.DB, types ...WorkflowType) (*Bundle, error) {
	m, err := NewSQLiteManager(db)
	if err != nil {
		return nil, err
	}
	for _, typ := range types {
		if err := m.RegisterType(typ); err != nil {
			return nil, err
		}
	}
	return &Bundle{Manager: m}, nil
}

// Import loads YAML or JSON definition files and stores them in order,
// replacing stored workflows with the same id. Every file is parsed and
// validated before the first one is stored, so a malformed file stores
// nothing. Storing is not transactional: if the store fails partway, the
// files before the failing one stay saved.
func (b *Bundle) Import(ctx context.Context, paths ...string) ([]*Workflow, error) {
	out := make([]*Workflow, 0, len(paths))
	for _, path := range paths {
		def, err := loader.LoadFile(path)
		if err != nil {
			return nil, err
		}
		typ, err := b.Manager.Type(def.Type)
		if err != nil {
			return nil, fmt.Errorf("importing %s: %w", path, err)
		}
		wf, err := api.FromDefinition(def, typ)
		if err != nil {
			return nil, fmt.Errorf("importing %s: %w", path, err)
		}
		out = append(out, wf)
	}

	for _, wf := range out {
		if err := b.Manager.Save(ctx, wf); err != nil {
			return nil, fmt.Errorf("storing %s: %w", wf.ID(), err)
		}
	}
	return out, nil
}

// Export writes the stored workflow id to path, in the format implied by
// its extension.
func (b *Bundle) Export(ctx context.Context, id, path string) error {
	wf, err := b.Manager.Load(ctx, id)
	if err != nil {
		return err
	}
	return loader.WriteFile(path, wf.Definition())
}
