package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/petrijr/workflows/internal/persistence"
	"github.com/petrijr/workflows/pkg/api"
)

// Manager runs edit sessions against stored workflows: it resolves their
// types, persists changes, consults the type before destructive edits and
// records a change history.
//
// Workflows handed out by the manager are private copies. Concurrent edits
// of the same workflow are last-writer-wins at Save.
//
// Writes through one Manager are serialized: Create checks and stores under
// the same lock, and RemoveDependencies cannot interleave with Save, Delete
// or DeleteState. Managers sharing a store do not coordinate.
type Manager struct {
	types       *typeRegistry
	definitions persistence.DefinitionStore
	events      persistence.EventStore
	observer    api.Observer

	// mu serializes writes to the definition store.
	mu sync.Mutex
}

// Config describes how to construct a Manager.
type Config struct {
	Persistence persistence.Persistence
	Observer    api.Observer
}

// NewManagerWithConfig creates a Manager from cfg. A nil event store discards
// history; a nil observer is replaced by api.NoopObserver.
func NewManagerWithConfig(cfg Config) *Manager {
	obs := cfg.Observer
	if obs == nil {
		obs = api.NoopObserver{}
	}
	events := cfg.Persistence.Events
	if events == nil {
		events = persistence.NoopEventStore{}
	}
	return &Manager{
		types:       newTypeRegistry(),
		definitions: cfg.Persistence.Definitions,
		events:      events,
		observer:    obs,
	}
}

// NewManager creates a Manager over p without an observer.
func NewManager(p persistence.Persistence) *Manager {
	return NewManagerWithConfig(Config{Persistence: p})
}

func NewInMemoryManager() *Manager {
	mem := persistence.NewInMemoryStore()
	return NewManager(persistence.Persistence{
		Definitions: mem,
		Events:      mem,
	})
}

// NewSQLiteManager stores definitions and history in db, which must use the
// modernc.org/sqlite driver.
func NewSQLiteManager(db *sql.DB) (*Manager, error) {
	defs, err := persistence.NewSQLiteDefinitionStore(db)
	if err != nil {
		return nil, err
	}
	events, err := persistence.NewSQLiteEventStore(db)
	if err != nil {
		return nil, err
	}
	return NewManager(persistence.Persistence{
		Definitions: defs,
		Events:      events,
	}), nil
}

// NewPostgresManager stores definitions and history in db, which must use a
// PostgreSQL driver such as github.com/jackc/pgx/v5/stdlib.
func NewPostgresManager(db *sql.DB) (*Manager, error) {
	defs, err := persistence.NewPostgresDefinitionStore(db)
	if err != nil {
		return nil, err
	}
	events, err := persistence.NewPostgresEventStore(db)
	if err != nil {
		return nil, err
	}
	return NewManager(persistence.Persistence{
		Definitions: defs,
		Events:      events,
	}), nil
}

// NewRedisManager stores definitions in Redis under the "workflows:" prefix.
// History is kept in memory.
func NewRedisManager(client *redis.Client) *Manager {
	return NewManager(persistence.Persistence{
		Definitions: persistence.NewRedisDefinitionStore(client, "workflows:"),
		Events:      persistence.NewInMemoryStore(),
	})
}

// NewMongoManager stores definitions in the "workflows" database of client.
// History is kept in memory.
func NewMongoManager(client *mongo.Client) *Manager {
	return NewManager(persistence.Persistence{
		Definitions: persistence.NewMongoDefinitionStore(client, "", ""),
		Events:      persistence.NewInMemoryStore(),
	})
}

// WithObserver replaces the manager's observer and returns m.
func (m *Manager) WithObserver(obs api.Observer) *Manager {
	if obs == nil {
		obs = api.NoopObserver{}
	}
	m.observer = obs
	return m
}

func (m *Manager) RegisterType(typ api.WorkflowType) error {
	return m.types.Register(typ)
}

func (m *Manager) Type(id string) (api.WorkflowType, error) {
	return m.types.Get(id)
}

// Types lists registered workflow types ordered by id.
func (m *Manager) Types() []api.WorkflowType {
	return m.types.All()
}

// Create builds a new workflow of the given type, seeds its required states
// and stores it.
func (m *Manager) Create(ctx context.Context, id, label, typeID string) (*api.Workflow, error) {
	typ, err := m.types.Get(typeID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, err = m.definitions.GetDefinition(ctx, id)
	switch {
	case err == nil:
		return nil, m.reject(ctx, id, "create", fmt.Errorf("%w: %q", ErrWorkflowExists, id))
	case !errors.Is(err, persistence.ErrDefinitionNotFound):
		return nil, err
	}

	wf, err := api.NewWorkflow(id, label, typ)
	if err != nil {
		return nil, err
	}
	if err := m.persist(ctx, wf, api.EventWorkflowCreated, ""); err != nil {
		return nil, err
	}
	return wf, nil
}

// Load reconstructs a stored workflow with its registered type.
func (m *Manager) Load(ctx context.Context, id string) (*api.Workflow, error) {
	def, err := m.definitions.GetDefinition(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrDefinitionNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrWorkflowNotFound, id)
		}
		return nil, err
	}
	return m.rebuild(def)
}

func (m *Manager) rebuild(def api.Definition) (*api.Workflow, error) {
	typ, err := m.types.Get(def.Type)
	if err != nil {
		return nil, fmt.Errorf("workflow %q: %w", def.ID, err)
	}
	return api.FromDefinition(def, typ)
}

// Save stores the current definition of wf, replacing any earlier version.
func (m *Manager) Save(ctx context.Context, wf *api.Workflow) error {
	if _, err := m.types.Get(wf.Type().ID()); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persist(ctx, wf, api.EventWorkflowSaved, "")
}

func (m *Manager) persist(ctx context.Context, wf *api.Workflow, typ api.EventType, detail string) error {
	if err := m.definitions.SaveDefinition(ctx, wf.Definition()); err != nil {
		return err
	}
	m.record(ctx, wf.ID(), typ, detail)
	m.observer.OnWorkflowSaved(ctx, wf)
	return nil
}

// Delete removes a stored workflow unless its type reports content using it.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	wf, err := m.Load(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := wf.Type().WorkflowHasData(ctx, wf)
	if err != nil {
		return err
	}
	if inUse {
		return m.reject(ctx, id, "delete", fmt.Errorf("%w: %q", ErrWorkflowInUse, id))
	}

	if err := m.definitions.DeleteDefinition(ctx, id); err != nil {
		return err
	}
	m.record(ctx, id, api.EventWorkflowDeleted, "")
	m.observer.OnWorkflowDeleted(ctx, id)
	return nil
}

// List loads every stored workflow ordered by id.
func (m *Manager) List(ctx context.Context) ([]*api.Workflow, error) {
	defs, err := m.definitions.ListDefinitions(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*api.Workflow, 0, len(defs))
	for _, def := range defs {
		wf, err := m.rebuild(def)
		if err != nil {
			return nil, err
		}
		out = append(out, wf)
	}
	return out, nil
}

// DeleteState removes a state from wf and stores the result. The workflow
// type is asked first whether content still occupies the state; graph
// errors such as api.ErrStateInUse or api.ErrRequiredState pass through.
func (m *Manager) DeleteState(ctx context.Context, wf *api.Workflow, stateID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	hasData, err := wf.Type().StateHasData(ctx, wf, stateID)
	if err != nil {
		return err
	}
	if hasData {
		return m.reject(ctx, wf.ID(), "delete state", fmt.Errorf("%w: %q", ErrStateHasData, stateID))
	}

	if err := wf.DeleteState(stateID); err != nil {
		return m.reject(ctx, wf.ID(), "delete state", err)
	}
	return m.persist(ctx, wf, api.EventStateDeleted, stateID)
}

// RemoveDependencies lets every stored workflow's type react to deps going
// away and stores the workflows that changed, returning their ids.
//
// Workflows whose type implements api.DependencyCalculator and still
// reports one of deps afterwards make the call fail with ErrDependencyInUse;
// the changes made to other workflows are kept.
func (m *Manager) RemoveDependencies(ctx context.Context, deps api.Dependencies) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	workflows, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	detail := formatDependencies(deps)
	var changed, blocked []string
	for _, wf := range workflows {
		typ := wf.Type()

		edited := typ.OnDependencyRemoval(wf, deps)
		m.observer.OnDependencyRemoval(ctx, wf, deps, edited)
		if edited {
			if err := m.persist(ctx, wf, api.EventDependencyRemoved, detail); err != nil {
				return changed, err
			}
			changed = append(changed, wf.ID())
		}

		if calc, ok := typ.(api.DependencyCalculator); ok {
			if !calc.CalculateDependencies(wf).Intersect(deps).IsEmpty() {
				blocked = append(blocked, wf.ID())
			}
		}
	}

	if len(blocked) > 0 {
		err := fmt.Errorf("%w: %s referenced by %s", ErrDependencyInUse, detail, strings.Join(blocked, ", "))
		for _, id := range blocked {
			m.observer.OnChangeRejected(ctx, id, "remove dependencies", err)
		}
		return changed, err
	}
	return changed, nil
}

// CheckAccess asks the workflow's type whether account may perform operation.
func (m *Manager) CheckAccess(ctx context.Context, wf *api.Workflow, operation string, account api.Account) api.AccessResult {
	result := wf.Type().CheckAccess(ctx, wf, operation, account)
	m.observer.OnAccessChecked(ctx, wf, operation, account, result)
	return result
}

// AuthorizeTransition returns the transition leading from one state to
// another if account is explicitly allowed to use it. Neutral results deny.
func (m *Manager) AuthorizeTransition(ctx context.Context, wf *api.Workflow, fromID, toID string, account api.Account) (api.Transition, error) {
	t, err := wf.TransitionFromStateToState(fromID, toID)
	if err != nil {
		return api.Transition{}, err
	}

	op := "use " + t.ID
	if !m.CheckAccess(ctx, wf, op, account).IsAllowed() {
		return api.Transition{}, m.reject(ctx, wf.ID(), op, fmt.Errorf("%w: %s", ErrAccessDenied, op))
	}
	return t, nil
}

// History returns the change events recorded for a workflow, oldest first.
func (m *Manager) History(ctx context.Context, id string) ([]api.ChangeEvent, error) {
	return m.events.ListEvents(ctx, id)
}

func (m *Manager) record(ctx context.Context, workflowID string, typ api.EventType, detail string) {
	// History is best-effort: the definition is already stored.
	_ = m.events.AppendEvent(ctx, api.NewChangeEvent(workflowID, typ, detail))
}

func (m *Manager) reject(ctx context.Context, workflowID, op string, err error) error {
	m.observer.OnChangeRejected(ctx, workflowID, op, err)
	return err
}

// formatDependencies renders deps as "kind:name" pairs ordered by kind, then name.
func formatDependencies(deps api.Dependencies) string {
	var parts []string
	for _, kind := range deps.Kinds() {
		names := slices.Sorted(slices.Values(deps[kind]))
		for _, n := range names {
			parts = append(parts, string(kind)+":"+n)
		}
	}
	return strings.Join(parts, ",")
}
