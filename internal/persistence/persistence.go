package persistence

// Persistence bundles the store interfaces so the manager
// can depend on a single abstraction.
type Persistence struct {
	Definitions DefinitionStore
	Events      EventStore
}
