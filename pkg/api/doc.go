// Package api contains the building blocks of the workflows module: the
// state and transition graph, the workflow type contract and the
// collaborator interfaces a type delegates to.
//
// Most users interact with the higher-level workflows package, which
// re-exports selected types and helpers from this package.
//
// # Graph
//
// Graph holds States and Transitions keyed by id. Listings are ordered by
// weight, then id; new items are appended after the current maximum weight.
// Every mutating method validates its arguments completely before changing
// anything and reports failures as a *GraphError whose Kind is one of the
// Err* sentinels.
//
// Graph is not safe for concurrent mutation.
//
// # Workflow types
//
// A Workflow pairs a Graph with a WorkflowType. The type names the states
// every workflow must have (seeded by NewWorkflow and protected from
// deletion), picks the initial state and answers access and usage questions.
// BaseType implements the contract with defaults and is meant to be embedded.
//
// Types may also implement TransitionPolicy, to veto transition shapes, and
// DependencyCalculator, to report the site configuration a workflow refers to.
//
// # Definitions
//
// Definition is the serializable snapshot of a Workflow. FromDefinition
// rebuilds a workflow from one, keeping weights and validating every
// reference.
//
// # Observability
//
// Observer receives callbacks from the manager. LoggingObserver writes them
// through log/slog and BasicMetrics counts them.
package api
