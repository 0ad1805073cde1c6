// Package workflows defines editorial workflows: named states, the
// transitions allowed between them, and the policy a workflow type applies
// to both.
//
// # Graph
//
// A Workflow is a graph of States and Transitions. Every state and every
// transition has an id made of letters, digits and underscores, a label and
// an integer weight. Listings are ordered by weight, then id. A transition
// leads from one or more source states to exactly one target state; the
// graph refuses dangling references and duplicate ids. Every edit is
// validated before it is applied, so a failed call leaves the graph as it
// was.
//
// Failures carry one of the error kinds ErrInvalidID, ErrDuplicateID,
// ErrNotFound, ErrEmptyFromSet, ErrStateInUse and ErrRequiredState:
//
//	if err := wf.DeleteState("review"); errors.Is(err, workflows.ErrStateInUse) {
//	    // delete or re-point the transitions first
//	}
//
// # Workflow types
//
// A WorkflowType decides which states every workflow of the type must have
// and which state content starts in. It also answers who may use a
// transition and whether content still occupies a workflow or state. BaseType supplies defaults and
// delegates to pluggable AccessChecker, UsageProvider and FormBuilder
// collaborators. The editorial package provides a complete type.
//
// # Building
//
// GraphBuilder assembles a workflow in one expression:
//
//	wf, err := workflows.New("articles", "Articles", editorial.New()).
//	    State("review", "Review").
//	    Transition("submit", "Submit", []string{"draft"}, "review").
//	    Transition("publish", "Publish", []string{"review"}, "published").
//	    Build()
//
// Definitions can also be kept in YAML or JSON files; see the loader package
// and Bundle.Import.
//
// # Manager
//
// A Manager stores workflows and runs edits through the workflow type.
// Deleting a workflow or state that content uses is refused. Removing site
// configuration with RemoveDependencies lets each type drop its references
// first. Managers can be backed by:
//
//   - In-memory stores (non-durable, best for tests)
//   - SQLite
//   - Postgres
//   - Redis
//   - MongoDB
//
// Every change is recorded in a history available through Manager.History,
// and reported to an optional Observer such as LoggingObserver or
// BasicMetrics.
//
// The graph itself is not safe for concurrent mutation. Workflows loaded
// from a Manager are private copies; concurrent sessions on the same
// workflow are last-writer-wins.
package workflows
