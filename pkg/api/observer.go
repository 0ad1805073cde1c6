package api

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Observer receives callbacks from the workflow manager for logging and metrics.
//
// Implementations should be fast and non-blocking; heavy work should be done
// asynchronously so as not to delay edits.
type Observer interface {
	// OnWorkflowSaved is called after a workflow definition was persisted.
	OnWorkflowSaved(ctx context.Context, wf *Workflow)

	// OnWorkflowDeleted is called after a workflow definition was removed.
	OnWorkflowDeleted(ctx context.Context, workflowID string)

	// OnDependencyRemoval is called once per workflow inspected during a
	// dependency removal, with whether the workflow type changed it.
	OnDependencyRemoval(ctx context.Context, wf *Workflow, deps Dependencies, changed bool)

	// OnAccessChecked is called for every access decision made through the manager.
	OnAccessChecked(ctx context.Context, wf *Workflow, operation string, account Account, result AccessResult)

	// OnChangeRejected is called when the manager refuses an edit.
	OnChangeRejected(ctx context.Context, workflowID string, op string, err error)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnWorkflowSaved(ctx context.Context, wf *Workflow)        {}
func (NoopObserver) OnWorkflowDeleted(ctx context.Context, workflowID string) {}
func (NoopObserver) OnDependencyRemoval(ctx context.Context, wf *Workflow, deps Dependencies, changed bool) {
}
func (NoopObserver) OnAccessChecked(ctx context.Context, wf *Workflow, operation string, account Account, result AccessResult) {
}
func (NoopObserver) OnChangeRejected(ctx context.Context, workflowID string, op string, err error) {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnWorkflowSaved(ctx context.Context, wf *Workflow) {
	for _, o := range c.observers {
		o.OnWorkflowSaved(ctx, wf)
	}
}

func (c *CompositeObserver) OnWorkflowDeleted(ctx context.Context, workflowID string) {
	for _, o := range c.observers {
		o.OnWorkflowDeleted(ctx, workflowID)
	}
}

func (c *CompositeObserver) OnDependencyRemoval(ctx context.Context, wf *Workflow, deps Dependencies, changed bool) {
	for _, o := range c.observers {
		o.OnDependencyRemoval(ctx, wf, deps, changed)
	}
}

func (c *CompositeObserver) OnAccessChecked(ctx context.Context, wf *Workflow, operation string, account Account, result AccessResult) {
	for _, o := range c.observers {
		o.OnAccessChecked(ctx, wf, operation, account, result)
	}
}

func (c *CompositeObserver) OnChangeRejected(ctx context.Context, workflowID string, op string, err error) {
	for _, o := range c.observers {
		o.OnChangeRejected(ctx, workflowID, op, err)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs workflow lifecycle events
// using the provided slog.Logger. If logger is nil, slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnWorkflowSaved(ctx context.Context, wf *Workflow) {
	o.Logger.InfoContext(ctx, "workflow_saved",
		slog.String("workflow", wf.ID()),
		slog.String("type", wf.Type().ID()),
		slog.Int("states", len(wf.StateIDs())),
		slog.Int("transitions", len(wf.TransitionIDs())),
	)
}

func (o *LoggingObserver) OnWorkflowDeleted(ctx context.Context, workflowID string) {
	o.Logger.InfoContext(ctx, "workflow_deleted",
		slog.String("workflow", workflowID),
	)
}

func (o *LoggingObserver) OnDependencyRemoval(ctx context.Context, wf *Workflow, deps Dependencies, changed bool) {
	o.Logger.InfoContext(ctx, "dependency_removal",
		slog.String("workflow", wf.ID()),
		slog.Any("dependencies", deps),
		slog.Bool("changed", changed),
	)
}

func (o *LoggingObserver) OnAccessChecked(ctx context.Context, wf *Workflow, operation string, account Account, result AccessResult) {
	accountID := ""
	if account != nil {
		accountID = account.ID()
	}
	o.Logger.DebugContext(ctx, "access_checked",
		slog.String("workflow", wf.ID()),
		slog.String("operation", operation),
		slog.String("account", accountID),
		slog.String("result", result.String()),
	)
}

func (o *LoggingObserver) OnChangeRejected(ctx context.Context, workflowID string, op string, err error) {
	o.Logger.WarnContext(ctx, "change_rejected",
		slog.String("workflow", workflowID),
		slog.String("op", op),
		slog.Any("error", err),
	)
}

// BasicMetrics collects simple counters. It implements Observer, and can be
// combined with LoggingObserver via NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	saves            atomic.Int64
	deletes          atomic.Int64
	dependencyChecks atomic.Int64
	dependencyEdits  atomic.Int64
	accessAllowed    atomic.Int64
	accessDenied     atomic.Int64
	rejected         atomic.Int64
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	WorkflowsSaved   int64
	WorkflowsDeleted int64
	DependencyChecks int64
	DependencyEdits  int64
	AccessAllowed    int64
	AccessDenied     int64
	ChangesRejected  int64
}

func (m *BasicMetrics) OnWorkflowSaved(ctx context.Context, wf *Workflow) {
	m.saves.Add(1)
}

func (m *BasicMetrics) OnWorkflowDeleted(ctx context.Context, workflowID string) {
	m.deletes.Add(1)
}

func (m *BasicMetrics) OnDependencyRemoval(ctx context.Context, wf *Workflow, deps Dependencies, changed bool) {
	m.dependencyChecks.Add(1)
	if changed {
		m.dependencyEdits.Add(1)
	}
}

func (m *BasicMetrics) OnAccessChecked(ctx context.Context, wf *Workflow, operation string, account Account, result AccessResult) {
	// Neutral counts as denied: nothing granted access.
	if result.IsAllowed() {
		m.accessAllowed.Add(1)
	} else {
		m.accessDenied.Add(1)
	}
}

func (m *BasicMetrics) OnChangeRejected(ctx context.Context, workflowID string, op string, err error) {
	m.rejected.Add(1)
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	return BasicMetricsSnapshot{
		WorkflowsSaved:   m.saves.Load(),
		WorkflowsDeleted: m.deletes.Load(),
		DependencyChecks: m.dependencyChecks.Load(),
		DependencyEdits:  m.dependencyEdits.Load(),
		AccessAllowed:    m.accessAllowed.Load(),
		AccessDenied:     m.accessDenied.Load(),
		ChangesRejected:  m.rejected.Load(),
	}
}
