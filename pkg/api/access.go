package api

import "context"

// AccessResult is the outcome of an access check. Neutral means the checker
// has no opinion; callers usually treat it as a denial.
type AccessResult int

const (
	AccessNeutral AccessResult = iota
	AccessAllowed
	AccessForbidden
)

func (r AccessResult) String() string {
	switch r {
	case AccessAllowed:
		return "allowed"
	case AccessForbidden:
		return "forbidden"
	default:
		return "neutral"
	}
}

func (r AccessResult) IsAllowed() bool   { return r == AccessAllowed }
func (r AccessResult) IsForbidden() bool { return r == AccessForbidden }
func (r AccessResult) IsNeutral() bool   { return r == AccessNeutral }

// OrIf combines two results where either may grant access. Forbidden always wins.
func (r AccessResult) OrIf(other AccessResult) AccessResult {
	switch {
	case r == AccessForbidden || other == AccessForbidden:
		return AccessForbidden
	case r == AccessAllowed || other == AccessAllowed:
		return AccessAllowed
	default:
		return AccessNeutral
	}
}

// AndIf combines two results where both must grant access.
func (r AccessResult) AndIf(other AccessResult) AccessResult {
	switch {
	case r == AccessForbidden || other == AccessForbidden:
		return AccessForbidden
	case r == AccessAllowed && other == AccessAllowed:
		return AccessAllowed
	default:
		return AccessNeutral
	}
}

// Account is the user an access check is performed for.
type Account interface {
	ID() string
	HasPermission(permission string) bool
}

// AccessChecker decides whether an account may perform an operation on a
// workflow. Operations are strings such as "view", "update", "delete" or
// "use <transition id>".
type AccessChecker interface {
	CheckAccess(ctx context.Context, wf *Workflow, operation string, account Account) AccessResult
}

// AccessCheckerFunc adapts a function to AccessChecker.
type AccessCheckerFunc func(ctx context.Context, wf *Workflow, operation string, account Account) AccessResult

func (f AccessCheckerFunc) CheckAccess(ctx context.Context, wf *Workflow, operation string, account Account) AccessResult {
	return f(ctx, wf, operation, account)
}

// UsageProvider answers whether content currently references a workflow or
// one of its states.
type UsageProvider interface {
	WorkflowInUse(ctx context.Context, wf *Workflow) (bool, error)
	StateInUse(ctx context.Context, wf *Workflow, stateID string) (bool, error)
}
