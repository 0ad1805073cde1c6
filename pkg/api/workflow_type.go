package api

import (
	"context"
	"slices"
)

// RequiredState is a state every workflow of a type must contain.
type RequiredState struct {
	ID    string
	Label string
}

// WorkflowType is the policy behind a workflow: which states it requires,
// where entities start, who may do what, and how it reacts when something
// its extension data refers to goes away.
//
// Implementations usually embed BaseType and override what they need.
type WorkflowType interface {
	ID() string
	Label() string

	// RequiredStates are seeded into new workflows and cannot be deleted.
	RequiredStates() []RequiredState

	// InitialState returns the state new entities enter the workflow in.
	InitialState(wf *Workflow) (State, error)

	CheckAccess(ctx context.Context, wf *Workflow, operation string, account Account) AccessResult

	WorkflowHasData(ctx context.Context, wf *Workflow) (bool, error)
	StateHasData(ctx context.Context, wf *Workflow, stateID string) (bool, error)

	BuildStateForm(fs FormState, wf *Workflow, state *State) (FormSpec, error)
	BuildTransitionForm(fs FormState, wf *Workflow, transition *Transition) (FormSpec, error)

	// OnDependencyRemoval is called before deps are deleted from the
	// surrounding system. It clears the references it can and reports
	// whether the workflow changed. References it leaves in place block
	// the deletion.
	OnDependencyRemoval(wf *Workflow, deps Dependencies) bool
}

// DependencyCalculator is implemented by types whose extension data refers
// to things outside the workflow.
type DependencyCalculator interface {
	CalculateDependencies(wf *Workflow) Dependencies
}

// BaseType implements WorkflowType with the default rules and delegates the
// rest to its collaborators. Nil collaborators give neutral access, no
// usage and empty forms.
type BaseType struct {
	TypeID    string
	TypeLabel string
	Required  []RequiredState

	// ForbidSelfTransitions rejects transitions whose target is also a source.
	ForbidSelfTransitions bool

	Access AccessChecker
	Usage  UsageProvider
	Forms  FormBuilder
}

var (
	_ WorkflowType     = BaseType{}
	_ TransitionPolicy = BaseType{}
)

func (b BaseType) ID() string    { return b.TypeID }
func (b BaseType) Label() string { return b.TypeLabel }

func (b BaseType) RequiredStates() []RequiredState {
	return slices.Clone(b.Required)
}

// InitialState returns the lowest weighted required state, or the lowest
// weighted state when the workflow has no required ones.
func (b BaseType) InitialState(wf *Workflow) (State, error) {
	states, _ := wf.States()
	for _, s := range states {
		if wf.IsRequired(s.ID) {
			return s, nil
		}
	}
	if len(states) > 0 {
		return states[0], nil
	}
	return State{}, graphErrorf(ErrNotFound, "workflow %q has no states", wf.ID())
}

func (b BaseType) CheckAccess(ctx context.Context, wf *Workflow, operation string, account Account) AccessResult {
	if b.Access == nil {
		return AccessNeutral
	}
	return b.Access.CheckAccess(ctx, wf, operation, account)
}

func (b BaseType) WorkflowHasData(ctx context.Context, wf *Workflow) (bool, error) {
	if b.Usage == nil {
		return false, nil
	}
	return b.Usage.WorkflowInUse(ctx, wf)
}

func (b BaseType) StateHasData(ctx context.Context, wf *Workflow, stateID string) (bool, error) {
	if !wf.HasState(stateID) {
		return false, stateNotFound(stateID)
	}
	if b.Usage == nil {
		return false, nil
	}
	return b.Usage.StateInUse(ctx, wf, stateID)
}

func (b BaseType) BuildStateForm(fs FormState, wf *Workflow, state *State) (FormSpec, error) {
	if state != nil && !wf.HasState(state.ID) {
		return FormSpec{}, stateNotFound(state.ID)
	}
	if b.Forms == nil {
		return FormSpec{}, nil
	}
	return b.Forms.BuildStateForm(fs, wf, state)
}

func (b BaseType) BuildTransitionForm(fs FormState, wf *Workflow, transition *Transition) (FormSpec, error) {
	if transition != nil && !wf.HasTransition(transition.ID) {
		return FormSpec{}, transitionNotFound(transition.ID)
	}
	if b.Forms == nil {
		return FormSpec{}, nil
	}
	return b.Forms.BuildTransitionForm(fs, wf, transition)
}

func (b BaseType) OnDependencyRemoval(wf *Workflow, deps Dependencies) bool {
	return false
}

func (b BaseType) ValidateTransition(id string, from []string, to string) error {
	if b.ForbidSelfTransitions && slices.Contains(from, to) {
		return graphErrorf(ErrSelfTransition, "transition %q leads from %q to itself", id, to)
	}
	return nil
}
