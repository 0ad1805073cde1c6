package api

import (
	"errors"
	"fmt"
)

// Workflow is a configured instance of a WorkflowType: an id, a label and
// the graph of states and transitions the type governs.
//
// The graph is owned by the workflow and reachable only through its
// methods. Use NewWorkflow or FromDefinition; the zero value is not usable.
type Workflow struct {
	*workflowGraph

	id    string
	label string
	typ   WorkflowType
}

// workflowGraph lets Workflow embed Graph, keeping its methods promoted,
// without exporting the field.
type workflowGraph = Graph

// Definition is the serialized shape of a workflow. States and transitions
// are listed in weight, then id order; the order itself carries no meaning
// beyond what the weights encode.
type Definition struct {
	ID          string       `json:"id" yaml:"id" bson:"_id"`
	Label       string       `json:"label" yaml:"label" bson:"label"`
	Type        string       `json:"type" yaml:"type" bson:"type"`
	States      []State      `json:"states" yaml:"states" bson:"states"`
	Transitions []Transition `json:"transitions" yaml:"transitions" bson:"transitions"`
}

// NewWorkflow creates a workflow of the given type, seeded with the type's
// required states in declaration order.
func NewWorkflow(id, label string, typ WorkflowType) (*Workflow, error) {
	wf, err := newWorkflow(id, label, typ)
	if err != nil {
		return nil, err
	}
	if err := wf.seedRequired(); err != nil {
		return nil, err
	}
	return wf, nil
}

func newWorkflow(id, label string, typ WorkflowType) (*Workflow, error) {
	if typ == nil {
		return nil, errors.New("workflow type is required")
	}
	if !ValidID(id) {
		return nil, graphErrorf(ErrInvalidID, "workflow id %q", id)
	}

	g := NewGraph()
	if p, ok := typ.(TransitionPolicy); ok {
		g.policy = p
	}
	return &Workflow{workflowGraph: g, id: id, label: label, typ: typ}, nil
}

// seedRequired adds missing required states and marks all of them protected.
func (w *Workflow) seedRequired() error {
	for _, rs := range w.typ.RequiredStates() {
		if !w.HasState(rs.ID) {
			if err := w.AddState(rs.ID, rs.Label); err != nil {
				return fmt.Errorf("seeding required state: %w", err)
			}
		}
		w.protect(rs.ID)
	}
	return nil
}

// FromDefinition rebuilds a workflow from its serialized form, checking
// every graph invariant and keeping weights as stored. Required states the
// definition lacks are seeded after the stored ones.
func FromDefinition(def Definition, typ WorkflowType) (*Workflow, error) {
	wf, err := newWorkflow(def.ID, def.Label, typ)
	if err != nil {
		return nil, err
	}
	if def.Type != "" && def.Type != typ.ID() {
		return nil, fmt.Errorf("workflow %q has type %q, not %q", def.ID, def.Type, typ.ID())
	}

	for _, s := range def.States {
		if err := wf.putState(s); err != nil {
			return nil, fmt.Errorf("workflow %q: %w", def.ID, err)
		}
	}
	for _, t := range def.Transitions {
		if err := wf.putTransition(t); err != nil {
			return nil, fmt.Errorf("workflow %q: %w", def.ID, err)
		}
	}
	if err := wf.seedRequired(); err != nil {
		return nil, err
	}
	return wf, nil
}

// ID returns the workflow id.
func (w *Workflow) ID() string {
	return w.id
}

// Label returns the human-readable workflow name.
func (w *Workflow) Label() string {
	return w.label
}

// Type returns the workflow type governing the graph.
func (w *Workflow) Type() WorkflowType {
	return w.typ
}

// SetLabel renames the workflow.
func (w *Workflow) SetLabel(label string) {
	w.label = label
}

// InitialState asks the workflow type for the entry state.
func (w *Workflow) InitialState() (State, error) {
	return w.typ.InitialState(w)
}

// Definition snapshots the workflow in canonical order.
func (w *Workflow) Definition() Definition {
	states, _ := w.States()
	transitions, _ := w.Transitions()
	return Definition{
		ID:          w.id,
		Label:       w.label,
		Type:        w.typ.ID(),
		States:      states,
		Transitions: transitions,
	}
}
