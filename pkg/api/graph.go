package api

import (
	"fmt"
	"maps"
	"slices"
)

// Direction selects which end of a transition TransitionsForState matches on.
type Direction string

const (
	DirectionFrom Direction = "from"
	DirectionTo   Direction = "to"
)

// TransitionPolicy lets a workflow type veto transition shapes the base
// graph would otherwise accept.
type TransitionPolicy interface {
	ValidateTransition(id string, from []string, to string) error
}

// Graph holds the states and transitions of one workflow and enforces their
// structural invariants:
//
//   - state ids and transition ids are unique within their own namespace
//   - every state referenced by a transition exists
//   - every transition has at least one from state
//   - required states cannot be deleted
//
// A Graph is not safe for concurrent use. It is built for one edit session
// and callers serialize access to it.
type Graph struct {
	states      map[string]State
	transitions map[string]Transition
	required    map[string]struct{}
	policy      TransitionPolicy
}

// NewGraph returns an empty graph with no required states and no policy.
func NewGraph() *Graph {
	return &Graph{
		states:      make(map[string]State),
		transitions: make(map[string]Transition),
		required:    make(map[string]struct{}),
	}
}

// ValidID reports whether id is non-empty and made of letters, digits and
// underscores only.
func ValidID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}

// --- States ---

// AddState adds a state that sorts after every existing state.
func (g *Graph) AddState(id, label string) error {
	if !ValidID(id) {
		return graphErrorf(ErrInvalidID, "state id %q", id)
	}
	if _, ok := g.states[id]; ok {
		return graphErrorf(ErrDuplicateID, "state %q", id)
	}

	g.states[id] = State{ID: id, Label: label, Weight: g.nextStateWeight()}
	return nil
}

func (g *Graph) nextStateWeight() int {
	if len(g.states) == 0 {
		return 0
	}
	w := 0
	first := true
	for _, s := range g.states {
		if first || s.Weight > w {
			w = s.Weight
			first = false
		}
	}
	return w + 1
}

// HasState reports whether the graph has a state with the given id.
func (g *Graph) HasState(id string) bool {
	_, ok := g.states[id]
	return ok
}

// State returns a copy of the state with the given id.
func (g *Graph) State(id string) (State, error) {
	s, ok := g.states[id]
	if !ok {
		return State{}, stateNotFound(id)
	}
	return s.clone(), nil
}

// States returns the requested states in the requested order. With no ids
// it returns every state ordered by weight, then id.
func (g *Graph) States(ids ...string) ([]State, error) {
	if len(ids) == 0 {
		out := make([]State, 0, len(g.states))
		for _, s := range g.states {
			out = append(out, s.clone())
		}
		slices.SortFunc(out, compareStates)
		return out, nil
	}

	out := make([]State, 0, len(ids))
	for _, id := range ids {
		s, ok := g.states[id]
		if !ok {
			return nil, stateNotFound(id)
		}
		out = append(out, s.clone())
	}
	return out, nil
}

// StateIDs returns every state id ordered by weight, then id.
func (g *Graph) StateIDs() []string {
	states, _ := g.States()
	ids := make([]string, len(states))
	for i, s := range states {
		ids[i] = s.ID
	}
	return ids
}

// IsRequired reports whether id is protected from deletion by the workflow type.
func (g *Graph) IsRequired(id string) bool {
	_, ok := g.required[id]
	return ok
}

// SetStateLabel changes the label of an existing state.
func (g *Graph) SetStateLabel(id, label string) error {
	s, ok := g.states[id]
	if !ok {
		return stateNotFound(id)
	}
	s.Label = label
	g.states[id] = s
	return nil
}

// SetStateWeight changes the ordering weight of an existing state.
func (g *Graph) SetStateWeight(id string, weight int) error {
	s, ok := g.states[id]
	if !ok {
		return stateNotFound(id)
	}
	s.Weight = weight
	g.states[id] = s
	return nil
}

// SetStateData replaces the extension data of a state.
func (g *Graph) SetStateData(id string, data map[string]any) error {
	s, ok := g.states[id]
	if !ok {
		return stateNotFound(id)
	}
	s.Data = cloneData(data)
	g.states[id] = s
	return nil
}

// DeleteState removes a state. Transitions are never deleted implicitly:
// a state still referenced by one fails with ErrStateInUse.
func (g *Graph) DeleteState(id string) error {
	if _, ok := g.states[id]; !ok {
		return stateNotFound(id)
	}
	if g.IsRequired(id) {
		return graphErrorf(ErrRequiredState, "state %q", id)
	}
	for _, t := range g.sortedTransitions() {
		if t.To == id || t.HasFrom(id) {
			return graphErrorf(ErrStateInUse, "state %q is used by transition %q", id, t.ID)
		}
	}

	delete(g.states, id)
	return nil
}

// --- Transitions ---

// AddTransition adds a transition that sorts after every existing
// transition. Duplicate ids in from are collapsed, keeping first occurrence.
func (g *Graph) AddTransition(id, label string, from []string, to string) error {
	if !ValidID(id) {
		return graphErrorf(ErrInvalidID, "transition id %q", id)
	}
	if _, ok := g.transitions[id]; ok {
		return graphErrorf(ErrDuplicateID, "transition %q", id)
	}
	from, err := g.checkEndpoints(id, from, to)
	if err != nil {
		return err
	}

	g.transitions[id] = Transition{
		ID:     id,
		Label:  label,
		Weight: g.nextTransitionWeight(),
		From:   from,
		To:     to,
	}
	return nil
}

// checkEndpoints validates the from set and target of a transition and
// returns the de-duplicated from set.
func (g *Graph) checkEndpoints(id string, from []string, to string) ([]string, error) {
	if len(from) == 0 {
		return nil, graphErrorf(ErrEmptyFromSet, "transition %q", id)
	}
	from = dedupe(from)
	for _, f := range from {
		if !g.HasState(f) {
			return nil, stateNotFound(f)
		}
	}
	if !g.HasState(to) {
		return nil, stateNotFound(to)
	}
	if g.policy != nil {
		if err := g.policy.ValidateTransition(id, slices.Clone(from), to); err != nil {
			return nil, err
		}
	}
	return from, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (g *Graph) nextTransitionWeight() int {
	if len(g.transitions) == 0 {
		return 0
	}
	w := 0
	first := true
	for _, t := range g.transitions {
		if first || t.Weight > w {
			w = t.Weight
			first = false
		}
	}
	return w + 1
}

// HasTransition reports whether a transition with the given id exists.
func (g *Graph) HasTransition(id string) bool {
	_, ok := g.transitions[id]
	return ok
}

// Transition returns a copy of the transition with the given id.
func (g *Graph) Transition(id string) (Transition, error) {
	t, ok := g.transitions[id]
	if !ok {
		return Transition{}, transitionNotFound(id)
	}
	return t.clone(), nil
}

// Transitions follows the same contract as States.
func (g *Graph) Transitions(ids ...string) ([]Transition, error) {
	if len(ids) == 0 {
		return g.sortedTransitions(), nil
	}

	out := make([]Transition, 0, len(ids))
	for _, id := range ids {
		t, ok := g.transitions[id]
		if !ok {
			return nil, transitionNotFound(id)
		}
		out = append(out, t.clone())
	}
	return out, nil
}

// TransitionIDs returns every transition id ordered by weight, then id.
func (g *Graph) TransitionIDs() []string {
	ts := g.sortedTransitions()
	ids := make([]string, len(ts))
	for i, t := range ts {
		ids[i] = t.ID
	}
	return ids
}

func (g *Graph) sortedTransitions() []Transition {
	out := make([]Transition, 0, len(g.transitions))
	for _, t := range g.transitions {
		out = append(out, t.clone())
	}
	slices.SortFunc(out, compareTransitions)
	return out
}

// TransitionsForState returns the ids of the transitions leaving stateID
// (DirectionFrom) or entering it (DirectionTo), ordered by weight, then id.
func (g *Graph) TransitionsForState(stateID string, dir Direction) ([]string, error) {
	if !g.HasState(stateID) {
		return nil, stateNotFound(stateID)
	}
	if dir != DirectionFrom && dir != DirectionTo {
		return nil, fmt.Errorf("unknown transition direction %q", dir)
	}

	var ids []string
	for _, t := range g.sortedTransitions() {
		if (dir == DirectionFrom && t.HasFrom(stateID)) || (dir == DirectionTo && t.To == stateID) {
			ids = append(ids, t.ID)
		}
	}
	return ids, nil
}

// TransitionFromStateToState returns the transition leading from one state
// to another. Should a graph contain several, the first by weight, then id
// wins.
func (g *Graph) TransitionFromStateToState(fromID, toID string) (Transition, error) {
	for _, t := range g.sortedTransitions() {
		if t.To == toID && t.HasFrom(fromID) {
			return t, nil
		}
	}
	return Transition{}, graphErrorf(ErrNotFound, "no transition from %q to %q", fromID, toID)
}

// HasTransitionFromStateToState reports whether any transition leads
// from fromID to toID.
func (g *Graph) HasTransitionFromStateToState(fromID, toID string) bool {
	_, err := g.TransitionFromStateToState(fromID, toID)
	return err == nil
}

// SetTransitionLabel changes the label of an existing transition.
func (g *Graph) SetTransitionLabel(id, label string) error {
	t, ok := g.transitions[id]
	if !ok {
		return transitionNotFound(id)
	}
	t.Label = label
	g.transitions[id] = t
	return nil
}

// SetTransitionWeight changes the ordering weight of an existing transition.
func (g *Graph) SetTransitionWeight(id string, weight int) error {
	t, ok := g.transitions[id]
	if !ok {
		return transitionNotFound(id)
	}
	t.Weight = weight
	g.transitions[id] = t
	return nil
}

// SetTransitionFromStates replaces the from set of a transition.
func (g *Graph) SetTransitionFromStates(id string, from []string) error {
	t, ok := g.transitions[id]
	if !ok {
		return transitionNotFound(id)
	}
	from, err := g.checkEndpoints(id, from, t.To)
	if err != nil {
		return err
	}
	t.From = from
	g.transitions[id] = t
	return nil
}

// SetTransitionData replaces the extension data of a transition.
func (g *Graph) SetTransitionData(id string, data map[string]any) error {
	t, ok := g.transitions[id]
	if !ok {
		return transitionNotFound(id)
	}
	t.Data = cloneData(data)
	g.transitions[id] = t
	return nil
}

// DeleteTransition removes a transition. States are left untouched.
func (g *Graph) DeleteTransition(id string) error {
	if _, ok := g.transitions[id]; !ok {
		return transitionNotFound(id)
	}
	delete(g.transitions, id)
	return nil
}

// --- Loading ---

// putState inserts a fully formed state, keeping its weight.
func (g *Graph) putState(s State) error {
	if !ValidID(s.ID) {
		return graphErrorf(ErrInvalidID, "state id %q", s.ID)
	}
	if _, ok := g.states[s.ID]; ok {
		return graphErrorf(ErrDuplicateID, "state %q", s.ID)
	}
	g.states[s.ID] = s.clone()
	return nil
}

// putTransition inserts a fully formed transition, keeping its weight.
// States must already be present.
func (g *Graph) putTransition(t Transition) error {
	if !ValidID(t.ID) {
		return graphErrorf(ErrInvalidID, "transition id %q", t.ID)
	}
	if _, ok := g.transitions[t.ID]; ok {
		return graphErrorf(ErrDuplicateID, "transition %q", t.ID)
	}
	from, err := g.checkEndpoints(t.ID, t.From, t.To)
	if err != nil {
		return err
	}
	t = t.clone()
	t.From = from
	g.transitions[t.ID] = t
	return nil
}

func (g *Graph) protect(id string) {
	g.required[id] = struct{}{}
}

// Clone returns a deep copy of the graph sharing the same policy.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		states:      make(map[string]State, len(g.states)),
		transitions: make(map[string]Transition, len(g.transitions)),
		required:    maps.Clone(g.required),
		policy:      g.policy,
	}
	for id, s := range g.states {
		c.states[id] = s.clone()
	}
	for id, t := range g.transitions {
		c.transitions[id] = t.clone()
	}
	return c
}
