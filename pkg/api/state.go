package api

import (
	"cmp"
	"maps"
	"slices"
)

// State is a named stage a workflow entity can occupy.
//
// States are values: the Graph hands out copies, and changes only happen
// through the Graph's setters.
type State struct {
	ID     string         `json:"id" yaml:"id" bson:"id"`
	Label  string         `json:"label" yaml:"label" bson:"label"`
	Weight int            `json:"weight" yaml:"weight" bson:"weight"`
	Data   map[string]any `json:"data,omitempty" yaml:"data,omitempty" bson:"data,omitempty"`
}

// Transition is a directed edge from one or more source states to a single
// target state.
type Transition struct {
	ID     string         `json:"id" yaml:"id" bson:"id"`
	Label  string         `json:"label" yaml:"label" bson:"label"`
	Weight int            `json:"weight" yaml:"weight" bson:"weight"`
	From   []string       `json:"from" yaml:"from" bson:"from"`
	To     string         `json:"to" yaml:"to" bson:"to"`
	Data   map[string]any `json:"data,omitempty" yaml:"data,omitempty" bson:"data,omitempty"`
}

// HasFrom reports whether stateID is one of the transition's source states.
func (t Transition) HasFrom(stateID string) bool {
	return slices.Contains(t.From, stateID)
}

func (s State) clone() State {
	s.Data = cloneData(s.Data)
	return s
}

func (t Transition) clone() Transition {
	t.From = slices.Clone(t.From)
	t.Data = cloneData(t.Data)
	return t
}

// cloneData copies the top level of an extension bag. Empty bags become
// nil so definitions round-trip through every store unchanged.
func cloneData(d map[string]any) map[string]any {
	if len(d) == 0 {
		return nil
	}
	return maps.Clone(d)
}

func byWeightThenID[T any](weight func(T) int, id func(T) string) func(a, b T) int {
	return func(a, b T) int {
		if c := cmp.Compare(weight(a), weight(b)); c != 0 {
			return c
		}
		return cmp.Compare(id(a), id(b))
	}
}

var (
	compareStates      = byWeightThenID(func(s State) int { return s.Weight }, func(s State) string { return s.ID })
	compareTransitions = byWeightThenID(func(t Transition) int { return t.Weight }, func(t Transition) string { return t.ID })
)
