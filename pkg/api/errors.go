package api

import (
	"errors"
	"fmt"
)

// Error kinds returned by Graph and Workflow operations. Every failure is a
// *GraphError that unwraps to exactly one of these, so callers can tell them
// apart with errors.Is.
var (
	// ErrInvalidID is returned when an id is empty or contains characters
	// other than letters, digits and underscore.
	ErrInvalidID = errors.New("invalid id")

	// ErrDuplicateID is returned when an id is already used in its namespace.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrNotFound is returned when a referenced state or transition does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyFromSet is returned when a transition would have no source states.
	ErrEmptyFromSet = errors.New("transition needs at least one from state")

	// ErrStateInUse is returned when a state is still referenced by a transition.
	ErrStateInUse = errors.New("state in use by transition")

	// ErrRequiredState is returned when deleting a state the workflow type requires.
	ErrRequiredState = errors.New("state is required by workflow type")

	// ErrSelfTransition is returned when the workflow type forbids a
	// transition whose target is also one of its sources.
	ErrSelfTransition = errors.New("self transition not allowed")
)

// GraphError is a validation failure carrying one of the error kinds above.
type GraphError struct {
	Kind error
	Msg  string
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *GraphError) Unwrap() error { return e.Kind }

func graphErrorf(kind error, format string, args ...any) error {
	return &GraphError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func stateNotFound(id string) error {
	return graphErrorf(ErrNotFound, "state %q", id)
}

func transitionNotFound(id string) error {
	return graphErrorf(ErrNotFound, "transition %q", id)
}
