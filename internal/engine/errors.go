package engine

import "errors"

var (
	// ErrInvalidType is returned when registering a nil type or one with an invalid id.
	ErrInvalidType = errors.New("invalid workflow type")

	// ErrTypeRegistered is returned when a type id is registered twice.
	ErrTypeRegistered = errors.New("workflow type already registered")

	// ErrUnknownType is returned when a workflow refers to an unregistered type.
	ErrUnknownType = errors.New("unknown workflow type")

	// ErrWorkflowExists is returned by Create when the id is taken.
	ErrWorkflowExists = errors.New("workflow already exists")

	// ErrWorkflowNotFound is returned when no workflow is stored under an id.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrWorkflowInUse is returned when deleting a workflow that content still uses.
	ErrWorkflowInUse = errors.New("workflow is in use")

	// ErrStateHasData is returned when deleting a state that content still occupies.
	ErrStateHasData = errors.New("state has content")

	// ErrDependencyInUse is returned when removed dependencies are still
	// referenced after every workflow type had a chance to drop them.
	ErrDependencyInUse = errors.New("dependency still in use")

	// ErrAccessDenied is returned when an account may not use a transition.
	ErrAccessDenied = errors.New("access denied")
)
