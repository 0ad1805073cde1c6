package api

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies a workflow change history event.
type EventType string

const (
	EventWorkflowCreated EventType = "workflow.created"
	EventWorkflowSaved   EventType = "workflow.saved"
	EventWorkflowDeleted EventType = "workflow.deleted"

	EventStateDeleted EventType = "state.deleted"

	EventDependencyRemoved EventType = "dependency.removed"
)

// ChangeEvent is a minimal append-only history record for audit/debugging.
type ChangeEvent struct {
	ID         string
	WorkflowID string
	At         time.Time
	Type       EventType

	// Small, human-oriented details (e.g. a state id or dependency names).
	Detail string
}

// NewChangeEvent stamps a new event with a random id and the current time.
func NewChangeEvent(workflowID string, typ EventType, detail string) ChangeEvent {
	return ChangeEvent{
		ID:         uuid.NewString(),
		WorkflowID: workflowID,
		At:         time.Now(),
		Type:       typ,
		Detail:     detail,
	}
}
