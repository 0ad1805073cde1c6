package persistence

import (
	"context"

	"github.com/petrijr/workflows/pkg/api"
)

// EventStore is an append-only history store for workflow change events.
type EventStore interface {
	AppendEvent(ctx context.Context, ev api.ChangeEvent) error
	ListEvents(ctx context.Context, workflowID string) ([]api.ChangeEvent, error)
}

// NoopEventStore discards all events.
type NoopEventStore struct{}

func (NoopEventStore) AppendEvent(ctx context.Context, ev api.ChangeEvent) error { return nil }
func (NoopEventStore) ListEvents(ctx context.Context, workflowID string) ([]api.ChangeEvent, error) {
	return nil, nil
}
