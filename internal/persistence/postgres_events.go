package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/petrijr/workflows/pkg/api"
)

// PostgresEventStore stores workflow change events in PostgreSQL.
type PostgresEventStore struct {
	db *sql.DB
}

var _ EventStore = (*PostgresEventStore)(nil)

func NewPostgresEventStore(db *sql.DB) (*PostgresEventStore, error) {
	s := &PostgresEventStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresEventStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS workflow_events (
			seq BIGSERIAL PRIMARY KEY,
			id TEXT NOT NULL,
			workflow_id TEXT NOT NULL,
			at BIGINT NOT NULL,
			type TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_workflow_events_workflow_id ON workflow_events(workflow_id, seq);
	`)
	return err
}

func (s *PostgresEventStore) AppendEvent(ctx context.Context, ev api.ChangeEvent) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workflow_events (id, workflow_id, at, type, detail)
		VALUES ($1, $2, $3, $4, $5)`,
		ev.ID,
		ev.WorkflowID,
		at.UnixNano(),
		string(ev.Type),
		ev.Detail,
	)
	return err
}

func (s *PostgresEventStore) ListEvents(ctx context.Context, workflowID string) ([]api.ChangeEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, workflow_id, at, type, detail
		FROM workflow_events
		WHERE workflow_id = $1
		ORDER BY seq ASC`, workflowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}
