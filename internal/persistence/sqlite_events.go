package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/petrijr/workflows/pkg/api"
)

// SQLiteEventStore stores workflow change events in SQLite.
type SQLiteEventStore struct {
	db *sql.DB
}

// Ensure SQLiteEventStore implements the interfaces.
var _ EventStore = (*SQLiteEventStore)(nil)

func NewSQLiteEventStore(db *sql.DB) (*SQLiteEventStore, error) {
	s := &SQLiteEventStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteEventStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS workflow_events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			workflow_id TEXT NOT NULL,
			at INTEGER NOT NULL,
			type TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_workflow_events_workflow_id ON workflow_events(workflow_id, seq);
	`)
	return err
}

func (s *SQLiteEventStore) AppendEvent(ctx context.Context, ev api.ChangeEvent) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workflow_events (id, workflow_id, at, type, detail)
		VALUES (?, ?, ?, ?, ?)`,
		ev.ID,
		ev.WorkflowID,
		at.UnixNano(),
		string(ev.Type),
		ev.Detail,
	)
	return err
}

func (s *SQLiteEventStore) ListEvents(ctx context.Context, workflowID string) ([]api.ChangeEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, workflow_id, at, type, detail
		FROM workflow_events
		WHERE workflow_id = ?
		ORDER BY seq ASC`, workflowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]api.ChangeEvent, error) {
	var out []api.ChangeEvent
	for rows.Next() {
		var (
			id     string
			wfID   string
			atN    int64
			typ    string
			detail string
		)
		if err := rows.Scan(&id, &wfID, &atN, &typ, &detail); err != nil {
			return nil, err
		}
		out = append(out, api.ChangeEvent{
			ID:         id,
			WorkflowID: wfID,
			At:         time.Unix(0, atN),
			Type:       api.EventType(typ),
			Detail:     detail,
		})
	}
	return out, rows.Err()
}
