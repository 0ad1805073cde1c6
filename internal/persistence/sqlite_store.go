package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/petrijr/workflows/pkg/api"
)

// SQLiteDefinitionStore is a DefinitionStore backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteDefinitionStore struct {
	db *sql.DB
}

// Ensure SQLiteDefinitionStore implements DefinitionStore.
var _ DefinitionStore = (*SQLiteDefinitionStore)(nil)

// NewSQLiteDefinitionStore initializes the required schema in the given
// database and returns a new SQLiteDefinitionStore.
func NewSQLiteDefinitionStore(db *sql.DB) (*SQLiteDefinitionStore, error) {
	s := &SQLiteDefinitionStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteDefinitionStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS workflow_definitions (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			type TEXT NOT NULL,
			payload BLOB NOT NULL
		);`,
	)
	return err
}

func (s *SQLiteDefinitionStore) SaveDefinition(ctx context.Context, def api.Definition) error {
	payload, err := EncodeDefinition(def)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workflow_definitions (id, label, type, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			type = excluded.type,
			payload = excluded.payload`,
		def.ID,
		def.Label,
		def.Type,
		payload,
	)
	return err
}

func (s *SQLiteDefinitionStore) GetDefinition(ctx context.Context, id string) (api.Definition, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload
		FROM workflow_definitions
		WHERE id = ?`,
		id,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return api.Definition{}, ErrDefinitionNotFound
		}
		return api.Definition{}, err
	}
	return DecodeDefinition(payload)
}

func (s *SQLiteDefinitionStore) ListDefinitions(ctx context.Context) ([]api.Definition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload
		FROM workflow_definitions
		ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDefinitions(rows)
}

func (s *SQLiteDefinitionStore) DeleteDefinition(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workflow_definitions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// scanDefinitions decodes rows holding a single payload column.
func scanDefinitions(rows *sql.Rows) ([]api.Definition, error) {
	var defs []api.Definition
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		def, err := DecodeDefinition(payload)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return defs, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDefinitionNotFound
	}
	return nil
}
