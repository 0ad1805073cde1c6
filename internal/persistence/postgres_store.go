package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/petrijr/workflows/pkg/api"
)

// PostgresDefinitionStore is a DefinitionStore backed by PostgreSQL.
//
// It expects an *sql.DB that uses a PostgreSQL driver (for example,
// "github.com/jackc/pgx/v5/stdlib").
//
// The caller is responsible for:
//   - importing the driver for its side effects, e.g.:
//     _ "github.com/jackc/pgx/v5/stdlib"
//   - providing a DSN via sql.Open.
type PostgresDefinitionStore struct {
	db *sql.DB
}

// Ensure PostgresDefinitionStore implements DefinitionStore.
var _ DefinitionStore = (*PostgresDefinitionStore)(nil)

// NewPostgresDefinitionStore initializes the required schema in the given
// database and returns a new PostgresDefinitionStore.
func NewPostgresDefinitionStore(db *sql.DB) (*PostgresDefinitionStore, error) {
	s := &PostgresDefinitionStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresDefinitionStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS workflow_definitions (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			type TEXT NOT NULL,
			payload BYTEA NOT NULL
		);
	`)
	return err
}

func (s *PostgresDefinitionStore) SaveDefinition(ctx context.Context, def api.Definition) error {
	payload, err := EncodeDefinition(def)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workflow_definitions (id, label, type, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			label = EXCLUDED.label,
			type = EXCLUDED.type,
			payload = EXCLUDED.payload
	`,
		def.ID,
		def.Label,
		def.Type,
		payload,
	)
	return err
}

func (s *PostgresDefinitionStore) GetDefinition(ctx context.Context, id string) (api.Definition, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload
		FROM workflow_definitions
		WHERE id = $1
	`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return api.Definition{}, ErrDefinitionNotFound
		}
		return api.Definition{}, err
	}
	return DecodeDefinition(payload)
}

func (s *PostgresDefinitionStore) ListDefinitions(ctx context.Context) ([]api.Definition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload
		FROM workflow_definitions
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDefinitions(rows)
}

func (s *PostgresDefinitionStore) DeleteDefinition(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workflow_definitions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
