package persistence

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/suite"

	"github.com/petrijr/workflows/internal/testutil"
	"github.com/petrijr/workflows/pkg/api"
)

type PostgresStoreTestSuite struct {
	suite.Suite
	dsn    string
	db     *sql.DB
	store  *PostgresDefinitionStore
	events *PostgresEventStore
}

func TestPostgresStoreTestSuite(t *testing.T) {
	testsuite := new(PostgresStoreTestSuite)
	testsuite.dsn = testutil.StartPostgresContainer(t)
	suite.Run(t, testsuite)
}

func (ts *PostgresStoreTestSuite) SetupTest() {
	r := ts.Require()

	db, err := sql.Open("pgx", ts.dsn)
	r.NoErrorf(err, "sql.Open failed")
	ts.db = db

	store, err := NewPostgresDefinitionStore(db)
	r.NoErrorf(err, "NewPostgresDefinitionStore failed")
	events, err := NewPostgresEventStore(db)
	r.NoErrorf(err, "NewPostgresEventStore failed")
	_, err = db.Exec(`TRUNCATE workflow_definitions, workflow_events`)
	r.NoError(err)
	ts.store = store
	ts.events = events
}

func (ts *PostgresStoreTestSuite) TearDownTest() {
	_ = ts.db.Close()
}

func (ts *PostgresStoreTestSuite) TestConformance() {
	runDefinitionStoreConformance(ts.T(), ts.store)
}

func (ts *PostgresStoreTestSuite) TestSchemaIsIdempotent() {
	_, err := NewPostgresDefinitionStore(ts.db)
	ts.Require().NoError(err)
}

func (ts *PostgresStoreTestSuite) TestEvents() {
	r := ts.Require()
	ctx := context.Background()

	first := api.NewChangeEvent("articles", api.EventWorkflowCreated, "")
	second := api.NewChangeEvent("articles", api.EventStateDeleted, "review")
	r.NoError(ts.events.AppendEvent(ctx, first))
	r.NoError(ts.events.AppendEvent(ctx, api.NewChangeEvent("pages", api.EventWorkflowCreated, "")))
	r.NoError(ts.events.AppendEvent(ctx, second))

	got, err := ts.events.ListEvents(ctx, "articles")
	r.NoError(err)
	r.Len(got, 2)
	r.Equal(first.ID, got[0].ID)
	r.Equal(api.EventStateDeleted, got[1].Type)
	r.Equal("review", got[1].Detail)
	r.True(first.At.Equal(got[0].At))
}
