package workflows

import (
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/petrijr/workflows/internal/engine"
	"github.com/petrijr/workflows/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	State                = api.State
	Transition           = api.Transition
	Graph                = api.Graph
	Direction            = api.Direction
	Workflow             = api.Workflow
	WorkflowType         = api.WorkflowType
	BaseType             = api.BaseType
	RequiredState        = api.RequiredState
	Definition           = api.Definition
	Dependencies         = api.Dependencies
	DependencyKind       = api.DependencyKind
	AccessResult         = api.AccessResult
	Account              = api.Account
	AccessChecker        = api.AccessChecker
	UsageProvider        = api.UsageProvider
	FormBuilder          = api.FormBuilder
	FormState            = api.FormState
	FormSpec             = api.FormSpec
	FormElement          = api.FormElement
	GraphError           = api.GraphError
	ChangeEvent          = api.ChangeEvent
	Observer             = api.Observer
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	CompositeObserver    = api.CompositeObserver
	NoopObserver         = api.NoopObserver

	// Manager runs edit sessions against stored workflows.
	Manager = engine.Manager
)

var (
	NewWorkflow          = api.NewWorkflow
	FromDefinition       = api.FromDefinition
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
)

// Graph error kinds.
var (
	ErrInvalidID      = api.ErrInvalidID
	ErrDuplicateID    = api.ErrDuplicateID
	ErrNotFound       = api.ErrNotFound
	ErrEmptyFromSet   = api.ErrEmptyFromSet
	ErrStateInUse     = api.ErrStateInUse
	ErrRequiredState  = api.ErrRequiredState
	ErrSelfTransition = api.ErrSelfTransition
)

// Manager error kinds.
var (
	ErrTypeRegistered   = engine.ErrTypeRegistered
	ErrUnknownType      = engine.ErrUnknownType
	ErrWorkflowExists   = engine.ErrWorkflowExists
	ErrWorkflowNotFound = engine.ErrWorkflowNotFound
	ErrWorkflowInUse    = engine.ErrWorkflowInUse
	ErrStateHasData     = engine.ErrStateHasData
	ErrDependencyInUse  = engine.ErrDependencyInUse
	ErrAccessDenied     = engine.ErrAccessDenied
)

const (
	DirectionFrom = api.DirectionFrom
	DirectionTo   = api.DirectionTo

	AccessNeutral   = api.AccessNeutral
	AccessAllowed   = api.AccessAllowed
	AccessForbidden = api.AccessForbidden

	DependencyConfig  = api.DependencyConfig
	DependencyContent = api.DependencyContent
	DependencyModule  = api.DependencyModule
	DependencyTheme   = api.DependencyTheme
)

// Manager constructors
// These wrap the internal/engine package so external callers
// never need to import internal packages.

// NewInMemoryManager returns a Manager backed entirely by in-memory stores.
func NewInMemoryManager() *Manager {
	return engine.NewInMemoryManager()
}

// NewInMemoryManagerWithObserver returns an in-memory Manager with the given Observer.
func NewInMemoryManagerWithObserver(obs Observer) *Manager {
	return engine.NewInMemoryManager().WithObserver(obs)
}

// NewSQLiteManager returns a Manager that keeps definitions and history in
// a SQLite database opened with the modernc.org/sqlite driver.
func NewSQLiteManager(db *sql.DB) (*Manager, error) {
	return engine.NewSQLiteManager(db)
}

// NewSQLiteManagerWithObserver returns a SQLite-backed Manager with the given Observer.
func NewSQLiteManagerWithObserver(db *sql.DB, obs Observer) (*Manager, error) {
	m, err := engine.NewSQLiteManager(db)
	if err != nil {
		return nil, err
	}
	return m.WithObserver(obs), nil
}

// NewPostgresManager returns a Manager that keeps definitions and history in PostgreSQL.
func NewPostgresManager(db *sql.DB) (*Manager, error) {
	return engine.NewPostgresManager(db)
}

// NewPostgresManagerWithObserver returns a Postgres-backed Manager with the given Observer.
func NewPostgresManagerWithObserver(db *sql.DB, obs Observer) (*Manager, error) {
	m, err := engine.NewPostgresManager(db)
	if err != nil {
		return nil, err
	}
	return m.WithObserver(obs), nil
}

// NewRedisManager returns a Manager that keeps definitions in Redis.
func NewRedisManager(client *redis.Client) *Manager {
	return engine.NewRedisManager(client)
}

// NewRedisManagerWithObserver returns a Redis-backed Manager with the given Observer.
func NewRedisManagerWithObserver(client *redis.Client, obs Observer) *Manager {
	return engine.NewRedisManager(client).WithObserver(obs)
}

// NewMongoManager returns a Manager that keeps definitions in MongoDB.
func NewMongoManager(client *mongo.Client) *Manager {
	return engine.NewMongoManager(client)
}

// NewMongoManagerWithObserver returns a Mongo-backed Manager with the given Observer.
func NewMongoManagerWithObserver(client *mongo.Client, obs Observer) *Manager {
	return engine.NewMongoManager(client).WithObserver(obs)
}
