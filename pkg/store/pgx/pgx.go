package pgx

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/ai"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

//go:embed migrations/*.sql
var migrations embed.FS

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// GraphDBStorage implements the GraphStorage interface using PostgreSQL with
// pgvector for entity similarity search. Writes of one batch happen in a
// single transaction and batches of the same process are serialised.
type GraphDBStorage struct {
	conn     pgxIConn
	aiClient ai.GraphAIClient
	pool     *pgxpool.Pool
	dbLock   sync.Mutex
}

type GraphDBStorageOption func(*GraphDBStorage)

// WithAIClient enables entity embeddings and SimilarEntities.
func WithAIClient(client ai.GraphAIClient) GraphDBStorageOption {
	return func(s *GraphDBStorage) {
		s.aiClient = client
	}
}

// NewGraphDBStorageWithConnection creates a new GraphDBStorage using an
// existing database connection. The caller owns the connection.
func NewGraphDBStorageWithConnection(
	ctx context.Context,
	conn pgxIConn,
	opts ...GraphDBStorageOption,
) (*GraphDBStorage, error) {
	if conn == nil {
		return nil, errors.New("pgx: connection is nil")
	}
	s := &GraphDBStorage{conn: conn}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s, nil
}

// New migrates the database behind databaseURL and opens a connection pool
// with the pgvector types registered. Close releases the pool.
func New(ctx context.Context, databaseURL string, opts ...GraphDBStorageOption) (*GraphDBStorage, error) {
	if databaseURL == "" {
		return nil, errors.New("pgx: DATABASE_URL is not set")
	}
	if err := Migrate(databaseURL); err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgxv5.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s, err := NewGraphDBStorageWithConnection(ctx, pool, opts...)
	if err != nil {
		pool.Close()
		return nil, err
	}
	s.pool = pool
	return s, nil
}

// Migrate applies every embedded migration that has not run yet.
func Migrate(databaseURL string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	version, dirty, _ := m.Version()
	logger.Debug("[Postgres] Migrations applied", "version", version, "dirty", dirty)
	return nil
}

// Close releases the pool when the store opened it itself.
func (s *GraphDBStorage) Close(ctx context.Context) error {
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	return nil
}
