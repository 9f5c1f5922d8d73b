// Package neo4j persists knowledge graphs in Neo4j. Entities are :Entity
// nodes keyed by (session_id, key, type), relationships are typed edges
// between them and events are :Event nodes linked to their participants
// with INVOLVES edges.
package neo4j

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/OFFIS-RIT/kgraph/backend/internal/util"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var schemaStatements = []string{
	`CREATE CONSTRAINT entity_session_key IF NOT EXISTS FOR (e:Entity) REQUIRE (e.session_id, e.key, e.type) IS UNIQUE`,
	`CREATE CONSTRAINT event_session_name IF NOT EXISTS FOR (ev:Event) REQUIRE (ev.session_id, ev.event_type, ev.name) IS UNIQUE`,
	`CREATE INDEX entity_session IF NOT EXISTS FOR (e:Entity) ON (e.session_id)`,
}

// GraphNeo4jStorage implements store.GraphStorage on a Neo4j database.
type GraphNeo4jStorage struct {
	driver   neo4j.DriverWithContext
	database string
}

// Config holds the connection settings of the store.
type Config struct {
	URI         string
	User        string
	Password    string
	Database    string
	Timeout     time.Duration
	MaxPoolSize int
}

// ConfigFromEnv reads the NEO4J_* variables.
func ConfigFromEnv() Config {
	return Config{
		URI:         strings.TrimSpace(util.GetEnv("NEO4J_URI")),
		User:        util.GetEnvString("NEO4J_USER", "neo4j"),
		Password:    util.GetEnv("NEO4J_PASSWORD"),
		Database:    util.GetEnv("NEO4J_DATABASE"),
		Timeout:     time.Duration(util.GetEnvInt("NEO4J_TIMEOUT_SECONDS", 10)) * time.Second,
		MaxPoolSize: util.GetEnvInt("NEO4J_MAX_POOL_SIZE", 50),
	}
}

// New connects to Neo4j, verifies connectivity and creates the schema.
// Schema creation is best effort: a server without constraint support still
// gets a working store.
func New(ctx context.Context, cfg Config) (*GraphNeo4jStorage, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("neo4j: NEO4J_URI is not set")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxPoolSize <= 0 {
		cfg.MaxPoolSize = 50
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""), func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = cfg.MaxPoolSize
		c.SocketConnectTimeout = cfg.Timeout
		c.MaxConnectionLifetime = 30 * time.Minute
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: init driver: %w", err)
	}

	vctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(vctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: verify connectivity: %w", err)
	}

	s := &GraphNeo4jStorage{driver: driver, database: cfg.Database}
	s.initSchema(ctx)
	return s, nil
}

// NewFromEnv is New with ConfigFromEnv.
func NewFromEnv(ctx context.Context) (*GraphNeo4jStorage, error) {
	return New(ctx, ConfigFromEnv())
}

func (s *GraphNeo4jStorage) initSchema(ctx context.Context) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	for _, q := range schemaStatements {
		res, err := session.Run(ctx, q, nil)
		if err != nil {
			logger.Warn("[Neo4j] Schema init failed (continuing)", "err", err)
			continue
		}
		if _, err := res.Consume(ctx); err != nil {
			logger.Warn("[Neo4j] Schema init failed (continuing)", "err", err)
		}
	}
}

// Close releases the driver.
func (s *GraphNeo4jStorage) Close(ctx context.Context) error {
	if s == nil || s.driver == nil {
		return nil
	}
	err := s.driver.Close(ctx)
	s.driver = nil
	return err
}

func (s *GraphNeo4jStorage) read(ctx context.Context, cypher string, params map[string]any) (*neo4j.EagerResult, error) {
	return neo4j.ExecuteQuery(ctx, s.driver, cypher, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
		neo4j.ExecuteQueryWithReadersRouting(),
	)
}

func (s *GraphNeo4jStorage) write(ctx context.Context, cypher string, params map[string]any) (*neo4j.EagerResult, error) {
	return neo4j.ExecuteQuery(ctx, s.driver, cypher, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
		neo4j.ExecuteQueryWithWritersRouting(),
	)
}
