// Package postgres stores arcanum characters in PostgreSQL through pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/arcanum/internal/config"
)

// ApplicationName is reported to the server for every pooled connection.
const ApplicationName = "arcanum"

// CharactersTable is the table created by the schema migrations.
const CharactersTable = "characters"

// ErrSchemaNotMigrated means the database is reachable but the characters
// table is absent. Run cmd/migrate before starting the simulator.
var ErrSchemaNotMigrated = errors.New("character schema not migrated")

// Pool owns the connections shared by every CharacterRepository.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the character database described by cfg.
//
// Precondition: cfg must name a reachable server.
// Postcondition: Returns a pool that has answered one ping, or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing character database dsn: %w", err)
	}
	pcfg.MaxConns = cfg.MaxConns
	pcfg.MinConns = cfg.MinConns
	pcfg.MaxConnLifetime = cfg.MaxConnLifetime
	pcfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName

	conns, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("opening character database %s: %w", cfg.Name, err)
	}
	if err := conns.Ping(ctx); err != nil {
		conns.Close()
		return nil, fmt.Errorf("reaching character database %s: %w", cfg.Name, err)
	}
	return &Pool{pool: conns}, nil
}

// Health pings the server, giving up after timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// RequireSchema reports ErrSchemaNotMigrated when the characters table does
// not exist yet.
func (p *Pool) RequireSchema(ctx context.Context) error {
	var present bool
	err := p.pool.QueryRow(ctx, `SELECT to_regclass($1::text) IS NOT NULL`, CharactersTable).Scan(&present)
	if err != nil {
		return fmt.Errorf("checking character schema: %w", err)
	}
	if !present {
		return ErrSchemaNotMigrated
	}
	return nil
}

// Close releases every pooled connection. The pool is unusable afterwards.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB exposes the pgx pool to the repositories in this package and to tests.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
