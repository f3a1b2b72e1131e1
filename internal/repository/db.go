// Package repository provides durable storage for matches, card instances
// and the action audit log. The Postgres store commits every player action
// as one transaction; the memory store backs tests and standalone mode.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a match, card or deck row is absent. Callers
// should stop retrying and resynchronize.
var ErrNotFound = errors.New("repository: not found")

// DBConfig holds connection pool settings.
type DBConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// DB wraps the pgx connection pool.
type DB struct {
	Pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewDB opens a pgx pool and verifies connectivity.
func NewDB(ctx context.Context, cfg DBConfig, logger *zap.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &DB{Pool: pool, logger: logger}, nil
}

// Close releases the pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// Stats exposes pool statistics for startup logging.
func (db *DB) Stats() *pgxpool.Stat {
	return db.Pool.Stat()
}

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id             TEXT PRIMARY KEY,
	player1_id     TEXT NOT NULL,
	player2_id     TEXT NOT NULL DEFAULT '',
	deck1_id       TEXT NOT NULL,
	deck2_id       TEXT NOT NULL DEFAULT '',
	phase          TEXT NOT NULL,
	current_turn   INT  NOT NULL,
	current_player INT  NOT NULL,
	p1_life        INT  NOT NULL,
	p1_energy      INT  NOT NULL,
	p1_draw_order  TEXT[] NOT NULL DEFAULT '{}',
	p1_draw_index  INT  NOT NULL DEFAULT 0,
	p2_life        INT  NOT NULL,
	p2_energy      INT  NOT NULL,
	p2_draw_order  TEXT[] NOT NULL DEFAULT '{}',
	p2_draw_index  INT  NOT NULL DEFAULT 0,
	winner         INT  NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL,
	started_at     TIMESTAMPTZ,
	finished_at    TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS card_instances (
	id             TEXT PRIMARY KEY,
	match_id       TEXT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
	card_id        TEXT NOT NULL,
	owner          INT  NOT NULL,
	zone           TEXT NOT NULL,
	position       INT  NOT NULL DEFAULT 0,
	stance         TEXT NOT NULL,
	attack         INT  NOT NULL,
	defense        INT  NOT NULL,
	health         INT  NOT NULL,
	energy_value   INT  NOT NULL,
	can_attack     BOOLEAN NOT NULL DEFAULT FALSE,
	has_attacked   BOOLEAN NOT NULL DEFAULT FALSE,
	modifiers      JSONB NOT NULL DEFAULT 'null',
	status_effects JSONB NOT NULL DEFAULT 'null'
);
CREATE INDEX IF NOT EXISTS card_instances_match_idx ON card_instances(match_id);

CREATE TABLE IF NOT EXISTS match_actions (
	id         TEXT PRIMARY KEY,
	match_id   TEXT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
	player     INT  NOT NULL,
	turn       INT  NOT NULL,
	kind       TEXT NOT NULL,
	payload    JSONB NOT NULL DEFAULT 'null',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS match_actions_match_idx ON match_actions(match_id, created_at);
`

// EnsureSchema creates the tables when they do not exist yet.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, schema)
	return err
}
