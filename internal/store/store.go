// Package store persists the session snapshot as an opaque blob keyed by
// a save slot, and generates the ulid ids used across the game.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

// Store is the key-value snapshot boundary the session flushes to.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, blob []byte) error
	Ping(ctx context.Context) error
}

// Postgres keeps one row per save slot.
type Postgres struct {
	Pool *pgxpool.Pool
	slot string
}

func NewPostgres(dsn, slot string) (*Postgres, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &Postgres{Pool: pool, slot: slot}, nil
}

func (s *Postgres) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

func (s *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}

// EnsureSchema creates the snapshot table if missing.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS game_saves (
		slot text PRIMARY KEY,
		state jsonb NOT NULL,
		updated_at timestamptz NOT NULL DEFAULT now()
	)`)
	return err
}

func (s *Postgres) Load(ctx context.Context) ([]byte, error) {
	var blob []byte
	err := s.Pool.QueryRow(ctx, `SELECT state FROM game_saves WHERE slot = $1`, s.slot).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return blob, nil
}

func (s *Postgres) Save(ctx context.Context, blob []byte) error {
	_, err := s.Pool.Exec(ctx, `INSERT INTO game_saves (slot, state, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (slot) DO UPDATE SET state = EXCLUDED.state, updated_at = now()`, s.slot, blob)
	return err
}
