// Package postgres provides a PostgreSQL-backed user store using pgx/v5
// connection pooling. The lookup and last-login update run as a single
// UPDATE ... RETURNING statement so the touch is atomic with the match.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/piarcha/piarka/pkg/userstore"
)

// Store is a PostgreSQL-backed user store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements userstore.Store at compile time.
var _ userstore.Store = (*Store)(nil)

// New creates a store with the given configuration. If MigrateOnStart is
// true, the users schema is applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// FindAndTouchLogin matches username and stamps last_login in one statement.
func (s *Store) FindAndTouchLogin(ctx context.Context, username string) (*userstore.User, error) {
	var u userstore.User
	err := s.pool.QueryRow(ctx, `
		UPDATE users
		SET last_login = now()
		WHERE username = $1
		RETURNING username, last_login
	`, username).Scan(&u.Username, &u.LastLogin)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, userstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", userstore.ErrUnavailable, err)
	}

	return &u, nil
}

// AddUser inserts a user record. Used by provisioning and tests; the
// authentication pipeline itself never creates users.
func (s *Store) AddUser(ctx context.Context, username string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (username) VALUES ($1)
		ON CONFLICT (username) DO NOTHING
	`, username)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
