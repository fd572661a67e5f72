package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/storage"
)

// Pool is the allow-list database handle.
type Pool struct {
	*pgxpool.Pool
}

// PoolOption tunes the pool before it connects.
type PoolOption func(*pgxpool.Config)

// WithMaxConns caps open connections.
func WithMaxConns(n int32) PoolOption {
	return func(c *pgxpool.Config) { c.MaxConns = n }
}

// WithConnectTimeout bounds each dial.
func WithConnectTimeout(d time.Duration) PoolOption {
	return func(c *pgxpool.Config) { c.ConnConfig.ConnectTimeout = d }
}

// Allow-list lookups are one indexed row per analysis, so the pool stays small.
const (
	defaultMaxConns          = 4
	defaultMinConns          = 1
	defaultMaxConnIdleTime   = 5 * time.Minute
	defaultHealthCheckPeriod = 30 * time.Second
	defaultConnectTimeout    = 5 * time.Second
)

// NewPool connects to dsn and verifies the server answers.
func NewPool(ctx context.Context, dsn string, opts ...PoolOption) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: allow-list dsn: %v", domain.ErrConfiguration, err)
	}
	cfg.MaxConns = defaultMaxConns
	cfg.MinConns = defaultMinConns
	cfg.MaxConnIdleTime = defaultMaxConnIdleTime
	cfg.HealthCheckPeriod = defaultHealthCheckPeriod
	cfg.ConnConfig.ConnectTimeout = defaultConnectTimeout
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.MinConns > cfg.MaxConns {
		cfg.MinConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open allow-list pool: %w", err)
	}
	p := &Pool{Pool: pool}
	if err := p.Health(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// Health pings the server.
func (p *Pool) Health(ctx context.Context) error {
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("allow-list database unreachable: %w", err)
	}
	return nil
}

const codeUniqueViolation = "23505"

// mapError translates driver errors into storage sentinels. op names the
// statement for errors that are passed through.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		return storage.ErrDuplicateKey
	}
	return fmt.Errorf("%s: %w", op, err)
}
