package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/storage"
)

// AllowListStore implements storage.AllowListStore using PostgreSQL.
type AllowListStore struct {
	pool *Pool
}

// NewAllowListStore creates a new AllowListStore.
func NewAllowListStore(pool *Pool) *AllowListStore {
	return &AllowListStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AllowListStore = (*AllowListStore)(nil)

// Contains reports whether mint is allow-listed.
func (s *AllowListStore) Contains(ctx context.Context, mint string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM established_tokens WHERE mint = $1)`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, mint).Scan(&exists); err != nil {
		return false, fmt.Errorf("check established token: %w", err)
	}
	return exists, nil
}

// List returns all entries ordered by mint.
func (s *AllowListStore) List(ctx context.Context) ([]domain.EstablishedToken, error) {
	query := `
		SELECT mint, symbol, added_at
		FROM established_tokens
		ORDER BY mint ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list established tokens: %w", err)
	}
	defer rows.Close()

	var result []domain.EstablishedToken
	for rows.Next() {
		t, err := scanEstablishedToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan established token: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate established tokens: %w", err)
	}
	return result, nil
}

// Add inserts an entry. Returns ErrDuplicateKey if mint exists.
func (s *AllowListStore) Add(ctx context.Context, t domain.EstablishedToken) error {
	if t.Mint == "" {
		return storage.ErrInvalidInput
	}
	if t.AddedAt == 0 {
		t.AddedAt = time.Now().UnixMilli()
	}

	query := `
		INSERT INTO established_tokens (mint, symbol, added_at)
		VALUES ($1, $2, $3)
	`

	_, err := s.pool.Exec(ctx, query, t.Mint, t.Symbol, t.AddedAt)
	return mapError("insert established token", err)
}

// Get retrieves a single entry. Returns ErrNotFound if not exists.
func (s *AllowListStore) Get(ctx context.Context, mint string) (domain.EstablishedToken, error) {
	query := `
		SELECT mint, symbol, added_at
		FROM established_tokens
		WHERE mint = $1
	`

	t, err := scanEstablishedToken(s.pool.QueryRow(ctx, query, mint))
	if err != nil {
		return domain.EstablishedToken{}, mapError("get established token", err)
	}
	return t, nil
}

func scanEstablishedToken(row pgx.Row) (domain.EstablishedToken, error) {
	var t domain.EstablishedToken
	err := row.Scan(&t.Mint, &t.Symbol, &t.AddedAt)
	return t, err
}
