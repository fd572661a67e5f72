package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/storage"
)

func TestAllowListStore_SeededByMigration(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewAllowListStore(pool)

	for _, seed := range storage.DefaultEstablishedTokens() {
		ok, err := store.Contains(ctx, seed.Mint)
		require.NoError(t, err)
		assert.True(t, ok, "expected %s to be seeded", seed.Symbol)
	}

	ok, err := store.Contains(ctx, "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAllowListStore_AddAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewAllowListStore(pool)

	entry := domain.EstablishedToken{
		Mint:    "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN",
		Symbol:  "JUP",
		AddedAt: 1700000000000,
	}
	require.NoError(t, store.Add(ctx, entry))

	got, err := store.Get(ctx, entry.Mint)
	require.NoError(t, err)
	assert.Equal(t, entry, got)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(storage.DefaultEstablishedTokens())+1)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].Mint, list[i].Mint)
	}
}

func TestAllowListStore_AddDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewAllowListStore(pool)

	err := store.Add(ctx, domain.EstablishedToken{Mint: storage.MintUSDC, Symbol: "USDC"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestAllowListStore_AddInvalid(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	err := NewAllowListStore(pool).Add(context.Background(), domain.EstablishedToken{Symbol: "X"})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestAllowListStore_GetNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := NewAllowListStore(pool).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
