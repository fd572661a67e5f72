package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// requireDocker skips tests that need a container runtime when none is
// reachable or -short is set.
func requireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

// setupTestDB starts a disposable Postgres, runs Migrate against it and
// returns the pool with its teardown.
func setupTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()
	requireDocker(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("riskagent"),
		tcpostgres.WithUsername("riskagent"),
		tcpostgres.WithPassword("riskagent"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "postgres connection string")

	pool, err := NewPool(ctx, dsn, WithMaxConns(2))
	require.NoError(t, err, "open pool")

	_, err = Migrate(ctx, pool)
	require.NoError(t, err, "migrate")

	return pool, func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	}
}
