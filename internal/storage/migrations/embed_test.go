package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresFS_ContainsAllowList(t *testing.T) {
	entries, err := fs.ReadDir(PostgresFS, "postgres")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "001_established_tokens.sql", entries[0].Name())

	data, err := fs.ReadFile(PostgresFS, "postgres/001_established_tokens.sql")
	require.NoError(t, err)
	sql := string(data)
	assert.True(t, strings.Contains(sql, "CREATE TABLE IF NOT EXISTS established_tokens"))
	assert.True(t, strings.Contains(sql, "ON CONFLICT (mint) DO NOTHING"))
}
