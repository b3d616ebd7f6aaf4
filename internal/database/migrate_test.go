package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/config"
	"marketplace/internal/database/migrations"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
		body, err := fs.ReadFile(migrations.FS, e.Name())
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", e.Name())
		assert.Contains(t, string(body), "-- +goose Down", e.Name())
	}
	require.Len(t, names, 3)
	assert.True(t, strings.HasPrefix(names[0], "00001_"))

	accounts, err := fs.ReadFile(migrations.FS, "00001_accounts.sql")
	require.NoError(t, err)
	assert.Contains(t, string(accounts), "UNIQUE INDEX IF NOT EXISTS buyers_email_key")
	assert.Contains(t, string(accounts), "UNIQUE INDEX IF NOT EXISTS sellers_email_key")
}

func TestPoolConfig(t *testing.T) {
	pc, err := poolConfig(config.PostgresConfig{
		DSN:     "postgres://user:pw@localhost:5432/marketplace",
		MaxOpen: 8,
		MaxIdle: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(8), pc.MaxConns)
	assert.Equal(t, int32(2), pc.MinConns)
	assert.Equal(t, "marketplace", pc.ConnConfig.RuntimeParams["application_name"])

	pc, err = poolConfig(config.PostgresConfig{DSN: "postgres://localhost/db?application_name=worker"})
	require.NoError(t, err)
	assert.Equal(t, "worker", pc.ConnConfig.RuntimeParams["application_name"])

	_, err = poolConfig(config.PostgresConfig{DSN: "::not a dsn"})
	assert.Error(t, err)
}
