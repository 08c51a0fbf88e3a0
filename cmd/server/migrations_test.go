package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub/studyhub-api/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "error"},
	}
}

func TestResolveMigrationsDir(t *testing.T) {
	// Walks up from the package directory to the repository root.
	dir, err := resolveMigrationsDir()
	require.NoError(t, err)
	assert.Equal(t, migrationsDir, filepath.Base(dir))
}

func TestRunMigrationsRejectsUnknownCommand(t *testing.T) {
	cfg := testConfig()
	err := runMigrations(cfg, "sideways", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
}

func TestRunMigrationsCreateRequiresName(t *testing.T) {
	cfg := testConfig()
	err := runMigrations(cfg, "create", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration name is required")
}
