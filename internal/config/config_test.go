package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveDefaultsAutoSQLite(t *testing.T) {
	t.Setenv("WAYBOOK_DATA_DIR", t.TempDir())

	cfg := Config{DBDriver: "auto"}
	require.NoError(t, cfg.ResolveDefaults())
	require.Equal(t, "sqlite", cfg.DBDriver)
	require.Equal(t, "waybook.db", filepath.Base(cfg.SQLitePath))
}

func TestResolveDefaultsAutoPostgres(t *testing.T) {
	cfg := Config{DBDriver: "auto", PostgresDSN: "postgres://localhost/waybook"}
	require.NoError(t, cfg.ResolveDefaults())
	require.Equal(t, "postgres", cfg.DBDriver)
}

func TestResolveDefaultsErrors(t *testing.T) {
	cfg := Config{DBDriver: "mongodb"}
	require.Error(t, cfg.ResolveDefaults(), "unsupported driver")

	cfg = Config{DBDriver: "postgres"}
	require.Error(t, cfg.ResolveDefaults(), "postgres without DSN")
}

func TestResolveDefaultsKeepsExplicitPath(t *testing.T) {
	cfg := Config{DBDriver: "sqlite", SQLitePath: "/tmp/custom.db"}
	require.NoError(t, cfg.ResolveDefaults())
	require.Equal(t, "/tmp/custom.db", cfg.SQLitePath)
}

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("WAYBOOK_DB_DRIVER", "sqlite")
	t.Setenv("WAYBOOK_SQLITE_PATH", filepath.Join(t.TempDir(), "env.db"))
	t.Setenv("WAYBOOK_MEMORY_MAX_RANDOM", "2")

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, "sqlite", cfg.DBDriver)
	require.Equal(t, 2, cfg.MemoryMaxRandom)
	require.Equal(t, EnvDevelopment, cfg.Environment)
	require.False(t, cfg.IsProduction())
}
