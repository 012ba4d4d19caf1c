package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// go test -v --run TestLoad
func TestLoad(t *testing.T) {
	path := writeConfig(t, `
refresh:
  interval: 45s
symbols:
  popular: [AAPL, TSLA]
  indices:
    - symbol: "^FTSE"
      name: FTSE 100
history:
  default_period: 3mo
postgres:
  enabled: true
  port: 6543
  retention: 720h
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 45*time.Second, cfg.Refresh.Interval)
	require.Equal(t, []string{"AAPL", "TSLA"}, cfg.Symbols.Popular)
	require.Equal(t, []IndexConfig{{Symbol: "^FTSE", Name: "FTSE 100"}}, cfg.Symbols.Indices)
	require.Equal(t, "3mo", cfg.History.DefaultPeriod)
	require.True(t, cfg.Postgres.Enabled)
	require.Equal(t, 6543, cfg.Postgres.Port)
	require.Equal(t, 720*time.Hour, cfg.Postgres.Retention)

	// Untouched keys keep their defaults.
	require.Equal(t, 10*time.Second, cfg.Provider.Timeout)
	require.Equal(t, []string{"AAPL", "GOOGL", "MSFT"}, cfg.Symbols.Examples)
	require.Equal(t, 10, cfg.History.TailRows)
	require.Equal(t, ":8080", cfg.Dashboard.Addr)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("REFRESH_INTERVAL", "5s")
	t.Setenv("DASHBOARD_ADDR", ":9999")

	cfg, err := Load(writeConfig(t, "log:\n  level: debug\n"))
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, cfg.Refresh.Interval)
	require.Equal(t, ":9999", cfg.Dashboard.Addr)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, cfg.Refresh.Interval)
	require.Len(t, cfg.Symbols.Indices, 3)
	require.Equal(t, "^GSPC", cfg.Symbols.Indices[0].Symbol)
	require.Len(t, cfg.Symbols.Popular, 8)
	require.Zero(t, cfg.Postgres.Retention)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeConfig(t, "history:\n  default_period: 10y\n"))
	require.ErrorContains(t, err, "default_period")

	_, err = Load(writeConfig(t, "refresh:\n  interval: 0s\n"))
	require.ErrorContains(t, err, "refresh.interval")

	_, err = Load(writeConfig(t, "postgres:\n  retention: -1h\n"))
	require.ErrorContains(t, err, "postgres.retention")
}

func TestPostgresDSN(t *testing.T) {
	cfg := PostgresConfig{
		Host:      "localhost",
		Port:      5432,
		User:      "postgres",
		Password:  "pw",
		DBName:    "stocktracker",
		SSLMode:   "disable",
		TimeZone:  "UTC",
		SSMPrefix: "/stocktracker/db",
	}

	require.Equal(t,
		"host=localhost port=5432 user=postgres password=pw dbname=stocktracker sslmode=disable TimeZone=UTC",
		cfg.dsn("dev", cfg.DBName, nil))

	secrets := map[string]string{
		"/stocktracker/db/host":     "db.internal",
		"/stocktracker/db/password": "secret",
	}
	get := func(_ context.Context, name string) (string, error) {
		if v, ok := secrets[name]; ok {
			return v, nil
		}
		return "", errors.New("parameter not found")
	}

	require.Equal(t,
		"host=db.internal port=5432 user=postgres password=secret dbname=postgres sslmode=disable TimeZone=UTC",
		cfg.dsn("prod", "postgres", get))
}
