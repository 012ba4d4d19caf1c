package postgres_test

import (
	"os"
	"testing"

	"stocktracker/config"
	"stocktracker/pkg/storage/postgres"

	"github.com/stretchr/testify/require"
)

// go test -v --run TestCreateDatabase
func TestCreateDatabase(t *testing.T) {
	if os.Getenv("STOCKTRACKER_TEST_DSN") == "" {
		t.Skip("STOCKTRACKER_TEST_DSN not set")
	}

	cfg := config.PostgresConfig{
		Host:     envOr("STOCKTRACKER_TEST_PGHOST", "localhost"),
		Port:     5432,
		User:     envOr("STOCKTRACKER_TEST_PGUSER", "postgres"),
		Password: os.Getenv("STOCKTRACKER_TEST_PGPASSWORD"),
		DBName:   "stocktracker_create_test",
		SSLMode:  "disable",
	}

	require.NoError(t, postgres.CreateDatabase(cfg, "dev"))
	// second call sees the existing database
	require.NoError(t, postgres.CreateDatabase(cfg, "dev"))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
