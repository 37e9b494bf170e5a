package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/config"
)

func TestNew(t *testing.T) {
	type Config struct {
		Log       config.Log
		Postgres  config.Postgres
		Inventory config.Inventory
	}

	t.Run("Should apply defaults", func(t *testing.T) {
		t.Setenv("POSTGRES_PASSWORD", "secret")

		cfg, err := config.New[Config]()
		require.NoError(t, err)

		assert.Equal(t, config.LogFormatJSON, cfg.Log.Format)
		assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
		assert.Equal(t, "inventory_db", cfg.Postgres.DB)
		assert.Equal(t, int32(20), cfg.Postgres.MaxConns)
		assert.Equal(t, 5*time.Second, cfg.Inventory.QueryTimeout)
		assert.Equal(t, 10, cfg.Inventory.RecentMovements)
		assert.Equal(t, 7, cfg.Inventory.TrendDays)
	})

	t.Run("Should parse overrides", func(t *testing.T) {
		t.Setenv("POSTGRES_PASSWORD", "secret")
		t.Setenv("LOG_FORMAT", "text")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("INVENTORY_REPORT_TIMEZONE", "Europe/Madrid")

		cfg, err := config.New[Config]()
		require.NoError(t, err)

		assert.Equal(t, config.LogFormatText, cfg.Log.Format)
		assert.Equal(t, slog.LevelDebug, cfg.Log.Level)

		loc, err := cfg.Inventory.Location()
		require.NoError(t, err)
		assert.Equal(t, "Europe/Madrid", loc.String())
	})

	t.Run("Should fail without required password", func(t *testing.T) {
		t.Setenv("POSTGRES_PASSWORD", "")

		_, err := config.New[Config]()
		assert.Error(t, err)
	})

	t.Run("Should reject unknown log format", func(t *testing.T) {
		t.Setenv("POSTGRES_PASSWORD", "secret")
		t.Setenv("LOG_FORMAT", "xml")

		_, err := config.New[Config]()
		assert.ErrorContains(t, err, "unknown log format")
	})
}
