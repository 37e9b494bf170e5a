package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/config"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/log"
	"github.com/tuanvumaihuynh/inventory-backoffice/pkg/correlationid"
)

func TestNew(t *testing.T) {
	t.Run("Should enrich json records with correlation id", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf, config.Log{Format: config.LogFormatJSON, Level: slog.LevelInfo})

		ctx := correlationid.NewContext(context.Background(), "corr-1")
		logger.WarnContext(ctx, "snapshot fallback", slog.Any("error", errors.New("boom")))

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "corr-1", rec["correlation_id"])
		assert.Equal(t, "snapshot fallback", rec["msg"])
		assert.Equal(t, "boom", rec["error"])
		assert.NotContains(t, rec, "trace_id")
	})

	t.Run("Should respect level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf, config.Log{Format: config.LogFormatText, Level: slog.LevelWarn})

		logger.Info("hidden")
		assert.Empty(t, buf.String())

		logger.Error("shown")
		assert.Contains(t, buf.String(), "shown")
	})
}
