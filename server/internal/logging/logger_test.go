package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/recordstore/server/internal/config"
	"github.com/pgEdge/recordstore/server/internal/logging"
)

func TestNewLogger(t *testing.T) {
	t.Run("json with key root", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := config.Config{KeyRoot: "app"}
		cfg.Logging.Level = "warn"

		logger, err := logging.NewLogger(cfg, &buf)
		require.NoError(t, err)

		logger.Info().Msg("dropped")
		logger.Warn().Msg("kept")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "kept", entry["message"])
		assert.Equal(t, "app", entry["key_root"])
		assert.Equal(t, "warn", entry["level"])
	})

	t.Run("default level is info", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := logging.NewLogger(config.Config{}, &buf)
		require.NoError(t, err)

		logger.Debug().Msg("dropped")
		assert.Zero(t, buf.Len())

		logger.Info().Msg("kept")
		assert.Contains(t, buf.String(), `"message":"kept"`)
		assert.NotContains(t, buf.String(), "key_root")
	})

	t.Run("invalid level", func(t *testing.T) {
		cfg := config.Config{}
		cfg.Logging.Level = "loud"

		_, err := logging.NewLogger(cfg, &bytes.Buffer{})
		assert.ErrorContains(t, err, "failed to parse log level")
	})
}
