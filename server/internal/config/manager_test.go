package config_test

import (
	"testing"

	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/recordstore/server/internal/config"
)

func TestManager(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		data := t.TempDir()
		manager := config.NewManager(structSource(t, config.Config{DataDir: data}))

		require.NoError(t, manager.Load())
		cfg := manager.Config()
		assert.Equal(t, data, cfg.DataDir)
		assert.Equal(t, "recordstore", cfg.KeyRoot)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, uint(2048), cfg.EmbeddedEtcd.MaxTxnOps)
		assert.Equal(t, 2379, cfg.EmbeddedEtcd.ClientPort)
	})

	t.Run("later sources take precedence", func(t *testing.T) {
		data := t.TempDir()
		first := structSource(t, config.Config{
			DataDir: data,
			KeyRoot: "first",
			Logging: config.Logging{Level: "debug"},
		})
		second := structSource(t, config.Config{
			KeyRoot: "second",
		})
		manager := config.NewManager(first, second)

		require.NoError(t, manager.Load())
		assert.Equal(t, defaultWithOverrides(t, config.Config{
			DataDir: data,
			KeyRoot: "second",
			Logging: config.Logging{Level: "debug"},
		}), manager.Config())
	})

	t.Run("environment variables", func(t *testing.T) {
		data := t.TempDir()
		t.Setenv("RECORDSTORE_DATA_DIR", data)
		t.Setenv("RECORDSTORE_LOGGING__LEVEL", "warn")
		t.Setenv("RECORDSTORE_EMBEDDED_ETCD__CLIENT_PORT", "12379")

		manager := config.NewManager(config.NewEnvVarSource())

		require.NoError(t, manager.Load())
		cfg := manager.Config()
		assert.Equal(t, data, cfg.DataDir)
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Equal(t, 12379, cfg.EmbeddedEtcd.ClientPort)
	})

	t.Run("flags", func(t *testing.T) {
		data := t.TempDir()
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("data-dir", "", "")
		flags.Bool("seed-sample-data", false, "")
		require.NoError(t, flags.Parse([]string{"--data-dir", data, "--seed-sample-data"}))

		manager := config.NewManager(config.NewPFlagSource(flags))

		require.NoError(t, manager.Load())
		cfg := manager.Config()
		assert.Equal(t, data, cfg.DataDir)
		assert.True(t, cfg.SeedSampleData)
	})

	t.Run("invalid user-specified config", func(t *testing.T) {
		manager := config.NewManager(structSource(t, config.Config{
			KeyRoot: "a/b",
			Logging: config.Logging{Level: "loud"},
		}))

		err := manager.Load()
		assert.ErrorContains(t, err, "data_dir cannot be empty")
		assert.ErrorContains(t, err, "key_root: must not contain '/'")
		assert.ErrorContains(t, err, "logging.level: invalid log level")
	})
}

func structSource(t *testing.T, cfg config.Config) *config.Source {
	t.Helper()

	source, err := config.NewStructSource(cfg)
	require.NoError(t, err)

	return source
}

func defaultWithOverrides(t *testing.T, overrides config.Config) config.Config {
	t.Helper()

	k := koanf.New(".")
	require.NoError(t, config.LoadStruct(k, config.DefaultConfig()))
	require.NoError(t, config.LoadStruct(k, overrides))

	var merged config.Config
	require.NoError(t, k.Unmarshal("", &merged))

	return merged
}
