package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "navigatorx.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
graph_file: /data/solo_jogja.ch
cache_byte_budget: 1048576
use_mmap: false
query_timeout: 250ms
log_level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/solo_jogja.ch", cfg.GraphFile)
	assert.Equal(t, int64(1<<20), cfg.CacheByteBudget)
	assert.False(t, cfg.UseMmap)
	assert.Equal(t, 250*time.Millisecond, cfg.QueryTimeout)
	assert.Equal(t, logrus.DebugLevel, cfg.Logger().GetLevel())
	// untouched keys
	assert.Equal(t, ":5000", cfg.ListenAddr)
	assert.Equal(t, 1000.0, cfg.NearestRadius)

	opts := cfg.GraphOptions(cfg.Logger(), prometheus.NewRegistry())
	assert.Equal(t, int64(1<<20), opts.CacheByteBudget)
	assert.False(t, opts.UseMmap)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "graph_file: [unterminated"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "cache_byte_budget: -1"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty graph file", func(c *Config) { c.GraphFile = "" }},
		{"zero budget", func(c *Config) { c.CacheByteBudget = 0 }},
		{"zero timeout", func(c *Config) { c.QueryTimeout = 0 }},
		{"negative radius", func(c *Config) { c.NearestRadius = -5 }},
		{"negative simplify", func(c *Config) { c.SimplifyThreshold = -1 }},
		{"unknown log level", func(c *Config) { c.LogLevel = "chatty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
