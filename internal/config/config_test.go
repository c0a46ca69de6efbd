package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()
	require.NotNil(t, cfg)

	assert.Equal(t, "INFO", cfg.Global.LogLevel)
	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, 100, cfg.RateLimit.Burst.Limit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Burst.Window)
	assert.Equal(t, int64(50000), cfg.RateLimit.Daily.Limit)
	assert.Equal(t, int64(5000), cfg.RateLimit.Daily.FallbackLimit)
	assert.Equal(t, 24*time.Hour, cfg.RateLimit.Daily.Window)
	assert.Equal(t, time.Hour, cfg.Media.NegativeCacheTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Media.CacheMaxAge)
	assert.True(t, cfg.Media.AliasRewrite)
	assert.Contains(t, cfg.Media.AllowedExtensions, "mp4")
	assert.Contains(t, cfg.Media.AllowedExtensions, "mkv")
}

func TestValidate(t *testing.T) {
	valid := func() *Configuration {
		cfg := NewDefault()
		cfg.Storage.Bucket = "media-archive"
		return cfg
	}

	tests := []struct {
		name        string
		mutate      func(*Configuration)
		errContains string
	}{
		{
			name:   "valid config",
			mutate: func(c *Configuration) {},
		},
		{
			name:        "missing bucket",
			mutate:      func(c *Configuration) { c.Storage.Bucket = "" },
			errContains: "storage.bucket",
		},
		{
			name:        "zero pool size",
			mutate:      func(c *Configuration) { c.Storage.PoolSize = 0 },
			errContains: "pool_size",
		},
		{
			name:        "empty allow-list",
			mutate:      func(c *Configuration) { c.Media.AllowedExtensions = nil },
			errContains: "allowed_extensions",
		},
		{
			name:        "bad budget",
			mutate:      func(c *Configuration) { c.Throttle.DailyBudget = "lots" },
			errContains: "daily_budget",
		},
		{
			name:        "zero burst window",
			mutate:      func(c *Configuration) { c.RateLimit.Burst.Window = 0 },
			errContains: "rate_limit.burst",
		},
		{
			name:        "fallback above primary",
			mutate:      func(c *Configuration) { c.RateLimit.Daily.FallbackLimit = 100000 },
			errContains: "fallback_limit",
		},
		{
			name:        "bad log level",
			mutate:      func(c *Configuration) { c.Global.LogLevel = "LOUD" },
			errContains: "log_level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errContains == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := `
global:
  log_level: DEBUG
storage:
  bucket: clips
  region: eu-central-1
media:
  alias_rewrite: false
  negative_cache_ttl: 30m
throttle:
  daily_budget: "10GB"
rate_limit:
  burst:
    limit: 20
    window: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg := NewDefault()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "DEBUG", cfg.Global.LogLevel)
	assert.Equal(t, "clips", cfg.Storage.Bucket)
	assert.Equal(t, "eu-central-1", cfg.Storage.Region)
	assert.False(t, cfg.Media.AliasRewrite)
	assert.Equal(t, 30*time.Minute, cfg.Media.NegativeCacheTTL)
	assert.Equal(t, 20, cfg.RateLimit.Burst.Limit)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Burst.Window)

	// Untouched sections keep defaults.
	assert.Equal(t, int64(50000), cfg.RateLimit.Daily.Limit)
}

func TestLoadFromFile_Missing(t *testing.T) {
	cfg := NewDefault()
	err := cfg.LoadFromFile("/nonexistent/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MEDIAGATE_S3_BUCKET", "env-bucket")
	t.Setenv("MEDIAGATE_REDIS_ADDR", "redis:6379")
	t.Setenv("MEDIAGATE_DAILY_BUDGET", "5GB")
	t.Setenv("MEDIAGATE_ALIAS_REWRITE", "false")

	cfg := NewDefault()
	cfg.LoadFromEnv()

	assert.Equal(t, "env-bucket", cfg.Storage.Bucket)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "5GB", cfg.Throttle.DailyBudget)
	assert.False(t, cfg.Media.AliasRewrite)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"1024", 1024, false},
		{"1KB", 1024, false},
		{"16MB", 16 * 1024 * 1024, false},
		{"2GB", 2 * 1024 * 1024 * 1024, false},
		{"1TB", 1024 * 1024 * 1024 * 1024, false},
		{"1.5GB", int64(1.5 * 1024 * 1024 * 1024), false},
		{"512B", 512, false},
		{"10gb", 10 * 1024 * 1024 * 1024, false},
		{"", 0, true},
		{"invalid-size", 0, true},
		{"GB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDailyBudgetBytes(t *testing.T) {
	cfg := NewDefault()
	cfg.Throttle.DailyBudget = "1GB"
	assert.Equal(t, int64(1024*1024*1024), cfg.DailyBudgetBytes())
}
