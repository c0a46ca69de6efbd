package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Configuration represents the complete gateway configuration
type Configuration struct {
	Global    GlobalConfig    `yaml:"global"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Media     MediaConfig     `yaml:"media"`
	Throttle  ThrottleConfig  `yaml:"throttle"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Redis     RedisConfig     `yaml:"redis"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// GlobalConfig represents global application settings
type GlobalConfig struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// ServerConfig represents the HTTP listener settings
type ServerConfig struct {
	ListenAddr        string        `yaml:"listen_addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig represents object store settings
type StorageConfig struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
	MaxRetries      int    `yaml:"max_retries"`
	PoolSize        int    `yaml:"pool_size"`
}

// MediaConfig represents the media delivery rules consumed by the gateway
type MediaConfig struct {
	// AllowedExtensions is the extension allow-list ("mp4", "mkv", ...).
	// Requests for anything else fall through to the next handler.
	AllowedExtensions []string `yaml:"allowed_extensions"`

	// MIMEOverrides maps an extension to the Content-Type served for it.
	MIMEOverrides map[string]string `yaml:"mime_overrides"`

	// PreferMIMETable resolves Content-Type from MIMEOverrides before the
	// platform MIME database when both know the extension.
	PreferMIMETable bool `yaml:"prefer_mime_table"`

	// AliasRewrite enables the ".mkv.mp4" -> ".mkv" key rewrite.
	AliasRewrite bool `yaml:"alias_rewrite"`

	// CacheMaxAge is the Cache-Control max-age served with each object.
	CacheMaxAge time.Duration `yaml:"cache_max_age"`

	// NegativeCacheTTL is how long a confirmed-missing object stays cached.
	NegativeCacheTTL time.Duration `yaml:"negative_cache_ttl"`
}

// ThrottleConfig represents the shared outbound byte budget
type ThrottleConfig struct {
	// DailyBudget is the total bytes streamed per rolling window across
	// all downloads, as a human-readable size ("200GB").
	DailyBudget string        `yaml:"daily_budget"`
	Window      time.Duration `yaml:"window"`
}

// RateLimitConfig represents both limiter tiers
type RateLimitConfig struct {
	Burst BurstTierConfig `yaml:"burst"`
	Daily DailyTierConfig `yaml:"daily"`
}

// BurstTierConfig represents the per-client burst tier
type BurstTierConfig struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

// DailyTierConfig represents the global daily tier and its fallback
type DailyTierConfig struct {
	Limit         int64         `yaml:"limit"`
	Window        time.Duration `yaml:"window"`
	FallbackLimit int64         `yaml:"fallback_limit"`
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
}

// RedisConfig represents the durable rate-limit store connection
type RedisConfig struct {
	Addr        string        `yaml:"addr"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// MetricsConfig represents metrics exposure settings
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// NewDefault returns a configuration with sensible defaults
func NewDefault() *Configuration {
	return &Configuration{
		Global: GlobalConfig{
			LogLevel: "INFO",
		},
		Server: ServerConfig{
			ListenAddr:        ":8080",
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       90 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Storage: StorageConfig{
			Region:     "us-east-1",
			MaxRetries: 3,
			PoolSize:   8,
		},
		Media: MediaConfig{
			AllowedExtensions: []string{"mp4", "mkv", "webm", "mp3", "m4a", "ogg", "vtt", "srt", "jpg", "png", "webp"},
			MIMEOverrides: map[string]string{
				"mkv": "video/x-matroska",
				"vtt": "text/vtt",
				"srt": "application/x-subrip",
			},
			PreferMIMETable:  true,
			AliasRewrite:     true,
			CacheMaxAge:      7 * 24 * time.Hour,
			NegativeCacheTTL: time.Hour,
		},
		Throttle: ThrottleConfig{
			DailyBudget: "200GB",
			Window:      24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Burst: BurstTierConfig{
				Limit:  100,
				Window: time.Minute,
			},
			Daily: DailyTierConfig{
				Limit:         50000,
				Window:        24 * time.Hour,
				FallbackLimit: 5000,
				RetryAttempts: 3,
				RetryDelay:    100 * time.Millisecond,
			},
		},
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			DialTimeout: 2 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load builds the effective configuration: defaults, then the optional
// YAML file, then environment overrides, then validation.
func Load(filename string) (*Configuration, error) {
	cfg := NewDefault()

	if filename != "" {
		if err := cfg.LoadFromFile(filename); err != nil {
			return nil, err
		}
	}

	cfg.LoadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Configuration) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// LoadFromEnv applies environment variable overrides. Secrets are expected
// to arrive this way rather than through the config file.
func (c *Configuration) LoadFromEnv() {
	if val := os.Getenv("MEDIAGATE_LOG_LEVEL"); val != "" {
		c.Global.LogLevel = val
	}
	if val := os.Getenv("MEDIAGATE_LISTEN_ADDR"); val != "" {
		c.Server.ListenAddr = val
	}
	if val := os.Getenv("MEDIAGATE_S3_BUCKET"); val != "" {
		c.Storage.Bucket = val
	}
	if val := os.Getenv("MEDIAGATE_S3_REGION"); val != "" {
		c.Storage.Region = val
	}
	if val := os.Getenv("MEDIAGATE_S3_ENDPOINT"); val != "" {
		c.Storage.Endpoint = val
	}
	if val := os.Getenv("AWS_ACCESS_KEY_ID"); val != "" {
		c.Storage.AccessKeyID = val
	}
	if val := os.Getenv("AWS_SECRET_ACCESS_KEY"); val != "" {
		c.Storage.SecretAccessKey = val
	}
	if val := os.Getenv("MEDIAGATE_REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("MEDIAGATE_REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}
	if val := os.Getenv("MEDIAGATE_REDIS_DB"); val != "" {
		if db, err := strconv.Atoi(val); err == nil {
			c.Redis.DB = db
		}
	}
	if val := os.Getenv("MEDIAGATE_DAILY_BUDGET"); val != "" {
		c.Throttle.DailyBudget = val
	}
	if val := os.Getenv("MEDIAGATE_ALIAS_REWRITE"); val != "" {
		c.Media.AliasRewrite = strings.ToLower(val) == "true"
	}
}

// Validate validates the configuration
func (c *Configuration) Validate() error {
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	if c.Storage.PoolSize <= 0 {
		return fmt.Errorf("storage.pool_size must be greater than 0")
	}
	if len(c.Media.AllowedExtensions) == 0 {
		return fmt.Errorf("media.allowed_extensions must not be empty")
	}
	if c.Media.NegativeCacheTTL <= 0 {
		return fmt.Errorf("media.negative_cache_ttl must be greater than 0")
	}
	if _, err := ParseSize(c.Throttle.DailyBudget); err != nil {
		return fmt.Errorf("invalid throttle.daily_budget: %w", err)
	}
	if c.Throttle.Window <= 0 {
		return fmt.Errorf("throttle.window must be greater than 0")
	}
	if c.RateLimit.Burst.Limit <= 0 || c.RateLimit.Burst.Window <= 0 {
		return fmt.Errorf("rate_limit.burst limit and window must be greater than 0")
	}
	if c.RateLimit.Daily.Limit <= 0 || c.RateLimit.Daily.Window <= 0 {
		return fmt.Errorf("rate_limit.daily limit and window must be greater than 0")
	}
	if c.RateLimit.Daily.FallbackLimit <= 0 {
		return fmt.Errorf("rate_limit.daily.fallback_limit must be greater than 0")
	}
	if c.RateLimit.Daily.FallbackLimit > c.RateLimit.Daily.Limit {
		return fmt.Errorf("rate_limit.daily.fallback_limit must not exceed the primary limit")
	}

	validLogLevels := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	logLevelValid := false
	for _, level := range validLogLevels {
		if strings.ToUpper(c.Global.LogLevel) == level {
			logLevelValid = true
			break
		}
	}
	if !logLevelValid {
		return fmt.Errorf("invalid log_level: %s (must be one of: %s)",
			c.Global.LogLevel, strings.Join(validLogLevels, ", "))
	}

	return nil
}

// DailyBudgetBytes returns the throttle budget in bytes. Validate has
// already vetted the size string by the time callers use this.
func (c *Configuration) DailyBudgetBytes() int64 {
	n, err := ParseSize(c.Throttle.DailyBudget)
	if err != nil {
		return 0
	}
	return n
}

// ParseSize parses a human-readable byte size like "512MB" or "10GB".
// Plain numbers are taken as bytes.
func ParseSize(sizeStr string) (int64, error) {
	sizeStr = strings.TrimSpace(sizeStr)
	if sizeStr == "" {
		return 0, fmt.Errorf("empty size string")
	}

	if val, err := strconv.ParseInt(sizeStr, 10, 64); err == nil {
		return val, nil
	}

	units := []struct {
		suffix     string
		multiplier int64
	}{
		{"TB", 1024 * 1024 * 1024 * 1024},
		{"GB", 1024 * 1024 * 1024},
		{"MB", 1024 * 1024},
		{"KB", 1024},
		{"B", 1},
	}

	upper := strings.ToUpper(sizeStr)
	for _, unit := range units {
		if strings.HasSuffix(upper, unit.suffix) {
			numStr := strings.TrimSpace(strings.TrimSuffix(upper, unit.suffix))
			if val, err := strconv.ParseFloat(numStr, 64); err == nil {
				return int64(val * float64(unit.multiplier)), nil
			}
		}
	}

	return 0, fmt.Errorf("invalid size format: %s", sizeStr)
}
