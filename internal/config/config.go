package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Host string
	Port int
	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// storage
	StorageDriver string `toml:"storage_driver"` // file, sqlite, redis, postgres, memory
	DataDir       string `toml:"data_dir"`
	SQLitePath    string `toml:"sqlite_path"`
	RedisHost     string `toml:"redis_host"`
	RedisPort     string `toml:"redis_port"`
	RedisPrefix   string `toml:"redis_prefix"`
	CacheEnabled  bool   `toml:"cache_enabled"`
	CacheSizeMB   int    `toml:"cache_size_mb"`
	// postgres, the password comes from GYMTRACKER_POSTGRES_PASS
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`
	// presentation
	AllowedOrigins   []string `toml:"allowed_origins"`
	RecentWorkouts   int      `toml:"recent_workouts"`
	ProgressLastSets int      `toml:"progress_last_sets"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Load reads the toml file at path and returns the section for env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}
	return t.Get(env)
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.PrometheusMetricsHost == "" {
		c.PrometheusMetricsHost = "localhost"
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "2112"
	}
	if c.StorageDriver == "" {
		c.StorageDriver = "file"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.RedisPrefix == "" {
		c.RedisPrefix = "gymtracker:"
	}
	if c.CacheSizeMB <= 0 {
		c.CacheSizeMB = 8
	}
	if c.PostgresPort == "" {
		c.PostgresPort = "5432"
	}
	if c.PostgresDBName == "" {
		c.PostgresDBName = "gymtracker"
	}
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}
	if c.RecentWorkouts <= 0 {
		c.RecentWorkouts = 5
	}
	if c.ProgressLastSets <= 0 {
		c.ProgressLastSets = 3
	}
}
