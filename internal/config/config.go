package config

import (
	"slices"
	"time"
)

// Source names accepted in build.sources.
const (
	SourceKrdict   = "krdict"
	SourcePostgres = "postgres"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Build     BuildConfig     `yaml:"build"`
	Database  DatabaseConfig  `yaml:"database"`
	Query     QueryConfig     `yaml:"query"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// StoreConfig holds persisted store settings.
type StoreConfig struct {
	Dir             string `yaml:"dir"              env:"STORE_DIR"              env-default:"./data/store"`
	Compression     string `yaml:"compression"      env:"STORE_COMPRESSION"      env-default:"zstd"`
	KeepGenerations int    `yaml:"keep_generations" env:"STORE_KEEP_GENERATIONS" env-default:"3"`
}

// BuildConfig holds offline build settings.
type BuildConfig struct {
	Sources       []string      `yaml:"sources"         env:"BUILD_SOURCES"         env-separator:"," env-default:"krdict"`
	KrdictDir     string        `yaml:"krdict_dir"      env:"BUILD_KRDICT_DIR"      env-default:"./data/krdict"`
	OverridesPath string        `yaml:"overrides_path"  env:"BUILD_OVERRIDES_PATH"  env-default:"./data/custom_dict.json"`
	PartsOfSpeech []string      `yaml:"parts_of_speech" env:"BUILD_PARTS_OF_SPEECH" env-separator:"," env-default:"명사"`
	MinKeyLength  int           `yaml:"min_key_length"  env:"BUILD_MIN_KEY_LENGTH"  env-default:"2"`
	Workers       int           `yaml:"workers"         env:"BUILD_WORKERS"         env-default:"0"`
	Timeout       time.Duration `yaml:"timeout"         env:"BUILD_TIMEOUT"         env-default:"30m"`
}

// UsesSource reports whether the named source is enabled.
func (c BuildConfig) UsesSource(name string) bool {
	return slices.Contains(c.Sources, name)
}

// DatabaseConfig holds PostgreSQL connection settings. It is only used by the
// postgres build source.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"4"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"0"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// QueryConfig holds query surface settings.
type QueryConfig struct {
	DefaultPrefixLimit int `yaml:"default_prefix_limit" env:"QUERY_DEFAULT_PREFIX_LIMIT" env-default:"20"`
	MaxPrefixLimit     int `yaml:"max_prefix_limit"     env:"QUERY_MAX_PREFIX_LIMIT"     env-default:"100"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// RateLimitConfig holds per-client request limits.
type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled"             env:"RATE_LIMIT_ENABLED"             env-default:"true"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"RATE_LIMIT_REQUESTS_PER_SECOND" env-default:"20"`
	Burst             int           `yaml:"burst"               env:"RATE_LIMIT_BURST"               env-default:"40"`
	IdleTTL           time.Duration `yaml:"idle_ttl"            env:"RATE_LIMIT_IDLE_TTL"            env-default:"5m"`
}
