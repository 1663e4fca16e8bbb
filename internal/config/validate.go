package config

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/kodict/internal/compress"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}
	if err := c.Store.validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.Build.validate(); err != nil {
		return fmt.Errorf("build: %w", err)
	}
	if c.Build.UsesSource(SourcePostgres) && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required when the %s source is enabled", SourcePostgres)
	}
	if err := c.Query.validate(); err != nil {
		return fmt.Errorf("query: %w", err)
	}
	if err := c.RateLimit.validate(); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	return nil
}

// Algorithm returns the configured compression.
func (s StoreConfig) Algorithm() (compress.Algorithm, error) {
	return compress.Parse(s.Compression)
}

func (s *StoreConfig) validate() error {
	if strings.TrimSpace(s.Dir) == "" {
		return fmt.Errorf("dir is required")
	}
	if _, err := s.Algorithm(); err != nil {
		return fmt.Errorf("compression: %w", err)
	}
	if s.KeepGenerations < 1 {
		return fmt.Errorf("keep_generations must be >= 1 (got %d)", s.KeepGenerations)
	}
	return nil
}

func (b *BuildConfig) validate() error {
	if len(b.Sources) == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}
	for i, s := range b.Sources {
		s = strings.ToLower(strings.TrimSpace(s))
		switch s {
		case SourceKrdict, SourcePostgres:
			b.Sources[i] = s
		default:
			return fmt.Errorf("unknown source %q", b.Sources[i])
		}
	}
	if b.UsesSource(SourceKrdict) && strings.TrimSpace(b.KrdictDir) == "" {
		return fmt.Errorf("krdict_dir is required when the %s source is enabled", SourceKrdict)
	}
	if len(b.PartsOfSpeech) == 0 {
		return fmt.Errorf("parts_of_speech must not be empty")
	}
	if b.MinKeyLength < 1 {
		return fmt.Errorf("min_key_length must be >= 1 (got %d)", b.MinKeyLength)
	}
	if b.Workers < 0 {
		return fmt.Errorf("workers must be >= 0 (got %d)", b.Workers)
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %v)", b.Timeout)
	}
	return nil
}

func (q *QueryConfig) validate() error {
	if q.MaxPrefixLimit < 1 {
		return fmt.Errorf("max_prefix_limit must be >= 1 (got %d)", q.MaxPrefixLimit)
	}
	if q.DefaultPrefixLimit < 1 || q.DefaultPrefixLimit > q.MaxPrefixLimit {
		return fmt.Errorf("default_prefix_limit must be in 1..%d (got %d)", q.MaxPrefixLimit, q.DefaultPrefixLimit)
	}
	return nil
}

func (r *RateLimitConfig) validate() error {
	if !r.Enabled {
		return nil
	}
	if r.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be > 0 (got %v)", r.RequestsPerSecond)
	}
	if r.Burst < 1 {
		return fmt.Errorf("burst must be >= 1 (got %d)", r.Burst)
	}
	if r.IdleTTL <= 0 {
		return fmt.Errorf("idle_ttl must be > 0 (got %v)", r.IdleTTL)
	}
	return nil
}
