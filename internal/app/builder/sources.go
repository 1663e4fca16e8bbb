package builder

import (
	"context"
	"fmt"

	postgres "github.com/heartmarshall/kodict/internal/adapter/postgres"
	"github.com/heartmarshall/kodict/internal/adapter/postgres/refsource"
	"github.com/heartmarshall/kodict/internal/collector"
	"github.com/heartmarshall/kodict/internal/collector/krdict"
	"github.com/heartmarshall/kodict/internal/config"
)

// NewConfig derives pipeline settings from the application config.
func NewConfig(cfg *config.Config, dryRun bool) (Config, error) {
	algo, err := cfg.Store.Algorithm()
	if err != nil {
		return Config{}, err
	}
	return Config{
		StoreDir:        cfg.Store.Dir,
		Compression:     algo,
		KeepGenerations: cfg.Store.KeepGenerations,
		OverridesPath:   cfg.Build.OverridesPath,
		DryRun:          dryRun,
	}, nil
}

// NewSources creates the sources enabled in cfg, in configuration order.
// The returned cleanup releases any database pool and must be called once
// the build finishes.
func NewSources(ctx context.Context, cfg *config.Config) ([]collector.Source, func(), error) {
	var (
		sources  []collector.Source
		cleanups []func()
	)
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	for _, name := range cfg.Build.Sources {
		switch name {
		case config.SourceKrdict:
			sources = append(sources, &krdict.Source{
				Dir: cfg.Build.KrdictDir,
				Options: krdict.Options{
					PartsOfSpeech: cfg.Build.PartsOfSpeech,
					MinKeyLength:  cfg.Build.MinKeyLength,
				},
				Workers: cfg.Build.Workers,
			})
		case config.SourcePostgres:
			pool, err := postgres.NewPool(ctx, cfg.Database)
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("builder: %s source: %w", name, err)
			}
			cleanups = append(cleanups, pool.Close)
			sources = append(sources, refsource.New(pool, refsource.Options{
				PartsOfSpeech: cfg.Build.PartsOfSpeech,
				MinKeyLength:  cfg.Build.MinKeyLength,
			}))
		default:
			cleanup()
			return nil, nil, fmt.Errorf("builder: unknown source %q", name)
		}
	}
	return sources, cleanup, nil
}
