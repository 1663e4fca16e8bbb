// Command builder collects dictionary entries, indexes them and publishes a
// new store generation. It is run offline, not as part of the server.
//
// Flags:
//
//	--sources   comma-separated list of sources (default: from config)
//	--dry-run   build and verify without publishing
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/heartmarshall/kodict/internal/app"
	"github.com/heartmarshall/kodict/internal/app/builder"
	"github.com/heartmarshall/kodict/internal/config"
)

func main() {
	sourcesFlag := flag.String("sources", "", "comma-separated sources to collect (default: from config)")
	dryRunFlag := flag.Bool("dry-run", false, "build and verify without publishing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	// CLI flags override config.
	if *sourcesFlag != "" {
		cfg.Build.Sources = strings.Split(*sourcesFlag, ",")
		if err := cfg.Validate(); err != nil {
			logger.Error("invalid --sources", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if err := run(cfg, logger, *dryRunFlag); err != nil {
		logger.Error("build failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, dryRun bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Build.Timeout)
	defer cancel()

	pcfg, err := builder.NewConfig(cfg, dryRun)
	if err != nil {
		return err
	}

	sources, cleanup, err := builder.NewSources(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("starting build",
		slog.String("version", app.BuildVersion()),
		slog.Any("sources", cfg.Build.Sources),
		slog.Bool("dry_run", dryRun),
	)

	m, err := builder.NewPipeline(logger, sources, pcfg).Run(ctx)
	if err != nil {
		return err
	}
	if !dryRun {
		logger.Info("build completed", slog.String("generation", m.Generation), slog.Int("entries", m.Keys))
	}
	return nil
}
