package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/kodict/internal/config"
	"github.com/heartmarshall/kodict/internal/query"
	"github.com/heartmarshall/kodict/internal/store"
	"github.com/heartmarshall/kodict/internal/transport/middleware"
	"github.com/heartmarshall/kodict/internal/transport/rest"
)

// Run is the server entry point. It loads configuration and the live store
// generation, then serves the query API until ctx is canceled. A store that
// cannot be loaded stops startup.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("store_dir", cfg.Store.Dir),
	)

	loader := query.NewLoader(func() (*store.Store, error) {
		return store.Load(cfg.Store.Dir)
	})
	engine, err := loader.Engine()
	if err != nil {
		return err
	}
	logger.Info("store loaded",
		slog.String("generation", engine.Store().Manifest().Generation),
		slog.Int("entries", engine.Len()),
	)

	handler, stop := newHandler(cfg, loader, logger)
	defer stop()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// newHandler assembles the router and middleware chain. The returned stop
// function releases background resources held by the middleware.
func newHandler(cfg *config.Config, loader *query.Loader, logger *slog.Logger) (http.Handler, func()) {
	var limit middleware.Middleware
	stop := func() {}
	if cfg.RateLimit.Enabled {
		rl := middleware.NewRateLimiter(cfg.RateLimit)
		limit, stop = rl.Limit(), rl.Stop
	}

	chain := middleware.Chain(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		limit,
	)

	dict := rest.NewDictionaryHandler(loader, cfg.Query.DefaultPrefixLimit, cfg.Query.MaxPrefixLimit, logger)
	health := rest.NewHealthHandler(loader, BuildVersion(), logger)
	return rest.NewRouter(dict, health, chain), stop
}
