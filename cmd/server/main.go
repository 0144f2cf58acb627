package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hedgeshield/riskdesk/internal/api"
	"github.com/hedgeshield/riskdesk/internal/config"
	"github.com/hedgeshield/riskdesk/internal/logger"
	"github.com/hedgeshield/riskdesk/internal/store"
)

func main() {
	var configPath string
	rootCmd := &cobra.Command{
		Use:   "riskdesk-server",
		Short: "Reference API server for the FX hedging risk desk",
		Long: `Serves contracts, hedge orders and the per-pair portfolio for each
company (X-Company header), plus a WebSocket change feed at /api/ws.

Settings come from an optional YAML file and RISKDESK_* environment
variables, e.g. RISKDESK_SERVER_DATABASE_URL.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config (optional)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Initialize store ---
	st, cleanup, err := openStore(ctx, cfg.Server, log)
	if err != nil {
		return fmt.Errorf("store init: %w", err)
	}
	defer cleanup()

	// --- Live feed hub ---
	hub := api.NewHub(log.Named("ws"))
	go hub.Run(ctx)

	// --- HTTP router ---
	svc := api.NewService(st, hub, log.Named("api"))
	router := api.NewRouter(svc, hub, api.RouterConfig{
		RateLimit:       cfg.Server.RateLimit,
		RateLimitWindow: cfg.Server.RateLimitWindow,
		RequestTimeout:  cfg.Server.RequestTimeout,
	}, log.Named("http"))

	// --- Server ---
	srv := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("riskdesk api listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown.
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	log.Info("shutting down riskdesk api")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	return nil
}

// openStore picks PostgreSQL when a database URL is configured (optionally
// behind Redis), else the in-memory store.
func openStore(ctx context.Context, cfg config.ServerConfig, log *zap.Logger) (store.Store, func(), error) {
	var cleanup []func()
	closeAll := func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}

	if cfg.DatabaseURL == "" {
		log.Warn("database_url not set, using in-memory store (data will not persist)")
		return store.NewMemoryStore(), closeAll, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, closeAll, fmt.Errorf("database connection: %w", err)
	}
	cleanup = append(cleanup, pool.Close)

	pg := store.NewPostgresStore(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		closeAll()
		return nil, func() {}, err
	}
	log.Info("connected to PostgreSQL")

	var st store.Store = pg
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("invalid redis_url: %w", err)
		}
		rdb := redis.NewClient(opt)
		cleanup = append(cleanup, func() { rdb.Close() })
		st = store.NewCachedStore(st, rdb, cfg.CacheTTL)
		log.Info("Redis cache enabled", zap.Duration("ttl", cfg.CacheTTL))
	}

	return st, closeAll, nil
}
