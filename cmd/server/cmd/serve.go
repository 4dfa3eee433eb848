package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/internhub/server/internal/api"
	"github.com/internhub/server/internal/api/middleware"
	"github.com/internhub/server/internal/auth"
	"github.com/internhub/server/internal/config"
	"github.com/internhub/server/internal/domain/accounts"
	"github.com/internhub/server/internal/metrics"
	"github.com/internhub/server/internal/storage/postgres"
	"github.com/internhub/server/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	host           string
	port           int
	migrate        bool
	migrationsPath string
}

func newServeCommand(flags *globalFlags) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the InternHub HTTP server",
		Long: `Start the InternHub HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables (or --config file if provided)
- Apply pending database migrations unless --migrate=false
- Ensure the admin account if ADMIN_EMAIL and ADMIN_PASSWORD are set
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start against the in-memory store
  STORAGE_DRIVER=memory server serve --log-format console`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if opts.host != "" {
				cfg.Server.Host = opts.host
			}
			if opts.port != 0 {
				cfg.Server.Port = opts.port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, *opts)
		},
	}

	cmd.Flags().StringVar(&opts.host, "host", "", "server host address (default: 0.0.0.0)")
	cmd.Flags().IntVar(&opts.port, "port", 0, "server port (default: 8080)")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", true, "apply pending migrations on startup (postgres only)")
	cmd.Flags().StringVar(&opts.migrationsPath, "migrations", postgres.DefaultMigrationsPath, "migrations directory")

	return cmd
}

func runServer(ctx context.Context, cfg config.Config, opts serveOptions) error {
	logger := config.NewLogger(cfg.Logging)
	logger.Info().
		Str("version", Version).
		Str("environment", cfg.Environment).
		Str("storage", cfg.Storage.Driver).
		Msg("starting InternHub server")

	metrics.Init(Version, GitCommit, BuildDate)

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	store, err := openStore(ctx, cfg, opts.migrationsPath, opts.migrate, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)

	if err := bootstrapAdmin(ctx, cfg, store, tokens, logger); err != nil {
		logger.Error().Err(err).Msg("admin bootstrap failed")
	}

	limiter, closeLimiter, err := newLimiter(cfg, logger)
	if err != nil {
		return err
	}
	defer closeLimiter()

	server := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: api.NewRouter(api.Dependencies{
			Config:  cfg,
			Logger:  logger,
			Store:   store,
			Tokens:  tokens,
			Limiter: limiter,
			Build:   buildInfo(),
		}),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)

	if store.Pool != nil {
		collector := metrics.NewDBCollector(store.Pool)
		g.Go(func() error {
			collector.Start(gctx, 15*time.Second)
			return nil
		})
	}

	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newLimiter picks the shared Redis limiter when REDIS_URL is set and the
// in-process limiter otherwise.
func newLimiter(cfg config.Config, logger zerolog.Logger) (middleware.Limiter, func(), error) {
	if cfg.Redis.URL == "" {
		limiter := middleware.NewMemoryLimiter(cfg.RateLimit)
		return limiter, limiter.Stop, nil
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis unreachable; rate limiting fails open until it recovers")
	}

	closeClient := func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}
	return middleware.NewRedisLimiter(client, middleware.TierLimits(cfg.RateLimit), logger), closeClient, nil
}

func bootstrapAdmin(ctx context.Context, cfg config.Config, store *openedStore, tokens *auth.JWTManager, logger zerolog.Logger) error {
	bootstrap := cfg.AdminBootstrap
	if !bootstrap.Enabled() {
		logger.Debug().Msg("admin bootstrap env vars not set; skipping")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	service := accounts.NewService(store.Accounts(), tokens, logger)
	account, created, err := service.EnsureAdmin(ctx, bootstrap.Name, bootstrap.Email, bootstrap.Password)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	event := logger.Info().Str("account_id", account.ID)
	if !cfg.IsProduction() {
		event = event.Str("email", account.Email)
	}
	event.Msg("bootstrapped admin account")
	return nil
}
