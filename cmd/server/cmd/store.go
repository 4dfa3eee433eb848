package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/internhub/server/internal/config"
	"github.com/internhub/server/internal/storage"
	"github.com/internhub/server/internal/storage/memory"
	"github.com/internhub/server/internal/storage/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const storeConnectTimeout = 10 * time.Second

// openedStore is the selected store plus the pool behind it, if any.
type openedStore struct {
	storage.Repository
	Pool *pgxpool.Pool
}

// openStore connects the configured storage driver. With migrate set, pending
// PostgreSQL migrations are applied before the repository is returned.
func openStore(ctx context.Context, cfg config.Config, migrationsPath string, migrate bool, logger zerolog.Logger) (*openedStore, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		if cfg.IsProduction() {
			return nil, fmt.Errorf("memory storage is not allowed in production")
		}
		logger.Warn().Msg("using in-memory storage; data is lost on restart")
		return &openedStore{Repository: memory.New()}, nil

	case config.StorageDriverPostgres, "":
		if migrate {
			if err := postgres.MigrateUp(cfg.Database.URL, migrationsPath); err != nil {
				return nil, err
			}
			logger.Info().Str("path", migrationsPath).Msg("database migrations applied")
		}

		connectCtx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
		defer cancel()
		pool, err := postgres.Open(connectCtx, cfg.Database)
		if err != nil {
			return nil, err
		}
		repo, err := postgres.NewRepository(pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return &openedStore{Repository: repo, Pool: pool}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
