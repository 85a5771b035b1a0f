package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/SpinVault_Go/internal/config"
	"github.com/osse101/SpinVault_Go/internal/database"
	"github.com/osse101/SpinVault_Go/internal/database/postgres"
	"github.com/osse101/SpinVault_Go/internal/ledger"
	"github.com/osse101/SpinVault_Go/internal/repository"
)

// InitializeStore opens the ledger store named by cfg.StoreBackend. For
// postgres it connects, applies migrations and returns the pool, which the
// caller must close. The memory backend returns a nil pool.
func InitializeStore(ctx context.Context, cfg *config.Config) (repository.Ledger, *pgxpool.Pool, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		slog.Warn(LogMsgMemoryStoreWarning)
		return ledger.NewMemoryStore(), nil, nil

	case config.BackendPostgres:
		pool, err := database.NewPool(ctx, database.PoolConfig{
			ConnString:  cfg.GetDBConnString(),
			MaxConns:    cfg.DBMaxConns,
			MaxIdleTime: cfg.DBMaxConnIdleTime,
			MaxLifetime: cfg.DBMaxConnLifetime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", ErrMsgFailedConnectDB, err)
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("%s: %w", ErrMsgFailedMigrate, err)
		}
		slog.Info(LogMsgStoreInitialized, "backend", cfg.StoreBackend, "db_host", cfg.DBHost, "db_name", cfg.DBName)
		return postgres.NewLedgerRepository(pool), pool, nil

	default:
		return nil, nil, fmt.Errorf("%s: %q", ErrMsgUnknownStoreBackend, cfg.StoreBackend)
	}
}
