package bootstrap

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/osse101/SpinVault_Go/internal/event"
	"github.com/osse101/SpinVault_Go/internal/server"
	"github.com/osse101/SpinVault_Go/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown.
// Any field may be nil.
type ShutdownComponents struct {
	Server             *server.Server
	WorkerPool         *worker.Pool
	ResilientPublisher *event.ResilientPublisher
	DBPool             *pgxpool.Pool
	Redis              *redis.Client
}

// GracefulShutdown stops components in dependency order:
// 1. HTTP server (stop accepting new requests)
// 2. Worker pool (cancel reconciliation jobs)
// 3. Event publisher (flush pending events)
// 4. Redis and database connections
//
// Errors during shutdown are logged but do not stop the sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)
	if components.Server != nil {
		if err := components.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	if components.WorkerPool != nil {
		slog.Info(LogMsgShuttingDownWorkers)
		components.WorkerPool.Stop()
	}

	if components.ResilientPublisher != nil {
		slog.Info(LogMsgShuttingDownEventPublisher)
		if err := components.ResilientPublisher.Shutdown(ctx); err != nil {
			slog.Error(LogMsgResilientPublisherFailed, "error", err)
		}
	}

	if components.Redis != nil {
		if err := components.Redis.Close(); err != nil {
			slog.Error(LogMsgRedisCloseFailed, "error", err)
		}
	}
	if components.DBPool != nil {
		components.DBPool.Close()
	}

	slog.Info(LogMsgServerStopped)
}
