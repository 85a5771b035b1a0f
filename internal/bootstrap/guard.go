package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/osse101/SpinVault_Go/internal/config"
	"github.com/osse101/SpinVault_Go/internal/guard"
)

// InitializeGuard builds the operation guard named by cfg.GuardBackend. The
// redis backend also returns its client, which the caller must close.
func InitializeGuard(ctx context.Context, cfg *config.Config) (guard.Guard, *redis.Client, error) {
	guardConfig := guard.Config{Cooldown: cfg.GuardCooldown, InFlightTTL: cfg.GuardInFlightTTL, Capacity: cfg.GuardCapacity}

	switch cfg.GuardBackend {
	case config.BackendMemory:
		slog.Info(LogMsgGuardInitialized, "backend", cfg.GuardBackend)
		return guard.NewMemoryGuard(guardConfig, guard.RealClock{}), nil, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("%s: %w", ErrMsgFailedConnectRedis, err)
		}
		g, err := guard.NewRedisGuard(guard.NewRedisStore(client), guardConfig, guard.RealClock{})
		if err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("%s: %w", ErrMsgFailedCreateGuard, err)
		}
		slog.Info(LogMsgGuardInitialized, "backend", cfg.GuardBackend, "redis_addr", cfg.RedisAddr)
		return g, client, nil

	default:
		return nil, nil, fmt.Errorf("%s: %q", ErrMsgUnknownGuardBackend, cfg.GuardBackend)
	}
}
