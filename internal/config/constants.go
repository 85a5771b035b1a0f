package config

import "time"

const (
	// Configuration file paths
	ConfigPathWheels       = "configs/wheels.json"
	ConfigPathDeadLetter   = "logs/event_deadletter.jsonl"
	ConfigPathWheelSchemas = "internal/reward/schemas"
)

// Backend names
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
)

// Defaults for optional settings
const (
	DefaultPort              = 8080
	DefaultRPCURL            = "http://localhost:8899"
	DefaultRPCRequestsPerSec = 20
	DefaultRPCBurst          = 10
	DefaultRPCTimeout        = 15 * time.Second
	DefaultMaxRebuilds       = 2
	DefaultReconcileTimeout  = 3 * time.Minute
	DefaultGuardCooldown     = 3 * time.Second
	DefaultGuardInFlightTTL  = 90 * time.Second
	DefaultGuardCapacity     = 100_000
	DefaultRedisAddr         = "localhost:6379"
	DefaultWorkerCount       = 4
	DefaultWorkerQueueSize   = 256
	DefaultEventMaxRetries   = 5
	DefaultEventRetryDelay   = 2 * time.Second
	DefaultDBMaxConns        = 20
	DefaultDBMaxConnIdleTime = 5 * time.Minute
	DefaultDBMaxConnLifetime = 30 * time.Minute
	DefaultLocale            = "en"
)
