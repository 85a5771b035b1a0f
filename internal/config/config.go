package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/osse101/SpinVault_Go/internal/address"
)

// Config holds the application configuration
type Config struct {
	Port        int
	LogLevel    string
	LogFormat   string
	LogDir      string
	ServiceName string
	Version     string
	Environment string
	APIKey      string // API key for authentication
	Locale      string

	// Ledger store
	StoreBackend      string
	DBUser            string
	DBPassword        string
	DBHost            string
	DBPort            string
	DBName            string
	DBMaxConns        int
	DBMaxConnIdleTime time.Duration
	DBMaxConnLifetime time.Duration

	// Chain access
	RPCURL               string
	RPCRequestsPerSecond int
	RPCBurst             int
	RPCTimeout           time.Duration
	VaultProgramID       string
	ClaimAnyEnabled      bool
	MaxRebuilds          int
	ReconcileTimeout     time.Duration
	SignerURL            string
	SignerKeypairPath    string

	// Submission guard
	GuardBackend     string
	GuardCooldown    time.Duration
	GuardInFlightTTL time.Duration
	GuardCapacity    int
	RedisAddr        string
	RedisPassword    string
	RedisDB          int

	// Rewards, workers and events
	WheelsPath      string
	WorkerCount     int
	WorkerQueueSize int
	EventMaxRetries int
	EventRetryDelay time.Duration
	DeadLetterPath  string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	if err := checkSchemaVersion(); err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", "text")),
		LogDir:      getEnv("LOG_DIR", "logs"),
		ServiceName: getEnv("SERVICE_NAME", "spinvault"),
		Version:     getEnv("VERSION", "dev"),
		Environment: getEnv("ENVIRONMENT", "dev"),
		APIKey:      getEnv("API_KEY", ""),
		Locale:      getEnv("LOCALE", DefaultLocale),

		StoreBackend:      strings.ToLower(getEnv("STORE_BACKEND", BackendPostgres)),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBName:            getEnv("DB_NAME", "spinvault"),
		DBMaxConns:        getEnvAsInt("DB_MAX_CONNS", DefaultDBMaxConns),
		DBMaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", DefaultDBMaxConnIdleTime),
		DBMaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", DefaultDBMaxConnLifetime),

		RPCURL:               getEnv("RPC_URL", DefaultRPCURL),
		RPCRequestsPerSecond: getEnvAsInt("RPC_REQUESTS_PER_SECOND", DefaultRPCRequestsPerSec),
		RPCBurst:             getEnvAsInt("RPC_BURST", DefaultRPCBurst),
		RPCTimeout:           getEnvAsDuration("RPC_TIMEOUT", DefaultRPCTimeout),
		VaultProgramID:       getEnv("VAULT_PROGRAM_ID", ""),
		ClaimAnyEnabled:      getEnvAsBool("CLAIM_ANY_ENABLED", false),
		MaxRebuilds:          getEnvAsInt("MAX_REBUILDS", DefaultMaxRebuilds),
		ReconcileTimeout:     getEnvAsDuration("RECONCILE_TIMEOUT", DefaultReconcileTimeout),
		SignerURL:            getEnv("SIGNER_URL", ""),
		SignerKeypairPath:    getEnv("SIGNER_KEYPAIR_PATH", ""),

		GuardBackend:     strings.ToLower(getEnv("GUARD_BACKEND", BackendMemory)),
		GuardCooldown:    getEnvAsDuration("GUARD_COOLDOWN", DefaultGuardCooldown),
		GuardInFlightTTL: getEnvAsDuration("GUARD_IN_FLIGHT_TTL", DefaultGuardInFlightTTL),
		GuardCapacity:    getEnvAsInt("GUARD_CAPACITY", DefaultGuardCapacity),
		RedisAddr:        getEnv("REDIS_ADDR", DefaultRedisAddr),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvAsInt("REDIS_DB", 0),

		WheelsPath:      getEnv("WHEELS_PATH", ConfigPathWheels),
		WorkerCount:     getEnvAsInt("WORKER_COUNT", DefaultWorkerCount),
		WorkerQueueSize: getEnvAsInt("WORKER_QUEUE_SIZE", DefaultWorkerQueueSize),
		EventMaxRetries: getEnvAsInt("EVENT_MAX_RETRIES", DefaultEventMaxRetries),
		EventRetryDelay: getEnvAsDuration("EVENT_RETRY_DELAY", DefaultEventRetryDelay),
		DeadLetterPath:  getEnv("EVENT_DEADLETTER_PATH", ConfigPathDeadLetter),
	}

	portStr := getEnv("PORT", strconv.Itoa(DefaultPort))
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	// Validate API key is set
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set for security")
	}

	if cfg.StoreBackend != BackendPostgres && cfg.StoreBackend != BackendMemory {
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: want %s or %s", cfg.StoreBackend, BackendPostgres, BackendMemory)
	}
	if cfg.GuardBackend != BackendMemory && cfg.GuardBackend != BackendRedis {
		return nil, fmt.Errorf("invalid GUARD_BACKEND %q: want %s or %s", cfg.GuardBackend, BackendMemory, BackendRedis)
	}
	if cfg.VaultProgramID != "" {
		if _, err := address.Parse(cfg.VaultProgramID); err != nil {
			return nil, fmt.Errorf("invalid VAULT_PROGRAM_ID: %w", err)
		}
	}

	return cfg, nil
}

// VaultEnabled reports whether vault operations can be served: the program
// is known and something can sign
func (c *Config) VaultEnabled() bool {
	return c.VaultProgramID != "" && (c.SignerURL != "" || c.SignerKeypairPath != "")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt falls back to the default when the value is missing or not an integer
func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration falls back to the default when the value is missing or malformed
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
