package bootstrap

import "time"

// =============================================================================
// File System Permissions
// =============================================================================

const (
	// DirPermission is the standard permission for creating directories
	DirPermission = 0755

	// LogFilePermission is the permission for log files
	LogFilePermission = 0644
)

// =============================================================================
// Logger Configuration
// =============================================================================

const (
	// LogFileTimestampFormat is the timestamp format for log filenames (YYYY-MM-DD_HH-MM-SS)
	LogFileTimestampFormat = "2006-01-02_15-04-05"

	// LogFileNamePattern is the format string for log filenames
	LogFileNamePattern = "session_%s.log"

	// LogFileExtension is the file extension for log files
	LogFileExtension = ".log"

	// LogFileRetentionCount is the number of older session logs kept next to the new one
	LogFileRetentionCount = 9
)

// Log messages for logger initialization
const (
	LogMsgLoggingInitialized  = "Logging initialized"
	LogMsgStartingService     = "Starting SpinVault"
	LogMsgConfigurationLoaded = "Configuration loaded"
	LogMsgFailedCreateLogsDir = "failed to create logs directory"
	LogMsgFailedOpenLogFile   = "failed to open log file"
	LogMsgFailedDeleteOldLog  = "Failed to delete old log file"
)

// =============================================================================
// Event System Configuration
// =============================================================================

const (
	// EventDefaultMaxRetries is the default number of retry attempts for failed event publishing
	EventDefaultMaxRetries = 5

	// EventDefaultRetryDelay is the default base delay between retry attempts (exponential backoff)
	EventDefaultRetryDelay = 2 * time.Second

	// EventDefaultDeadLetterPath is the default file path for dead-letter event logging
	EventDefaultDeadLetterPath = "logs/event_deadletter.jsonl"
)

// Log messages for event system initialization
const (
	LogMsgEventSystemInitialized         = "Event system initialized"
	LogMsgFailedCreateDeadLetterDir      = "failed to create dead-letter directory"
	LogMsgFailedCreateResilientPublisher = "failed to create resilient publisher"
	LogMsgMetricsCollectorRegistered     = "Metrics collector registered"
	LogMsgEventTraceRegistered           = "Event trace logger registered"
	LogMsgEventObserved                  = "Event observed"
	ErrMsgFailedRegisterMetrics          = "failed to register metrics collector"
)

// =============================================================================
// Store, Guard and Catalogue
// =============================================================================

const (
	LogMsgStoreInitialized    = "Ledger store initialized"
	LogMsgGuardInitialized    = "Operation guard initialized"
	LogMsgCatalogLoaded       = "Wheel catalogue loaded"
	LogMsgMemoryStoreWarning  = "Using in-memory ledger store, balances are lost on restart"
	ErrMsgFailedConnectDB     = "failed to connect to database"
	ErrMsgFailedMigrate       = "failed to apply migrations"
	ErrMsgFailedConnectRedis  = "failed to connect to redis"
	ErrMsgFailedCreateGuard   = "failed to create guard"
	ErrMsgFailedLoadCatalog   = "failed to load wheel catalogue"
	ErrMsgUnknownStoreBackend = "unknown store backend"
	ErrMsgUnknownGuardBackend = "unknown guard backend"
	ErrMsgInvalidLocale       = "invalid locale"
)

// =============================================================================
// Vault
// =============================================================================

const (
	LogMsgVaultInitialized = "Vault orchestrator initialized"
	ErrMsgInvalidProgramID = "invalid vault program id"
	ErrMsgFailedLoadSigner = "failed to load signer keypair"
	SignerKindRemote       = "remote"
	SignerKindKeypair      = "keypair"
)

// =============================================================================
// Shutdown Messages
// =============================================================================

const (
	LogMsgShuttingDownServer         = "Shutting down server..."
	LogMsgShuttingDownWorkers        = "Stopping worker pool..."
	LogMsgShuttingDownEventPublisher = "Shutting down event publisher..."
	LogMsgServerStopped              = "Server stopped"
	LogMsgServerForcedShutdown       = "Server forced to shutdown"
	LogMsgResilientPublisherFailed   = "Resilient publisher shutdown failed"
	LogMsgRedisCloseFailed           = "Redis client close failed"
)
