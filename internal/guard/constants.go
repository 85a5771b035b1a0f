package guard

import "time"

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultCooldown absorbs double-click races between admitted operations
	DefaultCooldown = 3 * time.Second

	// DefaultInFlightTTL releases an abandoned operation so the user is never
	// locked out by a request that timed out after sending
	DefaultInFlightTTL = 90 * time.Second

	// DefaultCapacity bounds the number of tracked users in the memory backend.
	// Admitting a new user past it evicts the least recently admitted one,
	// which loses that user's in-flight mark and cooldown. Use the redis
	// backend when more users than this can be active within one TTL.
	DefaultCapacity = 100_000
)

// =============================================================================
// Redis Keys
// =============================================================================

const (
	KeyPrefixCooldown = "guard:cooldown:"
	KeyPrefixInFlight = "guard:inflight:"
)

// =============================================================================
// Error Message Constants
// =============================================================================

const (
	ErrMsgSetInFlightFailed  = "failed to mark operation in flight: %w"
	ErrMsgSetCooldownFailed  = "failed to start cooldown: %w"
	ErrMsgReadCooldownFailed = "failed to read cooldown: %w"
	ErrMsgReleaseFailed      = "failed to release operation: %w"
	ErrMsgRedisRequired      = "redis client required for submission guard"
)

// =============================================================================
// Log Message Constants
// =============================================================================

const (
	LogMsgAdmitted         = "Operation admitted"
	LogMsgRejectedCooldown = "Operation rejected: cooldown"
	LogMsgRejectedInFlight = "Operation rejected: already in flight"
	LogMsgReleased         = "Operation released"
	LogMsgReleaseFailed    = "Failed to release operation"
	LogMsgCapacityEviction = "Guard at capacity: evicted oldest user"
)
