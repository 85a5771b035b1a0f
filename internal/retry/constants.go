package retry

import "time"

// Default policy values
const (
	DefaultMaxAttempts = 4
	DefaultBaseDelay   = 250 * time.Millisecond
	DefaultMaxDelay    = 4 * time.Second

	// BackoffMultiplier doubles the delay between attempts
	BackoffMultiplier = 2.0
	// BackoffJitter spreads concurrent retries against the same node
	BackoffJitter = 0.2
)

// Log message constants
const (
	LogMsgRetrying          = "Retrying read"
	LogMsgAttemptsExhausted = "Read failed after retries"
)
