package event

import "time"

// EventSchemaVersion is stamped on every event the service publishes
const EventSchemaVersion = "1.0"

const (
	// RetryQueueBufferSize bounds the publisher's pending retries; overflow
	// goes straight to the dead-letter file
	RetryQueueBufferSize = 1000

	// RetryMaxDelay caps the doubling retry delay
	RetryMaxDelay = time.Minute

	DeadLetterFilePermissions = 0o644
)

const (
	LogMsgEventPublishFailed    = "Event publish failed, queuing for retry"
	LogMsgRetryQueueFull        = "Retry queue full, event sent to dead-letter"
	LogMsgDeadLetterWriteFailed = "Failed to write dead-letter entry"
	LogMsgEventDeadLettered     = "Event dead-lettered"
	LogMsgEventRetryExhausted   = "Event retries exhausted"
	LogMsgEventRetryFailed      = "Event retry failed, rescheduling"
	LogMsgEventRetrySucceeded   = "Event retry succeeded"
	LogMsgQueueDrainedShutdown  = "Drained retry queue during shutdown"
	LogMsgShutdownTimeout       = "Resilient publisher shutdown timed out"

	LogMsgHandlerErrorFormat = "encountered %d errors while handling event %s: %v"
)

// CalculateRetryDelay doubles baseDelay per attempt (attempt 1 waits
// baseDelay) and never exceeds RetryMaxDelay
func CalculateRetryDelay(baseDelay time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= RetryMaxDelay {
			return RetryMaxDelay
		}
	}
	return min(delay, RetryMaxDelay)
}
