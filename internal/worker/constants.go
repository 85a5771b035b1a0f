package worker

// ============================================================================
// Pool Defaults
// ============================================================================

const (
	DefaultWorkers   = 4
	DefaultQueueSize = 256
)

// ============================================================================
// Error Messages
// ============================================================================

const (
	ErrMsgQueueFull   = "worker queue is full"
	ErrMsgPoolStopped = "worker pool is stopped"
)

// ============================================================================
// Log Messages - Worker Pool
// ============================================================================

const (
	// LogMsgWorkerJobFailed is logged when a worker fails to process a job
	LogMsgWorkerJobFailed = "Worker job failed"
	LogMsgJobDropped      = "Worker job dropped on shutdown"
)

// ============================================================================
// Test Configuration
// ============================================================================

// Test pool configuration values used in pool_test.go
const (
	TestWorkerCount      = 2
	TestQueueSize        = 10
	TestExpectedJobCount = 2
)
