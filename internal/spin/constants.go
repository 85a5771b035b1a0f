package spin

// =============================================================================
// Error Messages
// =============================================================================

const (
	ErrMsgMissingFields = "%w: user_id and wheel_id are required"
	ErrMsgBeginTx       = "failed to begin spin transaction: %w"
	ErrMsgRecordWin     = "failed to record win: %w"
	ErrMsgQueueClaim    = "failed to queue claimable reward: %w"
	ErrMsgCommitTx      = "failed to commit spin: %w"
)

// =============================================================================
// Log Messages
// =============================================================================

const (
	LogMsgSpinSettled = "Spin settled"
	LogMsgSpinFailed  = "Spin rolled back"
)
