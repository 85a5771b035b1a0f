package vault

import "time"

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultMaxRebuilds is how many times an expired blockhash triggers a
	// fresh build and signature
	DefaultMaxRebuilds = 2

	// DefaultConfirmAttempts bounds confirmation polling inside a request
	DefaultConfirmAttempts = 20
	DefaultConfirmInterval = 500 * time.Millisecond
	DefaultConfirmMaxDelay = 2 * time.Second

	// DefaultStatusCheckTimeout bounds the final signature lookup made after
	// polling gave up, which runs even if the request context is done
	DefaultStatusCheckTimeout = 5 * time.Second

	// DefaultReconcileInterval and DefaultReconcileTimeout drive the
	// background job for signatures whose fate is still unknown
	DefaultReconcileInterval = 2 * time.Second
	DefaultReconcileTimeout  = 3 * time.Minute

	methodConfirm   = "confirmTransaction"
	methodReconcile = "reconcileSignature"
)

// =============================================================================
// User Messages
// =============================================================================

const (
	MsgConfirmed        = "Transaction confirmed"
	MsgLikelySucceeded  = "Transaction was already processed; refresh your balances"
	MsgPendingReconcile = "Transaction sent but not yet confirmed; its status will be checked in the background"
	MsgFailed           = "Transaction failed"
)

// =============================================================================
// Error Message Constants
// =============================================================================

const (
	ErrMsgUnknownKind    = "%w: unknown operation kind %q"
	ErrMsgMissingUser    = "%w: user address is required"
	ErrMsgZeroAmount     = "%w: amount must be positive"
	ErrMsgSerialize      = "failed to serialize transaction: %w"
	ErrMsgSign           = "failed to sign transaction: %w"
	ErrMsgBlockhash      = "failed to fetch blockhash: %w"
	ErrMsgSimulate       = "failed to simulate transaction: %w"
	ErrMsgRebuildsSpent  = "%w: gave up after %d rebuilds"
	ErrMsgStillUnknown   = "%w: signature %s"
	ErrMsgReconcileTimed = "%w: signature %s still unknown after %s"
)

// =============================================================================
// Log Message Constants
// =============================================================================

const (
	LogMsgOperationStarted   = "Vault operation admitted"
	LogMsgOperationFinished  = "Vault operation finished"
	LogMsgRebuilding         = "Blockhash expired, rebuilding transaction"
	LogMsgSimulationRejected = "Simulation rejected transaction"
	LogMsgSendAmbiguous      = "Send failed ambiguously, checking signature status"
	LogMsgConfirmExhausted   = "Confirmation polling exhausted, reconciling by signature"
	LogMsgReconcileQueued    = "Queued background reconciliation"
	LogMsgReconcileQueueFull = "Could not queue background reconciliation"
	LogMsgReconciled         = "Background reconciliation settled"
	LogMsgReconcileGaveUp    = "Background reconciliation gave up"
)
