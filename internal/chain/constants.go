package chain

import "time"

// =============================================================================
// Commitment Levels
// =============================================================================

const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"
)

// =============================================================================
// JSON-RPC Methods
// =============================================================================

const (
	MethodGetBalance             = "getBalance"
	MethodGetAccountInfo         = "getAccountInfo"
	MethodGetTokenAccountBalance = "getTokenAccountBalance"
	MethodGetLatestBlockhash     = "getLatestBlockhash"
	MethodSimulateTransaction    = "simulateTransaction"
	MethodSendTransaction        = "sendTransaction"
	MethodGetSignatureStatuses   = "getSignatureStatuses"
	MethodGetBlockHeight         = "getBlockHeight"

	signerMethod = "signTransaction"

	jsonRPCVersion = "2.0"
	encodingBase64 = "base64"
)

// =============================================================================
// Client Defaults
// =============================================================================

const (
	// DefaultRequestTimeout bounds a single RPC round trip
	DefaultRequestTimeout = 15 * time.Second

	// DefaultRequestsPerSecond is the client-side rate limit toward the node
	DefaultRequestsPerSecond = 20

	// DefaultBurst lets a probe fan out without waiting on the limiter
	DefaultBurst = 10

	// DefaultSignerTimeout bounds a round trip to a remote signer, which may
	// wait on a user approving the transaction
	DefaultSignerTimeout = 2 * time.Minute

	// maxErrorBody caps how much of a non-200 response body ends up in errors
	maxErrorBody = 512
)

// =============================================================================
// RPC Error Codes
// =============================================================================

const (
	// RPCCodeBlockhashNotFound is returned by preflight for an unknown blockhash
	RPCCodeBlockhashNotFound = -32002
	// RPCCodeNodeUnhealthy is returned when the node is behind
	RPCCodeNodeUnhealthy = -32005
)

// =============================================================================
// Error Message Constants
// =============================================================================

const (
	ErrMsgEncodeRequestFailed  = "failed to encode %s request: %w"
	ErrMsgRequestFailed        = "%s request failed: %w"
	ErrMsgUnexpectedStatus     = "%s returned HTTP %d: %s"
	ErrMsgDecodeResponseFailed = "failed to decode %s response: %w"
	ErrMsgSerializeFailed      = "failed to serialize transaction: %w"
	ErrMsgDecodeAccountFailed  = "failed to decode account data: %w"
	ErrMsgParseAmountFailed    = "failed to parse token amount %q: %w"
	ErrMsgRateLimitWait        = "rate limiter wait: %w"
	ErrMsgReadKeypair          = "failed to read keypair %s: %w"
)

// =============================================================================
// Simulation Hints
// =============================================================================

const (
	HintInsufficientFunds    = "top up the wallet to cover the amount and network fees"
	HintUninitializedAccount = "an account the program reads has not been created yet"
)

// =============================================================================
// Log Message Constants
// =============================================================================

const (
	LogMsgSendingTransaction = "Sending signed transaction"
	LogMsgTransactionSent    = "Transaction sent"
	LogMsgSendFailed         = "Transaction send failed"
	LogMsgDoubleSendBlocked  = "Refused to resend a consumed payload"
)
