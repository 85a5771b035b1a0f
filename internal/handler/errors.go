package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details for security reasons.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	// HTTP status messages
	ErrMsgMethodNotAllowed      = "Method not allowed"
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Query parameter error messages
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgInvalidAddress    = "Invalid %s address"

	// Operation failures
	ErrMsgClaimFailed         = "Failed to claim reward"
	ErrMsgRecordClaimFailed   = "Failed to record on-chain claim"
	ErrMsgListClaimableFailed = "Failed to list claimable rewards"
	ErrMsgSpinFailed          = "Failed to spin"
	ErrMsgBalanceFailed       = "Failed to read balance"
	ErrMsgOpenAccountFailed   = "Failed to open account"
	ErrMsgVaultFailed         = "Vault operation failed"
	ErrMsgUnknownOperation    = "Unknown vault operation"
)

// Success messages for API responses
const (
	MsgAccountOpened = "Account ready"
)
