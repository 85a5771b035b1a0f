package txbuilder

// =============================================================================
// Fee Constants (base units of the native coin)
// =============================================================================

const (
	// DefaultFeeMargin covers signature fees and compute for one transaction
	// with headroom for priority fees
	DefaultFeeMargin uint64 = 10_000

	// DefaultTokenAccountRent is the rent-exempt minimum of a token account,
	// charged when the builder creates one for the user
	DefaultTokenAccountRent uint64 = 2_039_280
)

// =============================================================================
// Error Message Constants
// =============================================================================

const (
	ErrMsgNeedHave         = "%w: need %d, have %d"
	ErrMsgVaultShort       = "%w: vault holds %d, requested %d"
	ErrMsgZeroAmount       = "%w: amount must be positive"
	ErrMsgUnknownKind      = "%w: %q"
	ErrMsgNoClaimTarget    = "%w: claim target is required"
	ErrMsgNoAssetForTarget = "%w: %s"
	ErrMsgProbeFailed      = "probe %s: %w"

	// HintInitializeTracker is returned with ErrAccountNotInitialized for owned claims
	HintInitializeTracker = "initialize the ownership tracker account before claiming"
)

// =============================================================================
// Log Message Constants
// =============================================================================

const (
	LogMsgPlanBuilt  = "Transaction plan built"
	LogMsgProbeReady = "Account probe complete"
)
