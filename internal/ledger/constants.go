package ledger

// ============================================================================
// Reconciliation
// ============================================================================

// DefaultMaxCASAttempts bounds how often a conditional balance update is
// re-read and retried after losing a race
const DefaultMaxCASAttempts = 5

// NativeCoinDecimals is the number of base units per native coin, as a power of ten
const NativeCoinDecimals = 9

// NativeCoinSymbol is appended to formatted native coin amounts
const NativeCoinSymbol = "SOL"

// ============================================================================
// User Messages
// ============================================================================

const (
	MsgClaimedCredit     = "Claimed %s. New balance: %d"
	MsgClaimedBackfilled = "Reward for win %d was already credited"
	MsgAlreadyClaimed    = "Reward for win %d was already claimed"
	MsgOnChainRecorded   = "Claimed %s on chain"
)

// ============================================================================
// Error Messages
// ============================================================================

const (
	ErrMsgBeginTx          = "failed to begin ledger transaction: %w"
	ErrMsgCommitTx         = "failed to commit ledger transaction: %w"
	ErrMsgReadBalance      = "failed to read balance: %w"
	ErrMsgUpdateBalance    = "failed to update balance: %w"
	ErrMsgUnexpectedRows   = "balance update affected %d rows"
	ErrMsgCASExhausted     = "%w: gave up after %d attempts"
	ErrMsgNegativeBalance  = "%w: balance %d, delta %d"
	ErrMsgCannotCover      = "%w: balance %d does not cover %d"
	ErrMsgReadClaim        = "failed to read claim: %w"
	ErrMsgInsertClaim      = "failed to insert claim: %w"
	ErrMsgMarkCredited     = "failed to mark win credited: %w"
	ErrMsgWinAlreadyMarked = "%w: win %d credited concurrently"
	ErrMsgPoolMismatch     = "%w: win %d is not in pool %d"
	ErrMsgOnChainWin       = "%w: win %d pays out %s"
	ErrMsgEmptySignature   = "%w: signature required"
	ErrMsgTxAborted        = "transaction aborted"
	ErrMsgTxDone           = "transaction already finished"
)

// ============================================================================
// Log Messages
// ============================================================================

const (
	LogMsgBalanceAdjusted = "Balance adjusted"
	LogMsgCASConflict     = "Balance changed during update, retrying"
	LogMsgUserMissing     = "Balance update matched no row for user in tenant"
	LogMsgClaimed         = "Reward claimed"
	LogMsgClaimRace       = "Claim lost unique race, returning existing claim"
	LogMsgClaimBackfilled = "Backfilled claim record for credited win"
	LogMsgOnChainRecorded = "On-chain claim recorded"
)
