package postgres

// PostgreSQL Error Codes
const (
	// PgErrorCodeUniqueViolation is the PostgreSQL error code for unique constraint violations
	PgErrorCodeUniqueViolation = "23505"
)

// Constraint names the repositories translate into domain errors
const (
	ConstraintClaimWinID = "claim_records_win_id_key"
)

// Error Messages - Transaction Operations
const (
	ErrMsgFailedToBeginTransaction  = "failed to begin transaction"
	ErrMsgFailedToCommitTransaction = "failed to commit transaction"
)

// Error Messages - Ledger Operations
const (
	ErrMsgFailedToGetBalance      = "failed to get balance"
	ErrMsgFailedToUpdateBalance   = "failed to update balance"
	ErrMsgFailedToCreateBalance   = "failed to create balance"
	ErrMsgFailedToGetClaim        = "failed to get claim record"
	ErrMsgFailedToInsertClaim     = "failed to insert claim record"
	ErrMsgFailedToGetWin          = "failed to get win record"
	ErrMsgFailedToInsertWin       = "failed to insert win record"
	ErrMsgFailedToMarkCredited    = "failed to mark win credited"
	ErrMsgFailedToInsertClaimable = "failed to insert claimable item"
	ErrMsgFailedToGetClaimable    = "failed to get claimable item"
	ErrMsgFailedToDeleteClaimable = "failed to delete claimable item"
	ErrMsgFailedToListClaimable   = "failed to list claimable items"
	ErrMsgFailedToParsePayoutKind = "failed to parse stored payout kind"
)
