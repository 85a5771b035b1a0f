package repository

import (
	"context"

	"github.com/osse101/SpinVault_Go/internal/domain"
)

// Ledger is the persistent store behind balances, wins and claims
type Ledger interface {
	BeginLedgerTx(ctx context.Context) (LedgerTx, error)

	// Reads outside a transaction
	GetBalance(ctx context.Context, userID string, tenantID *string) (*domain.LedgerBalance, error)
	GetClaim(ctx context.Context, winID int64) (*domain.ClaimRecord, error)
	ListClaimable(ctx context.Context, userID string, tenantID *string) ([]domain.ClaimableItem, error)

	// CreateBalance opens a zero balance row; an existing row is left alone
	CreateBalance(ctx context.Context, userID string, tenantID *string) error
}

// LedgerTx groups ledger writes into one atomic unit. A unique violation
// aborts the transaction; the caller must roll back.
type LedgerTx interface {
	Tx

	// GetBalanceAmount returns domain.ErrUserNotFoundInTenant when no row
	// exists for (userID, tenantID)
	GetBalanceAmount(ctx context.Context, userID string, tenantID *string) (int64, error)

	// UpdateBalanceIfMatches writes newAmount only while the row still holds
	// expected, and returns the rows affected
	UpdateBalanceIfMatches(ctx context.Context, userID string, tenantID *string, expected, newAmount int64) (int64, error)

	// GetClaim returns nil, nil when the win has not been claimed
	GetClaim(ctx context.Context, winID int64) (*domain.ClaimRecord, error)

	// InsertClaim returns domain.ErrClaimAlreadyExists on a duplicate win id
	InsertClaim(ctx context.Context, claim *domain.ClaimRecord) error

	// GetWin returns domain.ErrWinNotFound when the win does not exist
	GetWin(ctx context.Context, winID int64) (*domain.WinRecord, error)
	InsertWin(ctx context.Context, win *domain.WinRecord) (int64, error)
	SetBalanceCredited(ctx context.Context, winID int64) (int64, error)

	InsertClaimable(ctx context.Context, item *domain.ClaimableItem) error
	// GetClaimable returns nil, nil when no item is queued for the win
	GetClaimable(ctx context.Context, winID int64) (*domain.ClaimableItem, error)
	DeleteClaimable(ctx context.Context, winID int64) (int64, error)
}
