package ledger

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/osse101/SpinVault_Go/internal/domain"
)

type mockLedgerTx struct {
	mock.Mock
}

func (m *mockLedgerTx) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockLedgerTx) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockLedgerTx) GetBalanceAmount(ctx context.Context, userID string, tenantID *string) (int64, error) {
	args := m.Called(ctx, userID, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLedgerTx) UpdateBalanceIfMatches(ctx context.Context, userID string, tenantID *string, expected, newAmount int64) (int64, error) {
	args := m.Called(ctx, userID, tenantID, expected, newAmount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLedgerTx) GetClaim(ctx context.Context, winID int64) (*domain.ClaimRecord, error) {
	args := m.Called(ctx, winID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClaimRecord), args.Error(1)
}

func (m *mockLedgerTx) InsertClaim(ctx context.Context, claim *domain.ClaimRecord) error {
	return m.Called(ctx, claim).Error(0)
}

func (m *mockLedgerTx) GetWin(ctx context.Context, winID int64) (*domain.WinRecord, error) {
	args := m.Called(ctx, winID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WinRecord), args.Error(1)
}

func (m *mockLedgerTx) InsertWin(ctx context.Context, win *domain.WinRecord) (int64, error) {
	args := m.Called(ctx, win)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLedgerTx) SetBalanceCredited(ctx context.Context, winID int64) (int64, error) {
	args := m.Called(ctx, winID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLedgerTx) InsertClaimable(ctx context.Context, item *domain.ClaimableItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockLedgerTx) GetClaimable(ctx context.Context, winID int64) (*domain.ClaimableItem, error) {
	args := m.Called(ctx, winID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClaimableItem), args.Error(1)
}

func (m *mockLedgerTx) DeleteClaimable(ctx context.Context, winID int64) (int64, error) {
	args := m.Called(ctx, winID)
	return args.Get(0).(int64), args.Error(1)
}
