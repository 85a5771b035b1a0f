package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/spin"
	"github.com/osse101/SpinVault_Go/internal/vault"
)

type MockClaimService struct {
	mock.Mock
}

func (m *MockClaimService) Claim(ctx context.Context, req domain.ClaimRequest) (*domain.ClaimResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClaimResult), args.Error(1)
}

func (m *MockClaimService) RecordOnChainClaim(ctx context.Context, winID int64, userID string, tenantID *string, signature string) (*domain.ClaimResult, error) {
	args := m.Called(ctx, winID, userID, tenantID, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClaimResult), args.Error(1)
}

func (m *MockClaimService) ListClaimable(ctx context.Context, userID string, tenantID *string) ([]domain.ClaimableItem, error) {
	args := m.Called(ctx, userID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ClaimableItem), args.Error(1)
}

type MockSpinService struct {
	mock.Mock
}

func (m *MockSpinService) Spin(ctx context.Context, req spin.Request) (*spin.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*spin.Result), args.Error(1)
}

type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) Balance(ctx context.Context, userID string, tenantID *string) (*domain.LedgerBalance, error) {
	args := m.Called(ctx, userID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerBalance), args.Error(1)
}

func (m *MockBalanceService) OpenAccount(ctx context.Context, userID string, tenantID *string) error {
	return m.Called(ctx, userID, tenantID).Error(0)
}

type MockVaultExecutor struct {
	mock.Mock
}

func (m *MockVaultExecutor) Execute(ctx context.Context, req vault.Request) (*vault.Receipt, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vault.Receipt), args.Error(1)
}

// jsonRequest builds a request whose body is payload; a string payload is sent raw
func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	var body []byte
	if s, ok := payload.(string); ok {
		body = []byte(s)
	} else {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
