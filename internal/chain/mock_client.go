package chain

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/osse101/SpinVault_Go/internal/address"
)

// MockClient implements Client for tests in dependent packages
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetBalance(ctx context.Context, account address.Address) (uint64, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockClient) GetAccountInfo(ctx context.Context, account address.Address) (*AccountInfo, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AccountInfo), args.Error(1)
}

func (m *MockClient) GetTokenBalance(ctx context.Context, tokenAccount address.Address) (uint64, error) {
	args := m.Called(ctx, tokenAccount)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockClient) GetLatestBlockhash(ctx context.Context) (Blockhash, error) {
	args := m.Called(ctx)
	return args.Get(0).(Blockhash), args.Error(1)
}

func (m *MockClient) SimulateTransaction(ctx context.Context, raw []byte) (*SimulationResult, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SimulationResult), args.Error(1)
}

func (m *MockClient) SendRawTransaction(ctx context.Context, raw []byte, opts SendOptions) (string, error) {
	args := m.Called(ctx, raw, opts)
	return args.String(0), args.Error(1)
}

func (m *MockClient) GetSignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error) {
	args := m.Called(ctx, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SignatureStatus), args.Error(1)
}

func (m *MockClient) GetBlockHeight(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}
