package txbuilder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/SpinVault_Go/internal/address"
	"github.com/osse101/SpinVault_Go/internal/chain"
	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/retry"
)

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestProber_Deposit(t *testing.T) {
	b := newTestBuilder()
	client := new(chain.MockClient)
	req := Request{Kind: domain.OperationDeposit, User: testUser, Mint: address.NativeMint, Amount: 10}
	accounts := b.Accounts(req)

	client.On("GetBalance", mock.Anything, testUser).Return(uint64(7_000), nil)
	client.On("GetTokenBalance", mock.Anything, accounts.UserTokenAccount).Return(uint64(0), chain.ErrAccountNotFound)

	probe, err := NewProber(client, b, fastPolicy(), true).Probe(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, uint64(7_000), probe.UserNativeBalance)
	assert.False(t, probe.UserTokenAccountExists)
	client.AssertNotCalled(t, "GetTokenBalance", mock.Anything, accounts.Vault.TokenAccount)
	client.AssertExpectations(t)
}

func TestProber_Claim(t *testing.T) {
	b := newTestBuilder()
	client := new(chain.MockClient)
	req := Request{Kind: domain.OperationClaim, User: testUser, ClaimTarget: testMint, Amount: 1}
	accounts := b.Accounts(req)

	client.On("GetBalance", mock.Anything, testUser).Return(uint64(50_000), nil)
	client.On("GetTokenBalance", mock.Anything, accounts.UserTokenAccount).Return(uint64(0), nil)
	client.On("GetTokenBalance", mock.Anything, accounts.Vault.TokenAccount).Return(uint64(3), nil)
	client.On("GetAccountInfo", mock.Anything, accounts.Tracker).Return(&chain.AccountInfo{Lamports: 1}, nil)

	probe, err := NewProber(client, b, fastPolicy(), false).Probe(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, probe.UserTokenAccountExists)
	assert.Equal(t, uint64(3), probe.VaultHoldings)
	assert.True(t, probe.TrackerInitialized)
	assert.False(t, probe.ClaimAnyAvailable)
}

func TestProber_RetriesTransientReads(t *testing.T) {
	b := newTestBuilder()
	client := new(chain.MockClient)
	req := Request{Kind: domain.OperationDeposit, User: testUser, Mint: testMint, Amount: 10}
	accounts := b.Accounts(req)

	transient := &chain.HTTPStatusError{StatusCode: 503}
	client.On("GetBalance", mock.Anything, testUser).Return(uint64(0), transient).Once()
	client.On("GetBalance", mock.Anything, testUser).Return(uint64(9), nil).Once()
	client.On("GetTokenBalance", mock.Anything, accounts.UserTokenAccount).Return(uint64(10), nil)

	probe, err := NewProber(client, b, fastPolicy(), true).Probe(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), probe.UserNativeBalance)
	client.AssertNumberOfCalls(t, "GetBalance", 2)
}

func TestProber_PermanentFailure(t *testing.T) {
	b := newTestBuilder()
	client := new(chain.MockClient)
	req := Request{Kind: domain.OperationDeposit, User: testUser, Mint: testMint, Amount: 10}
	accounts := b.Accounts(req)

	boom := &chain.RPCError{Code: -32602, Message: "invalid params"}
	client.On("GetBalance", mock.Anything, testUser).Return(uint64(0), boom)
	client.On("GetTokenBalance", mock.Anything, accounts.UserTokenAccount).Return(uint64(10), nil).Maybe()

	_, err := NewProber(client, b, fastPolicy(), true).Probe(context.Background(), req)
	var rpcErr *chain.RPCError
	assert.True(t, errors.As(err, &rpcErr))
	client.AssertNumberOfCalls(t, "GetBalance", 1)
}
