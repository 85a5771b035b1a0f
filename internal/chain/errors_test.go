package chain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/SpinVault_Go/internal/address"
	"github.com/osse101/SpinVault_Go/internal/domain"
)

// statusClient serves scripted signature statuses and block heights
type statusClient struct {
	Client
	statuses []*SignatureStatus
	height   uint64
	reads    int
}

func (c *statusClient) GetSignatureStatus(_ context.Context, _ string) (*SignatureStatus, error) {
	i := c.reads
	if i >= len(c.statuses) {
		i = len(c.statuses) - 1
	}
	c.reads++
	return c.statuses[i], nil
}

func (c *statusClient) GetBlockHeight(_ context.Context) (uint64, error) {
	return c.height, nil
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"already processed", &RPCError{Code: -32002, Message: "Transaction simulation failed: This transaction has already been processed"}, domain.ErrAlreadyProcessed},
		{"blockhash by code", &RPCError{Code: RPCCodeBlockhashNotFound, Message: "Transaction simulation failed"}, domain.ErrBlockhashExpired},
		{"blockhash by message", &RPCError{Code: -32603, Message: "Blockhash not found"}, domain.ErrBlockhashExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(fmt.Errorf("send: %w", tt.err))
			assert.ErrorIs(t, got, tt.want)
			var rpcErr *RPCError
			assert.ErrorAs(t, got, &rpcErr, "original error stays in the chain")
		})
	}

	plain := errors.New("boom")
	assert.Equal(t, plain, ClassifyError(plain))
	assert.NoError(t, ClassifyError(nil))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(ErrNotYetConfirmed))
	assert.True(t, Retryable(&HTTPStatusError{StatusCode: http.StatusTooManyRequests}))
	assert.True(t, Retryable(&HTTPStatusError{StatusCode: http.StatusBadGateway}))
	assert.True(t, Retryable(&RPCError{Code: RPCCodeNodeUnhealthy}))
	assert.True(t, Retryable(context.DeadlineExceeded))

	assert.False(t, Retryable(nil))
	assert.False(t, Retryable(context.Canceled))
	assert.False(t, Retryable(&HTTPStatusError{StatusCode: http.StatusBadRequest}))
	assert.False(t, Retryable(&RPCError{Code: -32602, Message: "invalid params"}))
	assert.False(t, Retryable(domain.ErrBlockhashExpired))
}

func TestPollConfirmation(t *testing.T) {
	bh := Blockhash{Hash: address.Zero, LastValidBlockHeight: 100}
	ctx := context.Background()

	t.Run("landed", func(t *testing.T) {
		c := &statusClient{statuses: []*SignatureStatus{{ConfirmationStatus: CommitmentConfirmed}}, height: 90}
		status, err := PollConfirmation(ctx, c, "sig", bh)
		require.NoError(t, err)
		assert.True(t, status.Landed())
	})

	t.Run("processed only is not yet confirmed", func(t *testing.T) {
		c := &statusClient{statuses: []*SignatureStatus{{ConfirmationStatus: CommitmentProcessed}}, height: 90}
		_, err := PollConfirmation(ctx, c, "sig", bh)
		assert.ErrorIs(t, err, ErrNotYetConfirmed)
	})

	t.Run("unknown within window", func(t *testing.T) {
		c := &statusClient{statuses: []*SignatureStatus{nil}, height: 100}
		_, err := PollConfirmation(ctx, c, "sig", bh)
		assert.ErrorIs(t, err, ErrNotYetConfirmed)
	})

	t.Run("unknown past window", func(t *testing.T) {
		c := &statusClient{statuses: []*SignatureStatus{nil}, height: 101}
		_, err := PollConfirmation(ctx, c, "sig", bh)
		assert.ErrorIs(t, err, domain.ErrBlockhashExpired)
	})

	t.Run("landed between reads past window", func(t *testing.T) {
		c := &statusClient{statuses: []*SignatureStatus{nil, {ConfirmationStatus: CommitmentFinalized}}, height: 150}
		status, err := PollConfirmation(ctx, c, "sig", bh)
		require.NoError(t, err)
		assert.True(t, status.Landed())
	})

	t.Run("landed with error", func(t *testing.T) {
		c := &statusClient{statuses: []*SignatureStatus{{ConfirmationStatus: CommitmentConfirmed, Err: map[string]any{"InstructionError": []any{0, "Custom"}}}}}
		_, err := PollConfirmation(ctx, c, "sig", bh)
		assert.ErrorIs(t, err, domain.ErrTransactionFailed)
	})
}

func TestClassifySimulation(t *testing.T) {
	assert.NoError(t, ClassifySimulation(&SimulationResult{}))
	assert.NoError(t, ClassifySimulation(nil))

	err := ClassifySimulation(&SimulationResult{Err: "BlockhashNotFound"})
	assert.ErrorIs(t, err, domain.ErrBlockhashExpired)

	err = ClassifySimulation(&SimulationResult{Err: "AlreadyProcessed"})
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	err = ClassifySimulation(&SimulationResult{
		Err:  map[string]any{"InstructionError": []any{2, map[string]any{"Custom": 1}}},
		Logs: []string{"Program log: Error: insufficient funds"},
	})
	require.ErrorIs(t, err, domain.ErrSimulationFailed)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	var simErr *domain.SimulationError
	require.ErrorAs(t, err, &simErr)
	assert.Equal(t, `{"InstructionError":[2,{"Custom":1}]}`, simErr.Reason)
	assert.Equal(t, HintInsufficientFunds, simErr.Hint)
	assert.Len(t, simErr.Logs, 1)
}
