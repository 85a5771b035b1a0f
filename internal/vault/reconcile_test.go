package vault

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/SpinVault_Go/internal/chain"
	"github.com/osse101/SpinVault_Go/internal/domain"
)

func newReconcileJob(client chain.Client, timeout time.Duration) *ReconcileJob {
	return &ReconcileJob{
		client:    client,
		operation: domain.PendingOperation{OperationID: "op-1", UserID: testUser.String(), Amount: 500},
		request:   deposit(500),
		signature: "sig-r",
		blockhash: chain.Blockhash{Hash: testHash, LastValidBlockHeight: 100},
		interval:  time.Millisecond,
		timeout:   timeout,
	}
}

func TestReconcileJob_FailedOnChain(t *testing.T) {
	client := &chain.MockClient{}
	client.On("GetSignatureStatus", mock.Anything, "sig-r").
		Return(&chain.SignatureStatus{ConfirmationStatus: chain.CommitmentConfirmed, Err: "InsufficientFundsForRent"}, nil)

	job := newReconcileJob(client, time.Second)
	require.NoError(t, job.Process(context.Background()))
	assert.Equal(t, domain.StatusFailed, job.Outcome())
}

func TestReconcileJob_ExpiredWithoutLanding(t *testing.T) {
	client := &chain.MockClient{}
	client.On("GetSignatureStatus", mock.Anything, "sig-r").Return(nil, nil)
	client.On("GetBlockHeight", mock.Anything).Return(uint64(150), nil)

	job := newReconcileJob(client, time.Second)
	require.NoError(t, job.Process(context.Background()))
	assert.Equal(t, domain.StatusFailed, job.Outcome())
}

func TestReconcileJob_GivesUp(t *testing.T) {
	client := &chain.MockClient{}
	client.On("GetSignatureStatus", mock.Anything, "sig-r").Return(nil, nil)
	client.On("GetBlockHeight", mock.Anything).Return(uint64(50), nil)

	job := newReconcileJob(client, 20*time.Millisecond)
	err := job.Process(context.Background())
	assert.ErrorIs(t, err, domain.ErrConfirmationUnknown)
	assert.Equal(t, domain.StatusPendingReconcile, job.Outcome())
}
