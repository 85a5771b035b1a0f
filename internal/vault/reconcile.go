package vault

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/SpinVault_Go/internal/chain"
	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/event"
	"github.com/osse101/SpinVault_Go/internal/logger"
	"github.com/osse101/SpinVault_Go/internal/metrics"
)

// ReconcileJob keeps polling a sent signature after the request that sent it
// gave up. It settles once the transaction lands, fails, or its blockhash
// expires without it.
type ReconcileJob struct {
	client    chain.Client
	publisher *event.ResilientPublisher
	operation domain.PendingOperation
	request   Request
	signature string
	blockhash chain.Blockhash
	interval  time.Duration
	timeout   time.Duration

	mu      sync.Mutex
	outcome domain.OperationStatus
}

func (j *ReconcileJob) Name() string {
	return methodReconcile
}

// Outcome is the settled status, or StatusPendingReconcile while unknown
func (j *ReconcileJob) Outcome() domain.OperationStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.outcome == "" {
		return domain.StatusPendingReconcile
	}
	return j.outcome
}

func (j *ReconcileJob) Process(ctx context.Context) error {
	ctx = logger.WithOperationID(ctx, j.operation.OperationID)
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()
	log := logger.FromContext(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		_, err := chain.PollConfirmation(ctx, j.client, j.signature, j.blockhash)
		switch {
		case err == nil:
			j.settle(ctx, domain.StatusConfirmed)
			return nil
		case errors.Is(err, domain.ErrTransactionFailed), errors.Is(err, domain.ErrBlockhashExpired):
			j.settle(ctx, domain.StatusFailed)
			return nil
		}

		select {
		case <-ctx.Done():
			log.Warn(LogMsgReconcileGaveUp, "signature", j.signature, "last_error", err)
			return fmt.Errorf(ErrMsgReconcileTimed, domain.ErrConfirmationUnknown, j.signature, j.timeout)
		case <-ticker.C:
		}
	}
}

func (j *ReconcileJob) settle(ctx context.Context, status domain.OperationStatus) {
	j.mu.Lock()
	j.outcome = status
	j.mu.Unlock()

	logger.FromContext(ctx).Info(LogMsgReconciled, "signature", j.signature, "status", status)
	metrics.VaultOperationsTotal.WithLabelValues(string(j.request.Kind), string(status)).Inc()
	if j.publisher != nil {
		j.publisher.PublishWithRetry(ctx, event.NewVaultOperationEvent(
			j.operation.OperationID, j.request.Kind, j.request.User.String(), j.request.Amount, j.signature, status))
	}
}
