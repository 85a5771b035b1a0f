package chain

import (
	"context"
	"errors"

	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/logger"
	"github.com/osse101/SpinVault_Go/internal/metrics"
)

// Submitter is the only path from a signed payload to the network. Sends are
// never retried here or by the node, so one signed payload is broadcast at
// most once.
type Submitter struct {
	client Client
}

// NewSubmitter wraps a node client
func NewSubmitter(client Client) *Submitter {
	return &Submitter{client: client}
}

// Send broadcasts tx with preflight skipped (it was already simulated) and
// node-side retries disabled. The payload is consumed even when the send fails.
func (s *Submitter) Send(ctx context.Context, tx *SignedTransaction) (string, error) {
	log := logger.FromContext(ctx)

	raw, err := tx.take()
	if err != nil {
		log.Error(LogMsgDoubleSendBlocked, "signature", tx.Signature())
		metrics.TransactionsSentTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return "", err
	}

	log.Info(LogMsgSendingTransaction, "signature", tx.Signature())
	signature, err := s.client.SendRawTransaction(ctx, raw, SendOptions{SkipPreflight: true, MaxRetries: 0})
	if err != nil {
		err = ClassifyError(err)
		if errors.Is(err, domain.ErrAlreadyProcessed) {
			metrics.TransactionsSentTotal.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		} else {
			metrics.TransactionsSentTotal.WithLabelValues(metrics.OutcomeError).Inc()
		}
		log.Warn(LogMsgSendFailed, "signature", tx.Signature(), "error", err)
		return tx.Signature(), err
	}

	if signature == "" {
		signature = tx.Signature()
	}
	metrics.TransactionsSentTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	log.Info(LogMsgTransactionSent, "signature", signature)
	return signature, nil
}
