package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/event"
	"github.com/osse101/SpinVault_Go/internal/logger"
	"github.com/osse101/SpinVault_Go/internal/metrics"
	"github.com/osse101/SpinVault_Go/internal/repository"
)

// Reconciler applies balance deltas with a compare-and-swap scoped to one
// (user, tenant) row
type Reconciler struct {
	store       repository.Ledger
	publisher   *event.ResilientPublisher
	maxAttempts int
}

// NewReconciler creates a reconciler. publisher may be nil.
func NewReconciler(store repository.Ledger, publisher *event.ResilientPublisher) *Reconciler {
	return &Reconciler{store: store, publisher: publisher, maxAttempts: DefaultMaxCASAttempts}
}

// ApplyDelta adjusts one balance in its own transaction and returns the new amount
func (r *Reconciler) ApplyDelta(ctx context.Context, userID string, tenantID *string, delta int64) (int64, error) {
	tx, err := r.store.BeginLedgerTx(ctx)
	if err != nil {
		return 0, fmt.Errorf(ErrMsgBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	newBalance, err := r.ApplyDeltaTx(ctx, tx, userID, tenantID, delta)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf(ErrMsgCommitTx, err)
	}

	if r.publisher != nil {
		r.publisher.PublishWithRetry(ctx, event.NewBalanceAdjustedEvent(tenantID, userID, delta, newBalance))
	}
	return newBalance, nil
}

// ApplyDeltaTx adjusts one balance inside tx. The current amount is read for
// the audit log, then written back only if it is unchanged. A lost race
// re-reads and tries again, up to the attempt limit.
func (r *Reconciler) ApplyDeltaTx(ctx context.Context, tx repository.LedgerTx, userID string, tenantID *string, delta int64) (int64, error) {
	return r.applyTx(ctx, tx, userID, tenantID, delta, 0)
}

// ChargeTx debits cost and credits payout in one conditional update. The
// balance must cover cost on its own; a payout never funds the charge it
// comes with.
func (r *Reconciler) ChargeTx(ctx context.Context, tx repository.LedgerTx, userID string, tenantID *string, cost, payout int64) (int64, error) {
	return r.applyTx(ctx, tx, userID, tenantID, payout-cost, cost)
}

// applyTx runs the compare-and-swap loop. The read amount must be at least
// required before delta is applied.
func (r *Reconciler) applyTx(ctx context.Context, tx repository.LedgerTx, userID string, tenantID *string, delta, required int64) (int64, error) {
	log := logger.FromContext(ctx)
	tenant := domain.TenantKey(tenantID)

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		current, err := tx.GetBalanceAmount(ctx, userID, tenantID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFoundInTenant) {
				log.Error(LogMsgUserMissing, "user_id", userID, "tenant_id", tenant)
				return 0, err
			}
			return 0, fmt.Errorf(ErrMsgReadBalance, err)
		}

		if current < required {
			return 0, fmt.Errorf(ErrMsgCannotCover, domain.ErrInsufficientBalance, current, required)
		}
		newAmount := current + delta
		if newAmount < 0 {
			return 0, fmt.Errorf(ErrMsgNegativeBalance, domain.ErrInsufficientBalance, current, delta)
		}

		rows, err := tx.UpdateBalanceIfMatches(ctx, userID, tenantID, current, newAmount)
		if err != nil {
			return 0, fmt.Errorf(ErrMsgUpdateBalance, err)
		}
		switch rows {
		case 1:
			log.Info(LogMsgBalanceAdjusted,
				"user_id", userID,
				"tenant_id", tenant,
				"previous", current,
				"delta", delta,
				"new_balance", newAmount)
			return newAmount, nil
		case 0:
			// Either the row changed under us or it was removed; the next
			// read tells the two apart
			metrics.LedgerConflictsTotal.Inc()
			log.Warn(LogMsgCASConflict, "user_id", userID, "tenant_id", tenant, "attempt", attempt)
		default:
			return 0, fmt.Errorf(ErrMsgUnexpectedRows, rows)
		}
	}
	return 0, fmt.Errorf(ErrMsgCASExhausted, domain.ErrConcurrentUpdate, r.maxAttempts)
}

// Balance reads the current balance outside any transaction
func (r *Reconciler) Balance(ctx context.Context, userID string, tenantID *string) (*domain.LedgerBalance, error) {
	return r.store.GetBalance(ctx, userID, tenantID)
}

// OpenAccount creates a zero balance for the user in tenant if none exists
func (r *Reconciler) OpenAccount(ctx context.Context, userID string, tenantID *string) error {
	return r.store.CreateBalance(ctx, userID, tenantID)
}
