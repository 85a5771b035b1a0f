package guard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/logger"
	"github.com/osse101/SpinVault_Go/internal/metrics"
)

// Guard admits at most one operation per user at a time, spaced by a
// cooldown
type Guard interface {
	// Admit returns a ticket, a domain.CooldownError, or domain.ErrAlreadyInFlight
	Admit(ctx context.Context, userID string, amount uint64) (*Ticket, error)
}

// Config configures both backends
type Config struct {
	Cooldown    time.Duration
	InFlightTTL time.Duration
	Capacity    int
}

// DefaultConfig returns the standard cooldown and TTL
func DefaultConfig() Config {
	return Config{Cooldown: DefaultCooldown, InFlightTTL: DefaultInFlightTTL, Capacity: DefaultCapacity}
}

func (c Config) withDefaults() Config {
	if c.Cooldown <= 0 {
		c.Cooldown = DefaultCooldown
	}
	if c.InFlightTTL <= 0 {
		c.InFlightTTL = DefaultInFlightTTL
	}
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	return c
}

// Ticket is an admitted operation. Release must be called when the operation
// completes or fails; calling it more than once is harmless.
type Ticket struct {
	Operation domain.PendingOperation
	release   func(ctx context.Context) error
	once      sync.Once
}

// Release frees the user's in-flight slot. The cooldown keeps running.
func (t *Ticket) Release(ctx context.Context, outcome domain.OperationStatus) {
	if t == nil {
		return
	}
	t.once.Do(func() {
		log := logger.FromContext(ctx)
		if err := t.release(ctx); err != nil {
			log.Warn(LogMsgReleaseFailed, "operation_id", t.Operation.OperationID, "error", err)
			return
		}
		log.Debug(LogMsgReleased,
			"operation_id", t.Operation.OperationID,
			"user_id", t.Operation.UserID,
			"outcome", outcome)
	})
}

func newPendingOperation(userID string, amount uint64, now time.Time) domain.PendingOperation {
	return domain.PendingOperation{
		OperationID: domain.NewOperationID(userID, amount, now, uuid.NewString()),
		UserID:      userID,
		Amount:      amount,
		SubmittedAt: now,
	}
}

func rejectInFlight(ctx context.Context, userID string) error {
	metrics.GuardRejectionsTotal.WithLabelValues(metrics.ReasonInFlight).Inc()
	logger.FromContext(ctx).Info(LogMsgRejectedInFlight, "user_id", userID)
	return domain.ErrAlreadyInFlight
}

func rejectCooldown(ctx context.Context, userID string, remaining time.Duration) error {
	metrics.GuardRejectionsTotal.WithLabelValues(metrics.ReasonCooldown).Inc()
	logger.FromContext(ctx).Info(LogMsgRejectedCooldown, "user_id", userID, "remaining", remaining)
	return domain.CooldownError{Remaining: remaining}
}
