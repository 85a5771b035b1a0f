package spin

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/event"
	"github.com/osse101/SpinVault_Go/internal/ledger"
	"github.com/osse101/SpinVault_Go/internal/logger"
	"github.com/osse101/SpinVault_Go/internal/metrics"
	"github.com/osse101/SpinVault_Go/internal/repository"
	"github.com/osse101/SpinVault_Go/internal/reward"
)

// Request asks for one spin of a wheel
type Request struct {
	UserID   string  `json:"user_id" validate:"required,max=100"`
	TenantID *string `json:"tenant_id,omitempty" validate:"omitempty,max=100"`
	WheelID  string  `json:"wheel_id" validate:"required,max=100"`
}

// Result is a settled spin
type Result struct {
	WinID      int64                `json:"win_id"`
	Outcome    domain.SpinOutcome   `json:"outcome"`
	Segment    domain.RewardSegment `json:"segment"`
	SpinCost   int64                `json:"spin_cost"`
	NewBalance int64                `json:"new_balance"`
	// Claimable is set when the reward waits for an on-chain claim
	Claimable bool `json:"claimable"`
}

// Resolver draws a spin outcome
type Resolver interface {
	Resolve(ctx context.Context, wheelID string) (*reward.Resolution, error)
}

// Service defines the interface for spin operations
type Service interface {
	Spin(ctx context.Context, req Request) (*Result, error)
}

type service struct {
	store      repository.Ledger
	resolver   Resolver
	reconciler *ledger.Reconciler
	publisher  *event.ResilientPublisher
	now        func() time.Time
}

// NewService creates a spin service. publisher may be nil.
func NewService(store repository.Ledger, resolver Resolver, reconciler *ledger.Reconciler, publisher *event.ResilientPublisher) Service {
	return &service{
		store:      store,
		resolver:   resolver,
		reconciler: reconciler,
		publisher:  publisher,
		now:        time.Now,
	}
}

// Spin charges the spin cost and settles the reward with a single balance
// update. The win record, the balance change and any claimable item commit
// together or not at all.
func (s *service) Spin(ctx context.Context, req Request) (*Result, error) {
	if req.UserID == "" || req.WheelID == "" {
		return nil, fmt.Errorf(ErrMsgMissingFields, domain.ErrInvalidInput)
	}
	log := logger.FromContext(ctx)

	res, err := s.resolver.Resolve(ctx, req.WheelID)
	if err != nil {
		return nil, err
	}
	segment := res.Segment

	credited := res.Outcome.Route == domain.RouteLedgerCredit
	var payout int64
	if credited {
		payout = segment.PayoutAmount
	}

	tx, err := s.store.BeginLedgerTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	newBalance, err := s.reconciler.ChargeTx(ctx, tx, req.UserID, req.TenantID, res.Wheel.SpinCost, payout)
	if err != nil {
		log.Warn(LogMsgSpinFailed, "user_id", req.UserID, "wheel_id", req.WheelID, "error", err)
		return nil, err
	}

	now := s.now()
	winID, err := tx.InsertWin(ctx, &domain.WinRecord{
		UserID:          req.UserID,
		TenantID:        req.TenantID,
		PoolID:          res.Wheel.PoolID,
		SegmentID:       segment.ID,
		PayoutKind:      segment.PayoutKind,
		Amount:          segment.PayoutAmount,
		PayoutReference: segment.PayoutReference,
		BalanceCredited: credited,
		CreatedAt:       now,
	})
	if err != nil {
		return nil, fmt.Errorf(ErrMsgRecordWin, err)
	}

	if !credited {
		err = tx.InsertClaimable(ctx, &domain.ClaimableItem{
			WinID:           winID,
			UserID:          req.UserID,
			TenantID:        req.TenantID,
			PayoutKind:      segment.PayoutKind,
			Amount:          segment.PayoutAmount,
			PayoutReference: segment.PayoutReference,
			CreatedAt:       now,
		})
		if err != nil {
			return nil, fmt.Errorf(ErrMsgQueueClaim, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTx, err)
	}

	metrics.SpinsTotal.WithLabelValues(segment.PayoutKind.String()).Inc()

	log.Info(LogMsgSpinSettled,
		"user_id", req.UserID,
		"tenant_id", domain.TenantKey(req.TenantID),
		"wheel_id", req.WheelID,
		"win_id", winID,
		"segment_id", segment.ID,
		"route", res.Outcome.Route,
		"new_balance", newBalance)

	if s.publisher != nil {
		s.publisher.PublishWithRetry(ctx, event.NewSpinCompletedEvent(req.TenantID, event.SpinCompletedPayloadV1{
			UserID:     req.UserID,
			WheelID:    req.WheelID,
			WinID:      winID,
			SegmentID:  segment.ID,
			PayoutKind: segment.PayoutKind,
			Amount:     segment.PayoutAmount,
			Route:      res.Outcome.Route,
			NewBalance: newBalance,
			Timestamp:  now.Unix(),
		}))
	}

	return &Result{
		WinID:      winID,
		Outcome:    res.Outcome,
		Segment:    segment,
		SpinCost:   res.Wheel.SpinCost,
		NewBalance: newBalance,
		Claimable:  !credited,
	}, nil
}
