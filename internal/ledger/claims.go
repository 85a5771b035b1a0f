package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/event"
	"github.com/osse101/SpinVault_Go/internal/logger"
	"github.com/osse101/SpinVault_Go/internal/metrics"
	"github.com/osse101/SpinVault_Go/internal/repository"
	"github.com/osse101/SpinVault_Go/internal/reward"
)

// ClaimLedger pays out each win at most once. The unique win id on claim
// records is the only cross-process guarantee; the singleflight group just
// saves duplicate in-process calls a round trip.
type ClaimLedger struct {
	store      repository.Ledger
	reconciler *Reconciler
	publisher  *event.ResilientPublisher
	format     *Formatter
	group      singleflight.Group
	now        func() time.Time
}

// NewClaimLedger creates a claim ledger. publisher may be nil.
func NewClaimLedger(store repository.Ledger, reconciler *Reconciler, publisher *event.ResilientPublisher, format *Formatter) *ClaimLedger {
	return &ClaimLedger{
		store:      store,
		reconciler: reconciler,
		publisher:  publisher,
		format:     format,
		now:        time.Now,
	}
}

type flightResult struct {
	leader string
	result *domain.ClaimResult
	kind   domain.PayoutKind
}

// Claim credits the win's payout exactly once. Repeated and concurrent calls
// succeed with AlreadyClaimed set.
func (l *ClaimLedger) Claim(ctx context.Context, req domain.ClaimRequest) (*domain.ClaimResult, error) {
	if req.WinID <= 0 || req.UserID == "" {
		return nil, fmt.Errorf("%w: win_id and user_id are required", domain.ErrInvalidInput)
	}

	caller := uuid.NewString()
	key := strconv.FormatInt(req.WinID, 10) + "|" + req.UserID + "|" + domain.TenantKey(req.TenantID)

	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		res, kind, err := l.claim(ctx, req)
		return &flightResult{leader: caller, result: res, kind: kind}, err
	})
	if err != nil {
		metrics.ClaimsTotal.WithLabelValues(metrics.ResultFailed).Inc()
		return nil, err
	}

	flight := v.(*flightResult)
	result := *flight.result
	if flight.leader != caller && !result.AlreadyClaimed {
		// Joined an in-progress claim: the credit belongs to the leader
		result.AlreadyClaimed = true
		result.Message = l.format.Sprintf(MsgAlreadyClaimed, req.WinID)
	}

	if result.AlreadyClaimed {
		metrics.ClaimsTotal.WithLabelValues(metrics.ResultAlreadyClaimed).Inc()
	} else {
		metrics.ClaimsTotal.WithLabelValues(metrics.ResultClaimed).Inc()
	}
	if flight.leader == caller && l.publisher != nil {
		amount := int64(0)
		if result.RewardAmount != nil {
			amount = *result.RewardAmount
		}
		l.publisher.PublishWithRetry(ctx, event.NewRewardClaimedEvent(req.TenantID, req.WinID, req.UserID, flight.kind, amount, result.AlreadyClaimed))
	}
	return &result, nil
}

func (l *ClaimLedger) claim(ctx context.Context, req domain.ClaimRequest) (*domain.ClaimResult, domain.PayoutKind, error) {
	log := logger.FromContext(ctx)

	tx, err := l.store.BeginLedgerTx(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf(ErrMsgBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	existing, err := tx.GetClaim(ctx, req.WinID)
	if err != nil {
		return nil, 0, fmt.Errorf(ErrMsgReadClaim, err)
	}
	if existing != nil {
		if existing.UserID != req.UserID {
			return nil, 0, domain.ErrWinNotOwned
		}
		return l.alreadyClaimed(existing), existing.RewardType, nil
	}

	win, err := tx.GetWin(ctx, req.WinID)
	if err != nil {
		return nil, 0, err
	}
	if win.UserID != req.UserID || domain.TenantKey(win.TenantID) != domain.TenantKey(req.TenantID) {
		return nil, 0, domain.ErrWinNotOwned
	}
	if req.PoolID != 0 && win.PoolID != req.PoolID {
		return nil, 0, fmt.Errorf(ErrMsgPoolMismatch, domain.ErrWinNotFound, req.WinID, req.PoolID)
	}

	route, err := reward.Route(win.PayoutKind)
	if err != nil {
		return nil, 0, err
	}
	if route != domain.RouteLedgerCredit {
		return nil, win.PayoutKind, fmt.Errorf(ErrMsgOnChainWin, domain.ErrOnChainClaimNeeded, req.WinID, win.PayoutKind)
	}

	record := &domain.ClaimRecord{
		WinID:        win.WinID,
		UserID:       win.UserID,
		TenantID:     win.TenantID,
		RewardType:   win.PayoutKind,
		RewardAmount: win.Amount,
		ClaimedAt:    l.now().UTC(),
	}

	// Credited at spin time; only the audit row is missing
	if win.BalanceCredited {
		if err := tx.InsertClaim(ctx, record); err != nil {
			return l.resolveInsertError(ctx, req, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, 0, fmt.Errorf(ErrMsgCommitTx, err)
		}
		log.Info(LogMsgClaimBackfilled, "win_id", req.WinID, "user_id", req.UserID)
		amount := win.Amount
		return &domain.ClaimResult{
			Success:      true,
			RewardAmount: &amount,
			Message:      l.format.Sprintf(MsgClaimedBackfilled, req.WinID),
		}, win.PayoutKind, nil
	}

	newBalance, err := l.reconciler.ApplyDeltaTx(ctx, tx, win.UserID, win.TenantID, win.Amount)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.InsertClaim(ctx, record); err != nil {
		// The rollback also undoes the credit above
		return l.resolveInsertError(ctx, req, err)
	}

	rows, err := tx.SetBalanceCredited(ctx, win.WinID)
	if err != nil {
		return nil, 0, fmt.Errorf(ErrMsgMarkCredited, err)
	}
	if rows != 1 {
		return nil, 0, fmt.Errorf(ErrMsgWinAlreadyMarked, domain.ErrConcurrentUpdate, win.WinID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf(ErrMsgCommitTx, err)
	}

	log.Info(LogMsgClaimed, "win_id", req.WinID, "user_id", req.UserID, "amount", win.Amount, "new_balance", newBalance)
	amount := win.Amount
	return &domain.ClaimResult{
		Success:      true,
		RewardAmount: &amount,
		NewBalance:   &newBalance,
		Message:      l.format.Sprintf(MsgClaimedCredit, l.format.Amount(win.PayoutKind, win.Amount), newBalance),
	}, win.PayoutKind, nil
}

// resolveInsertError turns a lost unique race into the winner's result
func (l *ClaimLedger) resolveInsertError(ctx context.Context, req domain.ClaimRequest, err error) (*domain.ClaimResult, domain.PayoutKind, error) {
	if !errors.Is(err, domain.ErrClaimAlreadyExists) {
		return nil, 0, fmt.Errorf(ErrMsgInsertClaim, err)
	}
	logger.FromContext(ctx).Info(LogMsgClaimRace, "win_id", req.WinID, "user_id", req.UserID)

	existing, readErr := l.store.GetClaim(ctx, req.WinID)
	if readErr != nil || existing == nil {
		return &domain.ClaimResult{
			Success:        true,
			AlreadyClaimed: true,
			Message:        l.format.Sprintf(MsgAlreadyClaimed, req.WinID),
		}, 0, nil
	}
	return l.alreadyClaimed(existing), existing.RewardType, nil
}

func (l *ClaimLedger) alreadyClaimed(record *domain.ClaimRecord) *domain.ClaimResult {
	amount := record.RewardAmount
	return &domain.ClaimResult{
		Success:        true,
		AlreadyClaimed: true,
		RewardAmount:   &amount,
		Message:        l.format.Sprintf(MsgAlreadyClaimed, record.WinID),
	}
}

// RecordOnChainClaim settles a claimable win after its on-chain claim
// transaction confirmed. The same unique win id guards it.
func (l *ClaimLedger) RecordOnChainClaim(ctx context.Context, winID int64, userID string, tenantID *string, signature string) (*domain.ClaimResult, error) {
	if signature == "" {
		return nil, fmt.Errorf(ErrMsgEmptySignature, domain.ErrInvalidInput)
	}
	log := logger.FromContext(ctx)

	tx, err := l.store.BeginLedgerTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	item, err := tx.GetClaimable(ctx, winID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		existing, err := tx.GetClaim(ctx, winID)
		if err != nil {
			return nil, fmt.Errorf(ErrMsgReadClaim, err)
		}
		if existing != nil && existing.UserID == userID {
			return l.alreadyClaimed(existing), nil
		}
		return nil, domain.ErrClaimableNotPending
	}
	if item.UserID != userID || domain.TenantKey(item.TenantID) != domain.TenantKey(tenantID) {
		return nil, domain.ErrWinNotOwned
	}

	record := &domain.ClaimRecord{
		WinID:        item.WinID,
		UserID:       item.UserID,
		TenantID:     item.TenantID,
		RewardType:   item.PayoutKind,
		RewardAmount: item.Amount,
		TxSignature:  signature,
		ClaimedAt:    l.now().UTC(),
	}
	if err := tx.InsertClaim(ctx, record); err != nil {
		res, _, resolveErr := l.resolveInsertError(ctx, domain.ClaimRequest{WinID: winID, UserID: userID}, err)
		return res, resolveErr
	}
	if _, err := tx.DeleteClaimable(ctx, winID); err != nil {
		return nil, err
	}
	if _, err := tx.SetBalanceCredited(ctx, winID); err != nil {
		return nil, fmt.Errorf(ErrMsgMarkCredited, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTx, err)
	}

	log.Info(LogMsgOnChainRecorded, "win_id", winID, "user_id", userID, "signature", signature)
	metrics.ClaimsTotal.WithLabelValues(metrics.ResultClaimed).Inc()
	if l.publisher != nil {
		l.publisher.PublishWithRetry(ctx, event.NewRewardClaimedEvent(tenantID, winID, userID, item.PayoutKind, item.Amount, false))
	}

	amount := item.Amount
	return &domain.ClaimResult{
		Success:      true,
		RewardAmount: &amount,
		Message:      l.format.Sprintf(MsgOnChainRecorded, l.format.Amount(item.PayoutKind, item.Amount)),
	}, nil
}

// ListClaimable returns the user's wins still waiting for an on-chain claim
func (l *ClaimLedger) ListClaimable(ctx context.Context, userID string, tenantID *string) ([]domain.ClaimableItem, error) {
	return l.store.ListClaimable(ctx, userID, tenantID)
}
