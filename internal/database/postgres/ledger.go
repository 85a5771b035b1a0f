package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/repository"
)

// tenant_id is nullable, so every scoped lookup compares with
// IS NOT DISTINCT FROM rather than =
const (
	queryGetBalance = `
		SELECT amount FROM ledger_balances
		WHERE user_id = $1 AND tenant_id IS NOT DISTINCT FROM $2`

	queryUpdateBalanceIfMatches = `
		UPDATE ledger_balances
		SET amount = $4, updated_at = NOW()
		WHERE user_id = $1 AND tenant_id IS NOT DISTINCT FROM $2 AND amount = $3`

	queryCreateBalance = `
		INSERT INTO ledger_balances (user_id, tenant_id, amount)
		VALUES ($1, $2, 0)
		ON CONFLICT ON CONSTRAINT ledger_balances_user_tenant_key DO NOTHING`

	queryGetClaim = `
		SELECT win_id, user_id, tenant_id, reward_type, reward_amount, tx_signature, claimed_at
		FROM claim_records WHERE win_id = $1`

	queryInsertClaim = `
		INSERT INTO claim_records (win_id, user_id, tenant_id, reward_type, reward_amount, tx_signature, claimed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	queryGetWin = `
		SELECT win_id, user_id, tenant_id, pool_id, segment_id, payout_kind, amount,
		       payout_reference, balance_credited, created_at
		FROM win_records WHERE win_id = $1`

	queryInsertWin = `
		INSERT INTO win_records (user_id, tenant_id, pool_id, segment_id, payout_kind, amount,
		                         payout_reference, balance_credited)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING win_id`

	querySetBalanceCredited = `
		UPDATE win_records SET balance_credited = TRUE
		WHERE win_id = $1 AND balance_credited = FALSE`

	queryInsertClaimable = `
		INSERT INTO claimable_items (win_id, user_id, tenant_id, payout_kind, amount, payout_reference)
		VALUES ($1, $2, $3, $4, $5, $6)`

	queryGetClaimable = `
		SELECT win_id, user_id, tenant_id, payout_kind, amount, payout_reference, created_at
		FROM claimable_items WHERE win_id = $1`

	queryDeleteClaimable = `DELETE FROM claimable_items WHERE win_id = $1`

	queryListClaimable = `
		SELECT win_id, user_id, tenant_id, payout_kind, amount, payout_reference, created_at
		FROM claimable_items
		WHERE user_id = $1 AND tenant_id IS NOT DISTINCT FROM $2
		ORDER BY win_id`
)

// querier is the part of pgxpool.Pool and pgx.Tx the ledger needs
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LedgerRepository implements repository.Ledger on PostgreSQL
type LedgerRepository struct {
	db *pgxpool.Pool
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// BeginLedgerTx starts a read-committed transaction
func (r *LedgerRepository) BeginLedgerTx(ctx context.Context) (repository.LedgerTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	return &ledgerTx{tx: tx}, nil
}

func (r *LedgerRepository) GetBalance(ctx context.Context, userID string, tenantID *string) (*domain.LedgerBalance, error) {
	amount, err := getBalanceAmount(ctx, r.db, userID, tenantID)
	if err != nil {
		return nil, err
	}
	return &domain.LedgerBalance{UserID: userID, TenantID: tenantID, Amount: amount}, nil
}

// CreateBalance opens a zero balance; an existing row is left alone
func (r *LedgerRepository) CreateBalance(ctx context.Context, userID string, tenantID *string) error {
	if _, err := r.db.Exec(ctx, queryCreateBalance, userID, tenantID); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToCreateBalance, err)
	}
	return nil
}

func (r *LedgerRepository) GetClaim(ctx context.Context, winID int64) (*domain.ClaimRecord, error) {
	return getClaim(ctx, r.db, winID)
}

func (r *LedgerRepository) ListClaimable(ctx context.Context, userID string, tenantID *string) ([]domain.ClaimableItem, error) {
	rows, err := r.db.Query(ctx, queryListClaimable, userID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListClaimable, err)
	}
	defer rows.Close()

	items := []domain.ClaimableItem{}
	for rows.Next() {
		item, err := scanClaimable(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListClaimable, err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListClaimable, err)
	}
	return items, nil
}

type ledgerTx struct {
	tx pgx.Tx
}

func (t *ledgerTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToCommitTransaction, err)
	}
	return nil
}

// Rollback is a no-op once the transaction is finished
func (t *ledgerTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

func (t *ledgerTx) GetBalanceAmount(ctx context.Context, userID string, tenantID *string) (int64, error) {
	return getBalanceAmount(ctx, t.tx, userID, tenantID)
}

func (t *ledgerTx) UpdateBalanceIfMatches(ctx context.Context, userID string, tenantID *string, expected, newAmount int64) (int64, error) {
	tag, err := t.tx.Exec(ctx, queryUpdateBalanceIfMatches, userID, tenantID, expected, newAmount)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToUpdateBalance, err)
	}
	return tag.RowsAffected(), nil
}

func (t *ledgerTx) GetClaim(ctx context.Context, winID int64) (*domain.ClaimRecord, error) {
	return getClaim(ctx, t.tx, winID)
}

func (t *ledgerTx) InsertClaim(ctx context.Context, claim *domain.ClaimRecord) error {
	_, err := t.tx.Exec(ctx, queryInsertClaim,
		claim.WinID, claim.UserID, claim.TenantID, claim.RewardType.String(),
		claim.RewardAmount, claim.TxSignature, claim.ClaimedAt)
	if err != nil {
		if isUniqueViolation(err, ConstraintClaimWinID) {
			return fmt.Errorf("%w: win %d", domain.ErrClaimAlreadyExists, claim.WinID)
		}
		return fmt.Errorf("%s: %w", ErrMsgFailedToInsertClaim, err)
	}
	return nil
}

func (t *ledgerTx) GetWin(ctx context.Context, winID int64) (*domain.WinRecord, error) {
	var (
		win  domain.WinRecord
		kind string
	)
	err := t.tx.QueryRow(ctx, queryGetWin, winID).Scan(
		&win.WinID, &win.UserID, &win.TenantID, &win.PoolID, &win.SegmentID, &kind,
		&win.Amount, &win.PayoutReference, &win.BalanceCredited, &win.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", domain.ErrWinNotFound, winID)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetWin, err)
	}
	if win.PayoutKind, err = parseKind(kind); err != nil {
		return nil, err
	}
	return &win, nil
}

func (t *ledgerTx) InsertWin(ctx context.Context, win *domain.WinRecord) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, queryInsertWin,
		win.UserID, win.TenantID, win.PoolID, win.SegmentID, win.PayoutKind.String(),
		win.Amount, win.PayoutReference, win.BalanceCredited).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToInsertWin, err)
	}
	return id, nil
}

// SetBalanceCredited flips the flag once; a second call affects no rows
func (t *ledgerTx) SetBalanceCredited(ctx context.Context, winID int64) (int64, error) {
	tag, err := t.tx.Exec(ctx, querySetBalanceCredited, winID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToMarkCredited, err)
	}
	return tag.RowsAffected(), nil
}

func (t *ledgerTx) InsertClaimable(ctx context.Context, item *domain.ClaimableItem) error {
	_, err := t.tx.Exec(ctx, queryInsertClaimable,
		item.WinID, item.UserID, item.TenantID, item.PayoutKind.String(), item.Amount, item.PayoutReference)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToInsertClaimable, err)
	}
	return nil
}

func (t *ledgerTx) GetClaimable(ctx context.Context, winID int64) (*domain.ClaimableItem, error) {
	item, err := scanClaimable(t.tx.QueryRow(ctx, queryGetClaimable, winID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetClaimable, err)
	}
	return item, nil
}

func (t *ledgerTx) DeleteClaimable(ctx context.Context, winID int64) (int64, error) {
	tag, err := t.tx.Exec(ctx, queryDeleteClaimable, winID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToDeleteClaimable, err)
	}
	return tag.RowsAffected(), nil
}

func getBalanceAmount(ctx context.Context, q querier, userID string, tenantID *string) (int64, error) {
	var amount int64
	err := q.QueryRow(ctx, queryGetBalance, userID, tenantID).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrUserNotFoundInTenant
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToGetBalance, err)
	}
	return amount, nil
}

func getClaim(ctx context.Context, q querier, winID int64) (*domain.ClaimRecord, error) {
	var (
		claim domain.ClaimRecord
		kind  string
	)
	err := q.QueryRow(ctx, queryGetClaim, winID).Scan(
		&claim.WinID, &claim.UserID, &claim.TenantID, &kind,
		&claim.RewardAmount, &claim.TxSignature, &claim.ClaimedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetClaim, err)
	}
	if claim.RewardType, err = parseKind(kind); err != nil {
		return nil, err
	}
	return &claim, nil
}

func scanClaimable(row pgx.Row) (*domain.ClaimableItem, error) {
	var (
		item domain.ClaimableItem
		kind string
	)
	if err := row.Scan(&item.WinID, &item.UserID, &item.TenantID, &kind,
		&item.Amount, &item.PayoutReference, &item.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if item.PayoutKind, err = parseKind(kind); err != nil {
		return nil, err
	}
	return &item, nil
}

func parseKind(s string) (domain.PayoutKind, error) {
	kind, err := domain.ParsePayoutKind(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToParsePayoutKind, err)
	}
	return kind, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == PgErrorCodeUniqueViolation &&
		(constraint == "" || pgErr.ConstraintName == constraint)
}

var _ repository.Ledger = (*LedgerRepository)(nil)
