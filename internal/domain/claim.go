package domain

import "time"

// WinRecord is a reward won by a user on a wheel or jackpot pool
type WinRecord struct {
	WinID           int64      `json:"win_id"`
	UserID          string     `json:"user_id"`
	TenantID        *string    `json:"tenant_id,omitempty"`
	PoolID          int64      `json:"pool_id"`
	SegmentID       string     `json:"segment_id,omitempty"`
	PayoutKind      PayoutKind `json:"payout_kind"`
	Amount          int64      `json:"amount"`
	PayoutReference string     `json:"payout_reference,omitempty"`
	BalanceCredited bool       `json:"balance_credited"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ClaimRecord is the append-only proof that a win was paid out.
// WinID is unique at the storage layer.
type ClaimRecord struct {
	WinID        int64      `json:"win_id"`
	UserID       string     `json:"user_id"`
	TenantID     *string    `json:"tenant_id,omitempty"`
	RewardType   PayoutKind `json:"reward_type"`
	RewardAmount int64      `json:"reward_amount"`
	TxSignature  string     `json:"tx_signature,omitempty"`
	ClaimedAt    time.Time  `json:"claimed_at"`
}

// ClaimableItem is a won reward waiting for an on-chain claim
type ClaimableItem struct {
	WinID           int64      `json:"win_id"`
	UserID          string     `json:"user_id"`
	TenantID        *string    `json:"tenant_id,omitempty"`
	PayoutKind      PayoutKind `json:"payout_kind"`
	Amount          int64      `json:"amount"`
	PayoutReference string     `json:"payout_reference"`
	CreatedAt       time.Time  `json:"created_at"`
}

// LedgerBalance is one user's off-chain balance within a tenant
type LedgerBalance struct {
	UserID   string  `json:"user_id"`
	TenantID *string `json:"tenant_id,omitempty"`
	Amount   int64   `json:"amount"`
}

// ClaimRequest asks for a win to be paid out
type ClaimRequest struct {
	WinID    int64   `json:"win_id" validate:"required,gt=0"`
	UserID   string  `json:"user_id" validate:"required"`
	PoolID   int64   `json:"pool_id" validate:"gte=0"`
	TenantID *string `json:"tenant_id,omitempty"`
}

// ClaimResult is returned for every claim call, including repeats
type ClaimResult struct {
	Success        bool   `json:"success"`
	AlreadyClaimed bool   `json:"already_claimed"`
	RewardAmount   *int64 `json:"reward_amount,omitempty"`
	NewBalance     *int64 `json:"new_balance,omitempty"`
	Message        string `json:"message"`
}

// TenantKey renders a nullable tenant id for logs and map keys
func TenantKey(tenantID *string) string {
	if tenantID == nil {
		return ""
	}
	return *tenantID
}
