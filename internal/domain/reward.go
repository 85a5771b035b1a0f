package domain

import (
	"fmt"
	"strings"
)

// PayoutKind is the closed set of things a wheel segment can pay out
type PayoutKind uint8

const (
	PayoutFungibleToken PayoutKind = iota + 1
	PayoutItemCredit
	PayoutNonFungibleAsset
	PayoutNativeCoin
)

// Wire names for PayoutKind
const (
	PayoutNameFungibleToken    = "fungible_token"
	PayoutNameItemCredit       = "item_credit"
	PayoutNameNonFungibleAsset = "non_fungible_asset"
	PayoutNameNativeCoin       = "native_coin"
)

// AllPayoutKinds lists every valid payout kind
var AllPayoutKinds = []PayoutKind{
	PayoutFungibleToken,
	PayoutItemCredit,
	PayoutNonFungibleAsset,
	PayoutNativeCoin,
}

func (k PayoutKind) String() string {
	switch k {
	case PayoutFungibleToken:
		return PayoutNameFungibleToken
	case PayoutItemCredit:
		return PayoutNameItemCredit
	case PayoutNonFungibleAsset:
		return PayoutNameNonFungibleAsset
	case PayoutNativeCoin:
		return PayoutNameNativeCoin
	}
	return fmt.Sprintf("payout_kind(%d)", uint8(k))
}

// Valid reports whether k is one of the declared kinds
func (k PayoutKind) Valid() bool {
	return k >= PayoutFungibleToken && k <= PayoutNativeCoin
}

// ParsePayoutKind parses a wire name. The legacy short names "sol", "nft"
// and "item" are accepted so older wheel configs keep loading.
func ParsePayoutKind(s string) (PayoutKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case PayoutNameFungibleToken, "token":
		return PayoutFungibleToken, nil
	case PayoutNameItemCredit, "item":
		return PayoutItemCredit, nil
	case PayoutNameNonFungibleAsset, "nft":
		return PayoutNonFungibleAsset, nil
	case PayoutNameNativeCoin, "sol":
		return PayoutNativeCoin, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPayoutKind, s)
}

// MarshalText implements encoding.TextMarshaler
func (k PayoutKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPayoutKind, uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *PayoutKind) UnmarshalText(b []byte) error {
	parsed, err := ParsePayoutKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// PayoutRoute says where a won reward goes after the spin
type PayoutRoute string

const (
	// RouteLedgerCredit rewards are credited to the off-chain balance immediately
	RouteLedgerCredit PayoutRoute = "ledger_credit"
	// RouteClaimable rewards are queued and need a separate on-chain claim
	RouteClaimable PayoutRoute = "claimable"
)

// RewardSegment is one slice of a wheel
type RewardSegment struct {
	ID              string     `json:"id" validate:"required"`
	Label           string     `json:"label"`
	PayoutKind      PayoutKind `json:"payout_kind" validate:"required"`
	WeightPercent   float64    `json:"weight_percent" validate:"gte=0,lte=100"`
	PayoutAmount    int64      `json:"payout_amount" validate:"gte=0"`
	PayoutReference string     `json:"payout_reference,omitempty"`
}

// Wheel is a named set of segments plus the cost of one spin
type Wheel struct {
	ID       string          `json:"id" validate:"required"`
	PoolID   int64           `json:"pool_id"`
	SpinCost int64           `json:"spin_cost" validate:"gte=0"`
	Segments []RewardSegment `json:"segments" validate:"dive"`
}

// SpinOutcome is the result of resolving one spin
type SpinOutcome struct {
	WinningSegmentID string      `json:"winning_segment_id"`
	SegmentIndex     int         `json:"segment_index"`
	RotationAngle    float64     `json:"rotation_angle"`
	Route            PayoutRoute `json:"route"`
}
