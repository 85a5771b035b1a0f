package reward

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/SpinVault_Go/internal/domain"
)

func testWheel() domain.Wheel {
	return domain.Wheel{
		ID:       "w1",
		PoolID:   3,
		SpinCost: 10,
		Segments: []domain.RewardSegment{
			{ID: "credit", PayoutKind: domain.PayoutItemCredit, WeightPercent: 50, PayoutAmount: 25},
			{ID: "nft", PayoutKind: domain.PayoutNonFungibleAsset, WeightPercent: 50, PayoutAmount: 1},
		},
	}
}

func TestResolver_Resolve(t *testing.T) {
	catalog := NewMemoryCatalog(testWheel())

	t.Run("ledger credit segment", func(t *testing.T) {
		r := NewResolver(catalog, fixedSource(0.1), DefaultPointerDegrees)
		res, err := r.Resolve(context.Background(), "w1")
		require.NoError(t, err)

		assert.Equal(t, "credit", res.Outcome.WinningSegmentID)
		assert.Equal(t, 0, res.Outcome.SegmentIndex)
		assert.Equal(t, domain.RouteLedgerCredit, res.Outcome.Route)
		assert.Equal(t, int64(25), res.Segment.PayoutAmount)

		idx, err := AngleDraw(res.Wheel.Segments, res.Outcome.RotationAngle, DefaultPointerDegrees)
		require.NoError(t, err)
		assert.Equal(t, res.Outcome.SegmentIndex, idx, "the angle lands on the drawn segment")
	})

	t.Run("claimable segment", func(t *testing.T) {
		r := NewResolver(catalog, fixedSource(0.9), DefaultPointerDegrees)
		res, err := r.Resolve(context.Background(), "w1")
		require.NoError(t, err)
		assert.Equal(t, "nft", res.Outcome.WinningSegmentID)
		assert.Equal(t, domain.RouteClaimable, res.Outcome.Route)
	})
}

func TestResolver_Errors(t *testing.T) {
	empty := domain.Wheel{ID: "empty"}
	r := NewResolver(NewMemoryCatalog(empty), fixedSource(0.5), 0)

	_, err := r.Resolve(context.Background(), "empty")
	assert.ErrorIs(t, err, domain.ErrNoEligibleReward)

	_, err = r.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrWheelNotFound)
}

func TestMemoryCatalog_ReturnsCopies(t *testing.T) {
	catalog := NewMemoryCatalog(testWheel())

	w, err := catalog.Wheel(context.Background(), "w1")
	require.NoError(t, err)
	w.Segments[0].PayoutAmount = 999

	again, err := catalog.Wheel(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(25), again.Segments[0].PayoutAmount)
}
