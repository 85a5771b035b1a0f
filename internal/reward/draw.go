package reward

import (
	crand "crypto/rand"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/osse101/SpinVault_Go/internal/domain"
)

// Source supplies uniform values in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewSource returns a ChaCha8 generator seeded from the operating system
func NewSource() Source {
	var seed [32]byte
	_, _ = crand.Read(seed[:]) // never fails on supported platforms
	return rand.New(rand.NewChaCha8(seed))
}

// NewSeededSource returns a reproducible generator for tests and replays
func NewSeededSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NormalizeWeights returns weights scaled to sum to 100. Negative weights
// count as zero; an all-zero wheel gets equal weights.
func NormalizeWeights(segments []domain.RewardSegment) []float64 {
	weights := make([]float64, len(segments))
	var total float64
	for i, s := range segments {
		if s.WeightPercent > 0 {
			weights[i] = s.WeightPercent
			total += s.WeightPercent
		}
	}
	if len(segments) == 0 {
		return weights
	}
	if total < weightEpsilon {
		equal := TotalWeightPercent / float64(len(segments))
		for i := range weights {
			weights[i] = equal
		}
		return weights
	}
	for i := range weights {
		weights[i] = weights[i] * TotalWeightPercent / total
	}
	return weights
}

// WeightedDraw picks a segment index. The draw is uniform over the total
// weight and the first segment whose cumulative weight exceeds it wins.
func WeightedDraw(segments []domain.RewardSegment, src Source) (int, error) {
	if len(segments) == 0 {
		return 0, domain.ErrNoEligibleReward
	}
	weights := NormalizeWeights(segments)

	var total float64
	for _, w := range weights {
		total += w
	}
	draw := src.Float64() * total

	var cumulative float64
	for i, w := range weights {
		cumulative += w
		if cumulative > draw {
			return i, nil
		}
	}
	// Rounding can leave the draw at the very top of the range
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i, nil
		}
	}
	return len(weights) - 1, nil
}

// normalizeAngle maps any finite angle into [0, 360)
func normalizeAngle(deg float64) float64 {
	a := math.Mod(deg, FullRotation)
	if a < 0 {
		a += FullRotation
	}
	if a >= FullRotation {
		a = 0
	}
	return a
}

// AngleDraw maps a final wheel rotation to the segment under the pointer.
// Segment i spans [i*w, (i+1)*w) in wheel coordinates, w = 360/n.
func AngleDraw(segments []domain.RewardSegment, rotation, pointerDegrees float64) (int, error) {
	n := len(segments)
	if n == 0 {
		return 0, domain.ErrNoEligibleReward
	}
	if math.IsNaN(rotation) || math.IsInf(rotation, 0) {
		return 0, fmt.Errorf("%w: rotation %v", domain.ErrInvalidInput, rotation)
	}

	under := normalizeAngle(normalizeAngle(pointerDegrees) - normalizeAngle(rotation) + FullRotation)
	width := FullRotation / float64(n)

	index := int(math.Floor(under/width)) % n
	if index < 0 {
		index = 0
	}
	if index >= n {
		index = n - 1
	}
	return index, nil
}

// AngleForSegment returns a rotation that AngleDraw maps back to index.
// jitter in [-0.5, 0.5) moves the landing point inside the segment.
func AngleForSegment(index, n int, pointerDegrees float64, spins int, jitter float64) (float64, error) {
	if n <= 0 {
		return 0, domain.ErrNoEligibleReward
	}
	if index < 0 || index >= n {
		return 0, fmt.Errorf(ErrMsgSegmentOutOfRange, domain.ErrInvalidInput, index, n)
	}
	if spins < 0 {
		spins = 0
	}
	jitter = math.Max(-maxLandingJitter, math.Min(maxLandingJitter, jitter))

	width := FullRotation / float64(n)
	under := float64(index)*width + width*(0.5+jitter)
	rotation := normalizeAngle(normalizeAngle(pointerDegrees) - under + FullRotation)
	return float64(spins)*FullRotation + rotation, nil
}

// Route decides where a payout kind is delivered
func Route(kind domain.PayoutKind) (domain.PayoutRoute, error) {
	switch kind {
	case domain.PayoutFungibleToken, domain.PayoutItemCredit:
		return domain.RouteLedgerCredit, nil
	case domain.PayoutNonFungibleAsset, domain.PayoutNativeCoin:
		return domain.RouteClaimable, nil
	}
	return "", fmt.Errorf(ErrMsgUnroutableKind, domain.ErrInvalidPayoutKind, kind)
}
