package reward

import (
	"context"
	"fmt"
	"sync"

	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/logger"
)

// Resolution is a resolved spin with the wheel it was drawn from
type Resolution struct {
	Wheel   *domain.Wheel
	Segment domain.RewardSegment
	Outcome domain.SpinOutcome
}

// Resolver draws spin outcomes from wheels in a catalogue
type Resolver struct {
	catalog  Catalog
	pointer  float64
	minSpins int

	mu  sync.Mutex // guards src
	src Source
}

// NewResolver creates a resolver. A nil src uses NewSource.
func NewResolver(catalog Catalog, src Source, pointerDegrees float64) *Resolver {
	if src == nil {
		src = NewSource()
	}
	return &Resolver{
		catalog:  catalog,
		pointer:  pointerDegrees,
		minSpins: DefaultMinSpins,
		src:      src,
	}
}

// Resolve loads the wheel fresh, draws a weighted segment and picks a
// rotation angle that lands on it
func (r *Resolver) Resolve(ctx context.Context, wheelID string) (*Resolution, error) {
	wheel, err := r.catalog.Wheel(ctx, wheelID)
	if err != nil {
		return nil, err
	}
	if len(wheel.Segments) == 0 {
		return nil, fmt.Errorf(ErrMsgNoSegments, domain.ErrNoEligibleReward, wheelID)
	}

	r.mu.Lock()
	index, err := WeightedDraw(wheel.Segments, r.src)
	jitter := r.src.Float64() - 0.5
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	angle, err := AngleForSegment(index, len(wheel.Segments), r.pointer, r.minSpins, jitter)
	if err != nil {
		return nil, err
	}

	segment := wheel.Segments[index]
	route, err := Route(segment.PayoutKind)
	if err != nil {
		return nil, err
	}

	res := &Resolution{
		Wheel:   wheel,
		Segment: segment,
		Outcome: domain.SpinOutcome{
			WinningSegmentID: segment.ID,
			SegmentIndex:     index,
			RotationAngle:    angle,
			Route:            route,
		},
	}

	logger.FromContext(ctx).Debug(LogMsgSpinResolved,
		"wheel_id", wheelID,
		"segment_id", segment.ID,
		"payout_kind", segment.PayoutKind.String(),
		"route", route)
	return res, nil
}
