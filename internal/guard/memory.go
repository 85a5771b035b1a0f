package guard

import (
	"context"
	"sync"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/logger"
)

// memoryGuard keeps the in-flight set and cooldown timestamps in process.
// Entries also expire on their own so idle users do not accumulate.
type memoryGuard struct {
	mu        sync.Mutex
	config    Config
	clock     Clock
	inFlight  *expirable.LRU[string, domain.PendingOperation]
	lastAdmit *expirable.LRU[string, int64]
}

// NewMemoryGuard creates a process-local guard
func NewMemoryGuard(config Config, clock Clock) Guard {
	config = config.withDefaults()
	if clock == nil {
		clock = RealClock{}
	}
	return &memoryGuard{
		config:    config,
		clock:     clock,
		inFlight:  expirable.NewLRU[string, domain.PendingOperation](config.Capacity, nil, config.InFlightTTL),
		lastAdmit: expirable.NewLRU[string, int64](config.Capacity, nil, config.Cooldown),
	}
}

// Admit checks in-flight first, then the cooldown, and records both on success
func (g *memoryGuard) Admit(ctx context.Context, userID string, amount uint64) (*Ticket, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()

	if op, ok := g.inFlight.Get(userID); ok {
		if now.Sub(op.SubmittedAt) < g.config.InFlightTTL {
			return nil, rejectInFlight(ctx, userID)
		}
		g.inFlight.Remove(userID)
	}

	if last, ok := g.lastAdmit.Get(userID); ok {
		if remaining := g.config.Cooldown - now.Sub(timeFromNanos(last)); remaining > 0 {
			return nil, rejectCooldown(ctx, userID, remaining)
		}
	}

	op := newPendingOperation(userID, amount, now)
	makeRoom(ctx, g.inFlight, g.config.Capacity, userID, setInFlight)
	makeRoom(ctx, g.lastAdmit, g.config.Capacity, userID, setCooldown)
	g.inFlight.Add(userID, op)
	g.lastAdmit.Add(userID, now.UnixNano())

	logger.FromContext(ctx).Debug(LogMsgAdmitted, "user_id", userID, "operation_id", op.OperationID)

	return &Ticket{
		Operation: op,
		release: func(context.Context) error {
			g.release(op)
			return nil
		},
	}, nil
}

// release removes the entry only if it still belongs to op
func (g *memoryGuard) release(op domain.PendingOperation) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if current, ok := g.inFlight.Peek(op.UserID); ok && current.OperationID == op.OperationID {
		g.inFlight.Remove(op.UserID)
	}
}

const (
	setInFlight = "in_flight"
	setCooldown = "cooldown"
)

// makeRoom evicts and logs the oldest entry when adding userID would
// overflow cache
func makeRoom[V any](ctx context.Context, cache *expirable.LRU[string, V], capacity int, userID, set string) {
	if cache.Contains(userID) || cache.Len() < capacity {
		return
	}
	if evicted, _, ok := cache.RemoveOldest(); ok {
		logger.FromContext(ctx).Warn(LogMsgCapacityEviction,
			"set", set, "evicted_user_id", evicted, "capacity", capacity)
	}
}
