package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/logger"
)

// Store is the subset of Redis commands the distributed guard uses
type Store interface {
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
	PTTL(ctx context.Context, key string) (time.Duration, error)
}

type redisStore struct {
	client redis.Cmdable
}

// NewRedisStore adapts a go-redis client
func NewRedisStore(client redis.Cmdable) Store {
	return &redisStore{client: client}
}

func (s *redisStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

func (s *redisStore) Get(ctx context.Context, key string) (string, error) {
	return s.client.Get(ctx, key).Result()
}

func (s *redisStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *redisStore) PTTL(ctx context.Context, key string) (time.Duration, error) {
	return s.client.PTTL(ctx, key).Result()
}

// redisGuard shares admission state between service replicas. Both keys
// expire on their own, so a crashed replica never strands a user.
type redisGuard struct {
	store  Store
	config Config
	clock  Clock
}

// NewRedisGuard creates a guard backed by store
func NewRedisGuard(store Store, config Config, clock Clock) (Guard, error) {
	if store == nil {
		return nil, errors.New(ErrMsgRedisRequired)
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &redisGuard{store: store, config: config.withDefaults(), clock: clock}, nil
}

func inFlightKey(userID string) string { return KeyPrefixInFlight + userID }
func cooldownKey(userID string) string { return KeyPrefixCooldown + userID }

// Admit claims the in-flight key first, then starts the cooldown. A cooldown
// rejection gives the in-flight key back.
func (g *redisGuard) Admit(ctx context.Context, userID string, amount uint64) (*Ticket, error) {
	op := newPendingOperation(userID, amount, g.clock.Now())

	ok, err := g.store.SetNX(ctx, inFlightKey(userID), op.OperationID, g.config.InFlightTTL)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgSetInFlightFailed, err)
	}
	if !ok {
		return nil, rejectInFlight(ctx, userID)
	}

	release := func(ctx context.Context) error {
		return g.release(ctx, userID, op.OperationID)
	}

	started, err := g.store.SetNX(ctx, cooldownKey(userID), op.OperationID, g.config.Cooldown)
	if err != nil {
		g.giveBack(ctx, op)
		return nil, fmt.Errorf(ErrMsgSetCooldownFailed, err)
	}
	if !started {
		remaining, err := g.store.PTTL(ctx, cooldownKey(userID))
		g.giveBack(ctx, op)
		if err != nil {
			return nil, fmt.Errorf(ErrMsgReadCooldownFailed, err)
		}
		if remaining <= 0 {
			// Expired between the two calls
			remaining = time.Millisecond
		}
		return nil, rejectCooldown(ctx, userID, remaining)
	}

	logger.FromContext(ctx).Debug(LogMsgAdmitted, "user_id", userID, "operation_id", op.OperationID)
	return &Ticket{Operation: op, release: release}, nil
}

// giveBack releases an in-flight key claimed by a rejected Admit. A failure
// leaves the key to expire after InFlightTTL.
func (g *redisGuard) giveBack(ctx context.Context, op domain.PendingOperation) {
	if err := g.release(ctx, op.UserID, op.OperationID); err != nil {
		logger.FromContext(ctx).Warn(LogMsgReleaseFailed,
			"user_id", op.UserID, "operation_id", op.OperationID, "in_flight_ttl", g.config.InFlightTTL, "error", err)
	}
}

// release deletes the in-flight key only while it still holds owner
func (g *redisGuard) release(ctx context.Context, userID, owner string) error {
	key := inFlightKey(userID)
	current, err := g.store.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf(ErrMsgReleaseFailed, err)
	}
	if current != owner {
		return nil
	}
	if err := g.store.Del(ctx, key); err != nil {
		return fmt.Errorf(ErrMsgReleaseFailed, err)
	}
	return nil
}
