package guard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/SpinVault_Go/internal/domain"
)

type fakeEntry struct {
	value   string
	expires time.Time
}

// fakeStore mimics the Redis commands the guard uses, with expiry driven by
// a simulated clock
type fakeStore struct {
	mu      sync.Mutex
	clock   *SimulatedClock
	entries map[string]fakeEntry
	failSet error
	failGet error
}

func newFakeStore(clock *SimulatedClock) *fakeStore {
	return &fakeStore{clock: clock, entries: map[string]fakeEntry{}}
}

func (s *fakeStore) live(key string) (fakeEntry, bool) {
	e, ok := s.entries[key]
	if !ok || !s.clock.Now().Before(e.expires) {
		delete(s.entries, key)
		return fakeEntry{}, false
	}
	return e, true
}

func (s *fakeStore) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet != nil {
		return false, s.failSet
	}
	if _, ok := s.live(key); ok {
		return false, nil
	}
	s.entries[key] = fakeEntry{value: value, expires: s.clock.Now().Add(ttl)}
	return true, nil
}

func (s *fakeStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return "", s.failGet
	}
	e, ok := s.live(key)
	if !ok {
		return "", redis.Nil
	}
	return e.value, nil
}

func (s *fakeStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *fakeStore) PTTL(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok {
		return -2 * time.Millisecond, nil
	}
	return e.expires.Sub(s.clock.Now()), nil
}

func newTestRedisGuard(t *testing.T) (Guard, *fakeStore, *SimulatedClock) {
	t.Helper()
	clock := NewSimulatedClock(testStart)
	store := newFakeStore(clock)
	g, err := NewRedisGuard(store, DefaultConfig(), clock)
	require.NoError(t, err)
	return g, store, clock
}

func TestNewRedisGuard_RequiresStore(t *testing.T) {
	_, err := NewRedisGuard(nil, DefaultConfig(), nil)
	assert.EqualError(t, err, ErrMsgRedisRequired)
}

func TestRedisGuard_CooldownAndInFlight(t *testing.T) {
	g, store, clock := newTestRedisGuard(t)
	ctx := context.Background()

	ticket, err := g.Admit(ctx, "alice", 100)
	require.NoError(t, err)

	_, err = g.Admit(ctx, "alice", 100)
	assert.ErrorIs(t, err, domain.ErrAlreadyInFlight)

	ticket.Release(ctx, domain.StatusConfirmed)
	_, err = store.Get(ctx, inFlightKey("alice"))
	assert.ErrorIs(t, err, redis.Nil)

	clock.Advance(time.Second)
	_, err = g.Admit(ctx, "alice", 100)
	var cooldownErr domain.CooldownError
	require.True(t, errors.As(err, &cooldownErr))
	assert.Equal(t, 2*time.Second, cooldownErr.Remaining)

	// A cooldown rejection must not leave the user marked in flight
	_, err = store.Get(ctx, inFlightKey("alice"))
	assert.ErrorIs(t, err, redis.Nil)

	clock.Advance(2 * time.Second)
	_, err = g.Admit(ctx, "alice", 100)
	assert.NoError(t, err)
}

func TestRedisGuard_ReleaseIsOwnerChecked(t *testing.T) {
	g, store, clock := newTestRedisGuard(t)
	ctx := context.Background()

	stale, err := g.Admit(ctx, "bob", 1)
	require.NoError(t, err)

	clock.Advance(DefaultInFlightTTL)
	current, err := g.Admit(ctx, "bob", 2)
	require.NoError(t, err)

	stale.Release(ctx, domain.StatusPendingReconcile)

	owner, err := store.Get(ctx, inFlightKey("bob"))
	require.NoError(t, err)
	assert.Equal(t, current.Operation.OperationID, owner)
}

func TestRedisGuard_StoreFailure(t *testing.T) {
	g, store, _ := newTestRedisGuard(t)
	store.failSet = errors.New("connection refused")

	_, err := g.Admit(context.Background(), "carol", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRedisGuard_FailedGiveBackIsLogged(t *testing.T) {
	logs := captureLogs(t)
	g, store, clock := newTestRedisGuard(t)
	ctx := context.Background()

	ticket, err := g.Admit(ctx, "dave", 1)
	require.NoError(t, err)
	ticket.Release(ctx, domain.StatusConfirmed)

	clock.Advance(time.Second)
	store.failGet = errors.New("read timeout")
	_, err = g.Admit(ctx, "dave", 1)
	assert.ErrorIs(t, err, domain.ErrCooldown)

	assert.Contains(t, logs.String(), LogMsgReleaseFailed)
	assert.Contains(t, logs.String(), "read timeout")
	assert.Contains(t, logs.String(), `"user_id":"dave"`)

	// The orphaned key stays until its TTL runs out
	store.failGet = nil
	_, err = store.Get(ctx, inFlightKey("dave"))
	assert.NoError(t, err)
	clock.Advance(DefaultInFlightTTL)
	_, err = store.Get(ctx, inFlightKey("dave"))
	assert.ErrorIs(t, err, redis.Nil)
}
