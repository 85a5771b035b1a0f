package event

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/SpinVault_Go/internal/domain"
)

var errBusDown = errors.New("bus unavailable")

// flakyBus fails the first failures publishes, then accepts
type flakyBus struct {
	mu        sync.Mutex
	failures  int
	delivered []Event
	attempts  int
}

func (b *flakyBus) Publish(_ context.Context, evt Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempts++
	if b.failures < 0 || b.attempts <= b.failures {
		return errBusDown
	}
	b.delivered = append(b.delivered, evt)
	return nil
}

func (b *flakyBus) Subscribe(Type, Handler) {}

func (b *flakyBus) counts() (attempts, delivered int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts, len(b.delivered)
}

func newTestPublisher(t *testing.T, bus Bus, maxRetries int) (*ResilientPublisher, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deadletter.jsonl")
	p, err := NewResilientPublisher(bus, maxRetries, 5*time.Millisecond, path)
	require.NoError(t, err)
	return p, path
}

func readDeadLetters(t *testing.T, path string) []DeadLetterEntry {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []DeadLetterEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e DeadLetterEntry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		entries = append(entries, e)
	}
	require.NoError(t, sc.Err())
	return entries
}

func spinEvent() Event {
	return NewSpinCompletedEvent(nil, SpinCompletedPayloadV1{UserID: "7", Amount: 40, PayoutKind: domain.PayoutItemCredit})
}

func TestResilientPublisher_DeliversInline(t *testing.T) {
	bus := &flakyBus{}
	p, path := newTestPublisher(t, bus, 3)

	require.NoError(t, p.Publish(context.Background(), spinEvent()))
	require.NoError(t, p.Shutdown(context.Background()))

	attempts, delivered := bus.counts()
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, delivered)
	assert.Empty(t, readDeadLetters(t, path))
}

func TestResilientPublisher_RetriesUntilDelivered(t *testing.T) {
	bus := &flakyBus{failures: 2}
	p, path := newTestPublisher(t, bus, 5)

	p.PublishWithRetry(context.Background(), spinEvent())

	assert.Eventually(t, func() bool {
		_, delivered := bus.counts()
		return delivered == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, p.Shutdown(context.Background()))
	attempts, _ := bus.counts()
	assert.Equal(t, 3, attempts)
	assert.Empty(t, readDeadLetters(t, path))
}

func TestResilientPublisher_ExhaustedRetriesAreDeadLettered(t *testing.T) {
	bus := &flakyBus{failures: -1}
	p, path := newTestPublisher(t, bus, 2)

	evt := NewRewardClaimedEvent(nil, 12, "7", domain.PayoutFungibleToken, 500, false)
	p.PublishWithRetry(context.Background(), evt)

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && len(data) > 0 && data[len(data)-1] == '\n'
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, p.Shutdown(context.Background()))

	entries := readDeadLetters(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, DeadLetterSchemaVersion, entries[0].SchemaVersion)
	assert.Equal(t, Type(domain.EventTypeRewardClaimed), entries[0].Event.Type)
	assert.Equal(t, 2, entries[0].Attempts)
	assert.Equal(t, errBusDown.Error(), entries[0].LastError)

	payload, err := DecodePayload[RewardClaimedPayloadV1](entries[0].Event.Payload)
	require.NoError(t, err)
	assert.Equal(t, int64(12), payload.WinID)
}

func TestResilientPublisher_ShutdownFlushesPending(t *testing.T) {
	bus := &flakyBus{failures: -1}
	path := filepath.Join(t.TempDir(), "deadletter.jsonl")
	// Long delay keeps the entry queued until shutdown
	p, err := NewResilientPublisher(bus, 5, time.Hour, path)
	require.NoError(t, err)

	p.PublishWithRetry(context.Background(), spinEvent())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Shutdown(ctx))

	attempts, _ := bus.counts()
	assert.Equal(t, 2, attempts, "one inline publish plus one final attempt")
	assert.Len(t, readDeadLetters(t, path), 1)

	// A second shutdown is harmless
	assert.NotPanics(t, func() { _ = p.Shutdown(context.Background()) })
}

func TestResilientPublisher_ConcurrentPublish(t *testing.T) {
	bus := &flakyBus{}
	p, _ := newTestPublisher(t, bus, 3)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.PublishWithRetry(context.Background(), spinEvent())
		}()
	}
	wg.Wait()
	require.NoError(t, p.Shutdown(context.Background()))

	_, delivered := bus.counts()
	assert.Equal(t, 50, delivered)
}

func TestCalculateRetryDelay(t *testing.T) {
	base := 2 * time.Second
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 2 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{5, 32 * time.Second},
		{6, RetryMaxDelay},
		{60, RetryMaxDelay},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculateRetryDelay(base, tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestDecodePayload_Nil(t *testing.T) {
	_, err := DecodePayload[SpinCompletedPayloadV1](nil)
	assert.ErrorIs(t, err, ErrNilPayload)
}
