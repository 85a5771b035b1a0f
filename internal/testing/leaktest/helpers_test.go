package leaktest

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// recordingTB captures Errorf instead of failing the real test
type recordingTB struct {
	testing.TB
	mu     sync.Mutex
	failed bool
}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Errorf(string, ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = true
}

func TestGoroutineChecker_FinishedWorkers(t *testing.T) {
	CheckNoGoroutineLeak(t, func() {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				time.Sleep(time.Millisecond)
			}()
		}
		wg.Wait()
	})
}

func TestGoroutineChecker_WaitsForExit(t *testing.T) {
	checker := NewGoroutineChecker(t)
	go time.Sleep(30 * time.Millisecond)
	checker.Check(0)
}

func TestGoroutineChecker_ReportsLeak(t *testing.T) {
	rec := &recordingTB{TB: t}
	checker := NewGoroutineChecker(rec).WithTimeout(50 * time.Millisecond)

	stop := make(chan struct{})
	defer close(stop)
	go func() { <-stop }()

	checker.Check(0)
	assert.True(t, rec.failed)
}

func TestGoroutineChecker_Tolerance(t *testing.T) {
	rec := &recordingTB{TB: t}
	checker := NewGoroutineChecker(rec).WithTimeout(20 * time.Millisecond)

	stop := make(chan struct{})
	defer close(stop)
	go func() { <-stop }()

	checker.Check(1)
	assert.False(t, rec.failed)
}
