// Package leaktest catches goroutines left running by worker pools, retry
// loops and guard sweepers after a test finishes.
package leaktest

import (
	"runtime"
	"testing"
	"time"
)

const (
	settleTimeout = 2 * time.Second
	pollInterval  = 10 * time.Millisecond
)

// GoroutineChecker compares the goroutine count against a baseline
type GoroutineChecker struct {
	t        testing.TB
	baseline int
	timeout  time.Duration
}

// NewGoroutineChecker records the current goroutine count as the baseline
func NewGoroutineChecker(t testing.TB) *GoroutineChecker {
	t.Helper()
	runtime.Gosched()
	return &GoroutineChecker{t: t, baseline: runtime.NumGoroutine(), timeout: settleTimeout}
}

// WithTimeout changes how long Check waits for goroutines to exit
func (g *GoroutineChecker) WithTimeout(d time.Duration) *GoroutineChecker {
	g.timeout = d
	return g
}

// Check fails the test if more than tolerance goroutines above the baseline
// are still running once the timeout passes
func (g *GoroutineChecker) Check(tolerance int) {
	g.t.Helper()
	if leaked := settle(g.baseline+tolerance, g.timeout) - g.baseline; leaked > tolerance {
		g.t.Errorf("goroutine leak: baseline=%d leaked=%d tolerance=%d", g.baseline, leaked, tolerance)
	}
}

// CheckNoGoroutineLeak runs fn and checks that it left nothing running
func CheckNoGoroutineLeak(t testing.TB, fn func()) {
	t.Helper()
	checker := NewGoroutineChecker(t)
	fn()
	checker.Check(0)
}

// settle polls until the count drops to target or the timeout passes and
// returns the last count seen
func settle(target int, timeout time.Duration) int {
	deadline := time.Now().Add(timeout)
	for {
		runtime.Gosched()
		n := runtime.NumGoroutine()
		if n <= target || time.Now().After(deadline) {
			return n
		}
		time.Sleep(pollInterval)
	}
}
