package spin

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/osse101/SpinVault_Go/internal/ledger"
	"github.com/osse101/SpinVault_Go/internal/reward"
)

func newBenchService(b *testing.B, users int) (Service, *ledger.MemoryStore) {
	b.Helper()
	store := ledger.NewMemoryStore()
	for i := 0; i < users; i++ {
		store.SetBalance(strconv.Itoa(i), nil, int64(b.N)*testWheel.SpinCost)
	}
	resolver := reward.NewResolver(reward.NewMemoryCatalog(testWheel), reward.NewSeededSource(42), reward.DefaultPointerDegrees)
	return NewService(store, resolver, ledger.NewReconciler(store, nil), nil), store
}

func BenchmarkSpin_SingleUser(b *testing.B) {
	svc, _ := newBenchService(b, 1)
	ctx := context.Background()
	req := Request{UserID: "0", WheelID: testWheel.ID}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.Spin(ctx, req); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSpin_ParallelUsers(b *testing.B) {
	const users = 1024
	svc, _ := newBenchService(b, users)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	var next atomic.Int64
	b.RunParallel(func(pb *testing.PB) {
		// Each goroutine sticks to one user so balance updates do not conflict
		id := strconv.FormatInt(next.Add(1)%users, 10)
		req := Request{UserID: id, WheelID: testWheel.ID}
		for pb.Next() {
			if _, err := svc.Spin(ctx, req); err != nil {
				b.Error(err)
				return
			}
		}
	})
}
