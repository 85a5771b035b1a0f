package vault

import (
	"context"
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/osse101/SpinVault_Go/internal/chain"
	"github.com/osse101/SpinVault_Go/internal/txbuilder"
	"github.com/osse101/SpinVault_Go/internal/worker"
)

type mockProber struct {
	mock.Mock
}

func (m *mockProber) Probe(ctx context.Context, req txbuilder.Request) (txbuilder.Probe, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(txbuilder.Probe), args.Error(1)
}

// fakeSigner "signs" by wrapping the unsigned message and numbering signatures
type fakeSigner struct {
	mu    sync.Mutex
	calls int
}

func (s *fakeSigner) SignTransaction(_ context.Context, tx *chain.Transaction) (*chain.SignedTransaction, error) {
	raw, err := tx.MarshalUnsigned()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.mu.Unlock()
	return chain.NewSignedTransaction(raw, fmt.Sprintf("sig-%d", n), tx.Blockhash), nil
}

func (s *fakeSigner) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []worker.Job
	err  error
}

func (q *fakeQueue) Enqueue(job worker.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeQueue) Jobs() []worker.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]worker.Job(nil), q.jobs...)
}
