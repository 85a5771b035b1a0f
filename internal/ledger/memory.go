package ledger

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/repository"
)

type balanceKey struct {
	userID string
	tenant string
	scoped bool
}

func keyFor(userID string, tenantID *string) balanceKey {
	if tenantID == nil {
		return balanceKey{userID: userID}
	}
	return balanceKey{userID: userID, tenant: *tenantID, scoped: true}
}

type memState struct {
	balances   map[balanceKey]int64
	wins       map[int64]domain.WinRecord
	claims     map[int64]domain.ClaimRecord
	claimables map[int64]domain.ClaimableItem
	nextWinID  int64
}

func (s memState) clone() memState {
	return memState{
		balances:   maps.Clone(s.balances),
		wins:       maps.Clone(s.wins),
		claims:     maps.Clone(s.claims),
		claimables: maps.Clone(s.claimables),
		nextWinID:  s.nextWinID,
	}
}

// MemoryStore is an in-process ledger for tests and local runs.
// Transactions are serialized and work on a private copy of the state. On
// commit only the rows the transaction changed are written back, so writes
// made outside a transaction while it was open are kept.
type MemoryStore struct {
	txLock sync.Mutex
	mu     sync.RWMutex
	state  memState
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: memState{
		balances:   map[balanceKey]int64{},
		wins:       map[int64]domain.WinRecord{},
		claims:     map[int64]domain.ClaimRecord{},
		claimables: map[int64]domain.ClaimableItem{},
		nextWinID:  1,
	}}
}

// SetBalance overwrites a balance row, creating it if needed
func (m *MemoryStore) SetBalance(userID string, tenantID *string, amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.balances[keyFor(userID, tenantID)] = amount
}

// PutWin stores a win as is, keeping its id
func (m *MemoryStore) PutWin(win domain.WinRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.wins[win.WinID] = win
	if win.WinID >= m.state.nextWinID {
		m.state.nextWinID = win.WinID + 1
	}
}

// PutClaim stores a claim record as is
func (m *MemoryStore) PutClaim(claim domain.ClaimRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.claims[claim.WinID] = claim
}

// Win returns a stored win
func (m *MemoryStore) Win(winID int64) (domain.WinRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.state.wins[winID]
	return w, ok
}

// ClaimCount returns the number of claim records
func (m *MemoryStore) ClaimCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.state.claims)
}

func (m *MemoryStore) BeginLedgerTx(ctx context.Context) (repository.LedgerTx, error) {
	m.txLock.Lock()
	if err := ctx.Err(); err != nil {
		m.txLock.Unlock()
		return nil, err
	}
	m.mu.RLock()
	base := m.state.clone()
	m.mu.RUnlock()
	return &memTx{store: m, base: base, state: base.clone()}, nil
}

func (m *MemoryStore) GetBalance(_ context.Context, userID string, tenantID *string) (*domain.LedgerBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	amount, ok := m.state.balances[keyFor(userID, tenantID)]
	if !ok {
		return nil, domain.ErrUserNotFoundInTenant
	}
	return &domain.LedgerBalance{UserID: userID, TenantID: tenantID, Amount: amount}, nil
}

func (m *MemoryStore) CreateBalance(_ context.Context, userID string, tenantID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := keyFor(userID, tenantID)
	if _, ok := m.state.balances[key]; !ok {
		m.state.balances[key] = 0
	}
	return nil
}

func (m *MemoryStore) GetClaim(_ context.Context, winID int64) (*domain.ClaimRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.state.claims[winID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *MemoryStore) ListClaimable(_ context.Context, userID string, tenantID *string) ([]domain.ClaimableItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := []domain.ClaimableItem{}
	for _, item := range m.state.claimables {
		if item.UserID == userID && domain.TenantKey(item.TenantID) == domain.TenantKey(tenantID) &&
			(item.TenantID == nil) == (tenantID == nil) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].WinID < items[j].WinID })
	return items, nil
}

// memTx mirrors Postgres behaviour closely enough for the ledger logic: a
// unique violation aborts the transaction and only rollback is allowed after.
type memTx struct {
	store   *MemoryStore
	base    memState
	state   memState
	done    bool
	aborted bool
}

var errTxAborted = errors.New(ErrMsgTxAborted)

func (t *memTx) usable() error {
	if t.done {
		return errors.New(ErrMsgTxDone)
	}
	if t.aborted {
		return errTxAborted
	}
	return nil
}

func (t *memTx) Commit(_ context.Context) error {
	if t.done {
		return errors.New(ErrMsgTxDone)
	}
	t.done = true
	defer t.store.txLock.Unlock()
	if t.aborted {
		return errTxAborted
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	dst := &t.store.state
	mergeChanges(dst.balances, t.base.balances, t.state.balances)
	mergeChanges(dst.wins, t.base.wins, t.state.wins)
	mergeChanges(dst.claims, t.base.claims, t.state.claims)
	mergeChanges(dst.claimables, t.base.claimables, t.state.claimables)
	dst.nextWinID = max(dst.nextWinID, t.state.nextWinID)
	return nil
}

// mergeChanges applies the difference between base and next onto dst.
func mergeChanges[K, V comparable](dst, base, next map[K]V) {
	for k, v := range next {
		if old, ok := base[k]; !ok || old != v {
			dst[k] = v
		}
	}
	for k := range base {
		if _, ok := next[k]; !ok {
			delete(dst, k)
		}
	}
}

func (t *memTx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.txLock.Unlock()
	return nil
}

func (t *memTx) GetBalanceAmount(_ context.Context, userID string, tenantID *string) (int64, error) {
	if err := t.usable(); err != nil {
		return 0, err
	}
	amount, ok := t.state.balances[keyFor(userID, tenantID)]
	if !ok {
		return 0, domain.ErrUserNotFoundInTenant
	}
	return amount, nil
}

func (t *memTx) UpdateBalanceIfMatches(_ context.Context, userID string, tenantID *string, expected, newAmount int64) (int64, error) {
	if err := t.usable(); err != nil {
		return 0, err
	}
	key := keyFor(userID, tenantID)
	current, ok := t.state.balances[key]
	if !ok || current != expected {
		return 0, nil
	}
	t.state.balances[key] = newAmount
	return 1, nil
}

func (t *memTx) GetClaim(_ context.Context, winID int64) (*domain.ClaimRecord, error) {
	if err := t.usable(); err != nil {
		return nil, err
	}
	c, ok := t.state.claims[winID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (t *memTx) InsertClaim(_ context.Context, claim *domain.ClaimRecord) error {
	if err := t.usable(); err != nil {
		return err
	}
	if _, exists := t.state.claims[claim.WinID]; exists {
		t.aborted = true
		return fmt.Errorf("%w: win %d", domain.ErrClaimAlreadyExists, claim.WinID)
	}
	t.state.claims[claim.WinID] = *claim
	return nil
}

func (t *memTx) GetWin(_ context.Context, winID int64) (*domain.WinRecord, error) {
	if err := t.usable(); err != nil {
		return nil, err
	}
	w, ok := t.state.wins[winID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrWinNotFound, winID)
	}
	return &w, nil
}

func (t *memTx) InsertWin(_ context.Context, win *domain.WinRecord) (int64, error) {
	if err := t.usable(); err != nil {
		return 0, err
	}
	id := t.state.nextWinID
	t.state.nextWinID++
	stored := *win
	stored.WinID = id
	t.state.wins[id] = stored
	return id, nil
}

func (t *memTx) SetBalanceCredited(_ context.Context, winID int64) (int64, error) {
	if err := t.usable(); err != nil {
		return 0, err
	}
	w, ok := t.state.wins[winID]
	if !ok || w.BalanceCredited {
		return 0, nil
	}
	w.BalanceCredited = true
	t.state.wins[winID] = w
	return 1, nil
}

func (t *memTx) InsertClaimable(_ context.Context, item *domain.ClaimableItem) error {
	if err := t.usable(); err != nil {
		return err
	}
	t.state.claimables[item.WinID] = *item
	return nil
}

func (t *memTx) GetClaimable(_ context.Context, winID int64) (*domain.ClaimableItem, error) {
	if err := t.usable(); err != nil {
		return nil, err
	}
	item, ok := t.state.claimables[winID]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (t *memTx) DeleteClaimable(_ context.Context, winID int64) (int64, error) {
	if err := t.usable(); err != nil {
		return 0, err
	}
	if _, ok := t.state.claimables[winID]; !ok {
		return 0, nil
	}
	delete(t.state.claimables, winID)
	return 1, nil
}
