package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/SpinVault_Go/internal/domain"
)

func TestMemoryStore_CommitKeepsWritesMadeDuringTx(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.SetBalance("a", nil, 10)

	tx, err := store.BeginLedgerTx(ctx)
	require.NoError(t, err)

	require.NoError(t, store.CreateBalance(ctx, "b", nil))
	store.SetBalance("c", nil, 7)
	store.PutWin(domain.WinRecord{WinID: 40, UserID: "c"})

	rows, err := tx.UpdateBalanceIfMatches(ctx, "a", nil, 10, 25)
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)
	winID, err := tx.InsertWin(ctx, &domain.WinRecord{UserID: "a"})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	assert.Equal(t, int64(25), balanceOf(t, store, "a", nil))
	assert.Equal(t, int64(0), balanceOf(t, store, "b", nil))
	assert.Equal(t, int64(7), balanceOf(t, store, "c", nil))
	_, ok := store.Win(40)
	assert.True(t, ok)
	_, ok = store.Win(winID)
	assert.True(t, ok)
}

func TestMemoryStore_RollbackLeavesOutsideWrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.SetBalance("a", nil, 10)

	tx, err := store.BeginLedgerTx(ctx)
	require.NoError(t, err)
	store.SetBalance("a", nil, 12)
	_, err = tx.UpdateBalanceIfMatches(ctx, "a", nil, 10, 99)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(ctx))

	assert.Equal(t, int64(12), balanceOf(t, store, "a", nil))
}
