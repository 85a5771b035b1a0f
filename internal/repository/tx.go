package repository

import (
	"context"

	"github.com/osse101/SpinVault_Go/internal/logger"
)

// Tx is the commit/rollback half of every store transaction
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// SafeRollback rolls tx back and logs a failure. Implementations return nil
// when the transaction has already been committed or rolled back.
func SafeRollback(ctx context.Context, tx Tx) {
	if err := tx.Rollback(ctx); err != nil {
		logger.FromContext(ctx).Error("Failed to rollback transaction", "error", err)
	}
}
