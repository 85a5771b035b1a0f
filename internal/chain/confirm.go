package chain

import (
	"context"
	"fmt"

	"github.com/osse101/SpinVault_Go/internal/domain"
)

// PollConfirmation checks a sent signature once. It returns the status when
// the transaction landed, ErrNotYetConfirmed while it may still land,
// ErrBlockhashExpired once the validity window passed without it, and
// ErrTransactionFailed when it landed with an error.
func PollConfirmation(ctx context.Context, c Client, signature string, bh Blockhash) (*SignatureStatus, error) {
	status, err := c.GetSignatureStatus(ctx, signature)
	if err != nil {
		return nil, err
	}
	if status != nil && status.Err != nil {
		return status, fmt.Errorf("%w: %v", domain.ErrTransactionFailed, status.Err)
	}
	if status.Landed() {
		return status, nil
	}

	height, err := c.GetBlockHeight(ctx)
	if err != nil {
		return status, err
	}
	if height > bh.LastValidBlockHeight {
		// A final look: it may have landed between the two reads
		status, err = c.GetSignatureStatus(ctx, signature)
		if err != nil {
			return nil, err
		}
		if status != nil && status.Err != nil {
			return status, fmt.Errorf("%w: %v", domain.ErrTransactionFailed, status.Err)
		}
		if status.Landed() {
			return status, nil
		}
		return status, domain.ErrBlockhashExpired
	}
	return status, ErrNotYetConfirmed
}
