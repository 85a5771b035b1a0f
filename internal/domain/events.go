package domain

// Event type constants used across the application for event bus subscriptions
// and metrics tracking.
//
// Event types follow the pattern: <entity>.<action> (e.g., "spin.completed")
const (
	// EventTypeSpinCompleted is published after a spin debited its cost and applied its payout
	EventTypeSpinCompleted = "spin.completed"

	// EventTypeRewardClaimed is published when a win is claimed, including idempotent repeats
	EventTypeRewardClaimed = "reward.claimed"

	// EventTypeVaultOperation is published when a deposit, withdrawal or on-chain claim settles
	EventTypeVaultOperation = "vault.operation"

	// EventTypeBalanceAdjusted is published after a successful ledger delta
	EventTypeBalanceAdjusted = "balance.adjusted"
)
