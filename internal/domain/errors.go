package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Balance errors
	ErrMsgInsufficientBalance   = "insufficient balance"
	ErrMsgUserNotFoundInTenant  = "user not found in tenant"
	ErrMsgConcurrentUpdate      = "balance changed concurrently"
	ErrMsgNoAssetAvailable      = "no asset available in vault"
	ErrMsgAccountNotInitialized = "account not initialized"

	// Transaction lifecycle errors
	ErrMsgSimulationFailed     = "transaction simulation failed"
	ErrMsgAlreadyProcessed     = "transaction already processed"
	ErrMsgBlockhashExpired     = "blockhash expired"
	ErrMsgPayloadConsumed      = "signed transaction already submitted"
	ErrMsgConfirmationUnknown  = "transaction confirmation status unknown"
	ErrMsgTransactionFailed    = "transaction failed on chain"
	ErrMsgUnsupportedOperation = "unsupported operation"

	// Guard errors
	ErrMsgCooldown        = "operation on cooldown"
	ErrMsgAlreadyInFlight = "operation already in flight"

	// Reward and claim errors
	ErrMsgNoEligibleReward    = "no eligible reward"
	ErrMsgClaimAlreadyExists  = "claim already exists"
	ErrMsgWinNotFound         = "win not found"
	ErrMsgWinNotOwned         = "win belongs to another user"
	ErrMsgWheelNotFound       = "wheel not found"
	ErrMsgInvalidPayoutKind   = "invalid payout kind"
	ErrMsgClaimableNotPending = "item is not awaiting a claim"
	ErrMsgOnChainClaimNeeded  = "reward must be claimed on chain"

	// Input errors
	ErrMsgInvalidInput   = "invalid input"
	ErrMsgInvalidAddress = "invalid address"
)

// Common domain errors
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Balance errors
	ErrInsufficientBalance   = errors.New(ErrMsgInsufficientBalance)
	ErrUserNotFoundInTenant  = errors.New(ErrMsgUserNotFoundInTenant)
	ErrConcurrentUpdate      = errors.New(ErrMsgConcurrentUpdate)
	ErrNoAssetAvailable      = errors.New(ErrMsgNoAssetAvailable)
	ErrAccountNotInitialized = errors.New(ErrMsgAccountNotInitialized)

	// Transaction lifecycle errors
	ErrSimulationFailed     = errors.New(ErrMsgSimulationFailed)
	ErrAlreadyProcessed     = errors.New(ErrMsgAlreadyProcessed)
	ErrBlockhashExpired     = errors.New(ErrMsgBlockhashExpired)
	ErrPayloadConsumed      = errors.New(ErrMsgPayloadConsumed)
	ErrConfirmationUnknown  = errors.New(ErrMsgConfirmationUnknown)
	ErrTransactionFailed    = errors.New(ErrMsgTransactionFailed)
	ErrUnsupportedOperation = errors.New(ErrMsgUnsupportedOperation)

	// Guard errors
	ErrCooldown        = errors.New(ErrMsgCooldown)
	ErrAlreadyInFlight = errors.New(ErrMsgAlreadyInFlight)

	// Reward and claim errors
	ErrNoEligibleReward    = errors.New(ErrMsgNoEligibleReward)
	ErrClaimAlreadyExists  = errors.New(ErrMsgClaimAlreadyExists)
	ErrWinNotFound         = errors.New(ErrMsgWinNotFound)
	ErrWinNotOwned         = errors.New(ErrMsgWinNotOwned)
	ErrWheelNotFound       = errors.New(ErrMsgWheelNotFound)
	ErrInvalidPayoutKind   = errors.New(ErrMsgInvalidPayoutKind)
	ErrClaimableNotPending = errors.New(ErrMsgClaimableNotPending)
	ErrOnChainClaimNeeded  = errors.New(ErrMsgOnChainClaimNeeded)

	// Input errors
	ErrInvalidInput   = errors.New(ErrMsgInvalidInput)
	ErrInvalidAddress = errors.New(ErrMsgInvalidAddress)
)

// CooldownError is returned when a user submits again inside the cooldown window
type CooldownError struct {
	Remaining time.Duration
}

func (e CooldownError) Error() string {
	return fmt.Sprintf("%s: retry in %s", ErrMsgCooldown, e.Remaining.Round(time.Millisecond))
}

// Is allows errors.Is(err, ErrCooldown) to match
func (e CooldownError) Is(target error) bool {
	return target == ErrCooldown
}

// SimulationError carries the pre-flight failure reason and the program logs
type SimulationError struct {
	Reason string
	Hint   string
	Logs   []string
}

func (e *SimulationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (%s)", ErrMsgSimulationFailed, e.Reason, e.Hint)
	}
	return fmt.Sprintf("%s: %s", ErrMsgSimulationFailed, e.Reason)
}

// Is allows errors.Is(err, ErrSimulationFailed) to match
func (e *SimulationError) Is(target error) bool {
	return target == ErrSimulationFailed
}

// Unwrap exposes the classified cause found in the logs, if any
func (e *SimulationError) Unwrap() error {
	joined := strings.ToLower(strings.Join(e.Logs, "\n") + " " + e.Reason)
	switch {
	case strings.Contains(joined, "insufficient funds"), strings.Contains(joined, "insufficient lamports"):
		return ErrInsufficientBalance
	case strings.Contains(joined, "uninitialized account"), strings.Contains(joined, "accountnotinitialized"):
		return ErrAccountNotInitialized
	}
	return nil
}

// AccountNotInitializedError names the missing account and how to create it
type AccountNotInitializedError struct {
	Account string
	Hint    string
}

func (e *AccountNotInitializedError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrMsgAccountNotInitialized, e.Account, e.Hint)
}

// Is allows errors.Is(err, ErrAccountNotInitialized) to match
func (e *AccountNotInitializedError) Is(target error) bool {
	return target == ErrAccountNotInitialized
}
