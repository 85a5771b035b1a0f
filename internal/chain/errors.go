package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/osse101/SpinVault_Go/internal/domain"
)

var (
	// ErrAccountNotFound is returned for reads of accounts that do not exist
	ErrAccountNotFound = errors.New("account not found")

	// ErrNotYetConfirmed means the signature has not reached the target
	// commitment and its blockhash is still valid
	ErrNotYetConfirmed = errors.New("transaction not yet confirmed")
)

// Substrings the node uses in error messages and simulation logs
const (
	msgAlreadyProcessed   = "already been processed"
	msgAlreadyProcessed2  = "alreadyprocessed"
	msgBlockhashNotFound  = "blockhash not found"
	msgBlockhashNotFound2 = "blockhashnotfound"
	msgAccountNotFound    = "could not find account"
)

func isAccountNotFound(err error) bool {
	var rpcErr *RPCError
	return errors.As(err, &rpcErr) && strings.Contains(strings.ToLower(rpcErr.Message), msgAccountNotFound)
}

// ClassifyError maps node errors onto the domain's error kinds. Unknown
// errors are returned unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		return err
	}
	text := strings.ToLower(rpcErr.Message + " " + string(rpcErr.Data))
	switch {
	case strings.Contains(text, msgAlreadyProcessed) || strings.Contains(text, msgAlreadyProcessed2):
		return fmt.Errorf("%w: %w", domain.ErrAlreadyProcessed, err)
	case rpcErr.Code == RPCCodeBlockhashNotFound,
		strings.Contains(text, msgBlockhashNotFound) || strings.Contains(text, msgBlockhashNotFound2):
		return fmt.Errorf("%w: %w", domain.ErrBlockhashExpired, err)
	}
	return err
}

// Retryable reports whether a read failure is worth another attempt:
// transport errors, timeouts, throttling, 5xx and an unhealthy node.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrNotYetConfirmed) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= http.StatusInternalServerError
	}
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr.Code == RPCCodeNodeUnhealthy
	}
	// *url.Error from the HTTP client covers resets and EOFs
	var netErr net.Error
	return errors.As(err, &netErr)
}

// ClassifySimulation turns a failed pre-flight into an error. Blockhash and
// duplicate failures map to their lifecycle errors so the caller can rebuild
// or stop; anything else is a SimulationError carrying the program logs.
func ClassifySimulation(res *SimulationResult) error {
	if !res.Failed() {
		return nil
	}
	reason := simulationReason(res.Err)
	text := strings.ToLower(reason)
	switch {
	case strings.Contains(text, msgBlockhashNotFound2) || strings.Contains(text, msgBlockhashNotFound):
		return fmt.Errorf("%w: %s", domain.ErrBlockhashExpired, reason)
	case strings.Contains(text, msgAlreadyProcessed2) || strings.Contains(text, msgAlreadyProcessed):
		return fmt.Errorf("%w: %s", domain.ErrAlreadyProcessed, reason)
	}

	simErr := &domain.SimulationError{Reason: reason, Logs: res.Logs}
	switch {
	case errors.Is(simErr, domain.ErrInsufficientBalance):
		simErr.Hint = HintInsufficientFunds
	case errors.Is(simErr, domain.ErrAccountNotInitialized):
		simErr.Hint = HintUninitializedAccount
	}
	return simErr
}

// simulationReason renders the node's error value, which is either a bare
// string or an object such as {"InstructionError":[0,{"Custom":1}]}
func simulationReason(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
