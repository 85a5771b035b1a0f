package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/logger"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// Helper functions for responding

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Get a buffer from the pool to reduce allocations
	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError logs a failed service call and sends the mapped response
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	status, userMsg := mapServiceErrorToUserMessage(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(opName, "error", err)
	} else {
		log.Warn(opName, "error", err, "status", status)
	}
	respondJSON(w, status, ErrorResponse{Error: userMsg, Hint: errorHint(err)})
}

// User-facing error messages for service errors
const (
	// Generic messages
	ErrMsgGenericServerError = "Something went wrong"
	ErrMsgUnknownError       = "Unknown error"
	ErrMsgUnavailableError   = "Server is temporarily unavailable. Please try again later."

	// Input
	ErrMsgInvalidInputError     = "Invalid request. Please check your inputs."
	ErrMsgInvalidAddressError   = "That is not a valid address"
	ErrMsgUnsupportedOperation  = "That operation is not supported"
	ErrMsgInvalidPayoutKindErr  = "Unknown payout kind"
	ErrMsgWheelNotFoundError    = "Wheel not found"
	ErrMsgNoEligibleRewardError = "This wheel has nothing to win right now"

	// Ledger
	ErrMsgUserNotFoundError      = "No balance for this user in this tenant"
	ErrMsgInsufficientBalanceErr = "Not enough balance"
	ErrMsgConcurrentUpdateError  = "Your balance changed while we were updating it. Please try again."
	ErrMsgWinNotFoundError       = "Win not found"
	ErrMsgWinNotOwnedError       = "That win belongs to someone else"
	ErrMsgNotPendingError        = "That reward is not waiting for a claim"
	ErrMsgOnChainClaimError      = "This reward has to be claimed on chain"

	// Submission guard
	ErrMsgOnCooldownError  = "Please wait a moment before submitting again"
	ErrMsgInFlightError    = "You already have a transaction in progress"
	ErrMsgNoAssetError     = "The vault has nothing to pay out for that asset"
	ErrMsgNotInitialized   = "A required account has not been created yet"
	ErrMsgSimulationError  = "The transaction would fail, so it was not sent"
	ErrMsgExpiredError     = "The network moved on before the transaction landed. Please try again."
	ErrMsgTxFailedError    = "The transaction failed on chain"
	ErrMsgConfirmPending   = "Transaction sent; confirmation is still pending"
	ErrMsgAlreadyProcessed = "This transaction was already processed. Refresh to see the latest state."
)

// mapServiceErrorToUserMessage maps domain errors to user-friendly HTTP responses.
// Internal errors never reach the client verbatim.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrInvalidAddress):
		return http.StatusBadRequest, ErrMsgInvalidAddressError
	case errors.Is(err, domain.ErrInvalidPayoutKind):
		return http.StatusBadRequest, ErrMsgInvalidPayoutKindErr
	case errors.Is(err, domain.ErrUnsupportedOperation):
		return http.StatusBadRequest, ErrMsgUnsupportedOperation
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidInputError
	case errors.Is(err, domain.ErrWheelNotFound):
		return http.StatusNotFound, ErrMsgWheelNotFoundError
	case errors.Is(err, domain.ErrWinNotFound):
		return http.StatusNotFound, ErrMsgWinNotFoundError
	case errors.Is(err, domain.ErrUserNotFoundInTenant):
		return http.StatusNotFound, ErrMsgUserNotFoundError
	case errors.Is(err, domain.ErrWinNotOwned):
		return http.StatusForbidden, ErrMsgWinNotOwnedError
	case errors.Is(err, domain.ErrCooldown):
		return http.StatusTooManyRequests, ErrMsgOnCooldownError
	case errors.Is(err, domain.ErrAlreadyInFlight):
		return http.StatusConflict, ErrMsgInFlightError
	case errors.Is(err, domain.ErrConcurrentUpdate):
		return http.StatusConflict, ErrMsgConcurrentUpdateError
	case errors.Is(err, domain.ErrClaimableNotPending):
		return http.StatusConflict, ErrMsgNotPendingError
	case errors.Is(err, domain.ErrOnChainClaimNeeded):
		return http.StatusConflict, ErrMsgOnChainClaimError
	case errors.Is(err, domain.ErrNoEligibleReward):
		return http.StatusConflict, ErrMsgNoEligibleRewardError
	case errors.Is(err, domain.ErrNoAssetAvailable):
		return http.StatusConflict, ErrMsgNoAssetError
	case errors.Is(err, domain.ErrAlreadyProcessed):
		return http.StatusConflict, ErrMsgAlreadyProcessed
	case errors.Is(err, domain.ErrSimulationFailed):
		return http.StatusUnprocessableEntity, ErrMsgSimulationError
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity, ErrMsgInsufficientBalanceErr
	case errors.Is(err, domain.ErrAccountNotInitialized):
		return http.StatusUnprocessableEntity, ErrMsgNotInitialized
	case errors.Is(err, domain.ErrTransactionFailed):
		return http.StatusUnprocessableEntity, ErrMsgTxFailedError
	case errors.Is(err, domain.ErrConfirmationUnknown):
		return http.StatusAccepted, ErrMsgConfirmPending
	case errors.Is(err, domain.ErrBlockhashExpired):
		return http.StatusServiceUnavailable, ErrMsgExpiredError
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}

// errorHint surfaces the actionable part of chain errors
func errorHint(err error) string {
	var simErr *domain.SimulationError
	if errors.As(err, &simErr) {
		if simErr.Hint != "" {
			return simErr.Hint
		}
		return simErr.Reason
	}
	var initErr *domain.AccountNotInitializedError
	if errors.As(err, &initErr) {
		return initErr.Hint
	}
	var cooldownErr domain.CooldownError
	if errors.As(err, &cooldownErr) {
		return cooldownErr.Error()
	}
	return ""
}
