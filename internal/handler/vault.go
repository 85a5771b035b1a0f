package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/osse101/SpinVault_Go/internal/address"
	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/txbuilder"
	"github.com/osse101/SpinVault_Go/internal/vault"
)

// VaultExecutor runs a vault operation end to end
type VaultExecutor interface {
	Execute(ctx context.Context, req vault.Request) (*vault.Receipt, error)
}

// AccountDeriver lists the addresses an operation would touch
type AccountDeriver interface {
	Accounts(req txbuilder.Request) txbuilder.PlanAccounts
}

type VaultHandler struct {
	executor VaultExecutor
	accounts AccountDeriver
}

func NewVaultHandler(executor VaultExecutor, accounts AccountDeriver) *VaultHandler {
	return &VaultHandler{executor: executor, accounts: accounts}
}

// VaultOperationRequest is the body shared by deposit, withdraw and claim
type VaultOperationRequest struct {
	User        string `json:"user" validate:"required,address"`
	Mint        string `json:"mint" validate:"required,address"`
	Amount      uint64 `json:"amount" validate:"gt=0"`
	ClaimTarget string `json:"claim_target,omitempty" validate:"address"`
}

// VaultResponse is the receipt plus the error, when the operation sent a
// payload but did not end confirmed
type VaultResponse struct {
	*vault.Receipt
	Error string `json:"error,omitempty"`
	Hint  string `json:"hint,omitempty"`
}

func (req VaultOperationRequest) toRequest(kind domain.OperationKind) (vault.Request, error) {
	user, err := address.Parse(req.User)
	if err != nil {
		return vault.Request{}, err
	}
	mint, err := address.Parse(req.Mint)
	if err != nil {
		return vault.Request{}, err
	}
	out := vault.Request{Kind: kind, User: user, Mint: mint, Amount: req.Amount}
	if req.ClaimTarget != "" {
		if out.ClaimTarget, err = address.Parse(req.ClaimTarget); err != nil {
			return vault.Request{}, err
		}
	}
	return out, nil
}

// HandleOperation returns the handler for one operation kind
// @Summary Run a vault operation
// @Description Builds, simulates, signs, sends and confirms a deposit, withdraw or claim
// @Tags vault
// @Accept json
// @Produce json
// @Param kind path string true "deposit, withdraw or claim"
// @Param request body VaultOperationRequest true "Operation details"
// @Success 200 {object} VaultResponse
// @Success 202 {object} VaultResponse
// @Failure 400 {object} ValidationErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/vault/{kind} [post]
func (h *VaultHandler) HandleOperation(kind domain.OperationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !kind.Valid() {
			respondError(w, http.StatusNotFound, ErrMsgUnknownOperation)
			return
		}

		var body VaultOperationRequest
		if err := DecodeAndValidateRequest(r, w, &body, fmt.Sprintf("Vault %s", kind)); err != nil {
			return
		}
		req, err := body.toRequest(kind)
		if err != nil {
			respondServiceError(w, r, ErrMsgVaultFailed, err)
			return
		}

		receipt, err := h.executor.Execute(r.Context(), req)
		if receipt == nil {
			respondServiceError(w, r, ErrMsgVaultFailed, err)
			return
		}
		if err == nil {
			respondJSON(w, http.StatusOK, VaultResponse{Receipt: receipt})
			return
		}

		// A payload went out, so the signature is part of the answer
		status, userMsg := mapServiceErrorToUserMessage(err)
		respondJSON(w, status, VaultResponse{Receipt: receipt, Error: userMsg, Hint: errorHint(err)})
	}
}

// HandleAddresses derives the accounts an operation would touch
// @Summary Derive vault addresses
// @Tags vault
// @Produce json
// @Param user query string true "User address"
// @Param mint query string true "Mint address"
// @Param kind query string false "deposit, withdraw or claim"
// @Success 200 {object} txbuilder.PlanAccounts
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/vault/addresses [get]
func (h *VaultHandler) HandleAddresses(w http.ResponseWriter, r *http.Request) {
	userParam, ok := GetQueryParam(r, w, "user")
	if !ok {
		return
	}
	mintParam, ok := GetQueryParam(r, w, "mint")
	if !ok {
		return
	}
	user, err := address.Parse(userParam)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidAddress, "user"))
		return
	}
	mint, err := address.Parse(mintParam)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidAddress, "mint"))
		return
	}
	kind := domain.OperationKind(GetOptionalQueryParam(r, "kind", string(domain.OperationDeposit)))
	if !kind.Valid() {
		respondError(w, http.StatusBadRequest, ErrMsgUnknownOperation)
		return
	}

	respondJSON(w, http.StatusOK, h.accounts.Accounts(txbuilder.Request{Kind: kind, User: user, Mint: mint}))
}
