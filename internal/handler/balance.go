package handler

import (
	"context"
	"net/http"

	"github.com/osse101/SpinVault_Go/internal/domain"
)

// BalanceService reads and opens off-chain balances
type BalanceService interface {
	Balance(ctx context.Context, userID string, tenantID *string) (*domain.LedgerBalance, error)
	OpenAccount(ctx context.Context, userID string, tenantID *string) error
}

type BalanceHandler struct {
	service BalanceService
}

func NewBalanceHandler(service BalanceService) *BalanceHandler {
	return &BalanceHandler{service: service}
}

type OpenAccountRequest struct {
	UserID   string  `json:"user_id" validate:"required,max=100,excludesall=\x00\n\r\t"`
	TenantID *string `json:"tenant_id,omitempty" validate:"omitempty,max=100"`
}

// HandleGetBalance returns the user's balance in a tenant
// @Summary Get balance
// @Tags balance
// @Produce json
// @Param user_id query string true "User ID"
// @Param tenant_id query string false "Tenant ID"
// @Success 200 {object} domain.LedgerBalance
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/balance [get]
func (h *BalanceHandler) HandleGetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetQueryParam(r, w, "user_id")
	if !ok {
		return
	}

	balance, err := h.service.Balance(r.Context(), userID, GetTenantParam(r))
	if err != nil {
		respondServiceError(w, r, ErrMsgBalanceFailed, err)
		return
	}

	respondJSON(w, http.StatusOK, balance)
}

// HandleOpenAccount creates a zero balance; existing balances are untouched
// @Summary Open a balance account
// @Tags balance
// @Accept json
// @Produce json
// @Param request body OpenAccountRequest true "Account details"
// @Success 200 {object} SuccessResponse
// @Router /api/v1/accounts [post]
func (h *BalanceHandler) HandleOpenAccount(w http.ResponseWriter, r *http.Request) {
	var req OpenAccountRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Open account"); err != nil {
		return
	}

	if err := h.service.OpenAccount(r.Context(), req.UserID, req.TenantID); err != nil {
		respondServiceError(w, r, ErrMsgOpenAccountFailed, err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgAccountOpened})
}
