package handler

import (
	"context"
	"net/http"

	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/logger"
)

// ClaimService pays out wins and lists the ones waiting for an on-chain claim
type ClaimService interface {
	Claim(ctx context.Context, req domain.ClaimRequest) (*domain.ClaimResult, error)
	RecordOnChainClaim(ctx context.Context, winID int64, userID string, tenantID *string, signature string) (*domain.ClaimResult, error)
	ListClaimable(ctx context.Context, userID string, tenantID *string) ([]domain.ClaimableItem, error)
}

type ClaimHandler struct {
	service ClaimService
}

func NewClaimHandler(service ClaimService) *ClaimHandler {
	return &ClaimHandler{service: service}
}

// RecordOnChainClaimRequest reports a confirmed on-chain claim for a queued win
type RecordOnChainClaimRequest struct {
	WinID     int64   `json:"win_id" validate:"required,gt=0"`
	UserID    string  `json:"user_id" validate:"required,max=100"`
	TenantID  *string `json:"tenant_id,omitempty" validate:"omitempty,max=100"`
	Signature string  `json:"signature" validate:"required,max=128"`
}

// ClaimableResponse lists a user's unclaimed on-chain rewards
type ClaimableResponse struct {
	Items []domain.ClaimableItem `json:"items"`
}

// HandleClaim pays out a win. Repeating the call is safe.
// @Summary Claim a win
// @Description Credits the win's payout once; repeats report already_claimed
// @Tags claims
// @Accept json
// @Produce json
// @Param request body domain.ClaimRequest true "Claim details"
// @Success 200 {object} domain.ClaimResult
// @Failure 400 {object} ValidationErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/claims [post]
func (h *ClaimHandler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	var req domain.ClaimRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Claim reward"); err != nil {
		return
	}

	log := logger.FromContext(r.Context())
	log.Debug("Claim requested", "user_id", req.UserID, "win_id", req.WinID, "pool_id", req.PoolID)

	result, err := h.service.Claim(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, ErrMsgClaimFailed, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// HandleRecordOnChainClaim closes out a claimable win after its claim landed
// @Summary Record an on-chain claim
// @Tags claims
// @Accept json
// @Produce json
// @Param request body RecordOnChainClaimRequest true "Claim details"
// @Success 200 {object} domain.ClaimResult
// @Failure 400 {object} ValidationErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/claims/onchain [post]
func (h *ClaimHandler) HandleRecordOnChainClaim(w http.ResponseWriter, r *http.Request) {
	var req RecordOnChainClaimRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Record on-chain claim"); err != nil {
		return
	}

	result, err := h.service.RecordOnChainClaim(r.Context(), req.WinID, req.UserID, req.TenantID, req.Signature)
	if err != nil {
		respondServiceError(w, r, ErrMsgRecordClaimFailed, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// HandleListClaimable lists wins waiting for an on-chain claim
// @Summary List claimable rewards
// @Tags claims
// @Produce json
// @Param user_id query string true "User ID"
// @Param tenant_id query string false "Tenant ID"
// @Success 200 {object} ClaimableResponse
// @Router /api/v1/claimable [get]
func (h *ClaimHandler) HandleListClaimable(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetQueryParam(r, w, "user_id")
	if !ok {
		return
	}

	items, err := h.service.ListClaimable(r.Context(), userID, GetTenantParam(r))
	if err != nil {
		respondServiceError(w, r, ErrMsgListClaimableFailed, err)
		return
	}
	if items == nil {
		items = []domain.ClaimableItem{}
	}

	respondJSON(w, http.StatusOK, ClaimableResponse{Items: items})
}
