package handler

import (
	"net/http"

	"github.com/osse101/SpinVault_Go/internal/spin"
)

type SpinHandler struct {
	service spin.Service
}

func NewSpinHandler(service spin.Service) *SpinHandler {
	return &SpinHandler{service: service}
}

// HandleSpin charges one spin and settles its reward
// @Summary Spin a wheel
// @Tags spins
// @Accept json
// @Produce json
// @Param request body spin.Request true "Spin details"
// @Success 201 {object} spin.Result
// @Failure 400 {object} ValidationErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/spins [post]
func (h *SpinHandler) HandleSpin(w http.ResponseWriter, r *http.Request) {
	var req spin.Request
	if err := DecodeAndValidateRequest(r, w, &req, "Spin"); err != nil {
		return
	}

	result, err := h.service.Spin(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, ErrMsgSpinFailed, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}
