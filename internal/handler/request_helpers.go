package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/osse101/SpinVault_Go/internal/logger"
)

// maxRequestBodyBytes bounds every JSON body the API accepts
const maxRequestBodyBytes = 64 << 10

const queryParamTenant = "tenant_id"

// ValidationErrorResponse lists the fields that failed validation
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// DecodeAndValidateRequest decodes the JSON body into req and runs the
// struct's validate tags. On error the 400 response has already been
// written and the caller just returns.
func DecodeAndValidateRequest(r *http.Request, w http.ResponseWriter, req any, action string) error {
	log := logger.FromContext(r.Context())

	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(body).Decode(req); err != nil {
		log.Warn("Undecodable request body", "action", action, "error", err)
		http.Error(w, ErrMsgInvalidRequest, http.StatusBadRequest)
		return err
	}

	if err := GetValidator().ValidateStruct(req); err != nil {
		log.Debug("Request failed validation", "action", action, "error", err)
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  ErrMsgInvalidRequestSummary,
			Fields: FormatValidationError(err),
		})
		return err
	}
	return nil
}

// GetQueryParam returns a required query parameter. When it is missing a
// 400 is written and ok is false.
func GetQueryParam(r *http.Request, w http.ResponseWriter, name string) (value string, ok bool) {
	value = r.URL.Query().Get(name)
	if value == "" {
		logger.FromContext(r.Context()).Debug("Missing query parameter", "param", name)
		http.Error(w, fmt.Sprintf(ErrMsgMissingQueryParam, name), http.StatusBadRequest)
		return "", false
	}
	return value, true
}

// GetOptionalQueryParam returns the parameter or fallback when it is empty
func GetOptionalQueryParam(r *http.Request, name, fallback string) string {
	if value := r.URL.Query().Get(name); value != "" {
		return value
	}
	return fallback
}

// GetTenantParam reads the optional tenant_id query parameter. An absent
// tenant is nil, which is the default tenant, not an empty string.
func GetTenantParam(r *http.Request) *string {
	value := r.URL.Query().Get(queryParamTenant)
	if value == "" {
		return nil
	}
	return &value
}
