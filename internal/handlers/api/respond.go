package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/partnerhub/commission-service/internal/domain"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

// respondJSON writes a JSON body with the given status
func respondJSON(w http.ResponseWriter, logger *zap.Logger, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

// respondError maps a service error to an HTTP status and a generic body.
// Internal detail (wrapped causes, invariant dumps) stays in the logs.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	code := domain.GetErrorCode(err)
	status := statusForCode(code)

	message := "internal server error"
	var domainErr *domain.DomainError
	if status < http.StatusInternalServerError && errors.As(err, &domainErr) {
		message = domainErr.Message
	} else if code == domain.ErrorCodeStoreUnavailable {
		message = "service temporarily unavailable"
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("code", string(code)), zap.Error(err))
	}

	respondJSON(w, logger, status, errorResponse{
		Success: false,
		Error:   errorBody{Code: string(code), Message: message},
	})
}

func statusForCode(code domain.ErrorCode) int {
	switch code {
	case domain.ErrorCodeAuthMissing, domain.ErrorCodeAuthInvalid:
		return http.StatusUnauthorized
	case domain.ErrorCodeAuthAccessDenied, domain.ErrorCodeSellerInactive, domain.ErrorCodeDocumentAccessDenied:
		return http.StatusForbidden
	case domain.ErrorCodeSellerNotFound, domain.ErrorCodeRequestNotFound, domain.ErrorCodeDocumentNotFound:
		return http.StatusNotFound
	case domain.ErrorCodeRequestConflict, domain.ErrorCodeRequestInvalidState:
		return http.StatusConflict
	case domain.ErrorCodeRequestOutsideWindow, domain.ErrorCodeRequestInsufficientBalance:
		return http.StatusUnprocessableEntity
	case domain.ErrorCodeValidationFailed, domain.ErrorCodeValidationAmountInvalid:
		return http.StatusBadRequest
	case domain.ErrorCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
