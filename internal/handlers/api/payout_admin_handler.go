package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/partnerhub/commission-service/internal/domain"
	"github.com/partnerhub/commission-service/pkg/timeutil"
)

// PayoutAdminService is the transition surface the admin handler depends on
type PayoutAdminService interface {
	Approve(ctx context.Context, requestID string, now time.Time) error
	Reject(ctx context.Context, requestID string, reason string, now time.Time) error
	Complete(ctx context.Context, requestID string, now time.Time) error
}

// PayoutAdminHandler serves the admin payment-request transitions. Routes
// using it must sit behind Authenticator.RequireAdmin.
type PayoutAdminHandler struct {
	payouts PayoutAdminService
	logger  *zap.Logger
	now     func() time.Time
}

// NewPayoutAdminHandler creates a new admin payout handler
func NewPayoutAdminHandler(payouts PayoutAdminService, logger *zap.Logger) *PayoutAdminHandler {
	return &PayoutAdminHandler{
		payouts: payouts,
		logger:  logger,
		now:     timeutil.Now,
	}
}

type transitionResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

// Approve handles POST /api/v1/payment-requests/{id}/approve
func (h *PayoutAdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("id")
	if err := h.payouts.Approve(r.Context(), requestID, h.now()); err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("payment request approved", zap.String("request_id", requestID))
	respondJSON(w, h.logger, http.StatusOK, transitionResponse{Success: true, Status: string(domain.RequestStatusApproved)})
}

type rejectBody struct {
	Reason string `json:"reason"`
}

// Reject handles POST /api/v1/payment-requests/{id}/reject
func (h *PayoutAdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("id")

	var body rejectBody
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, h.logger, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid request body"))
			return
		}
	}

	if err := h.payouts.Reject(r.Context(), requestID, body.Reason, h.now()); err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("payment request rejected",
		zap.String("request_id", requestID),
		zap.String("reason", body.Reason))
	respondJSON(w, h.logger, http.StatusOK, transitionResponse{Success: true, Status: string(domain.RequestStatusRejected)})
}

// Complete handles POST /api/v1/payment-requests/{id}/complete
func (h *PayoutAdminHandler) Complete(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("id")
	if err := h.payouts.Complete(r.Context(), requestID, h.now()); err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("payment request completed", zap.String("request_id", requestID))
	respondJSON(w, h.logger, http.StatusOK, transitionResponse{Success: true, Status: string(domain.RequestStatusCompleted)})
}
