package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/partnerhub/commission-service/internal/auth"
	"github.com/partnerhub/commission-service/internal/domain"
	"github.com/partnerhub/commission-service/internal/services/commission"
	"github.com/partnerhub/commission-service/pkg/timeutil"
)

// StatsService is the aggregator surface the handler depends on
type StatsService interface {
	GetCommissionStats(ctx context.Context, sellerID string, period commission.Period, now time.Time) (*commission.Stats, error)
}

// BalanceService is the balance gate surface the handler depends on
type BalanceService interface {
	GetSellerBalance(ctx context.Context, sellerID string, now time.Time) (*domain.SellerBalance, error)
}

// PayoutCreator opens payment requests on behalf of sellers
type PayoutCreator interface {
	CreateRequest(ctx context.Context, sellerID string, amount decimal.Decimal, now time.Time) (*domain.PaymentRequest, error)
}

// SellerHandler serves the seller-facing read endpoints and payout creation
type SellerHandler struct {
	commissions StatsService
	balances    BalanceService
	payouts     PayoutCreator
	logger      *zap.Logger
	now         func() time.Time
}

// NewSellerHandler creates a new seller API handler
func NewSellerHandler(
	commissions StatsService,
	balances BalanceService,
	payouts PayoutCreator,
	logger *zap.Logger,
) *SellerHandler {
	return &SellerHandler{
		commissions: commissions,
		balances:    balances,
		payouts:     payouts,
		logger:      logger,
		now:         timeutil.Now,
	}
}

// GetCommissionStats handles GET /api/v1/sellers/{id}/commission-stats
func (h *SellerHandler) GetCommissionStats(w http.ResponseWriter, r *http.Request) {
	sellerID := r.PathValue("id")
	if !sellerAllowed(auth.PrincipalFrom(r.Context()), sellerID) {
		respondError(w, h.logger, domain.ErrAuthAccessDenied)
		return
	}

	period := commission.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = commission.PeriodAll
	}

	stats, err := h.commissions.GetCommissionStats(r.Context(), sellerID, period, h.now())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, stats)
}

// GetBalance handles GET /api/v1/sellers/{id}/balance
func (h *SellerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	sellerID := r.PathValue("id")
	if !sellerAllowed(auth.PrincipalFrom(r.Context()), sellerID) {
		respondError(w, h.logger, domain.ErrAuthAccessDenied)
		return
	}

	balance, err := h.balances.GetSellerBalance(r.Context(), sellerID, h.now())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, balance)
}

type createPaymentRequestBody struct {
	Amount string `json:"amount"`
}

// CreatePaymentRequest handles POST /api/v1/sellers/{id}/payment-requests
func (h *SellerHandler) CreatePaymentRequest(w http.ResponseWriter, r *http.Request) {
	sellerID := r.PathValue("id")
	if !sellerAllowed(auth.PrincipalFrom(r.Context()), sellerID) {
		respondError(w, h.logger, domain.ErrAuthAccessDenied)
		return
	}

	var body createPaymentRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, h.logger, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid request body"))
		return
	}

	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		respondError(w, h.logger, domain.ErrValidationAmountInvalid)
		return
	}

	request, err := h.payouts.CreateRequest(r.Context(), sellerID, amount, h.now())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, request)
}
