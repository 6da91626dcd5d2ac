package balance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/partnerhub/commission-service/internal/domain"
	"github.com/partnerhub/commission-service/internal/domain/ports"
	"github.com/partnerhub/commission-service/pkg/observability"
)

// Service implements the balance and withdrawal-window gate
type Service struct {
	db          ports.DBPort
	commissions ports.CommissionRepository
	requests    ports.PaymentRequestRepository
	sellers     ports.SellerRepository
	logger      ports.Logger
	window      domain.RequestWindow
}

// NewService creates a new balance service
func NewService(
	db ports.DBPort,
	commissions ports.CommissionRepository,
	requests ports.PaymentRequestRepository,
	sellers ports.SellerRepository,
	logger ports.Logger,
	window domain.RequestWindow,
) *Service {
	return &Service{
		db:          db,
		commissions: commissions,
		requests:    requests,
		sellers:     sellers,
		logger:      logger,
		window:      window,
	}
}

// GetSellerBalance computes the withdrawal picture for a seller as of the
// given instant. The whole computation runs inside one read-only transaction
// so the balance, the latest request, and the open-request check see the
// same snapshot. Store failures return an error; CanRequest is never
// reported true unless every check succeeded.
func (s *Service) GetSellerBalance(ctx context.Context, sellerID string, now time.Time) (*domain.SellerBalance, error) {
	loc := time.UTC
	seller, err := s.sellers.GetByID(ctx, s.db.GetDB(), sellerID)
	switch {
	case err == nil:
		loc = seller.Location()
	case errors.Is(err, domain.ErrSellerNotFound):
		// Unknown seller: zero balances against the UTC window below.
	default:
		observability.RecordBalanceQuery("error")
		return nil, domain.WrapError(domain.ErrorCodeStoreUnavailable, "failed to load seller", err)
	}

	var result *domain.SellerBalance
	err = s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		records, err := s.commissions.ListBySeller(ctx, tx, sellerID)
		if err != nil {
			return domain.WrapError(domain.ErrorCodeStoreUnavailable, "failed to load commission records", err)
		}

		latest, err := s.requests.GetLatestBySeller(ctx, tx, sellerID)
		if err != nil {
			return domain.WrapError(domain.ErrorCodeStoreUnavailable, "failed to load latest payment request", err)
		}

		hasOpen, err := s.requests.HasOpenRequest(ctx, tx, sellerID)
		if err != nil {
			return domain.WrapError(domain.ErrorCodeStoreUnavailable, "failed to check open payment requests", err)
		}

		balance, err := compute(records, latest, hasOpen, s.window, now, loc)
		if err != nil {
			observability.RecordInvariantViolation()
			s.logger.Error("commission invariant violation detected",
				ports.String("seller_id", sellerID),
				ports.Err(err))
			return err
		}
		result = balance
		return nil
	})
	if err != nil {
		observability.RecordBalanceQuery("error")
		return nil, err
	}

	observability.RecordBalanceQuery("ok")
	return result, nil
}

func compute(
	records []*domain.CommissionRecord,
	latest *domain.PaymentRequest,
	hasOpen bool,
	window domain.RequestWindow,
	now time.Time,
	loc *time.Location,
) (*domain.SellerBalance, error) {
	available := decimal.Zero
	pending := decimal.Zero
	var nextWithdrawal *time.Time

	for _, record := range records {
		if err := record.CheckInvariant(); err != nil {
			return nil, err
		}

		if record.IsAvailable(now) {
			available = available.Add(record.Remaining())
			continue
		}

		pending = pending.Add(record.Remaining())
		if record.AvailableAt != nil && record.AvailableAt.After(now) {
			if nextWithdrawal == nil || record.AvailableAt.Before(*nextWithdrawal) {
				at := *record.AvailableAt
				nextWithdrawal = &at
			}
		}
	}

	windowStart, windowEnd := window.Next(now, loc)
	inWindow := window.Contains(now, loc)

	balance := &domain.SellerBalance{
		NextRequestWindowStart: windowStart,
		NextRequestWindowEnd:   windowEnd,
		NextWithdrawalDate:     nextWithdrawal,
		AvailableBalance:       available,
		PendingBalance:         pending,
		IsInRequestWindow:      inWindow,
		CanRequest:             inWindow && available.IsPositive() && !hasOpen,
	}
	if latest != nil {
		at := latest.RequestedAt
		balance.LastRequestDate = &at
	}
	return balance, nil
}
