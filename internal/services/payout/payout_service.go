package payout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/partnerhub/commission-service/internal/domain"
	"github.com/partnerhub/commission-service/internal/domain/ports"
	"github.com/partnerhub/commission-service/pkg/observability"
)

// Service implements the payout request workflow: create, approve, reject,
// complete. All amount mutations run inside a single write transaction so
// the reservation ledger and the request row move together.
type Service struct {
	db          ports.DBPort
	commissions ports.CommissionRepository
	requests    ports.PaymentRequestRepository
	sellers     ports.SellerRepository
	logger      ports.Logger
	window      domain.RequestWindow
}

// NewService creates a new payout service
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

// CreateRequest opens a payment request for the seller and reserves the
// amount against their available commission records, oldest release date
// first. Window membership, balance sufficiency, and the single-open-request
// invariant are all re-verified inside the transaction; the partial unique
// index on open requests is the final arbiter under concurrency, and its
// violation surfaces as REQUEST_CONFLICT from the repository.
func (s *Service) CreateRequest(ctx context.Context, sellerID string, amount decimal.Decimal, now time.Time) (*domain.PaymentRequest, error) {
	if !amount.IsPositive() {
		observability.RecordPayoutTransition("create", "rejected_input")
		return nil, domain.NewDomainError(domain.ErrorCodeValidationAmountInvalid, "amount must be positive").
			WithDetail("amount", amount.String())
	}

	seller, err := s.sellers.GetByID(ctx, s.db.GetDB(), sellerID)
	if err != nil {
		observability.RecordPayoutTransition("create", "error")
		return nil, err
	}
	if !seller.IsActive() {
		observability.RecordPayoutTransition("create", "rejected_input")
		return nil, domain.NewDomainError(domain.ErrorCodeSellerInactive, "seller is not active").
			WithDetail("seller_id", sellerID)
	}

	if !s.window.Contains(now, seller.Location()) {
		observability.RecordPayoutTransition("create", "outside_window")
		start, _ := s.window.Next(now, seller.Location())
		return nil, domain.NewDomainError(domain.ErrorCodeRequestOutsideWindow, "outside the withdrawal request window").
			WithDetail("next_window_start", start.Format(time.RFC3339))
	}

	request := &domain.PaymentRequest{
		ID:          uuid.New().String(),
		SellerID:    sellerID,
		Status:      domain.RequestStatusPending,
		Amount:      amount,
		RequestedAt: now,
		UpdatedAt:   now,
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		hasOpen, err := s.requests.HasOpenRequest(ctx, tx, sellerID)
		if err != nil {
			return domain.WrapError(domain.ErrorCodeStoreUnavailable, "failed to check open payment requests", err)
		}
		if hasOpen {
			return domain.NewDomainError(domain.ErrorCodeRequestConflict, "an open payment request already exists").
				WithDetail("seller_id", sellerID)
		}

		records, err := s.commissions.ListAvailableForUpdate(ctx, tx, sellerID, now)
		if err != nil {
			return domain.WrapError(domain.ErrorCodeStoreUnavailable, "failed to lock commission records", err)
		}

		allocations, err := s.reserve(ctx, tx, request.ID, records, amount)
		if err != nil {
			return err
		}

		// Insert after the balance check; a concurrent insert that slipped
		// past HasOpenRequest trips the unique index here.
		if err := s.requests.Create(ctx, tx, request); err != nil {
			return err
		}
		return s.requests.CreateAllocations(ctx, tx, allocations)
	})
	if err != nil {
		outcome := "error"
		switch domain.GetErrorCode(err) {
		case domain.ErrorCodeRequestConflict:
			outcome = "conflict"
		case domain.ErrorCodeRequestInsufficientBalance:
			outcome = "insufficient_balance"
		}
		observability.RecordPayoutTransition("create", outcome)
		return nil, err
	}

	s.logger.Info("payment request created",
		ports.String("request_id", request.ID),
		ports.String("seller_id", sellerID),
		ports.String("amount", amount.String()))
	observability.RecordPayoutTransition("create", "ok")
	return request, nil
}

// reserve spreads the requested amount across the locked records, oldest
// release date first, bumping each record's reserved amount.
func (s *Service) reserve(ctx context.Context, tx pgx.Tx, requestID string, records []*domain.CommissionRecord, amount decimal.Decimal) ([]*domain.PayoutAllocation, error) {
	remaining := amount
	var allocations []*domain.PayoutAllocation

	for _, record := range records {
		if !remaining.IsPositive() {
			break
		}
		if err := record.CheckInvariant(); err != nil {
			observability.RecordInvariantViolation()
			return nil, err
		}

		take := decimal.Min(remaining, record.Remaining())
		if !take.IsPositive() {
			continue
		}

		newReserved := record.ReservedAmount.Add(take)
		if err := s.commissions.SetAmounts(ctx, tx, record.ID, record.WithdrawnAmount, newReserved); err != nil {
			return nil, domain.WrapError(domain.ErrorCodeStoreUnavailable, "failed to reserve commission amount", err)
		}

		allocations = append(allocations, &domain.PayoutAllocation{
			RequestID:          requestID,
			CommissionRecordID: record.ID,
			Amount:             take,
		})
		remaining = remaining.Sub(take)
	}

	if remaining.IsPositive() {
		return nil, domain.NewDomainError(domain.ErrorCodeRequestInsufficientBalance, "available balance is below the requested amount").
			WithDetail("shortfall", remaining.String())
	}
	return allocations, nil
}

// Approve transitions a pending request to approved.
func (s *Service) Approve(ctx context.Context, requestID string, now time.Time) error {
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		request, err := s.requests.GetByID(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if !request.CanApprove() {
			return invalidTransition(request, domain.RequestStatusApproved)
		}
		return s.requests.UpdateStatus(ctx, tx, requestID, domain.RequestStatusApproved, now, nil)
	})
	if err != nil {
		observability.RecordPayoutTransition("approve", "error")
		return err
	}
	observability.RecordPayoutTransition("approve", "ok")
	return nil
}

// Reject transitions a pending or approved request to rejected and releases
// every reservation it held, returning the amounts to the sellers' balance.
func (s *Service) Reject(ctx context.Context, requestID string, reason string, now time.Time) error {
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		request, err := s.requests.GetByID(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if !request.CanReject() {
			return invalidTransition(request, domain.RequestStatusRejected)
		}

		if err := s.settleAllocations(ctx, tx, requestID, false); err != nil {
			return err
		}

		var reasonPtr *string
		if reason != "" {
			reasonPtr = &reason
		}
		return s.requests.UpdateStatus(ctx, tx, requestID, domain.RequestStatusRejected, now, reasonPtr)
	})
	if err != nil {
		observability.RecordPayoutTransition("reject", "error")
		return err
	}
	observability.RecordPayoutTransition("reject", "ok")
	return nil
}

// Complete transitions an approved request to completed and converts its
// reservations into withdrawn amounts.
func (s *Service) Complete(ctx context.Context, requestID string, now time.Time) error {
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		request, err := s.requests.GetByID(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if !request.CanComplete() {
			return invalidTransition(request, domain.RequestStatusCompleted)
		}

		if err := s.settleAllocations(ctx, tx, requestID, true); err != nil {
			return err
		}
		return s.requests.UpdateStatus(ctx, tx, requestID, domain.RequestStatusCompleted, now, nil)
	})
	if err != nil {
		observability.RecordPayoutTransition("complete", "error")
		return err
	}
	observability.RecordPayoutTransition("complete", "ok")
	return nil
}

// settleAllocations walks a request's allocations and either releases the
// reserved amounts (reject) or converts them to withdrawn (complete).
func (s *Service) settleAllocations(ctx context.Context, tx pgx.Tx, requestID string, toWithdrawn bool) error {
	allocations, err := s.requests.ListAllocations(ctx, tx, requestID)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeStoreUnavailable, "failed to load payout allocations", err)
	}

	for _, allocation := range allocations {
		record, err := s.commissions.GetByID(ctx, tx, allocation.CommissionRecordID)
		if err != nil {
			return err
		}

		reserved := record.ReservedAmount.Sub(allocation.Amount)
		if reserved.IsNegative() {
			observability.RecordInvariantViolation()
			return domain.NewDomainError(domain.ErrorCodeInvariantViolation, "allocation exceeds reserved amount").
				WithDetail("commission_record_id", record.ID).
				WithDetail("reserved", record.ReservedAmount.String()).
				WithDetail("allocation", allocation.Amount.String())
		}

		withdrawn := record.WithdrawnAmount
		if toWithdrawn {
			withdrawn = withdrawn.Add(allocation.Amount)
		}
		if err := s.commissions.SetAmounts(ctx, tx, record.ID, withdrawn, reserved); err != nil {
			return domain.WrapError(domain.ErrorCodeStoreUnavailable, "failed to settle commission amounts", err)
		}
	}
	return nil
}

func invalidTransition(request *domain.PaymentRequest, target domain.RequestStatus) error {
	return domain.NewDomainError(domain.ErrorCodeRequestInvalidState, "request cannot transition").
		WithDetail("request_id", request.ID).
		WithDetail("status", string(request.Status)).
		WithDetail("target", string(target))
}
