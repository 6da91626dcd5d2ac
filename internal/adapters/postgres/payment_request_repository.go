package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/partnerhub/commission-service/internal/domain"
	"github.com/partnerhub/commission-service/internal/domain/ports"
)

const requestColumns = `id, seller_id, amount, status, requested_at, approved_at,
	rejected_at, completed_at, rejection_reason, updated_at`

// uniqueViolation is the PostgreSQL error code raised by the partial unique
// index on open requests per seller
const uniqueViolation = "23505"

// PaymentRequestRepository implements ports.PaymentRequestRepository with raw pgx queries
type PaymentRequestRepository struct{}

// NewPaymentRequestRepository creates a new payment request repository
func NewPaymentRequestRepository() *PaymentRequestRepository {
	return &PaymentRequestRepository{}
}

// Create inserts a new payment request. A unique violation on the open
// request index maps to REQUEST_CONFLICT; this is what closes the
// check-then-act race between reading can_request and inserting.
func (r *PaymentRequestRepository) Create(ctx context.Context, tx ports.DBTX, request *domain.PaymentRequest) error {
	amount, err := decimalToPgNumeric(request.Amount)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO payment_requests (id, seller_id, amount, status, requested_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)`,
		request.ID, request.SellerID, amount, string(request.Status), request.RequestedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.WrapError(domain.ErrorCodeRequestConflict,
				"an open payment request already exists for this seller", err).
				WithDetail("seller_id", request.SellerID)
		}
		return fmt.Errorf("create payment request: %w", err)
	}
	return nil
}

// GetByID retrieves a payment request by its ID
func (r *PaymentRequestRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*domain.PaymentRequest, error) {
	row := db.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM payment_requests WHERE id = $1`,
		id,
	)

	request, err := scanRequestRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("get payment request by id: %w", err)
	}
	return request, nil
}

// GetLatestBySeller returns the most recent request across all statuses,
// or nil when the seller has never requested
func (r *PaymentRequestRepository) GetLatestBySeller(ctx context.Context, db ports.DBTX, sellerID string) (*domain.PaymentRequest, error) {
	row := db.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM payment_requests
		 WHERE seller_id = $1 ORDER BY requested_at DESC LIMIT 1`,
		sellerID,
	)

	request, err := scanRequestRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest payment request: %w", err)
	}
	return request, nil
}

// HasOpenRequest reports whether a pending or approved request exists
func (r *PaymentRequestRepository) HasOpenRequest(ctx context.Context, db ports.DBTX, sellerID string) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM payment_requests
			WHERE seller_id = $1 AND status IN ('pending', 'approved')
		)`,
		sellerID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check open payment request: %w", err)
	}
	return exists, nil
}

// UpdateStatus transitions a request and stamps the transition time
func (r *PaymentRequestRepository) UpdateStatus(ctx context.Context, tx ports.DBTX, id string, status domain.RequestStatus, at time.Time, rejectionReason *string) error {
	var column string
	switch status {
	case domain.RequestStatusApproved:
		column = "approved_at"
	case domain.RequestStatusRejected:
		column = "rejected_at"
	case domain.RequestStatusCompleted:
		column = "completed_at"
	default:
		return domain.NewDomainError(domain.ErrorCodeRequestInvalidState, "cannot transition to status").
			WithDetail("status", string(status))
	}

	tag, err := tx.Exec(ctx,
		`UPDATE payment_requests
		 SET status = $2, `+column+` = $3, rejection_reason = $4, updated_at = $3
		 WHERE id = $1`,
		id, string(status), at, nullTextPtr(rejectionReason),
	)
	if err != nil {
		return fmt.Errorf("update payment request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

// CreateAllocations records which commission records back a request
func (r *PaymentRequestRepository) CreateAllocations(ctx context.Context, tx ports.DBTX, allocations []*domain.PayoutAllocation) error {
	for _, alloc := range allocations {
		amount, err := decimalToPgNumeric(alloc.Amount)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO payment_request_allocations (request_id, commission_record_id, amount)
			 VALUES ($1, $2, $3)`,
			alloc.RequestID, alloc.CommissionRecordID, amount,
		)
		if err != nil {
			return fmt.Errorf("create payout allocation: %w", err)
		}
	}
	return nil
}

// ListAllocations returns the allocations recorded for a request
func (r *PaymentRequestRepository) ListAllocations(ctx context.Context, db ports.DBTX, requestID string) ([]*domain.PayoutAllocation, error) {
	rows, err := db.Query(ctx,
		`SELECT request_id, commission_record_id, amount
		 FROM payment_request_allocations WHERE request_id = $1`,
		requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("list payout allocations: %w", err)
	}
	defer rows.Close()

	var allocations []*domain.PayoutAllocation
	for rows.Next() {
		var (
			alloc  domain.PayoutAllocation
			amount pgtype.Numeric
		)
		if err := rows.Scan(&alloc.RequestID, &alloc.CommissionRecordID, &amount); err != nil {
			return nil, fmt.Errorf("scan payout allocation: %w", err)
		}
		if alloc.Amount, err = pgNumericToDecimal(amount); err != nil {
			return nil, fmt.Errorf("convert allocation amount: %w", err)
		}
		allocations = append(allocations, &alloc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payout allocations: %w", err)
	}
	return allocations, nil
}

func scanRequestRow(row rowScanner) (*domain.PaymentRequest, error) {
	var (
		request         domain.PaymentRequest
		amount          pgtype.Numeric
		approvedAt      pgtype.Timestamptz
		rejectedAt      pgtype.Timestamptz
		completedAt     pgtype.Timestamptz
		rejectionReason pgtype.Text
	)

	err := row.Scan(
		&request.ID,
		&request.SellerID,
		&amount,
		&request.Status,
		&request.RequestedAt,
		&approvedAt,
		&rejectedAt,
		&completedAt,
		&rejectionReason,
		&request.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if request.Amount, err = pgNumericToDecimal(amount); err != nil {
		return nil, fmt.Errorf("convert request amount: %w", err)
	}
	request.ApprovedAt = timePtr(approvedAt)
	request.RejectedAt = timePtr(rejectedAt)
	request.CompletedAt = timePtr(completedAt)
	request.RejectionReason = textPtr(rejectionReason)

	return &request, nil
}
