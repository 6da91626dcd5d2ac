package ports

import (
	"context"
	"time"

	"github.com/partnerhub/commission-service/internal/domain"
)

// PaymentRequestRepository defines the interface for payment request persistence
type PaymentRequestRepository interface {
	// Create inserts a new payment request. The store's partial unique
	// index on open requests per seller turns a concurrent insert into a
	// unique violation, which the repository maps to REQUEST_CONFLICT.
	Create(ctx context.Context, tx DBTX, request *domain.PaymentRequest) error

	// GetByID retrieves a payment request by its ID
	GetByID(ctx context.Context, db DBTX, id string) (*domain.PaymentRequest, error)

	// GetLatestBySeller returns the most recent request for a seller across
	// all statuses, or nil when the seller has never requested
	GetLatestBySeller(ctx context.Context, db DBTX, sellerID string) (*domain.PaymentRequest, error)

	// HasOpenRequest reports whether a pending or approved request exists
	HasOpenRequest(ctx context.Context, db DBTX, sellerID string) (bool, error)

	// UpdateStatus transitions a request and stamps the transition time
	UpdateStatus(ctx context.Context, tx DBTX, id string, status domain.RequestStatus, at time.Time, rejectionReason *string) error

	// CreateAllocations records which commission records back a request
	CreateAllocations(ctx context.Context, tx DBTX, allocations []*domain.PayoutAllocation) error

	// ListAllocations returns the allocations recorded for a request
	ListAllocations(ctx context.Context, db DBTX, requestID string) ([]*domain.PayoutAllocation, error)
}
