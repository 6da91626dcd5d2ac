package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/partnerhub/commission-service/internal/domain"
)

// CommissionRepository defines the interface for commission record persistence.
// Balance and aggregation paths only read; amount mutations happen through
// the payout workflow inside a write transaction.
type CommissionRepository interface {
	// ListBySeller returns all commission records for a seller
	ListBySeller(ctx context.Context, db DBTX, sellerID string) ([]*domain.CommissionRecord, error)

	// ListBySellerCreatedBetween returns commission records for a seller
	// created within [from, to)
	ListBySellerCreatedBetween(ctx context.Context, db DBTX, sellerID string, from, to time.Time) ([]*domain.CommissionRecord, error)

	// ListAvailableForUpdate returns records releasable as of now with a
	// positive remaining amount, oldest release date first, locked for the
	// duration of the surrounding transaction
	ListAvailableForUpdate(ctx context.Context, tx DBTX, sellerID string, now time.Time) ([]*domain.CommissionRecord, error)

	// SetAmounts overwrites the withdrawn and reserved amounts of a record
	SetAmounts(ctx context.Context, tx DBTX, recordID string, withdrawn, reserved decimal.Decimal) error

	// GetByID retrieves a single commission record
	GetByID(ctx context.Context, db DBTX, recordID string) (*domain.CommissionRecord, error)
}
