package ports

import (
	"context"

	"github.com/partnerhub/commission-service/internal/domain"
)

// SellerRepository defines the interface for seller lookups
type SellerRepository interface {
	// GetByID retrieves a seller; returns SELLER_NOT_FOUND when absent
	GetByID(ctx context.Context, db DBTX, id string) (*domain.Seller, error)
}
