package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/partnerhub/commission-service/internal/domain"
	"github.com/partnerhub/commission-service/internal/domain/ports"
)

// SellerRepository implements ports.SellerRepository with raw pgx queries
type SellerRepository struct{}

// NewSellerRepository creates a new seller repository
func NewSellerRepository() *SellerRepository {
	return &SellerRepository{}
}

// GetByID retrieves a seller; returns SELLER_NOT_FOUND when absent
func (r *SellerRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*domain.Seller, error) {
	var seller domain.Seller
	err := db.QueryRow(ctx,
		`SELECT id, name, status, timezone, created_at FROM sellers WHERE id = $1`,
		id,
	).Scan(&seller.ID, &seller.Name, &seller.Status, &seller.Timezone, &seller.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSellerNotFound
		}
		return nil, fmt.Errorf("get seller by id: %w", err)
	}
	return &seller, nil
}
