package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/partnerhub/commission-service/internal/domain/ports"
)

// AccessTokenRepository implements ports.AccessTokenRepository. Capability
// tokens live in two tables: document_share_tokens (ad hoc shares) and
// application_access_tokens (issued alongside visa applications). Either
// grants access while unexpired.
type AccessTokenRepository struct{}

// NewAccessTokenRepository creates a new access token repository
func NewAccessTokenRepository() *AccessTokenRepository {
	return &AccessTokenRepository{}
}

// TokenGrantsAccess reports whether an unexpired token row in either token
// table matches the bucket and object path
func (r *AccessTokenRepository) TokenGrantsAccess(ctx context.Context, db ports.DBTX, token, bucket, path string, now time.Time) (bool, error) {
	var granted bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM document_share_tokens
			WHERE token = $1 AND bucket = $2 AND object_path = $3 AND expires_at > $4
		) OR EXISTS (
			SELECT 1 FROM application_access_tokens
			WHERE token = $1 AND bucket = $2 AND object_path = $3 AND expires_at > $4
		)`,
		token, bucket, path, now,
	).Scan(&granted)
	if err != nil {
		return false, fmt.Errorf("check access token: %w", err)
	}
	return granted, nil
}

// SellerOwnsDocument reports whether the object belongs to an order owned
// by the seller
func (r *AccessTokenRepository) SellerOwnsDocument(ctx context.Context, db ports.DBTX, sellerID, bucket, path string) (bool, error) {
	var owns bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1
			FROM order_documents d
			JOIN orders o ON o.id = d.order_id
			WHERE d.bucket = $2 AND d.object_path = $3 AND o.seller_id = $1
		)`,
		sellerID, bucket, path,
	).Scan(&owns)
	if err != nil {
		return false, fmt.Errorf("check document ownership: %w", err)
	}
	return owns, nil
}
