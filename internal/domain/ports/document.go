package ports

import (
	"context"
	"io"
	"time"
)

// Document is a stored object ready to stream to the caller
type Document struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// DocumentStore retrieves stored objects by bucket and path
type DocumentStore interface {
	Get(ctx context.Context, bucket, path string) (*Document, error)
}

// AccessTokenRepository answers the document proxy's capability questions.
// Tokens live in two tables (document shares and application uploads);
// ownership resolves through the order foreign key.
type AccessTokenRepository interface {
	// TokenGrantsAccess reports whether an unexpired token row in either
	// token table matches the bucket and object path
	TokenGrantsAccess(ctx context.Context, db DBTX, token, bucket, path string, now time.Time) (bool, error)

	// SellerOwnsDocument reports whether the object belongs to an order
	// owned by the seller
	SellerOwnsDocument(ctx context.Context, db DBTX, sellerID, bucket, path string) (bool, error)
}
