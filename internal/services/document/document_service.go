package document

import (
	"context"
	"errors"
	"time"

	"github.com/partnerhub/commission-service/internal/auth"
	"github.com/partnerhub/commission-service/internal/domain"
	"github.com/partnerhub/commission-service/internal/domain/ports"
	"github.com/partnerhub/commission-service/pkg/observability"
)

// Service gates access to stored documents. Deny by default: a fetch goes
// through only when a capability token matches, the caller is an admin, or
// the caller is an active seller owning the referenced order.
type Service struct {
	db      ports.DBPort
	store   ports.DocumentStore
	tokens  ports.AccessTokenRepository
	sellers ports.SellerRepository
	logger  ports.Logger
}

// NewService creates a new document access service
func NewService(
	db ports.DBPort,
	store ports.DocumentStore,
	tokens ports.AccessTokenRepository,
	sellers ports.SellerRepository,
	logger ports.Logger,
) *Service {
	return &Service{
		db:      db,
		store:   store,
		tokens:  tokens,
		sellers: sellers,
		logger:  logger,
	}
}

// Fetch authorizes and retrieves a document. The token and principal are
// both optional; either can grant access on its own. The returned body must
// be closed by the caller.
func (s *Service) Fetch(ctx context.Context, bucket, path, token string, principal *auth.Principal, now time.Time) (*ports.Document, error) {
	if bucket == "" || path == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationFailed, "bucket and path are required")
	}

	grant, err := s.authorize(ctx, bucket, path, token, principal, now)
	if err != nil {
		observability.RecordDocumentFetch("none", "error")
		return nil, err
	}
	if grant == "" {
		observability.RecordDocumentFetch("none", "denied")
		s.logger.Warn("document access denied",
			ports.String("bucket", bucket),
			ports.String("path", path))
		return nil, domain.ErrDocumentAccessDenied
	}

	doc, err := s.store.Get(ctx, bucket, path)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			observability.RecordDocumentFetch(grant, "not_found")
			return nil, err
		}
		observability.RecordDocumentFetch(grant, "error")
		return nil, err
	}

	observability.RecordDocumentFetch(grant, "ok")
	return doc, nil
}

// authorize returns the name of the grant that admitted the caller, or ""
// when no rule matched. Store failures propagate so a broken token table
// never degrades into an open door.
func (s *Service) authorize(ctx context.Context, bucket, path, token string, principal *auth.Principal, now time.Time) (string, error) {
	if token != "" {
		ok, err := s.tokens.TokenGrantsAccess(ctx, s.db.GetDB(), token, bucket, path, now)
		if err != nil {
			return "", domain.WrapError(domain.ErrorCodeStoreUnavailable, "failed to check access token", err)
		}
		if ok {
			return "token", nil
		}
	}

	if principal.IsAdmin() {
		return "admin", nil
	}

	if principal.IsSeller() {
		seller, err := s.sellers.GetByID(ctx, s.db.GetDB(), principal.SellerID)
		if err != nil {
			if errors.Is(err, domain.ErrSellerNotFound) {
				return "", nil
			}
			return "", domain.WrapError(domain.ErrorCodeStoreUnavailable, "failed to load seller", err)
		}
		if !seller.IsActive() {
			return "", nil
		}

		owns, err := s.tokens.SellerOwnsDocument(ctx, s.db.GetDB(), principal.SellerID, bucket, path)
		if err != nil {
			return "", domain.WrapError(domain.ErrorCodeStoreUnavailable, "failed to check document ownership", err)
		}
		if owns {
			return "owner", nil
		}
	}

	return "", nil
}
