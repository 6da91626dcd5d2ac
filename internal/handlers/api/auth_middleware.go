package api

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/partnerhub/commission-service/internal/auth"
	"github.com/partnerhub/commission-service/internal/domain"
)

// Authenticator extracts and verifies bearer principals on API routes
type Authenticator struct {
	verifier *auth.JWTManager
	logger   *zap.Logger
}

// NewAuthenticator creates a new bearer-token authenticator
func NewAuthenticator(verifier *auth.JWTManager, logger *zap.Logger) *Authenticator {
	return &Authenticator{verifier: verifier, logger: logger}
}

// Optional attaches a principal to the context when a valid bearer token is
// present. A malformed or expired token is still a hard 401; only the
// complete absence of credentials passes through anonymously.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := a.verifier.VerifyToken(token)
		if err != nil {
			a.logger.Warn("rejected bearer token",
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err))
			respondError(w, a.logger, domain.ErrAuthInvalid)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
	})
}

// Required rejects requests without a valid bearer token.
func (a *Authenticator) Required(next http.Handler) http.Handler {
	return a.Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.PrincipalFrom(r.Context()) == nil {
			respondError(w, a.logger, domain.ErrAuthMissing)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// RequireAdmin rejects requests unless the bearer principal is an admin.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return a.Required(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.PrincipalFrom(r.Context()).IsAdmin() {
			respondError(w, a.logger, domain.ErrAuthAccessDenied)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// sellerAllowed reports whether the principal may act on the seller's data:
// the seller themselves, or any admin.
func sellerAllowed(p *auth.Principal, sellerID string) bool {
	if p.IsAdmin() {
		return true
	}
	return p.IsSeller() && p.SellerID == sellerID
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimPrefix(header, prefix)
}
