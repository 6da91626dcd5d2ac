package auth

import (
	"context"
)

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal attaches an authenticated principal to the context
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom extracts the authenticated principal from the context,
// or nil when the request carried no valid bearer token
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}
