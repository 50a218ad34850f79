package httpx

import (
	"context"

	"github.com/aussiebroadwan/tenders/pkg/jwtx"
)

type claimsKey struct{}

// ClaimsFromContext returns the identity attached by SessionMiddleware.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(jwtx.Claims)
	return c, ok
}

// ContextWithClaims attaches c to ctx. Exported for handler tests.
func ContextWithClaims(ctx context.Context, c jwtx.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}
