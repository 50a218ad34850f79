package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tenders/pkg/jwtx"
	"github.com/aussiebroadwan/tenders/pkg/slogx"
)

// SessionOption tweaks SessionMiddleware.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	cookie string
}

// WithAccessCookie lets the middleware fall back to the named cookie when
// the request carries no Authorization header.
func WithAccessCookie(name string) SessionOption {
	return func(o *sessionOptions) { o.cookie = name }
}

// SessionMiddleware verifies the bearer access token and attaches its claim
// to the request context. Any failure is a generic 401.
func SessionMiddleware(v jwtx.Verifier, opts ...SessionOption) Middleware {
	var o sessionOptions
	for _, fn := range opts {
		fn(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := bearerToken(r)
			if !ok && o.cookie != "" {
				if c, err := r.Cookie(o.cookie); err == nil && c.Value != "" {
					raw, ok = c.Value, true
				}
			}
			if !ok {
				WriteUnauthorized(w, "missing bearer token")
				return
			}

			tok, err := v.Verify(raw)
			if err != nil {
				log.Warn("jwt verify failed", "err", err)
				WriteUnauthorized(w, "unauthorized")
				return
			}

			ctx = slogx.With(ContextWithClaims(ctx, tok.Claims), "user_id", tok.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if len(authz) < len("Bearer ") || !strings.EqualFold(authz[:len("Bearer ")], "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(authz[len("Bearer "):])
	return raw, raw != ""
}

// WriteUnauthorized is the RFC 6750 style 401 used by the session layer.
func WriteUnauthorized(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "invalid_token",
		"error_description": "unauthorized",
	})
}
