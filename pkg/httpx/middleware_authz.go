package httpx

import (
	"net/http"
)

// RequireRoles lets the request through only when the attached claim's role
// is one of roles. A request with no claim at all is a 401, which catches
// routes wired without SessionMiddleware in front.
func RequireRoles(roles ...string) Middleware {
	want := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		want[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := ClaimsFromContext(r.Context())
			if !ok {
				WriteUnauthorized(w, "missing identity")
				return
			}

			if _, ok := want[c.Role]; !ok {
				WriteJSON(w, http.StatusForbidden, map[string]string{
					"error":             "forbidden",
					"error_description": "forbidden",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
