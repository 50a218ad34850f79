package httpx

import (
	"net/http"
	"slices"
	"strings"
)

// DefaultAllowedOrigins are the local front end origins that are always
// accepted.
var DefaultAllowedOrigins = []string{
	"http://localhost:5174",
	"http://127.0.0.1:5174",
	"http://localhost",
	"http://127.0.0.1",
}

// CORS answers preflight requests and decorates responses for origins in
// the allow list. Requests without an Origin header (curl, server to
// server) pass through untouched.
func CORS(origins []string) Middleware {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if _, ok := allowed[origin]; !ok {
				if r.Method == http.MethodOptions {
					WriteJSON(w, http.StatusForbidden, map[string]string{
						"error":             "forbidden",
						"error_description": "origin not allowed",
					})
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// MergeOrigins appends the CSV list extra to the defaults, skipping
// duplicates.
func MergeOrigins(defaults []string, extra string) []string {
	out := slices.Clone(defaults)
	for _, o := range SplitCSV(extra) {
		o = strings.TrimRight(o, "/")
		if !slices.Contains(out, o) {
			out = append(out, o)
		}
	}
	return out
}
