package httpx

import (
	"net/http"
	"time"
)

const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"

	// RefreshCookiePath scopes the refresh cookie to the refresh endpoint.
	RefreshCookiePath = "/auth/refresh"
)

// AccessCookie builds the httpOnly, cross-site access token cookie.
func AccessCookie(token string, ttl time.Duration) *http.Cookie {
	return sessionCookie(AccessCookieName, token, "/", ttl)
}

// RefreshCookie builds the refresh token cookie, only sent to /auth/refresh.
func RefreshCookie(token string, ttl time.Duration) *http.Cookie {
	return sessionCookie(RefreshCookieName, token, RefreshCookiePath, ttl)
}

// ClearSessionCookies expires both session cookies.
func ClearSessionCookies(w http.ResponseWriter) {
	for _, c := range []*http.Cookie{AccessCookie("", 0), RefreshCookie("", 0)} {
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func sessionCookie(name, value, path string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}
