package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants for the access/refresh pair.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	// DefaultIssuer is stamped into every token and enforced on verify.
	DefaultIssuer = "tenders-watcher"
)

// Claims is the identity claim carried by access tokens. Refresh tokens
// only populate Subject and Email.
type Claims struct {
	// Subject is the numeric user id ("sub").
	Subject int64 `json:"sub"`

	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Token is a verified token: the claim plus the registered timestamps.
type Token struct {
	Claims

	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RefreshSubset strips a claim down to what a refresh token carries.
func (c Claims) RefreshSubset() Claims {
	return Claims{Subject: c.Subject, Email: c.Email}
}

// wireClaims is the signed payload. sub is written as a decimal string
// per RFC 7519, verification also tolerates a JSON number.
type wireClaims struct {
	jwt.RegisteredClaims

	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}
