package jwtx

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Signer is our interface for anything that can sign identity tokens.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// ErrWeakSecret is returned when an HMAC secret is empty.
var ErrWeakSecret = errors.New("jwtx: empty signing secret")

// HS256 signs and verifies tokens with a single shared secret. The issuer
// and lifetime are fixed at construction time.
type HS256 struct {
	secret []byte
	issuer string
	ttl    time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// NewHS256 builds an HS256 signer/verifier pair around secret.
func NewHS256(secret []byte, issuer string, ttl time.Duration) (*HS256, error) {
	if len(secret) == 0 {
		return nil, ErrWeakSecret
	}
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &HS256{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// WithClock returns a copy that reads the current time from now.
func (h *HS256) WithClock(now func() time.Time) *HS256 {
	cp := *h
	cp.now = now
	return &cp
}

func (h *HS256) Alg() string { return jwt.SigningMethodHS256.Alg() }

// TTL reports the configured token lifetime.
func (h *HS256) TTL() time.Duration { return h.ttl }

// Sign issues a token for c expiring after the configured lifetime.
func (h *HS256) Sign(c Claims) (string, error) {
	now := h.now().UTC()
	wc := wireClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    h.issuer,
			Subject:   strconv.FormatInt(c.Subject, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.ttl)),
		},
		Email: c.Email,
		Name:  c.Name,
		Role:  c.Role,
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, wc)
	s, err := tok.SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return s, nil
}
