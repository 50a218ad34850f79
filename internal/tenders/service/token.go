package service

import (
	"bytes"
	"errors"
	"time"

	"github.com/aussiebroadwan/tenders/internal/tenders/domain"
	"github.com/aussiebroadwan/tenders/pkg/jwtx"
)

// ErrSharedSecret is returned when both token kinds would be signed with
// the same secret, which would let one verify as the other.
var ErrSharedSecret = errors.New("service: access and refresh secrets must differ")

type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	// Now overrides the clock, tests only.
	Now func() time.Time
}

// TokenService issues and verifies the access/refresh pair. Each kind has
// its own secret so neither verifies as the other.
type TokenService struct {
	access  *jwtx.HS256
	refresh *jwtx.HS256
}

func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.AccessSecret) > 0 && bytes.Equal(cfg.AccessSecret, cfg.RefreshSecret) {
		return nil, ErrSharedSecret
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = jwtx.DefaultAccessTokenTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = jwtx.DefaultRefreshTokenTTL
	}

	access, err := jwtx.NewHS256(cfg.AccessSecret, cfg.Issuer, cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := jwtx.NewHS256(cfg.RefreshSecret, cfg.Issuer, cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	if cfg.Now != nil {
		access = access.WithClock(cfg.Now)
		refresh = refresh.WithClock(cfg.Now)
	}
	return &TokenService{access: access, refresh: refresh}, nil
}

// ClaimsFor builds the identity claim for a stored user.
func ClaimsFor(u domain.User) jwtx.Claims {
	return jwtx.Claims{Subject: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// IssueAccess signs the full claim with the access secret.
func (s *TokenService) IssueAccess(c jwtx.Claims) (string, error) {
	return s.access.Sign(c)
}

// IssueRefresh signs only {sub, email} with the refresh secret.
func (s *TokenService) IssueRefresh(c jwtx.Claims) (string, error) {
	return s.refresh.Sign(c.RefreshSubset())
}

func (s *TokenService) VerifyAccess(token string) (jwtx.Claims, error) {
	t, err := s.access.Verify(token)
	if err != nil {
		return jwtx.Claims{}, err
	}
	return t.Claims, nil
}

// VerifyRefresh returns the refresh subset even if the token carries more.
func (s *TokenService) VerifyRefresh(token string) (jwtx.Claims, error) {
	t, err := s.refresh.Verify(token)
	if err != nil {
		return jwtx.Claims{}, err
	}
	return t.Claims.RefreshSubset(), nil
}

// AccessVerifier is handed to the session middleware.
func (s *TokenService) AccessVerifier() jwtx.Verifier { return s.access }

func (s *TokenService) AccessTTL() time.Duration  { return s.access.TTL() }
func (s *TokenService) RefreshTTL() time.Duration { return s.refresh.TTL() }
