package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/tenders/internal/tenders/domain"
	"github.com/aussiebroadwan/tenders/internal/tenders/store"
	"github.com/aussiebroadwan/tenders/pkg/cryptox"
	"github.com/aussiebroadwan/tenders/pkg/slogx"
)

// AuthService implements login and refresh. No session state is kept
// server side; logout is the client dropping its tokens.
type AuthService struct {
	Store   store.Store
	Tokens  *TokenService
	Hasher  *cryptox.PasswordHasher
	Metrics Recorder
}

// Login checks email and password and returns a fresh token pair. Unknown
// email, inactive account and wrong password all yield
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	rec := recorderOr(s.Metrics)

	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return domain.TokenPair{}, ErrInvalidRequest
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, err
		}
		_ = s.Hasher.VerifyDummy(password)
		l.Info("login failed", slog.String("reason", "unknown_email"))
		rec.RecordLogin(false)
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	// The hash is always checked so an inactive account costs the same.
	if err := s.Hasher.Verify(password, user.PasswordHash); err != nil {
		l.Info("login failed", slog.Int64("user_id", user.ID), slog.String("reason", "password"))
		rec.RecordLogin(false)
		return domain.TokenPair{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		l.Info("login failed", slog.Int64("user_id", user.ID), slog.String("reason", "inactive"))
		rec.RecordLogin(false)
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	claims := ClaimsFor(user)
	access, err := s.Tokens.IssueAccess(claims)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.Tokens.IssueRefresh(claims)
	if err != nil {
		return domain.TokenPair{}, err
	}

	rec.RecordLogin(true)
	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh verifies a refresh token against the current account and mints
// a new access token. The refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	l := slogx.FromContext(ctx)
	rec := recorderOr(s.Metrics)

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return "", ErrInvalidRequest
	}

	fail := func(reason string, attrs ...any) (string, error) {
		l.Warn("refresh rejected", append([]any{slog.String("reason", reason)}, attrs...)...)
		rec.RecordRefresh(false)
		return "", ErrInvalidRefresh
	}

	claims, err := s.Tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return fail("token", slog.Any("err", err))
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail("unknown_user", slog.Int64("user_id", claims.Subject))
		}
		return "", err
	}
	// Stored emails are already normalised and tokens are minted from them,
	// so any difference at all means the address changed.
	if user.Email != claims.Email {
		return fail("email_changed", slog.Int64("user_id", user.ID))
	}
	if !user.IsActive {
		return fail("inactive", slog.Int64("user_id", user.ID))
	}

	access, err := s.Tokens.IssueAccess(ClaimsFor(user))
	if err != nil {
		return "", err
	}
	rec.RecordRefresh(true)
	return access, nil
}
