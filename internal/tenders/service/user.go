package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/tenders/internal/tenders/domain"
	"github.com/aussiebroadwan/tenders/internal/tenders/store"
	"github.com/aussiebroadwan/tenders/pkg/cryptox"
	"github.com/aussiebroadwan/tenders/pkg/slogx"
)

type UserService struct {
	Store  store.Store
	Hasher *cryptox.PasswordHasher
}

// SeedUser describes an account provisioned from configuration.
type SeedUser struct {
	Email    string
	Name     string
	Password string
	Role     string
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, id)
}

// Seed upserts an active account keyed by email. Unknown roles fall back
// to user. The password is re-hashed on every call.
func (s *UserService) Seed(ctx context.Context, in SeedUser) (domain.User, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return domain.User{}, ErrInvalidRequest
	}
	name := in.Name
	if name == "" {
		name = email
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	u, err := s.Store.Users().UpsertUser(ctx, domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         domain.NormalizeRole(in.Role),
		IsActive:     true,
	})
	if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user seeded", slog.Int64("user_id", u.ID), slog.String("role", u.Role))
	return u, nil
}
