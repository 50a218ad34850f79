package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/tenders/internal/tenders/domain"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement it and expose sub-repositories per table.
type Store interface {
	Users() Users
	MarketCodes() MarketCodes

	ApplyMigrations(ctx context.Context) error

	// Close releases the underlying pool.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// GetUserByEmail is used by login. Emails are stored normalised.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByID is used by refresh to re-check the account.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// UpsertUser inserts or, on email conflict, updates name, hash, role and
	// active flag. Returns the stored row.
	UpsertUser(ctx context.Context, u domain.User) (domain.User, error)
}

type MarketCodes interface {
	// ListMarketCodes returns every code ordered by code.
	ListMarketCodes(ctx context.Context) ([]domain.MarketCode, error)

	// UpsertMarketCode inserts or relabels a code.
	UpsertMarketCode(ctx context.Context, mc domain.MarketCode) (domain.MarketCode, error)
}
