package postgres

import (
	"context"

	"github.com/aussiebroadwan/tenders/internal/tenders/domain"
	"github.com/jackc/pgx/v5"
)

type usersRepo struct{ pool PgxPool }

const userColumns = `id, email, name, password_hash, role::text, is_active, created_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u  domain.User
		id int32
	)
	err := row.Scan(&id, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	u.ID = int64(id)
	return u, err
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.pool.QueryRow(ctx, q, domain.NormalizeEmail(email)))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) UpsertUser(ctx context.Context, u domain.User) (domain.User, error) {
	const q = `
INSERT INTO users (email, name, password_hash, role, is_active)
VALUES ($1, $2, $3, $4::account_role, $5)
ON CONFLICT (email) DO UPDATE SET
	name          = EXCLUDED.name,
	password_hash = EXCLUDED.password_hash,
	role          = EXCLUDED.role,
	is_active     = EXCLUDED.is_active
RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q,
		domain.NormalizeEmail(u.Email), u.Name, u.PasswordHash, domain.NormalizeRole(u.Role), u.IsActive))
}
