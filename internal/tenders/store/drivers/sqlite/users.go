package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tenders/internal/tenders/domain"
)

type usersRepo struct {
	db *sql.DB
}

const userColumns = `id, email, name, password_hash, role, is_active, created_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u       domain.User
		created timestamp
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.IsActive, &created)
	u.CreatedAt = time.Time(created)
	return u, err
}

// timestamp accepts both driver-decoded times and the raw CURRENT_TIMESTAMP
// text, which is what RETURNING hands back.
type timestamp time.Time

func (t *timestamp) Scan(v any) error {
	switch x := v.(type) {
	case time.Time:
		*t = timestamp(x.UTC())
	case string:
		return t.parse(x)
	case []byte:
		return t.parse(string(x))
	case nil:
		*t = timestamp(time.Time{})
	default:
		return fmt.Errorf("sqlite: cannot scan %T into timestamp", v)
	}
	return nil
}

func (t *timestamp) parse(s string) error {
	for _, layout := range []string{time.DateTime, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00"} {
		if p, err := time.Parse(layout, s); err == nil {
			*t = timestamp(p.UTC())
			return nil
		}
	}
	return fmt.Errorf("sqlite: bad timestamp %q", s)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, domain.NormalizeEmail(email)))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) UpsertUser(ctx context.Context, u domain.User) (domain.User, error) {
	out, err := scanUser(r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, name, password_hash, role, is_active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET
			name          = excluded.name,
			password_hash = excluded.password_hash,
			role          = excluded.role,
			is_active     = excluded.is_active
		RETURNING `+userColumns,
		domain.NormalizeEmail(u.Email), u.Name, u.PasswordHash, domain.NormalizeRole(u.Role), u.IsActive,
	))
	if err != nil {
		return domain.User{}, err
	}
	return out, nil
}
