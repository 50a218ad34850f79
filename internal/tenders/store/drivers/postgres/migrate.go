package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/tenders/internal/tenders/store/drivers/postgres/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// ApplyMigrations runs the embedded goose migrations with a short lived
// database/sql handle, since goose does not speak pgxpool.
func (s *Store) ApplyMigrations(ctx context.Context) error {
	if s.dsn == "" {
		return errors.New("postgres: no dsn to migrate")
	}

	db, err := sql.Open("pgx", s.dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	_, err = provider.Up(ctx)
	return err
}
