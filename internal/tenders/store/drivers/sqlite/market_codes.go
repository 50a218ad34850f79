package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/tenders/internal/tenders/domain"
)

type marketCodesRepo struct {
	db *sql.DB
}

func (r *marketCodesRepo) ListMarketCodes(ctx context.Context) ([]domain.MarketCode, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT code, libelle FROM market_codes ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.MarketCode{}
	for rows.Next() {
		var mc domain.MarketCode
		if err := rows.Scan(&mc.Code, &mc.Libelle); err != nil {
			return nil, err
		}
		out = append(out, mc)
	}
	return out, rows.Err()
}

func (r *marketCodesRepo) UpsertMarketCode(ctx context.Context, mc domain.MarketCode) (domain.MarketCode, error) {
	var out domain.MarketCode
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO market_codes (code, libelle) VALUES (?, ?)
		ON CONFLICT (code) DO UPDATE SET libelle = excluded.libelle
		RETURNING code, libelle`,
		mc.Code, mc.Libelle,
	).Scan(&out.Code, &out.Libelle)
	return out, err
}
