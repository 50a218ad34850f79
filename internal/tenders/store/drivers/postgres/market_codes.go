package postgres

import (
	"context"

	"github.com/aussiebroadwan/tenders/internal/tenders/domain"
)

type marketCodesRepo struct{ pool PgxPool }

func (r *marketCodesRepo) ListMarketCodes(ctx context.Context) ([]domain.MarketCode, error) {
	rows, err := r.pool.Query(ctx, `SELECT code, libelle FROM market_codes ORDER BY code`)
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
	const q = `
INSERT INTO market_codes (code, libelle) VALUES ($1, $2)
ON CONFLICT (code) DO UPDATE SET libelle = EXCLUDED.libelle
RETURNING code, libelle`
	var out domain.MarketCode
	err := r.pool.QueryRow(ctx, q, mc.Code, mc.Libelle).Scan(&out.Code, &out.Libelle)
	return out, err
}
