package service

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/tenders/internal/tenders/domain"
	"github.com/aussiebroadwan/tenders/internal/tenders/store"
)

type MarketCodeService struct {
	Store store.Store
}

// List returns every descriptor code ordered by code.
func (s *MarketCodeService) List(ctx context.Context) ([]domain.MarketCode, error) {
	codes, err := s.Store.MarketCodes().ListMarketCodes(ctx)
	if err != nil {
		return nil, err
	}
	if codes == nil {
		codes = []domain.MarketCode{}
	}
	return codes, nil
}

// Upsert stores or relabels a code. Both fields are required.
func (s *MarketCodeService) Upsert(ctx context.Context, mc domain.MarketCode) (domain.MarketCode, error) {
	mc.Code = strings.TrimSpace(mc.Code)
	mc.Libelle = strings.TrimSpace(mc.Libelle)
	if mc.Code == "" || mc.Libelle == "" {
		return domain.MarketCode{}, ErrInvalidRequest
	}
	return s.Store.MarketCodes().UpsertMarketCode(ctx, mc)
}
