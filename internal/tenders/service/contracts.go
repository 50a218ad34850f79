package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/aussiebroadwan/tenders/internal/tenders/domain"
	"github.com/aussiebroadwan/tenders/pkg/slogx"
)

// ExpiringSearcher runs one search plus enrichment. *boamp.Client
// implements it.
type ExpiringSearcher interface {
	Expiring(ctx context.Context, c domain.SearchCriteria) ([]domain.ContractRecord, error)
}

type ContractService struct {
	Upstream ExpiringSearcher
}

// Expiring validates and normalises c, then delegates to the upstream
// client. Upstream failures are returned as is.
func (s *ContractService) Expiring(ctx context.Context, c domain.SearchCriteria) ([]domain.ContractRecord, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.DepartmentCodes = normalizeCodes(c.DepartmentCodes)
	c.DescriptorCodes = normalizeCodes(c.DescriptorCodes)

	rows, err := s.Upstream.Expiring(ctx, c)
	if err != nil {
		slogx.FromContext(ctx).Error("expiring search failed", slog.Any("err", err))
		return nil, err
	}
	return rows, nil
}

// normalizeCodes trims, drops empties and duplicates, keeping first-seen
// order so the generated filter is stable.
func normalizeCodes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" || slices.Contains(out, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}
