package tenderssdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Me returns the identity claim of the current access token.
func (s *Session) Me(ctx context.Context) (*Identity, error) {
	var out Identity
	if err := s.doJSON(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Expiring searches awarded contracts and their inferred end dates.
func (s *Session) Expiring(ctx context.Context, c Criteria) ([]ContractRecord, error) {
	var out ExpiringResponse
	if err := s.doJSON(ctx, http.MethodGet, "/api/expiring"+c.query(), nil, &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

// Descripteurs lists the known descriptor codes.
func (s *Session) Descripteurs(ctx context.Context) ([]MarketCode, error) {
	var out []MarketCode
	if err := s.doJSON(ctx, http.MethodGet, "/api/descripteurs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertDescripteur stores a descriptor code. Requires the admin role.
func (s *Session) UpsertDescripteur(ctx context.Context, mc MarketCode) (*MarketCode, error) {
	var out MarketCode
	if err := s.doJSON(ctx, http.MethodPost, "/api/descripteurs", mc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c Criteria) query() string {
	v := url.Values{}
	if len(c.Departements) > 0 {
		v.Set("departement", strings.Join(c.Departements, ","))
	}
	if len(c.Descripteurs) > 0 {
		v.Set("descripteur", strings.Join(c.Descripteurs, ","))
	}
	if c.Max > 0 {
		v.Set("max", strconv.Itoa(c.Max))
	}
	if c.FallbackMonths != nil {
		v.Set("fallbackMonths", strconv.Itoa(*c.FallbackMonths))
	}
	if c.HorizonMonths != nil {
		v.Set("horizonMonths", strconv.Itoa(*c.HorizonMonths))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}
