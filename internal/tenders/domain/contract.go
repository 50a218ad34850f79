package domain

import (
	"errors"
	"time"
)

// Search defaults and bounds.
const (
	DefaultResultLimit    = 200
	MaxResultLimit        = 100
	DefaultFallbackMonths = 48
	DefaultHorizonMonths  = 6
)

var ErrInvalidCriteria = errors.New("domain: invalid search criteria")

// SearchCriteria drives one upstream search.
type SearchCriteria struct {
	DepartmentCodes []string
	DescriptorCodes []string
	ResultLimit     int
	FallbackMonths  int
	HorizonMonths   int
}

// DefaultCriteria returns criteria with every numeric field at its default.
func DefaultCriteria() SearchCriteria {
	return SearchCriteria{
		ResultLimit:    DefaultResultLimit,
		FallbackMonths: DefaultFallbackMonths,
		HorizonMonths:  DefaultHorizonMonths,
	}
}

// Limit is the result count actually sent upstream.
func (c SearchCriteria) Limit() int {
	return min(c.ResultLimit, MaxResultLimit)
}

// Validate rejects non-positive limits and negative month counts.
func (c SearchCriteria) Validate() error {
	if c.ResultLimit <= 0 || c.FallbackMonths < 0 || c.HorizonMonths < 0 {
		return ErrInvalidCriteria
	}
	return nil
}

// Window returns the publication date range searched: from is now minus
// fallbackMonths, to is now plus (horizonMonths - fallbackMonths).
func (c SearchCriteria) Window(now time.Time) (from, to time.Time) {
	return AddMonths(now, -c.FallbackMonths), AddMonths(now, c.HorizonMonths-c.FallbackMonths)
}

// ContractRecord is one awarded contract as returned to the browser. The
// three derived fields are only set when a linked announcement resolved
// them, and are omitted from JSON otherwise.
type ContractRecord struct {
	IDWeb              string   `json:"idweb,omitempty"`
	ID                 string   `json:"id,omitempty"`
	Objet              string   `json:"objet,omitempty"`
	Departement        string   `json:"departement,omitempty"`
	Titulaire          string   `json:"titulaire,omitempty"`
	NomAcheteur        string   `json:"nomacheteur,omitempty"`
	DateParution       string   `json:"dateparution,omitempty"`
	URLAvis            string   `json:"url_avis,omitempty"`
	Donnees            string   `json:"donnees,omitempty"`
	DescripteurLibelle []string `json:"descripteur_libelle,omitempty"`
	TypeMarcheFacette  []string `json:"type_marche_facette,omitempty"`
	AnnonceLiee        string   `json:"annonce_lie,omitempty"`

	DurationMonths     *int    `json:"duree,omitempty"`
	RenewalDescription *string `json:"renouvellement,omitempty"`
	ComputedEndDate    *string `json:"datefin,omitempty"`
}
