package boamp_test

import (
	"testing"

	"github.com/aussiebroadwan/tenders/internal/tenders/boamp"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestParseLotDetails(t *testing.T) {
	cases := []struct {
		name    string
		donnees string
		months  *int
		renewal *string
	}{
		{
			name:    "years from attribution",
			donnees: `{"ATTRIBUTION":{"DECISION":{"RENSEIGNEMENT":{"NB_ANNEE":"2"}}}}`,
			months:  intPtr(24),
		},
		{
			name:    "comma decimal months rounds up",
			donnees: `{"OBJET":{"LOTS":{"LOT":{"DUREE_MOIS":"18,5"}}}}`,
			months:  intPtr(19),
		},
		{
			name:    "lot list takes first element",
			donnees: `{"OBJET":{"LOTS":{"LOT":[{"DUREE_MOIS":12,"RENOUVELLEMENT_DESCRIPTION":"2 x 1 an"},{"DUREE_MOIS":48}]}}}`,
			months:  intPtr(12),
			renewal: strPtr("2 x 1 an"),
		},
		{
			name:    "characteristics fallback",
			donnees: `{"OBJET":{"LOTS":{"LOT":{"CARACTERISTIQUES":{"DUREE_MOIS":"36"}}}}}`,
			months:  intPtr(36),
		},
		{
			name:    "months win over years",
			donnees: `{"OBJET":{"LOTS":{"LOT":{"DUREE_MOIS":"6"}}},"ATTRIBUTION":{"DECISION":{"RENSEIGNEMENT":{"NB_ANNEE":"4"}}}}`,
			months:  intPtr(6),
		},
		{
			name:    "zero months is absent",
			donnees: `{"OBJET":{"LOTS":{"LOT":{"DUREE_MOIS":"0"}}}}`,
		},
		{
			name:    "negative months is absent",
			donnees: `{"OBJET":{"LOTS":{"LOT":{"DUREE_MOIS":-3}}}}`,
		},
		{
			name:    "garbage months is absent",
			donnees: `{"OBJET":{"LOTS":{"LOT":{"DUREE_MOIS":"douze"}}}}`,
		},
		{
			name:    "renewal kept verbatim without duration",
			donnees: `{"OBJET":{"LOTS":{"LOT":{"RENOUVELLEMENT_DESCRIPTION":"  reconductible une fois  "}}}}`,
			renewal: strPtr("  reconductible une fois  "),
		},
		{
			name:    "empty lot list",
			donnees: `{"OBJET":{"LOTS":{"LOT":[]}}}`,
		},
		{
			name:    "no lots at all",
			donnees: `{}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := boamp.ParseLotDetails(tc.donnees)
			require.NoError(t, err)
			require.Equal(t, tc.months, got.DurationMonths)
			require.Equal(t, tc.renewal, got.RenewalDescription)
		})
	}
}

func TestParseLotDetailsRejectsNonJSON(t *testing.T) {
	_, err := boamp.ParseLotDetails("{not json")
	require.Error(t, err)

	_, err = boamp.ParseLotDetails(`["an", "array"]`)
	require.Error(t, err)
}

func strPtr(s string) *string { return &s }
