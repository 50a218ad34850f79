package boamp

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// LotDetails is what the linked notice's embedded document tells us about
// the contract. Nil fields were absent or unusable.
type LotDetails struct {
	DurationMonths     *int
	RenewalDescription *string
}

// monthPaths and yearPaths are tried in order, the first positive value
// wins. Paths starting with "lot" are relative to the first lot.
var (
	monthPaths = [][]string{
		{"lot", "DUREE_MOIS"},
		{"lot", "CARACTERISTIQUES", "DUREE_MOIS"},
	}
	yearPaths = [][]string{
		{"lot", "NB_ANNEE"},
		{"lot", "CARACTERISTIQUES", "NB_ANNEE"},
		{"ATTRIBUTION", "DECISION", "RENSEIGNEMENT", "NB_ANNEE"},
	}
)

// ParseLotDetails extracts the contract duration and renewal text from a
// notice's donnees document. An error means the document is not JSON; a
// valid document with nothing useful returns empty details.
func ParseLotDetails(donnees string) (LotDetails, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(donnees), &doc); err != nil {
		return LotDetails{}, fmt.Errorf("boamp: parse donnees: %w", err)
	}

	root := map[string]any{"lot": firstLot(doc)}
	for k, v := range doc {
		if k != "lot" {
			root[k] = v
		}
	}

	var out LotDetails
	out.DurationMonths = firstDuration(root, monthPaths, 1)
	if out.DurationMonths == nil {
		out.DurationMonths = firstDuration(root, yearPaths, 12)
	}

	if lot, ok := root["lot"].(map[string]any); ok {
		if v, ok := lot["RENOUVELLEMENT_DESCRIPTION"]; ok && v != nil {
			s := verbatim(v)
			out.RenewalDescription = &s
		}
	}

	return out, nil
}

// firstLot returns OBJET.LOTS.LOT, taking the first element when it is a
// list.
func firstLot(doc map[string]any) any {
	lot := lookup(doc, []string{"OBJET", "LOTS", "LOT"})
	if list, ok := lot.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		return list[0]
	}
	return lot
}

// firstDuration returns the first value along paths that is still a
// positive number of months once scaled by factor and rounded.
func firstDuration(root map[string]any, paths [][]string, factor float64) *int {
	for _, p := range paths {
		n, ok := positiveNumber(lookup(root, p))
		if !ok {
			continue
		}
		if m := int(math.Round(n * factor)); m > 0 {
			return &m
		}
	}
	return nil
}

func lookup(v any, path []string) any {
	for _, k := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[k]
	}
	return v
}

// positiveNumber reads a JSON number or a numeric string, accepting a comma
// as the decimal separator. Zero, negative and non finite values are
// reported as absent.
func positiveNumber(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return 0, false
	}
	return n, true
}

// verbatim returns strings as is and anything else as its JSON text.
func verbatim(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, _ := json.Marshal(v)
	return string(b)
}
