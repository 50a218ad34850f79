package boamp

import (
	"bytes"
	"encoding/json"

	"github.com/aussiebroadwan/tenders/internal/tenders/domain"
)

// searchResponse is the records endpoint envelope.
type searchResponse struct {
	TotalCount int         `json:"total_count"`
	Results    []rawRecord `json:"results"`
}

// rawRecord is the subset of a BOAMP record we read. Several fields are
// published either as a scalar or as a list depending on the notice, hence
// the lenient types.
type rawRecord struct {
	IDWeb              string     `json:"idweb"`
	ID                 string     `json:"id"`
	Objet              string     `json:"objet"`
	CodeDepartement    stringList `json:"code_departement"`
	Titulaire          stringList `json:"titulaire"`
	NomAcheteur        string     `json:"nomacheteur"`
	DateParution       string     `json:"dateparution"`
	URLAvis            string     `json:"url_avis"`
	Gestion            jsonText   `json:"gestion"`
	Donnees            jsonText   `json:"donnees"`
	DescripteurLibelle stringList `json:"descripteur_libelle"`
	TypeMarcheFacette  stringList `json:"type_marche_facette"`
	AnnonceLie         stringList `json:"annonce_lie"`
}

// toContract maps the primary fields. Derived fields are left to the
// enrichment step.
func (r rawRecord) toContract() domain.ContractRecord {
	return domain.ContractRecord{
		IDWeb:              r.IDWeb,
		ID:                 r.ID,
		Objet:              r.Objet,
		Departement:        r.CodeDepartement.first(),
		Titulaire:          r.Titulaire.first(),
		NomAcheteur:        r.NomAcheteur,
		DateParution:       r.DateParution,
		URLAvis:            r.URLAvis,
		Donnees:            string(r.Gestion),
		DescripteurLibelle: []string(r.DescripteurLibelle),
		TypeMarcheFacette:  []string(r.TypeMarcheFacette),
		AnnonceLiee:        r.AnnonceLie.first(),
	}
}

// stringList decodes a JSON string, list of strings or null.
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*l = nil
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = stringList{s}
		return nil
	default:
		var ss []string
		if err := json.Unmarshal(b, &ss); err != nil {
			return err
		}
		*l = ss
		return nil
	}
}

func (l stringList) first() string {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}

// jsonText holds an embedded document that upstream serialises as a JSON
// string. An inline object is kept as its raw text.
type jsonText string

func (t *jsonText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = jsonText(s)
	default:
		*t = jsonText(b)
	}
	return nil
}
