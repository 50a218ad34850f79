package boamp

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/tenders/internal/tenders/domain"
)

// AttributionRefine restricts results to award notices.
const AttributionRefine = "nature:ATTRIBUTION"

// BuildQuery renders the search parameters for criteria evaluated at now.
func BuildQuery(c domain.SearchCriteria, now time.Time) url.Values {
	v := url.Values{}
	v.Set("limit", strconv.Itoa(c.Limit()))
	v.Set("where", BuildFilter(c, now))
	v.Add("refine", AttributionRefine)
	return v
}

// BuildFilter renders the ODSQL where clause: the publication window, then
// optional department and descriptor clauses, all joined with AND.
func BuildFilter(c domain.SearchCriteria, now time.Time) string {
	from, to := c.Window(now)
	clauses := []string{
		`dateparution >= ` + quote(from.Format(domain.DateLayout)) +
			` AND dateparution <= ` + quote(to.Format(domain.DateLayout)),
	}

	if or := anyEqual("code_departement", c.DepartmentCodes); or != "" {
		clauses = append(clauses, or)
	}
	if or := anyEqual("descripteur_code", c.DescriptorCodes); or != "" {
		clauses = append(clauses, or)
	}
	return strings.Join(clauses, " AND ")
}

// anyEqual renders (field = "a" OR field = "b"), or "" for no values.
func anyEqual(field string, values []string) string {
	terms := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			terms = append(terms, field+" = "+quote(v))
		}
	}
	if len(terms) == 0 {
		return ""
	}
	return "(" + strings.Join(terms, " OR ") + ")"
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// linkedQuery looks a single notice up by its web id.
func linkedQuery(idweb string) url.Values {
	v := url.Values{}
	v.Set("refine", "idweb:"+idweb)
	return v
}
