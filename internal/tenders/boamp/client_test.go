package boamp_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenders/internal/tenders/boamp"
	"github.com/aussiebroadwan/tenders/internal/tenders/domain"
	"github.com/stretchr/testify/require"
)

// fakeUpstream serves /api/records. Searches return primary, lookups by
// idweb return the matching entry of linked.
type fakeUpstream struct {
	primary    []map[string]any
	totalCount *int
	linked     map[string]string
	failLinked map[string]int
	delay      func(idweb string) time.Duration

	mu       sync.Mutex
	searches []string
	lookups  []string
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/records" {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	for _, refine := range q["refine"] {
		if id, ok := strings.CutPrefix(refine, "idweb:"); ok {
			f.serveLinked(w, r, id)
			return
		}
	}

	f.mu.Lock()
	f.searches = append(f.searches, q.Get("where"))
	f.mu.Unlock()

	total := len(f.primary)
	if f.totalCount != nil {
		total = *f.totalCount
	}
	writeJSON(w, map[string]any{"total_count": total, "results": f.primary})
}

func (f *fakeUpstream) serveLinked(w http.ResponseWriter, r *http.Request, id string) {
	f.mu.Lock()
	f.lookups = append(f.lookups, id)
	f.mu.Unlock()

	if f.delay != nil {
		select {
		case <-time.After(f.delay(id)):
		case <-r.Context().Done():
			return
		}
	}
	if status, ok := f.failLinked[id]; ok {
		http.Error(w, "upstream exploded", status)
		return
	}
	donnees, ok := f.linked[id]
	if !ok {
		writeJSON(w, map[string]any{"total_count": 0, "results": []any{}})
		return
	}
	writeJSON(w, map[string]any{
		"total_count": 1,
		"results":     []any{map[string]any{"idweb": id, "donnees": donnees}},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes map[string]int
	calls    map[string]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{outcomes: map[string]int{}, calls: map[string]int{}}
}

func (o *recordingObserver) ObserveUpstream(kind string, _ int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls[kind]++
}

func (o *recordingObserver) ObserveEnrichment(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes[outcome]++
}

func newClient(t *testing.T, up http.Handler, mutate func(*boamp.Config)) *boamp.Client {
	t.Helper()
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	cfg := boamp.Config{
		BaseURL:     srv.URL + "/api",
		Timeout:     2 * time.Second,
		Concurrency: 4,
		Now:         func() time.Time { return fixedNow },
	}
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := boamp.New(cfg)
	require.NoError(t, err)
	return c
}

func primary(idweb, published, linked string) map[string]any {
	rec := map[string]any{
		"idweb":            idweb,
		"id":               "id-" + idweb,
		"objet":            "Marché " + idweb,
		"code_departement": []string{"54"},
		"titulaire":        "ACME",
		"nomacheteur":      "Ville de Nancy",
		"dateparution":     published,
		"url_avis":         "https://www.boamp.fr/avis/detail/" + idweb,
		"gestion":          `{"REFERENCE":{"IDWEB":"` + idweb + `"}}`,
	}
	if linked != "" {
		rec["annonce_lie"] = []string{linked}
	}
	return rec
}

func TestExpiringEnrichesFromLinkedNotice(t *testing.T) {
	up := &fakeUpstream{
		primary: []map[string]any{
			primary("25-1", "2023-01-15", "22-9"),
			primary("25-2", "2023-02-01", ""),
		},
		linked: map[string]string{
			"22-9": `{"OBJET":{"LOTS":{"LOT":{"RENOUVELLEMENT_DESCRIPTION":"reconductible 1 fois"}}},"ATTRIBUTION":{"DECISION":{"RENSEIGNEMENT":{"NB_ANNEE":"2"}}}}`,
		},
	}
	obs := newRecordingObserver()
	c := newClient(t, up, func(cfg *boamp.Config) { cfg.Observer = obs })

	crit := domain.DefaultCriteria()
	crit.DepartmentCodes = []string{"54"}
	got, err := c.Expiring(t.Context(), crit)
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	require.Equal(t, "25-1", first.IDWeb)
	require.Equal(t, "54", first.Departement)
	require.Equal(t, "ACME", first.Titulaire)
	require.Equal(t, "22-9", first.AnnonceLiee)
	require.NotNil(t, first.DurationMonths)
	require.Equal(t, 24, *first.DurationMonths)
	require.NotNil(t, first.ComputedEndDate)
	require.Equal(t, "2025-01-15", *first.ComputedEndDate)
	require.NotNil(t, first.RenewalDescription)
	require.Equal(t, "reconductible 1 fois", *first.RenewalDescription)

	second := got[1]
	require.Nil(t, second.DurationMonths)
	require.Nil(t, second.RenewalDescription)
	require.Nil(t, second.ComputedEndDate)

	require.Equal(t, []string{"22-9"}, up.lookups)
	require.Len(t, up.searches, 1)
	require.Contains(t, up.searches[0], `(code_departement = "54")`)
	require.Equal(t, 1, obs.outcomes[boamp.OutcomeEnriched])
	require.Equal(t, 1, obs.outcomes[boamp.OutcomeUnlinked])
	require.Equal(t, 1, obs.calls[boamp.KindSearch])
	require.Equal(t, 1, obs.calls[boamp.KindLinked])
}

func TestExpiringUnlinkedRecordsOmitDerivedFields(t *testing.T) {
	up := &fakeUpstream{primary: []map[string]any{primary("25-3", "2024-06-01", "")}}
	c := newClient(t, up, nil)

	got, err := c.Expiring(t.Context(), domain.DefaultCriteria())
	require.NoError(t, err)
	require.Len(t, got, 1)

	b, err := json.Marshal(got[0])
	require.NoError(t, err)
	require.NotContains(t, string(b), `"duree"`)
	require.NotContains(t, string(b), `"renouvellement"`)
	require.NotContains(t, string(b), `"datefin"`)
	require.Empty(t, up.lookups)
}

func TestExpiringZeroTotalCountIgnoresResults(t *testing.T) {
	zero := 0
	up := &fakeUpstream{
		primary:    []map[string]any{primary("25-4", "2024-06-01", "22-1")},
		totalCount: &zero,
	}
	c := newClient(t, up, nil)

	got, err := c.Expiring(t.Context(), domain.DefaultCriteria())
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
	require.Empty(t, up.lookups)
}

func TestExpiringEndDateNeedsPublicationDate(t *testing.T) {
	up := &fakeUpstream{
		primary: []map[string]any{
			primary("25-5", "", "22-5"),
			primary("25-6", "2024-01-31", "22-6"),
		},
		linked: map[string]string{
			"22-5": `{"OBJET":{"LOTS":{"LOT":{"DUREE_MOIS":"18,5"}}}}`,
			"22-6": `{"OBJET":{"LOTS":{"LOT":{"DUREE_MOIS":"1"}}}}`,
		},
	}
	c := newClient(t, up, nil)

	got, err := c.Expiring(t.Context(), domain.DefaultCriteria())
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.NotNil(t, got[0].DurationMonths)
	require.Equal(t, 19, *got[0].DurationMonths)
	require.Nil(t, got[0].ComputedEndDate)

	require.NotNil(t, got[1].ComputedEndDate)
	require.Equal(t, "2024-02-29", *got[1].ComputedEndDate)
}

func TestExpiringEndDateNeedsDuration(t *testing.T) {
	up := &fakeUpstream{
		primary: []map[string]any{primary("25-7", "2024-01-10", "22-7")},
		linked:  map[string]string{"22-7": `{"OBJET":{"LOTS":{"LOT":{"DUREE_MOIS":"0"}}}}`},
	}
	c := newClient(t, up, nil)

	got, err := c.Expiring(t.Context(), domain.DefaultCriteria())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Nil(t, got[0].DurationMonths)
	require.Nil(t, got[0].ComputedEndDate)
}

func TestExpiringPreservesUpstreamOrder(t *testing.T) {
	up := &fakeUpstream{linked: map[string]string{}}
	var want []string
	for i := range 8 {
		id := string(rune('a' + i))
		up.primary = append(up.primary, primary("p-"+id, "2024-01-01", "l-"+id))
		up.linked["l-"+id] = `{"OBJET":{"LOTS":{"LOT":{"DUREE_MOIS":` + string(rune('1'+i)) + `}}}}`
		want = append(want, "p-"+id)
	}
	// Earlier records answer last.
	up.delay = func(id string) time.Duration {
		return time.Duration('z'-id[len(id)-1]) * time.Millisecond
	}
	c := newClient(t, up, func(cfg *boamp.Config) { cfg.Concurrency = 8 })

	got, err := c.Expiring(t.Context(), domain.DefaultCriteria())
	require.NoError(t, err)

	var order []string
	for i, rec := range got {
		order = append(order, rec.IDWeb)
		require.NotNil(t, rec.DurationMonths)
		require.Equal(t, i+1, *rec.DurationMonths)
	}
	require.Equal(t, want, order)
}

func TestExpiringFailFastAbortsOnLinkedFailure(t *testing.T) {
	up := &fakeUpstream{
		primary: []map[string]any{
			primary("25-8", "2024-01-01", "22-8"),
			primary("25-9", "2024-01-01", "22-bad"),
		},
		linked:     map[string]string{"22-8": `{"OBJET":{"LOTS":{"LOT":{"DUREE_MOIS":12}}}}`},
		failLinked: map[string]int{"22-bad": http.StatusBadGateway},
	}
	c := newClient(t, up, nil)

	got, err := c.Expiring(t.Context(), domain.DefaultCriteria())
	require.Error(t, err)
	require.Nil(t, got)

	var upErr *boamp.UpstreamError
	require.True(t, errors.As(err, &upErr))
	require.Equal(t, http.StatusBadGateway, upErr.Status)
	require.Equal(t, "upstream exploded", upErr.Body)
}

func TestExpiringIsolateKeepsFailedRecords(t *testing.T) {
	up := &fakeUpstream{
		primary: []map[string]any{
			primary("25-8", "2024-01-01", "22-8"),
			primary("25-9", "2024-01-01", "22-bad"),
			primary("25-10", "2024-01-01", "22-gone"),
			primary("25-11", "2024-01-01", "22-junk"),
		},
		linked: map[string]string{
			"22-8":    `{"OBJET":{"LOTS":{"LOT":{"DUREE_MOIS":12}}}}`,
			"22-junk": `{not json`,
		},
		failLinked: map[string]int{"22-bad": http.StatusInternalServerError},
	}
	obs := newRecordingObserver()
	c := newClient(t, up, func(cfg *boamp.Config) {
		cfg.Policy = boamp.PolicyIsolate
		cfg.Observer = obs
	})

	got, err := c.Expiring(t.Context(), domain.DefaultCriteria())
	require.NoError(t, err)
	require.Len(t, got, 4)

	require.NotNil(t, got[0].ComputedEndDate)
	require.Equal(t, "2025-01-01", *got[0].ComputedEndDate)
	for _, rec := range got[1:] {
		require.Nil(t, rec.DurationMonths, rec.IDWeb)
		require.Nil(t, rec.ComputedEndDate, rec.IDWeb)
	}

	require.Equal(t, 1, obs.outcomes[boamp.OutcomeEnriched])
	require.Equal(t, 1, obs.outcomes[boamp.OutcomeFetchError])
	require.Equal(t, 1, obs.outcomes[boamp.OutcomeNotFound])
	require.Equal(t, 1, obs.outcomes[boamp.OutcomeParseError])
}

func TestExpiringParseFailureIsNeverFatal(t *testing.T) {
	up := &fakeUpstream{
		primary: []map[string]any{primary("25-12", "2024-01-01", "22-junk")},
		linked:  map[string]string{"22-junk": `[1, 2`},
	}
	c := newClient(t, up, nil)

	got, err := c.Expiring(t.Context(), domain.DefaultCriteria())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Nil(t, got[0].DurationMonths)
}

func TestExpiringSearchFailure(t *testing.T) {
	srv := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	})
	c := newClient(t, srv, nil)

	_, err := c.Expiring(t.Context(), domain.DefaultCriteria())
	var upErr *boamp.UpstreamError
	require.True(t, errors.As(err, &upErr))
	require.Equal(t, http.StatusServiceUnavailable, upErr.Status)
	require.Equal(t, "maintenance", upErr.Body)
	require.Equal(t, "upstream error 503: maintenance", upErr.Error())
}

func TestExpiringTimeout(t *testing.T) {
	up := &fakeUpstream{
		primary: []map[string]any{primary("25-13", "2024-01-01", "22-slow")},
		linked:  map[string]string{"22-slow": `{}`},
		delay:   func(string) time.Duration { return 2 * time.Second },
	}
	c := newClient(t, up, func(cfg *boamp.Config) { cfg.Timeout = 50 * time.Millisecond })

	start := time.Now()
	_, err := c.Expiring(t.Context(), domain.DefaultCriteria())
	require.Less(t, time.Since(start), time.Second)

	var upErr *boamp.UpstreamError
	require.True(t, errors.As(err, &upErr))
	require.Zero(t, upErr.Status)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := boamp.New(boamp.Config{BaseURL: "not a url"})
	require.Error(t, err)

	_, err = boamp.New(boamp.Config{Policy: "sometimes"})
	require.Error(t, err)

	c, err := boamp.New(boamp.Config{})
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestParsePolicy(t *testing.T) {
	p, err := boamp.ParsePolicy("")
	require.NoError(t, err)
	require.Equal(t, boamp.PolicyFailFast, p)

	p, err = boamp.ParsePolicy(" Isolate ")
	require.NoError(t, err)
	require.Equal(t, boamp.PolicyIsolate, p)

	_, err = boamp.ParsePolicy("retry")
	require.Error(t, err)
}
