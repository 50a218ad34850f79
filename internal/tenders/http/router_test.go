package http_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/tenders/internal/tenders/boamp"
	"github.com/aussiebroadwan/tenders/internal/tenders/domain"
	tendershttp "github.com/aussiebroadwan/tenders/internal/tenders/http"
	"github.com/aussiebroadwan/tenders/internal/tenders/metrics"
	"github.com/aussiebroadwan/tenders/internal/tenders/service"
	"github.com/aussiebroadwan/tenders/internal/tenders/store/drivers/sqlite"
	"github.com/aussiebroadwan/tenders/pkg/cryptox"
	"github.com/aussiebroadwan/tenders/pkg/httpx"
	"github.com/aussiebroadwan/tenders/pkg/tenderssdk"
	"github.com/stretchr/testify/require"
)

const linkedDonnees = `{"OBJET":{"LOTS":{"LOT":{"DUREE_MOIS":"36"}}}}`

// upstream is a minimal BOAMP records endpoint. fail, when set, is returned
// for every call.
type upstream struct {
	fail    int
	queries []string
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if u.fail != 0 {
		http.Error(w, "maintenance", u.fail)
		return
	}
	q := r.URL.Query()
	if strings.HasPrefix(q.Get("refine"), "idweb:") {
		writeUpstream(w, []map[string]any{{"idweb": "22-1", "donnees": linkedDonnees}})
		return
	}
	u.queries = append(u.queries, r.URL.RawQuery)
	writeUpstream(w, []map[string]any{
		{
			"idweb":            "25-1",
			"objet":            "Entretien des espaces verts",
			"code_departement": []string{"54"},
			"dateparution":     "2023-03-10",
			"annonce_lie":      []string{"22-1"},
		},
		{
			"idweb":            "25-2",
			"objet":            "Fournitures de bureau",
			"code_departement": []string{"57"},
			"dateparution":     "2023-04-02",
		},
	})
}

func writeUpstream(w http.ResponseWriter, results []map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"total_count": len(results), "results": results})
}

type env struct {
	router   *tendershttp.Router
	store    *sqlite.Store
	tokens   *service.TokenService
	upstream *upstream
}

func newEnv(t *testing.T, mutate func(*tendershttp.Router)) *env {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations(t.Context()))
	t.Cleanup(func() { _ = st.Close() })

	tokens, err := service.NewTokenService(service.TokenConfig{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
	})
	require.NoError(t, err)

	hasher, err := cryptox.NewPasswordHasher("pepper")
	require.NoError(t, err)

	users := &service.UserService{Store: st, Hasher: hasher}
	for _, u := range []service.SeedUser{
		{Email: "admin@example.fr", Name: "Admin", Password: "admin-pw", Role: domain.RoleAdmin},
		{Email: "user@example.fr", Name: "User", Password: "user-pw", Role: domain.RoleUser},
	} {
		_, err := users.Seed(t.Context(), u)
		require.NoError(t, err)
	}

	up := &upstream{}
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	client, err := boamp.New(boamp.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := tendershttp.NewRouter(tokens.AccessVerifier(), "test", st, logger)
	r.TokenService = tokens
	r.AuthService = &service.AuthService{Store: st, Tokens: tokens, Hasher: hasher}
	r.ContractService = &service.ContractService{Upstream: client}
	r.MarketCodeService = &service.MarketCodeService{Store: st}
	if mutate != nil {
		mutate(r)
	}
	r.ApplyRoutes()

	return &env{router: r, store: st, tokens: tokens, upstream: up}
}

func (e *env) do(t *testing.T, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) login(t *testing.T, email, password string) tenderssdk.LoginResponse {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/login", `{"email":"`+email+`","password":"`+password+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out tenderssdk.LoginResponse
	decode(t, rec, &out)
	return out
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var e tenderssdk.ErrorResponse
	decode(t, rec, &e)
	return e.Error
}

func TestLogin(t *testing.T) {
	e := newEnv(t, nil)

	pair := e.login(t, "  Admin@Example.fr ", "admin-pw")
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := e.tokens.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "admin@example.fr", claims.Email)
	require.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestLoginDoesNotSetCookiesByDefault(t *testing.T) {
	e := newEnv(t, nil)
	rec := e.do(t, http.MethodPost, "/auth/login", `{"email":"user@example.fr","password":"user-pw"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Result().Cookies())
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestLoginFailures(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{name: "wrong password", body: `{"email":"user@example.fr","password":"nope"}`, wantCode: 401, wantErr: "invalid_credentials"},
		{name: "unknown email", body: `{"email":"ghost@example.fr","password":"user-pw"}`, wantCode: 401, wantErr: "invalid_credentials"},
		{name: "missing password", body: `{"email":"user@example.fr"}`, wantCode: 400, wantErr: "invalid_request"},
		{name: "empty body", body: "", wantCode: 400, wantErr: "invalid_request"},
		{name: "malformed json", body: `{"email":`, wantCode: 400, wantErr: "invalid_request"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t, nil)
			rec := e.do(t, http.MethodPost, "/auth/login", tc.body, "")
			require.Equal(t, tc.wantCode, rec.Code)
			require.Equal(t, tc.wantErr, errorCode(t, rec))
		})
	}
}

func TestRefresh(t *testing.T) {
	e := newEnv(t, nil)
	pair := e.login(t, "user@example.fr", "user-pw")

	rec := e.do(t, http.MethodPost, "/auth/refresh", `{"refreshToken":"`+pair.RefreshToken+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out tenderssdk.RefreshResponse
	decode(t, rec, &out)

	claims, err := e.tokens.VerifyAccess(out.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "user@example.fr", claims.Email)
	require.Equal(t, "User", claims.Name)

	// Not consumed.
	rec = e.do(t, http.MethodPost, "/auth/refresh", `{"refreshToken":"`+pair.RefreshToken+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshRejections(t *testing.T) {
	e := newEnv(t, nil)
	pair := e.login(t, "user@example.fr", "user-pw")

	// An access token is signed with the other secret.
	rec := e.do(t, http.MethodPost, "/auth/refresh", `{"refreshToken":"`+pair.AccessToken+`"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid_refresh", errorCode(t, rec))

	rec = e.do(t, http.MethodPost, "/auth/refresh", `{}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_request", errorCode(t, rec))
}

func TestMe(t *testing.T) {
	e := newEnv(t, nil)
	pair := e.login(t, "admin@example.fr", "admin-pw")

	rec := e.do(t, http.MethodGet, "/auth/me", "", pair.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var id tenderssdk.Identity
	decode(t, rec, &id)
	require.NotZero(t, id.Subject)
	require.Equal(t, "admin@example.fr", id.Email)
	require.Equal(t, "Admin", id.Name)
	require.Equal(t, domain.RoleAdmin, id.Role)
}

func TestProtectedRoutesRequireAccessToken(t *testing.T) {
	e := newEnv(t, nil)
	pair := e.login(t, "user@example.fr", "user-pw")

	for _, path := range []string{"/auth/me", "/api/expiring", "/api/descripteurs"} {
		for name, bearer := range map[string]string{"missing": "", "garbage": "abc.def.ghi", "refresh token": pair.RefreshToken} {
			t.Run(path+" "+name, func(t *testing.T) {
				rec := e.do(t, http.MethodGet, path, "", bearer)
				require.Equal(t, http.StatusUnauthorized, rec.Code)
				require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
				require.Equal(t, "invalid_token", errorCode(t, rec))
			})
		}
	}
}

func TestExpiring(t *testing.T) {
	e := newEnv(t, nil)
	pair := e.login(t, "user@example.fr", "user-pw")

	rec := e.do(t, http.MethodGet, "/api/expiring?departement=54,%2057&horizonMonths=6&max=500", "", pair.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out tenderssdk.ExpiringResponse
	decode(t, rec, &out)
	require.Len(t, out.Rows, 2)

	first := out.Rows[0]
	require.Equal(t, "25-1", first.IDWeb)
	require.Equal(t, "54", first.Departement)
	require.NotNil(t, first.Duree)
	require.Equal(t, 36, *first.Duree)
	require.NotNil(t, first.DateFin)
	require.Equal(t, "2026-03-10", *first.DateFin)

	require.Equal(t, "25-2", out.Rows[1].IDWeb)
	require.Nil(t, out.Rows[1].Duree)
	require.NotContains(t, rec.Body.String(), `"datefin":null`)

	require.Len(t, e.upstream.queries, 1)
	require.Contains(t, e.upstream.queries[0], "limit=100")
	require.Contains(t, e.upstream.queries[0], "refine=nature%3AATTRIBUTION")
}

func TestExpiringRejectsBadParameters(t *testing.T) {
	e := newEnv(t, nil)
	pair := e.login(t, "user@example.fr", "user-pw")

	for _, q := range []string{"max=0", "max=-3", "max=ten", "fallbackMonths=-1", "horizonMonths=1.5"} {
		t.Run(q, func(t *testing.T) {
			rec := e.do(t, http.MethodGet, "/api/expiring?"+q, "", pair.AccessToken)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, "invalid_request", errorCode(t, rec))
		})
	}
	require.Empty(t, e.upstream.queries)
}

func TestExpiringUpstreamFailure(t *testing.T) {
	e := newEnv(t, nil)
	pair := e.login(t, "user@example.fr", "user-pw")
	e.upstream.fail = http.StatusServiceUnavailable

	rec := e.do(t, http.MethodGet, "/api/expiring", "", pair.AccessToken)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body tenderssdk.ErrorResponse
	decode(t, rec, &body)
	require.Equal(t, "upstream_error", body.Error)
	require.Equal(t, "upstream error 503: maintenance", body.ErrorDescription)
}

func TestDescripteurs(t *testing.T) {
	e := newEnv(t, nil)
	admin := e.login(t, "admin@example.fr", "admin-pw")
	user := e.login(t, "user@example.fr", "user-pw")

	rec := e.do(t, http.MethodGet, "/api/descripteurs", "", user.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/descripteurs", `{"code":"72","libelle":"Informatique"}`, user.AccessToken)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "forbidden", errorCode(t, rec))

	rec = e.do(t, http.MethodPost, "/api/descripteurs", `{"code":"72"}`, admin.AccessToken)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	for _, body := range []string{
		`{"code":"90","libelle":"Nettoyage"}`,
		`{"code":"72","libelle":"Info"}`,
		`{"code":"72","libelle":"Informatique"}`,
	} {
		rec = e.do(t, http.MethodPost, "/api/descripteurs", body, admin.AccessToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodGet, "/api/descripteurs", "", user.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[{"code":"72","libelle":"Informatique"},{"code":"90","libelle":"Nettoyage"}]`, rec.Body.String())
}

func TestPublicEndpoints(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(t, http.MethodGet, "/api/status", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var status tenderssdk.StatusResponse
	decode(t, rec, &status)
	require.True(t, status.OK)
	require.GreaterOrEqual(t, status.Uptime, 0.0)

	rec = e.do(t, http.MethodGet, "/api/ping", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"pong":true}`, rec.Body.String())

	rec = e.do(t, http.MethodGet, "/livez", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var live tenderssdk.HealthResponse
	decode(t, rec, &live)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	rec = e.do(t, http.MethodGet, "/swagger/doc.json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Tenders Watcher API")
}

func TestReadyz(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(t, http.MethodGet, "/readyz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ready tenderssdk.HealthResponse
	decode(t, rec, &ready)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks.Database)

	require.NoError(t, e.store.Close())
	rec = e.do(t, http.MethodGet, "/readyz", "", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	decode(t, rec, &ready)
	require.Equal(t, "degraded", ready.Status)
	require.True(t, strings.HasPrefix(ready.Checks.Database, "error: "))
}

func TestCORS(t *testing.T) {
	e := newEnv(t, func(r *tendershttp.Router) {
		r.AllowedOrigins = httpx.MergeOrigins(httpx.DefaultAllowedOrigins, "https://tenders.example.fr")
	})

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/expiring", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)
		return rec
	}

	rec := preflight("https://tenders.example.fr")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://tenders.example.fr", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	rec = preflight("http://localhost:5174")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = preflight("https://evil.example.com")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCookieTransport(t *testing.T) {
	e := newEnv(t, func(r *tendershttp.Router) { r.CookieTransport = true })

	rec := e.do(t, http.MethodPost, "/auth/login", `{"email":"user@example.fr","password":"user-pw"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c
	}
	access, refresh := cookies[httpx.AccessCookieName], cookies[httpx.RefreshCookieName]
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	require.True(t, access.HttpOnly)
	require.Equal(t, "/", access.Path)
	require.Equal(t, httpx.RefreshCookiePath, refresh.Path)
	require.Equal(t, 15*60, access.MaxAge)
	require.Equal(t, 7*24*60*60, refresh.MaxAge)

	// The cookie alone authenticates.
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: access.Name, Value: access.Value})
	me := httptest.NewRecorder()
	e.router.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code, me.Body.String())

	// Refresh falls back to the cookie when the body has no token.
	req = httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(`{}`))
	req.AddCookie(&http.Cookie{Name: refresh.Name, Value: refresh.Value})
	ref := httptest.NewRecorder()
	e.router.ServeHTTP(ref, req)
	require.Equal(t, http.StatusOK, ref.Code, ref.Body.String())

	out := e.do(t, http.MethodPost, "/auth/logout", "", "")
	require.Equal(t, http.StatusNoContent, out.Code)
	for _, c := range out.Result().Cookies() {
		require.Negative(t, c.MaxAge, c.Name)
	}
}

func TestLogoutOnlyWithCookieTransport(t *testing.T) {
	e := newEnv(t, nil)
	rec := e.do(t, http.MethodPost, "/auth/logout", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	e := newEnv(t, func(r *tendershttp.Router) { r.Metrics = metrics.New(true) })

	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/ping", "", "").Code)

	rec := e.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `tenders_http_requests_total{code="200",route="GET /api/ping"} 1`)
}

func TestMetricsEndpointDisabledByDefault(t *testing.T) {
	e := newEnv(t, nil)
	rec := e.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
