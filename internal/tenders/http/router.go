package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tenders/internal/tenders/domain"
	"github.com/aussiebroadwan/tenders/internal/tenders/metrics"
	"github.com/aussiebroadwan/tenders/internal/tenders/service"
	"github.com/aussiebroadwan/tenders/internal/tenders/store"
	"github.com/aussiebroadwan/tenders/pkg/httpx"
	"github.com/aussiebroadwan/tenders/pkg/jwtx"
	"github.com/aussiebroadwan/tenders/pkg/slogx"

	_ "github.com/aussiebroadwan/tenders/api/tenders" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware
	handler     http.Handler

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	// AllowedOrigins is the CORS allow list. Defaults to the local front end.
	AllowedOrigins []string

	// CookieTransport additionally carries the session in httpOnly cookies.
	CookieTransport bool

	RateLimits httpx.RateLimitProfiles
	Metrics    *metrics.Metrics

	TokenService      *service.TokenService
	AuthService       *service.AuthService
	ContractService   *service.ContractService
	MarketCodeService *service.MarketCodeService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:            http.NewServeMux(),
		verifier:       verifier,
		buildVersion:   buildVersion,
		startTime:      time.Now(),
		store:          st,
		logger:         logger,
		AllowedOrigins: httpx.DefaultAllowedOrigins,
		RateLimits:     httpx.DefaultRateLimitProfiles(),
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	if r.Metrics == nil {
		r.Metrics = metrics.New(false)
	}
	r.middlewares = append(r.middlewares, httpx.CORS(r.AllowedOrigins))

	r.registerAuth()
	r.registerContracts()
	r.registerMarketCodes()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())

	// Metrics must wrap the mux itself to see the matched pattern.
	r.handler = httpx.Chain(r.Metrics.HTTPMiddleware(r.Mux), r.middlewares...)
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Tenders Watcher API
//	@version		0.1.0
//	@description	Authenticated proxy over the BOAMP open data API. Award notices are enriched with the
//	@description	contract duration found in their linked notice and an inferred end date.
//	@description
//	@description				Access tokens are HS256 JWTs valid 15 minutes, refreshed with a 7 day refresh token.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/tenders
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if r.handler == nil {
		r.ApplyRoutes()
	}
	r.handler.ServeHTTP(w, req)
}

// authn is the session middleware, reading the access cookie too when the
// cookie transport is on.
func (r *Router) authn() httpx.Middleware {
	if r.CookieTransport {
		return httpx.SessionMiddleware(r.verifier, httpx.WithAccessCookie(httpx.AccessCookieName))
	}
	return httpx.SessionMiddleware(r.verifier)
}

func (r *Router) registerAuth() {
	// POST /auth/login - strict rate limit by IP + email to slow brute force
	login := &LoginHandler{
		AuthService:     r.AuthService,
		TokenService:    r.TokenService,
		CookieTransport: r.CookieTransport,
	}
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(login,
			httpx.RateLimitByIPAndJSONField(r.RateLimits.Strict, "email"),
		),
	)

	// POST /auth/refresh - strict rate limit by IP
	refresh := &RefreshHandler{
		AuthService:     r.AuthService,
		TokenService:    r.TokenService,
		CookieTransport: r.CookieTransport,
	}
	r.Mux.Handle("POST /auth/refresh",
		httpx.Chain(refresh,
			httpx.RateLimitByIP(r.RateLimits.Strict),
		),
	)

	// GET /auth/me - authenticated, lenient
	r.Mux.Handle("GET /auth/me",
		httpx.Chain(http.HandlerFunc(MeHandler),
			r.authn(),
			httpx.RateLimitByUser(r.RateLimits.Lenient),
		),
	)

	// The cookies are httpOnly so only the server can drop them.
	if r.CookieTransport {
		r.Mux.Handle("POST /auth/logout",
			httpx.Chain(http.HandlerFunc(LogoutHandler),
				httpx.RateLimitByIP(r.RateLimits.Lenient),
			),
		)
	}
}

func (r *Router) registerContracts() {
	h := &ExpiringHandler{ContractService: r.ContractService}

	// GET /api/expiring - moderate, every call fans out upstream
	r.Mux.Handle("GET /api/expiring",
		httpx.Chain(h,
			r.authn(),
			httpx.RateLimitByUser(r.RateLimits.Moderate),
		),
	)
}

func (r *Router) registerMarketCodes() {
	h := &MarketCodesHandler{MarketCodeService: r.MarketCodeService}

	r.Mux.Handle("GET /api/descripteurs",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.authn(),
			httpx.RateLimitByUser(r.RateLimits.Lenient),
		),
	)

	// POST /api/descripteurs - admin only
	r.Mux.Handle("POST /api/descripteurs",
		httpx.Chain(http.HandlerFunc(h.HandleUpsert),
			r.authn(),
			httpx.RequireRoles(domain.RoleAdmin),
			httpx.RateLimitByUser(r.RateLimits.Moderate),
		),
	)
}

func (r *Router) registerSystem() {
	// Status endpoints are public, monitoring may poll them often
	r.Mux.Handle("GET /api/status",
		httpx.Chain(StatusHandler(r.startTime),
			httpx.RateLimitByIP(r.RateLimits.Public),
		),
	)
	r.Mux.Handle("GET /api/ping",
		httpx.Chain(http.HandlerFunc(PingHandler),
			httpx.RateLimitByIP(r.RateLimits.Public),
		),
	)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.RateLimits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(r.RateLimits.Lenient),
		),
	)
	if r.Metrics.Enabled() {
		r.Mux.Handle("GET /metrics", r.Metrics.Handler())
	}
}
