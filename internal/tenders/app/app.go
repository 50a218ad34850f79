package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/tenders/internal/tenders/boamp"
	"github.com/aussiebroadwan/tenders/internal/tenders/domain"
	httpapi "github.com/aussiebroadwan/tenders/internal/tenders/http"
	"github.com/aussiebroadwan/tenders/internal/tenders/metrics"
	"github.com/aussiebroadwan/tenders/internal/tenders/service"
	"github.com/aussiebroadwan/tenders/internal/tenders/store"
	"github.com/aussiebroadwan/tenders/internal/tenders/store/drivers/postgres"
	"github.com/aussiebroadwan/tenders/internal/tenders/store/drivers/sqlite"
	"github.com/aussiebroadwan/tenders/pkg/cryptox"
	"github.com/aussiebroadwan/tenders/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the tenders API and owns its lifecycle.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	hasher  *cryptox.PasswordHasher
	metrics *metrics.Metrics
	boamp   *boamp.Client

	tokenService      *service.TokenService
	authService       *service.AuthService
	userService       *service.UserService
	contractService   *service.ContractService
	marketCodeService *service.MarketCodeService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "tenders",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(cfg.MetricsEnabled),
	}

	ctx := context.Background()

	pepper, err := cryptox.LoadOrGeneratePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	if app.hasher, err = cryptox.NewPasswordHasher(pepper); err != nil {
		return nil, fmt.Errorf("failed to initialize password hasher: %w", err)
	}

	if app.db, err = OpenStore(ctx, cfg, app.logger); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := SeedDefaultUser(ctx, app.userService, cfg); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("tenders service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"database", app.cfg.DatabaseDriver,
		"enrich_policy", app.cfg.EnrichPolicy,
		"cookie_transport", app.cfg.CookieTransport,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down tenders service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("tenders service stopped")
	return nil
}

// OpenStore opens the configured driver and applies its migrations.
func OpenStore(ctx context.Context, cfg Config, logger *slog.Logger) (store.Store, error) {
	var (
		db  store.Store
		err error
	)
	switch cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.DatabaseFile))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}

	logger.Info("database migrations applied successfully", "driver", cfg.DatabaseDriver)
	return db, nil
}

// SeedDefaultUser upserts the APP_DEFAULT_* account as an admin. It does
// nothing unless both an email and a password are configured.
func SeedDefaultUser(ctx context.Context, users *service.UserService, cfg Config) error {
	if cfg.DefaultEmail == "" || cfg.DefaultPassword == "" {
		return nil
	}
	_, err := users.Seed(ctx, service.SeedUser{
		Email:    cfg.DefaultEmail,
		Name:     cfg.DefaultUser,
		Password: cfg.DefaultPassword,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("failed to seed default user: %w", err)
	}
	return nil
}

func (app *Application) initServices() error {
	var err error
	app.tokenService, err = service.NewTokenService(service.TokenConfig{
		AccessSecret:  app.cfg.AccessSecret,
		RefreshSecret: app.cfg.RefreshSecret,
		Issuer:        app.cfg.Issuer,
		AccessTTL:     app.cfg.AccessTTL,
		RefreshTTL:    app.cfg.RefreshTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	app.boamp, err = boamp.New(boamp.Config{
		BaseURL:     app.cfg.BoampBaseURL,
		Timeout:     app.cfg.UpstreamTimeout,
		HTTPClient:  &http.Client{Timeout: 2 * app.cfg.UpstreamTimeout},
		Policy:      app.cfg.EnrichPolicy,
		Concurrency: app.cfg.EnrichConcurrency,
		Observer:    app.metrics,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize upstream client: %w", err)
	}

	app.authService = &service.AuthService{
		Store:   app.db,
		Tokens:  app.tokenService,
		Hasher:  app.hasher,
		Metrics: app.metrics,
	}
	app.userService = &service.UserService{Store: app.db, Hasher: app.hasher}
	app.contractService = &service.ContractService{Upstream: app.boamp}
	app.marketCodeService = &service.MarketCodeService{Store: app.db}

	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.tokenService.AccessVerifier(),
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AllowedOrigins = app.cfg.AllowedOrigins
	router.CookieTransport = app.cfg.CookieTransport
	router.RateLimits = app.cfg.RateLimits
	router.Metrics = app.metrics

	router.TokenService = app.tokenService
	router.AuthService = app.authService
	router.ContractService = app.contractService
	router.MarketCodeService = app.marketCodeService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
