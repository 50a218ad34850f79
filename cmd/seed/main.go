// Command seed upserts the APP_DEFAULT_* admin account into the configured
// database and exits. It reads the same environment as the server, so the
// JWT secrets must be set even though no token is issued.
package main

import (
	"context"
	"errors"
	"log"

	"github.com/aussiebroadwan/tenders/internal/tenders/app"
	"github.com/aussiebroadwan/tenders/internal/tenders/service"
	"github.com/aussiebroadwan/tenders/pkg/cryptox"
	"github.com/aussiebroadwan/tenders/pkg/slogx"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.DefaultEmail == "" || cfg.DefaultPassword == "" {
		return errors.New("APP_DEFAULT_EMAIL and APP_DEFAULT_PASSWORD are required")
	}

	logger := slogx.New(slogx.Config{
		Service: "tenders-seed",
		Version: app.BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
	ctx = slogx.WithContext(ctx, logger)

	pepper, err := cryptox.LoadOrGeneratePepper(cfg.PepperFile)
	if err != nil {
		return err
	}
	hasher, err := cryptox.NewPasswordHasher(pepper)
	if err != nil {
		return err
	}

	db, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	users := &service.UserService{Store: db, Hasher: hasher}
	if err := app.SeedDefaultUser(ctx, users, cfg); err != nil {
		return err
	}

	logger.Info("seed complete", "email", cfg.DefaultEmail)
	return nil
}
