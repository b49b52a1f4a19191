// Command createadmin seeds the admin account named by ADMIN_EMAIL and ADMIN_PASSWORD.
package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/config"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("notice: .env not loaded: %v, using process environment", err)
	}

	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmpty(cfg.AdminEmail, "ADMIN_EMAIL")
	config.MustNonEmpty(cfg.AdminPassword, "ADMIN_PASSWORD")

	logger := logging.New(cfg.LogLevel).With("service", "createadmin")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() { _ = pkgdb.Close(db) }()

	if err := repo.Migrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	svc := &service.AuthService{Repo: &repo.GormRepo{DB: db}}
	created, err := svc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName)
	if err != nil {
		log.Fatalf("ensure admin: %v", err)
	}
	if created {
		logger.Info("admin_created", "email", cfg.AdminEmail)
		return
	}
	logger.Info("admin_exists", "email", cfg.AdminEmail)
}
