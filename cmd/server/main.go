package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/storefront/internal/cache"
	shopcfg "github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("notice: .env not loaded: %v, using process environment", err)
	}

	cfg := shopcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	gormRepo := &repo.GormRepo{DB: db}
	orderSvc := &service.OrderService{Repo: gormRepo}
	catalogSvc := &service.CatalogService{Repo: gormRepo}

	var producer *events.Producer
	if cfg.EventsEnabled() {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.ServiceName)
		orderSvc.Events = producer
		catalogSvc.Events = producer
		logger.Info("events_enabled", "brokers", cfg.KafkaBrokers)
	}

	var rdb *redis.Client
	if cfg.CacheEnabled() {
		rdb = cache.New(cfg.RedisAddr)
		if err := cache.Ping(context.Background(), rdb); err != nil {
			logger.Warn("redis_unreachable", "addr", cfg.RedisAddr, "error", err)
		}
		orderSvc.StatusCache = cache.NewStatusCache(rdb)
		orderSvc.Idempotency = cache.NewIdempotency(rdb)
		logger.Info("cache_enabled", "addr", cfg.RedisAddr)
	}

	if cfg.SearchEnabled() {
		esClient, err := search.NewClient(cfg.Config)
		if err != nil {
			logger.Error("search_disabled", "error", err)
		} else {
			idx := search.NewIndex(esClient, cfg.ESIndex)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := idx.Ensure(ctx); err != nil {
				logger.Warn("search_index_ensure_failed", "index", cfg.ESIndex, "error", err)
			}
			cancel()
			orderSvc.Index = idx
			catalogSvc.Index = idx
			logger.Info("search_enabled", "index", cfg.ESIndex)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	if len(cfg.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins, AllowCredentials: true}))
	} else {
		e.Use(echomw.CORS())
	}

	secureCookies := os.Getenv("INSECURE_COOKIES") == ""
	csrfCfg := csrf.DefaultConfig()
	csrfCfg.Secure = secureCookies
	csrfCfg.SkipPaths = []string{"/health/live", "/health/ready", "/api/auth/login"}
	e.Use(csrf.Middleware(csrfCfg))

	httpserver.Register(e, &httpserver.Deps{
		HealthHandler:  &httpserver.HealthHTTP{DB: db},
		AuthHandler:    &httpserver.AuthHTTP{Svc: &service.AuthService{Repo: gormRepo, JWTSecret: cfg.JWTAccessSecret}, SecureCookie: secureCookies},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalogSvc},
		OrderHandler:   &httpserver.OrderHTTP{Svc: orderSvc},
		AdminHandler:   &httpserver.AdminHTTP{Svc: &service.DashboardService{Repo: gormRepo}},
		JWTSecret:      cfg.JWTAccessSecret,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka_close_failed", "error", err)
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis_close_failed", "error", err)
		}
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db_close_failed", "error", err)
	}

	logger.Info("shutdown complete")
}
