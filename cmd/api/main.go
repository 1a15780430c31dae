package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"docrev/docs"
	"docrev/internal/config"
	"docrev/internal/database"
	"docrev/internal/database/migration"
	handlers "docrev/internal/http/handler"
	"docrev/internal/http/middleware"
	"docrev/internal/logger"
	tracing "docrev/internal/otel"
	"docrev/internal/repository/postgres"
	"docrev/internal/service"
	"docrev/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title						docrev API
// @version					1.0
// @description				Content-addressed document revision store.
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		l := logger.Stdout(time.UTC)
		l.Fatal().Str("event", "startup_failed").Err(err).Msg("")
	}
}

func run(ctx context.Context) error {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	log := logger.Stdout(loc)

	if cfg.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}

	shutdownTracing, err := tracing.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Error().Str("event", "tracing_shutdown_failed").Err(err).Msg("")
		}
	}()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		return err
	}

	store, err := newBlobStore(ctx, cfg)
	if err != nil {
		return err
	}

	revRepo := postgres.NewRevisionPostgres(db)
	shareRepo := postgres.NewSharePostgres(db)
	userRepo := postgres.NewUserPostgres(db)
	txm := postgres.NewTxManager(db)

	access := service.NewAccessControl(shareRepo)
	revSvc := service.NewRevisionService(store, txm, revRepo, access, cfg.LinkTTL, log)
	shareSvc := service.NewSharingService(txm, revRepo, shareRepo, userRepo, access, log)
	catalogSvc := service.NewCatalogService(revRepo, shareRepo, cfg.PageSize)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             cfg.MaxUploadBytes,
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())
	// RequestID must run before Logger so access lines carry request_id
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(loc))
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:        db,
		Revisions: revSvc,
		Sharing:   shareSvc,
		Catalog:   catalogSvc,
		Auth:      middleware.Authenticate([]byte(cfg.Auth.JWTSecret), cfg.Auth.JWTIssuer),
		Metrics:   reg,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error().Str("event", "http_shutdown_failed").Err(err).Msg("")
		}
	}()

	addr := ":" + cfg.Port
	log.Info().Str("event", "http_listen").Str("addr", addr).Str("app_host", cfg.AppHost).Msg("")
	if err := app.Listen(addr); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	log.Info().Str("event", "http_stopped").Msg("")
	return nil
}

// newBlobStore connects to MinIO and, when configured, puts the LRU read cache in front.
func newBlobStore(ctx context.Context, cfg *config.AppConfig) (storage.Storage, error) {
	store, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	if cfg.BlobCache.Entries <= 0 {
		return store, nil
	}
	return storage.NewCached(store, cfg.BlobCache.Entries, cfg.BlobCache.MaxObjectBytes)
}
