package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dossierapi/internal/config"
	"dossierapi/internal/database"
	"dossierapi/internal/database/migration"
	handlers "dossierapi/internal/http/handler"
	"dossierapi/internal/http/middleware"
	"dossierapi/internal/otel"
	"dossierapi/internal/policy"
	"dossierapi/internal/processor"
	"dossierapi/internal/repository/postgres"
	"dossierapi/internal/service"
	"dossierapi/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.UTC

	ctx := context.Background()

	// OTLP tracing; degrades to a no-op provider when no exporter is reachable
	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Persistence, processors and services
	store := postgres.NewStore(db)
	classifier := processor.NewClassifier(objStore, cfg.Processing, processor.ExecRunner{})
	merger := processor.NewMerger(cfg.Processing)
	archiver := processor.NewArchiveBuilder(cfg.Processing)
	schemaPolicy := policy.NewStatic(cfg.Policy.AllowedExtensions)

	uploadSvc := service.NewUploadService(store, objStore, classifier, schemaPolicy, cfg.Policy.DefaultSchema)
	docSvc := service.NewDocumentService(store, objStore, merger, archiver, cfg.Processing.TempDir)
	versionSvc := service.NewVersionService(store)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    128 << 20, // multipart batches can carry several PDFs
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	// Authorization gate; AllowAll until an external authorizer is wired
	app.Use(middleware.Authorize(middleware.AllowAll{}))

	// Request counters exposed on /metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, uploadSvc, docSvc, versionSvc)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
