package main

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cdnapi/docs"
	"cdnapi/internal/config"
	"cdnapi/internal/database"
	"cdnapi/internal/database/migration"
	handlers "cdnapi/internal/http/handler"
	"cdnapi/internal/http/middleware"
	"cdnapi/internal/otel"
	"cdnapi/internal/repository"
	"cdnapi/internal/repository/dynamo"
	memoryRepo "cdnapi/internal/repository/memory"
	"cdnapi/internal/repository/postgres"
	"cdnapi/internal/service"
	"cdnapi/internal/storage"
)

// @title CDN API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	// Metadata backend. Only postgres keeps a standing connection, so db stays
	// nil for the others and the health check degrades accordingly.
	var db *sql.DB
	var docRepo repository.DocumentRepository

	switch cfg.MetadataBackend {
	case config.MetadataPostgres:
		db, err = database.Connect(cfg.Database,
			cfg.Database.ConnectAttempts,
			time.Duration(cfg.Database.ConnectIntervalSec)*time.Second)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		docRepo = postgres.NewDocumentPostgres(db)
	case config.MetadataDynamo:
		client, cErr := dynamo.NewClient(cfg.AWS)
		if cErr != nil {
			log.Fatalf("failed to initialize dynamodb client: %v", cErr)
		}
		docRepo = dynamo.NewDocumentDynamo(client, cfg.AWS.DynamoTable)
	case config.MetadataMemory:
		docRepo = memoryRepo.NewDocumentMemory()
	default:
		log.Fatalf("unknown metadata backend: %q", cfg.MetadataBackend)
	}

	// Blob storage backend.
	var objStore storage.Storage
	switch cfg.StorageBackend {
	case config.StorageMinIO:
		objStore, err = storage.NewMinIO(cfg.MinIO)
	case config.StorageS3:
		objStore, err = storage.NewS3(cfg.AWS)
	case config.StorageFS:
		objStore, err = storage.NewFS(cfg.FS)
	case config.StorageMemory:
		objStore = storage.NewMemory()
	default:
		log.Fatalf("unknown storage backend: %q", cfg.StorageBackend)
	}
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	docSvc := service.NewDocumentService(objStore, docRepo)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to initialize metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, docSvc)

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

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
