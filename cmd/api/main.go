package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/registro-escuelas/internal/application/importer"
	"github.com/jhoicas/registro-escuelas/internal/application/ports"
	"github.com/jhoicas/registro-escuelas/internal/application/usecase"
	"github.com/jhoicas/registro-escuelas/internal/domain/normalize"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/cache"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/csvio"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/excel"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/kml"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/metrics"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/pdf"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/registro-escuelas/internal/interfaces/http"
	"github.com/jhoicas/registro-escuelas/pkg/config"
	"github.com/jhoicas/registro-escuelas/pkg/logger"
	"github.com/jhoicas/registro-escuelas/pkg/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, postgres.DefaultPoolOptions)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.MigrateOnStart {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	// Caché de reportes: opcional, sin Redis los reportes se calculan siempre contra la base.
	var reportCache ports.ReportCache
	importerOpts := []importer.Option{importer.WithRecorder(metrics.Default())}
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, caché de reportes desactivada")
		} else {
			defer rdb.Close()
			rc := cache.NewRedisCache(rdb, cfg.Redis.CacheTTL)
			reportCache = rc
			importerOpts = append(importerOpts, importer.WithCache(rc))
		}
	}

	val := validator.New()

	schoolQueryRepo := postgres.NewSchoolQueryRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	catalogRepo := postgres.NewCatalogRepository(pool)
	siteRepo := postgres.NewSiteRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	importSvc := importer.NewService(txRunner, normalize.NewNormalizer(val), log, importerOpts...)

	catalogUC := usecase.NewCatalogUseCase(catalogRepo, siteRepo, reportRepo)
	schoolUC := usecase.NewSchoolUseCase(schoolQueryRepo)
	reportUC := usecase.NewReportUseCase(reportRepo, catalogUC, reportCache, log)
	documentUC := usecase.NewDocumentUseCase(schoolUC, reportUC, excel.NewRenderer(), pdf.NewSchoolSheetGenerator(), kml.NewRenderer())
	dataUC := usecase.NewDataUseCase(importSvc, schoolQueryRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.HTTP.BodyLimitMB * 1024 * 1024,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Minute * 5,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Registro de Escuelas API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		pingCtx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		SchoolUC:    schoolUC,
		CatalogUC:   catalogUC,
		ReportUC:    reportUC,
		DocumentUC:  documentUC,
		DataUC:      dataUC,
		CSVDefaults: csvio.OptionsFromConfig(cfg.Import),
		Validator:   val,
		Logger:      log,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
