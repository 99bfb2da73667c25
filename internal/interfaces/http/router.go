package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/registro-escuelas/internal/application/usecase"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/csvio"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/metrics"
	"github.com/jhoicas/registro-escuelas/pkg/jwt"
	"github.com/jhoicas/registro-escuelas/pkg/logger"
	"github.com/jhoicas/registro-escuelas/pkg/validator"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SchoolUC    *usecase.SchoolUseCase
	CatalogUC   *usecase.CatalogUseCase
	ReportUC    *usecase.ReportUseCase
	DocumentUC  *usecase.DocumentUseCase
	DataUC      *usecase.DataUseCase
	CSVDefaults csvio.Options
	Validator   *validator.Validator
	Logger      *logger.Logger
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	val := deps.Validator
	if val == nil {
		val = validator.New()
	}

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api")

	// Escuelas (público). Las rutas fijas van antes de /:cue.
	schools := api.Group("/escuelas")
	schoolHandler := NewSchoolHandler(deps.SchoolUC, deps.DocumentUC, val, log)
	schools.Get("/", schoolHandler.Search)
	schools.Get("/bounds", schoolHandler.Bounds)
	schools.Get("/con-internet", schoolHandler.Connected)
	schools.Get("/kml", schoolHandler.KML)
	schools.Get("/export/excel", schoolHandler.SearchExcel)
	schools.Get("/:cue/excel", schoolHandler.SchoolExcel)
	schools.Get("/:cue/pdf", schoolHandler.SchoolPDF)
	schools.Get("/:cue", schoolHandler.Detail)

	// Catálogos y predios (público)
	catalogHandler := NewCatalogHandler(deps.CatalogUC, log)
	catalogs := api.Group("/catalogos")
	catalogs.Get("/", catalogHandler.Kinds)
	catalogs.Get("/distritos/por-region", catalogHandler.DistrictsByRegion)
	catalogs.Get("/:kind", catalogHandler.List)
	api.Get("/predios", catalogHandler.Sites)

	// Reportes (público)
	reports := api.Group("/reportes")
	reportHandler := NewReportHandler(deps.ReportUC, deps.DocumentUC, log)
	reports.Get("/dashboard", reportHandler.Dashboard)
	reports.Get("/internet", reportHandler.Internet)
	reports.Get("/piso", reportHandler.Floor)
	reports.Get("/cobertura", reportHandler.Coverage)
	reports.Get("/cobertura/excel", reportHandler.CoverageExcel)

	// Datos: la plantilla es pública; importar y exportar requieren Bearer Token.
	data := api.Group("/datos")
	dataHandler := NewDataHandler(deps.DataUC, deps.CSVDefaults, val, log)
	data.Get("/plantilla", dataHandler.Template)
	data.Get("/exportar", AuthMiddleware(deps.JWTSecret), dataHandler.Export)
	data.Post("/importar",
		AuthMiddleware(deps.JWTSecret),
		RequireRole(jwt.RoleAdmin, jwt.RoleOperador),
		dataHandler.Import,
	)
}
