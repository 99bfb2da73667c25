package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/registro-escuelas/internal/application/dto"
	"github.com/jhoicas/registro-escuelas/internal/application/usecase"
	"github.com/jhoicas/registro-escuelas/pkg/logger"
)

// ReportHandler dashboard y reportes de cobertura (público).
type ReportHandler struct {
	uc   *usecase.ReportUseCase
	docs *usecase.DocumentUseCase
	log  *logger.Logger
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *usecase.ReportUseCase, docs *usecase.DocumentUseCase, log *logger.Logger) *ReportHandler {
	return &ReportHandler{uc: uc, docs: docs, log: log}
}

// Dashboard godoc
// @Summary      Totales y conectividad para el dashboard
// @Tags         reportes
// @Produce      json
// @Success      200  {object}  dto.DashboardResponse
// @Router       /api/reportes/dashboard [get]
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	out, err := h.uc.Dashboard(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Internet godoc
// @Summary      Cobertura de internet
// @Tags         reportes
// @Produce      json
// @Success      200  {object}  dto.CoverageResponse
// @Router       /api/reportes/internet [get]
func (h *ReportHandler) Internet(c *fiber.Ctx) error {
	out, err := h.uc.Internet(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Floor godoc
// @Summary      Cobertura de piso tecnológico
// @Tags         reportes
// @Produce      json
// @Success      200  {object}  dto.CoverageResponse
// @Router       /api/reportes/piso [get]
func (h *ReportHandler) Floor(c *fiber.Ctx) error {
	out, err := h.uc.Floor(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Coverage godoc
// @Summary      Cobertura por categoría, opcionalmente por región o distrito
// @Tags         reportes
// @Produce      json
// @Param        region    query  string  false  "ID de región"
// @Param        distrito  query  string  false  "ID de distrito"
// @Success      200  {object}  dto.CoverageReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reportes/cobertura [get]
func (h *ReportHandler) Coverage(c *fiber.Ctx) error {
	var in dto.CoverageReportRequest
	if err := c.QueryParser(&in); err != nil {
		return validationError(c, err)
	}
	out, err := h.uc.Coverage(c.Context(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// CoverageExcel godoc
// @Summary      Reporte de cobertura en Excel
// @Tags         reportes
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        region    query  string  false  "ID de región"
// @Param        distrito  query  string  false  "ID de distrito"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reportes/cobertura/excel [get]
func (h *ReportHandler) CoverageExcel(c *fiber.Ctx) error {
	var in dto.CoverageReportRequest
	if err := c.QueryParser(&in); err != nil {
		return validationError(c, err)
	}
	f, err := h.docs.CoverageExcel(c.Context(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return sendFile(c, f)
}
