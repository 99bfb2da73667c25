package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/registro-escuelas/internal/application/dto"
	"github.com/jhoicas/registro-escuelas/internal/application/usecase"
	"github.com/jhoicas/registro-escuelas/pkg/logger"
	"github.com/jhoicas/registro-escuelas/pkg/validator"
)

// SchoolHandler consultas de escuelas, mapa y documentos por escuela (público).
type SchoolHandler struct {
	uc   *usecase.SchoolUseCase
	docs *usecase.DocumentUseCase
	val  *validator.Validator
	log  *logger.Logger
}

// NewSchoolHandler construye el handler.
func NewSchoolHandler(uc *usecase.SchoolUseCase, docs *usecase.DocumentUseCase, val *validator.Validator, log *logger.Logger) *SchoolHandler {
	return &SchoolHandler{uc: uc, docs: docs, val: val, log: log}
}

// parseSearch lee y valida los filtros de la búsqueda avanzada.
func (h *SchoolHandler) parseSearch(c *fiber.Ctx) (dto.SchoolSearchRequest, error) {
	var in dto.SchoolSearchRequest
	if err := c.QueryParser(&in); err != nil {
		return in, err
	}
	in.HasInternet = strings.ToLower(strings.TrimSpace(in.HasInternet))
	in.HasFloor = strings.ToLower(strings.TrimSpace(in.HasFloor))
	in.DefaultPage()
	return in, h.val.Struct(in)
}

// parseBounds lee los filtros del mapa. Un límite no numérico responde INVALID_BOUNDS;
// ok=false indica que la respuesta de error ya se escribió.
func (h *SchoolHandler) parseBounds(c *fiber.Ctx) (in dto.BoundsRequest, ok bool, err error) {
	if err := c.QueryParser(&in); err != nil {
		return in, false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BOUNDS", Message: "los límites deben ser números"})
	}
	if err := h.val.Struct(in); err != nil {
		return in, false, validationError(c, err)
	}
	return in, true, nil
}

// Search godoc
// @Summary      Búsqueda avanzada de escuelas
// @Tags         escuelas
// @Produce      json
// @Param        nombre          query  string  false  "Subcadena del nombre"
// @Param        cue             query  string  false  "Subcadena del CUE"
// @Param        region          query  string  false  "ID de región"
// @Param        tiene_internet  query  string  false  "si | no"
// @Param        limit           query  int     false  "Límite"  default(20)
// @Param        offset          query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.SchoolListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/escuelas [get]
func (h *SchoolHandler) Search(c *fiber.Ctx) error {
	in, err := h.parseSearch(c)
	if err != nil {
		return validationError(c, err)
	}
	out, err := h.uc.Search(c.Context(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Detail godoc
// @Summary      Detalle de una escuela
// @Tags         escuelas
// @Produce      json
// @Param        cue  path  string  true  "CUE"
// @Success      200  {object}  dto.SchoolDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/escuelas/{cue} [get]
func (h *SchoolHandler) Detail(c *fiber.Ctx) error {
	out, err := h.uc.Detail(c.Context(), c.Params("cue"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	if out == nil {
		return notFound(c, "escuela no encontrada")
	}
	return c.JSON(out)
}

// Bounds godoc
// @Summary      Escuelas dentro de un rectángulo del mapa
// @Tags         escuelas
// @Produce      json
// @Param        minLat  query  number  true  "Latitud mínima"
// @Param        maxLat  query  number  true  "Latitud máxima"
// @Param        minLng  query  number  true  "Longitud mínima"
// @Param        maxLng  query  number  true  "Longitud máxima"
// @Success      200  {array}   dto.MapPointResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/escuelas/bounds [get]
func (h *SchoolHandler) Bounds(c *fiber.Ctx) error {
	in, ok, err := h.parseBounds(c)
	if !ok {
		return err
	}
	out, err := h.uc.InBounds(c.Context(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Connected godoc
// @Summary      Escuelas con internet y coordenadas
// @Tags         escuelas
// @Produce      json
// @Success      200  {array}  dto.MapPointResponse
// @Router       /api/escuelas/con-internet [get]
func (h *SchoolHandler) Connected(c *fiber.Ctx) error {
	out, err := h.uc.ConnectedPoints(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// SearchExcel godoc
// @Summary      Resultados de la búsqueda en Excel
// @Tags         escuelas
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/escuelas/export/excel [get]
func (h *SchoolHandler) SearchExcel(c *fiber.Ctx) error {
	in, err := h.parseSearch(c)
	if err != nil {
		return validationError(c, err)
	}
	f, err := h.docs.SearchExcel(c.Context(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return sendFile(c, f)
}

// KML godoc
// @Summary      Escuelas en formato KML
// @Tags         escuelas
// @Produce      application/vnd.google-earth.kml+xml
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/escuelas/kml [get]
func (h *SchoolHandler) KML(c *fiber.Ctx) error {
	in, ok, err := h.parseBounds(c)
	if !ok {
		return err
	}
	f, err := h.docs.KML(c.Context(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return sendFile(c, f)
}

// SchoolExcel godoc
// @Summary      Reporte Excel de una escuela
// @Tags         escuelas
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        cue  path  string  true  "CUE"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/escuelas/{cue}/excel [get]
func (h *SchoolHandler) SchoolExcel(c *fiber.Ctx) error {
	f, err := h.docs.SchoolExcel(c.Context(), c.Params("cue"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	if f == nil {
		return notFound(c, "escuela no encontrada")
	}
	return sendFile(c, f)
}

// SchoolPDF godoc
// @Summary      Ficha PDF de una escuela
// @Tags         escuelas
// @Produce      application/pdf
// @Param        cue  path  string  true  "CUE"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/escuelas/{cue}/pdf [get]
func (h *SchoolHandler) SchoolPDF(c *fiber.Ctx) error {
	f, err := h.docs.SchoolPDF(c.Context(), c.Params("cue"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	if f == nil {
		return notFound(c, "escuela no encontrada")
	}
	return sendFile(c, f)
}
