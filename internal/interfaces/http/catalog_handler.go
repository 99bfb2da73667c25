package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/registro-escuelas/internal/application/usecase"
	"github.com/jhoicas/registro-escuelas/pkg/logger"
)

// CatalogHandler catálogos y predios para los selects de la UI (público).
type CatalogHandler struct {
	uc  *usecase.CatalogUseCase
	log *logger.Logger
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *usecase.CatalogUseCase, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{uc: uc, log: log}
}

// Kinds godoc
// @Summary      Catálogos disponibles
// @Tags         catalogos
// @Produce      json
// @Success      200  {array}  dto.CatalogKindResponse
// @Router       /api/catalogos [get]
func (h *CatalogHandler) Kinds(c *fiber.Ctx) error {
	return c.JSON(h.uc.Kinds())
}

// List godoc
// @Summary      Entradas de un catálogo
// @Tags         catalogos
// @Produce      json
// @Param        kind  path   string  true   "Slug del catálogo (regiones, distritos, ...)"
// @Param        q     query  string  false  "Subcadena del nombre"
// @Success      200  {object}  dto.CatalogListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/catalogos/{kind} [get]
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context(), c.Params("kind"), c.Query("q"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// DistrictsByRegion godoc
// @Summary      Distritos con escuelas en las regiones dadas
// @Tags         catalogos
// @Produce      json
// @Param        region_ids  query  string  true  "IDs de región separados por coma"
// @Success      200  {array}   dto.CatalogEntryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/catalogos/distritos/por-region [get]
func (h *CatalogHandler) DistrictsByRegion(c *fiber.Ctx) error {
	out, err := h.uc.DistrictsByRegions(c.Context(), strings.Split(c.Query("region_ids"), ","))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Sites godoc
// @Summary      Predios
// @Tags         catalogos
// @Produce      json
// @Success      200  {array}  dto.SiteResponse
// @Router       /api/predios [get]
func (h *CatalogHandler) Sites(c *fiber.Ctx) error {
	out, err := h.uc.Sites(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
