package http

import (
	"bytes"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/registro-escuelas/internal/application/dto"
	"github.com/jhoicas/registro-escuelas/internal/application/importer"
	"github.com/jhoicas/registro-escuelas/internal/application/usecase"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/csvio"
	"github.com/jhoicas/registro-escuelas/pkg/logger"
	"github.com/jhoicas/registro-escuelas/pkg/validator"
)

// DataHandler carga masiva, exportación y plantilla CSV.
type DataHandler struct {
	uc       *usecase.DataUseCase
	defaults csvio.Options
	val      *validator.Validator
	log      *logger.Logger
	now      func() time.Time
}

// NewDataHandler construye el handler. defaults son las opciones IMPORT_* del lector.
func NewDataHandler(uc *usecase.DataUseCase, defaults csvio.Options, val *validator.Validator, log *logger.Logger) *DataHandler {
	return &DataHandler{uc: uc, defaults: defaults, val: val, log: log, now: time.Now}
}

// importStatus 200 éxito, 207 parcial, 422 ninguna fila aplicada.
func importStatus(outcome string) int {
	switch importer.Outcome(outcome) {
	case importer.OutcomeSuccess:
		return fiber.StatusOK
	case importer.OutcomePartial:
		return fiber.StatusMultiStatus
	default:
		return fiber.StatusUnprocessableEntity
	}
}

// Import godoc
// @Summary      Carga masiva de escuelas desde CSV
// @Tags         datos
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        csv_file   formData  file    true   "Archivo CSV"
// @Param        charset    formData  string  false  "utf-8 | latin1 | auto"
// @Param        skip_rows  formData  int     false  "Filas a descartar después del encabezado"
// @Success      200  {object}  dto.ImportResponse
// @Success      207  {object}  dto.ImportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ImportResponse
// @Router       /api/datos/importar [post]
func (h *DataHandler) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("csv_file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "csv_file es requerido"})
	}
	var in dto.ImportRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "formulario inválido"})
	}
	if err := h.val.Struct(in); err != nil {
		return validationError(c, err)
	}

	opts := h.defaults
	if in.Charset != "" {
		opts.Charset = in.Charset
	}
	if c.FormValue("skip_rows") != "" {
		opts.SkipRows = in.SkipRows
	}

	f, err := fh.Open()
	if err != nil {
		return writeError(c, h.log, err)
	}
	defer f.Close()

	source := importer.SourceName(importer.SourceHTTP, fh.Filename)
	out, err := h.uc.Import(c.Context(), source, csvio.Opener(f, opts))
	var sessionErr *importer.SessionError
	if errors.As(err, &sessionErr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "IMPORT_FAILED", Message: sessionErr.Err.Error()})
	}
	if out == nil {
		return writeError(c, h.log, err)
	}
	if err != nil {
		h.log.Warn().Err(err).Str("source", source).Msg("importación interrumpida")
	}
	return c.Status(importStatus(out.Outcome)).JSON(out)
}

// Export godoc
// @Summary      Exportación completa en CSV
// @Tags         datos
// @Security     Bearer
// @Produce      text/csv
// @Success      200
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/datos/exportar [get]
func (h *DataHandler) Export(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.uc.Export(c.Context(), csvio.NewWriter(&buf)); err != nil {
		return writeError(c, h.log, err)
	}
	return sendFile(c, &dto.FileResponse{
		FileName:    csvio.ExportFileName(h.now()),
		ContentType: dto.ContentTypeCSV,
		Content:     buf.Bytes(),
	})
}

// Template godoc
// @Summary      Plantilla CSV de carga masiva
// @Tags         datos
// @Produce      text/csv
// @Success      200
// @Router       /api/datos/plantilla [get]
func (h *DataHandler) Template(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := csvio.WriteTemplate(&buf); err != nil {
		return writeError(c, h.log, err)
	}
	return sendFile(c, &dto.FileResponse{
		FileName:    csvio.TemplateFileName,
		ContentType: dto.ContentTypeCSV,
		Content:     buf.Bytes(),
	})
}
