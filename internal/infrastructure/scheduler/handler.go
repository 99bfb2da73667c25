package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/registro-escuelas/internal/application/importer"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/csvio"
	"github.com/jhoicas/registro-escuelas/pkg/logger"
)

// Importer ejecuta una sesión de importación (importer.Service).
type Importer interface {
	Import(ctx context.Context, source string, open importer.SourceFunc) (*importer.Summary, error)
}

// SourceOpener abre el archivo de un origen (storage.Opener).
type SourceOpener interface {
	Open(ctx context.Context, source string) (io.ReadCloser, error)
}

// ImportHandler procesa TaskImportCSV.
type ImportHandler struct {
	importer Importer
	opener   SourceOpener
	defaults csvio.Options
	log      *logger.Logger
}

// NewImportHandler construye el handler de la tarea de importación.
func NewImportHandler(imp Importer, opener SourceOpener, defaults csvio.Options, log *logger.Logger) *ImportHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ImportHandler{importer: imp, opener: opener, defaults: defaults, log: log.Component("scheduler")}
}

var _ asynq.Handler = (*ImportHandler)(nil)

// ProcessTask abre el origen y corre la sesión. Los errores de fila quedan en el
// resumen y no provocan reintento; un archivo ilegible tampoco, porque reintentar
// no lo arregla. Sólo se reintenta si falla la apertura del origen.
func (h *ImportHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseImportPayload(task)
	if err != nil {
		return fmt.Errorf("scheduler: payload inválido: %v: %w", err, asynq.SkipRetry)
	}
	if payload.Source == "" {
		return fmt.Errorf("scheduler: origen vacío: %w", asynq.SkipRetry)
	}

	rc, err := h.opener.Open(ctx, payload.Source)
	if err != nil {
		h.log.Warn().Err(err).Str("source", payload.Source).Msg("no se pudo abrir el origen")
		return err
	}
	defer rc.Close()

	opts := h.defaults
	if payload.Charset != "" {
		opts.Charset = payload.Charset
	}
	if payload.SkipRows != nil {
		opts.SkipRows = *payload.SkipRows
	}

	sum, err := h.importer.Import(ctx, importer.SourceName(importer.SourceScheduler, payload.Source), csvio.Opener(rc, opts))
	var sessionErr *importer.SessionError
	if errors.As(err, &sessionErr) {
		return fmt.Errorf("%w: %w", sessionErr, asynq.SkipRetry)
	}
	if err != nil {
		return err
	}
	h.log.Info().
		Str("session_id", sum.SessionID).
		Str("source", payload.Source).
		Str("outcome", string(sum.Outcome())).
		Msg("importación programada terminada")
	return nil
}
