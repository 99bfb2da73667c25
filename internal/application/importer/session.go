// Package importer reconcilia archivos de escuelas contra la base: normaliza cada fila,
// resuelve catálogos, hace upsert de la escuela y sincroniza sus registros dependientes.
//
// Cada fila se persiste en su propia transacción. Una fila fallida no deja escrituras
// y no interrumpe las siguientes; las filas ya confirmadas permanecen.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/registro-escuelas/internal/domain/normalize"
	"github.com/jhoicas/registro-escuelas/internal/domain/repository"
	"github.com/jhoicas/registro-escuelas/pkg/logger"
)

// SessionError fallo fuera del ciclo de filas (archivo ilegible, codificación inválida,
// encabezado incompleto). Aborta la sesión completa.
type SessionError struct {
	Source string
	Err    error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("importación %s: %v", e.Source, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// Service orquesta las sesiones de importación. Lo comparten la API, la CLI y el scheduler.
type Service struct {
	tx         RowTxRunner
	normalizer *normalize.Normalizer
	cache      CacheInvalidator
	metrics    Recorder
	log        *logger.Logger
	now        func() time.Time
}

// Option configura dependencias opcionales del servicio.
type Option func(*Service)

// WithCache invalida los reportes cacheados al terminar una sesión con cambios.
func WithCache(c CacheInvalidator) Option { return func(s *Service) { s.cache = c } }

// WithRecorder registra métricas de filas y sesiones.
func WithRecorder(r Recorder) Option { return func(s *Service) { s.metrics = r } }

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService construye el orquestador.
func NewService(tx RowTxRunner, normalizer *normalize.Normalizer, log *logger.Logger, opts ...Option) *Service {
	if normalizer == nil {
		normalizer = normalize.NewNormalizer(nil)
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		tx:         tx,
		normalizer: normalizer,
		log:        log.Component("importer"),
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Import abre la fuente y ejecuta la sesión. Un error al abrir es un *SessionError y no procesa filas.
func (s *Service) Import(ctx context.Context, source string, open SourceFunc) (*Summary, error) {
	src, err := open()
	if err != nil {
		s.log.Error().Err(err).Str("source", source).Msg("importación abortada")
		if s.metrics != nil {
			s.metrics.SessionFinished(source, string(OutcomeAborted), 0)
		}
		return nil, &SessionError{Source: source, Err: err}
	}
	return s.Run(ctx, source, src)
}

// Run procesa las filas de src en orden, de a una. Los errores de fila quedan en el Summary;
// solo un error de lectura de la fuente se devuelve como *SessionError. Si ctx se cancela entre
// filas, devuelve el resumen parcial con Interrupted=true junto con ctx.Err().
func (s *Service) Run(ctx context.Context, source string, src RowSource) (*Summary, error) {
	sum := &Summary{
		SessionID: uuid.New().String(),
		Source:    source,
		StartedAt: s.now(),
	}
	log := s.log.With().Str("session_id", sum.SessionID).Str("source", source).Logger()

	var runErr error
	for {
		if err := ctx.Err(); err != nil {
			sum.Interrupted = true
			runErr = err
			break
		}
		line, raw, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			runErr = &SessionError{Source: source, Err: err}
			break
		}
		sum.Total++

		row, warnings, rerr := s.normalizer.Normalize(line, raw)
		for _, w := range warnings {
			sum.Warnings = append(sum.Warnings, Issue{Line: w.Line, Field: w.Field, Message: w.Message})
		}
		if rerr != nil {
			sum.Skipped++
			sum.Errors = append(sum.Errors, Issue{Line: rerr.Line, Field: rerr.Field, Message: rerr.Reason})
			s.record(RowSkipped)
			log.Debug().Int("line", line).Str("field", rerr.Field).Msg(rerr.Reason)
			continue
		}

		created, err := s.processRow(ctx, row)
		if err != nil {
			sum.Failed++
			sum.Errors = append(sum.Errors, Issue{Line: line, Message: err.Error()})
			s.record(RowFailed)
			log.Debug().Err(err).Int("line", line).Str("cue", row.CUE).Msg("fila fallida")
			continue
		}
		if created {
			sum.Created++
			s.record(RowCreated)
		} else {
			sum.Updated++
			s.record(RowUpdated)
		}
	}
	sum.FinishedAt = s.now()

	if sum.Created+sum.Updated > 0 && s.cache != nil {
		if err := s.cache.InvalidateReports(ctx); err != nil {
			log.Warn().Err(err).Msg("no se pudo invalidar la caché de reportes")
		}
	}

	outcome := sum.Outcome()
	var sessionErr *SessionError
	if errors.As(runErr, &sessionErr) {
		outcome = OutcomeAborted
	}
	if s.metrics != nil {
		s.metrics.SessionFinished(source, string(outcome), sum.FinishedAt.Sub(sum.StartedAt))
	}

	log.Info().
		Int("total", sum.Total).
		Int("created", sum.Created).
		Int("updated", sum.Updated).
		Int("skipped", sum.Skipped).
		Int("failed", sum.Failed).
		Int("warnings", len(sum.Warnings)).
		Bool("interrupted", sum.Interrupted).
		Str("outcome", string(outcome)).
		Msg("importación finalizada")

	return sum, runErr
}

// processRow ejecuta resolución, upsert y reconciliación como una unidad atómica.
func (s *Service) processRow(ctx context.Context, row *normalize.Row) (created bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("error inesperado: %v", r)
		}
	}()

	now := s.now()
	err = s.tx.RunRow(ctx, func(
		catalogs repository.CatalogRepository,
		sites repository.SiteRepository,
		schools repository.SchoolRepository,
		conns repository.ConnectivityRepository,
		floors repository.FloorRepository,
	) error {
		refs, err := NewCatalogResolver(catalogs, sites, s.now).ResolveRow(ctx, row)
		if err != nil {
			return err
		}
		school, isNew, err := UpsertSchool(ctx, schools, row, refs, now)
		if err != nil {
			return err
		}
		if err := Reconcile(ctx, conns, floors, school, row, refs, now); err != nil {
			return err
		}
		created = isNew
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (s *Service) record(result string) {
	if s.metrics != nil {
		s.metrics.RowProcessed(result)
	}
}
