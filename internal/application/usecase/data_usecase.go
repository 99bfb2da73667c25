package usecase

import (
	"context"

	"github.com/jhoicas/registro-escuelas/internal/application/dto"
	"github.com/jhoicas/registro-escuelas/internal/application/importer"
	"github.com/jhoicas/registro-escuelas/internal/application/ports"
	"github.com/jhoicas/registro-escuelas/internal/domain/entity"
	"github.com/jhoicas/registro-escuelas/internal/domain/repository"
)

// DataUseCase carga masiva y exportación completa.
type DataUseCase struct {
	importer *importer.Service
	repo     repository.SchoolQueryRepository
}

// NewDataUseCase construye el caso de uso.
func NewDataUseCase(svc *importer.Service, repo repository.SchoolQueryRepository) *DataUseCase {
	return &DataUseCase{importer: svc, repo: repo}
}

// Import ejecuta una sesión. Un fallo de sesión se devuelve como *importer.SessionError;
// si llegó a procesar filas, el resumen parcial también se devuelve.
func (uc *DataUseCase) Import(ctx context.Context, source string, open importer.SourceFunc) (*dto.ImportResponse, error) {
	summary, err := uc.importer.Import(ctx, source, open)
	var out *dto.ImportResponse
	if summary != nil {
		out = ToImportResponse(summary)
	}
	return out, err
}

// Export escribe todas las escuelas ordenadas por CUE.
func (uc *DataUseCase) Export(ctx context.Context, w ports.RecordWriter) error {
	if err := uc.repo.ForEachRecord(ctx, func(rec entity.SchoolRecord) error {
		return w.Write(rec)
	}); err != nil {
		return err
	}
	return w.Flush()
}

// ToImportResponse convierte el resumen del importador a la respuesta HTTP/CLI.
func ToImportResponse(s *importer.Summary) *dto.ImportResponse {
	return &dto.ImportResponse{
		SessionID:   s.SessionID,
		Source:      s.Source,
		Outcome:     string(s.Outcome()),
		StartedAt:   s.StartedAt,
		FinishedAt:  s.FinishedAt,
		Total:       s.Total,
		Created:     s.Created,
		Updated:     s.Updated,
		Skipped:     s.Skipped,
		Failed:      s.Failed,
		Interrupted: s.Interrupted,
		Errors:      toIssueResponses(s.Errors),
		Warnings:    toIssueResponses(s.Warnings),
	}
}

func toIssueResponses(issues []importer.Issue) []dto.ImportIssueResponse {
	out := make([]dto.ImportIssueResponse, 0, len(issues))
	for _, i := range issues {
		out = append(out, dto.ImportIssueResponse{Line: i.Line, Field: i.Field, Message: i.Message})
	}
	return out
}
