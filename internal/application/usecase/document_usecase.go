package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/registro-escuelas/internal/application/dto"
	"github.com/jhoicas/registro-escuelas/internal/application/ports"
)

// DocumentUseCase descargas generadas: planillas, ficha PDF y KML.
type DocumentUseCase struct {
	schools *SchoolUseCase
	reports *ReportUseCase
	xlsx    ports.SpreadsheetRenderer
	pdf     ports.PDFRenderer
	kml     ports.MapRenderer
}

// NewDocumentUseCase construye el caso de uso.
func NewDocumentUseCase(schools *SchoolUseCase, reports *ReportUseCase, xlsx ports.SpreadsheetRenderer, pdf ports.PDFRenderer, kml ports.MapRenderer) *DocumentUseCase {
	return &DocumentUseCase{schools: schools, reports: reports, xlsx: xlsx, pdf: pdf, kml: kml}
}

// SchoolExcel planilla "Reporte de Escuela". Devuelve nil, nil si el CUE no existe.
func (uc *DocumentUseCase) SchoolExcel(ctx context.Context, cue string) (*dto.FileResponse, error) {
	rec, same, err := uc.schools.Record(ctx, cue)
	if err != nil || rec == nil {
		return nil, err
	}
	content, err := uc.xlsx.SchoolReport(rec, same)
	if err != nil {
		return nil, fmt.Errorf("generar excel de escuela %s: %w", rec.CUE, err)
	}
	return &dto.FileResponse{
		FileName:    "escuela_" + rec.CUE + ".xlsx",
		ContentType: dto.ContentTypeXLSX,
		Content:     content,
	}, nil
}

// SchoolPDF ficha de la escuela. Devuelve nil, nil si el CUE no existe.
func (uc *DocumentUseCase) SchoolPDF(ctx context.Context, cue string) (*dto.FileResponse, error) {
	rec, same, err := uc.schools.Record(ctx, cue)
	if err != nil || rec == nil {
		return nil, err
	}
	content, err := uc.pdf.SchoolSheet(rec, same)
	if err != nil {
		return nil, fmt.Errorf("generar pdf de escuela %s: %w", rec.CUE, err)
	}
	return &dto.FileResponse{
		FileName:    "escuela_" + rec.CUE + ".pdf",
		ContentType: dto.ContentTypePDF,
		Content:     content,
	}, nil
}

// SearchExcel resultados de la búsqueda avanzada, sin paginar.
func (uc *DocumentUseCase) SearchExcel(ctx context.Context, in dto.SchoolSearchRequest) (*dto.FileResponse, error) {
	list, err := uc.schools.SearchAll(ctx, in)
	if err != nil {
		return nil, err
	}
	content, err := uc.xlsx.SearchResults(list)
	if err != nil {
		return nil, fmt.Errorf("generar excel de resultados: %w", err)
	}
	return &dto.FileResponse{
		FileName:    "resultados_busqueda.xlsx",
		ContentType: dto.ContentTypeXLSX,
		Content:     content,
	}, nil
}

// CoverageExcel reporte general en dos hojas (internet y piso por categoría).
func (uc *DocumentUseCase) CoverageExcel(ctx context.Context, in dto.CoverageReportRequest) (*dto.FileResponse, error) {
	report, err := uc.reports.Coverage(ctx, in)
	if err != nil {
		return nil, err
	}
	content, err := uc.xlsx.CoverageReport(report)
	if err != nil {
		return nil, fmt.Errorf("generar excel de cobertura: %w", err)
	}
	return &dto.FileResponse{
		FileName:    CoverageFileName(report),
		ContentType: dto.ContentTypeXLSX,
		Content:     content,
	}, nil
}

// KML escuelas del mapa como documento KML. Los límites son opcionales.
func (uc *DocumentUseCase) KML(ctx context.Context, in dto.BoundsRequest) (*dto.FileResponse, error) {
	points, err := uc.schools.Points(ctx, in, false)
	if err != nil {
		return nil, err
	}
	content, err := uc.kml.Placemarks("Escuelas", points)
	if err != nil {
		return nil, fmt.Errorf("generar kml: %w", err)
	}
	return &dto.FileResponse{
		FileName:    "escuelas.kml",
		ContentType: dto.ContentTypeKML,
		Content:     content,
	}, nil
}
