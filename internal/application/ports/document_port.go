package ports

import (
	"github.com/jhoicas/registro-escuelas/internal/application/dto"
	"github.com/jhoicas/registro-escuelas/internal/domain/entity"
)

// SpreadsheetRenderer genera planillas xlsx. La implementación concreta (excelize) vive
// en infraestructura; la aplicación solo conoce este contrato.
type SpreadsheetRenderer interface {
	// SchoolReport hoja "Reporte de Escuela" con todos los campos y las otras escuelas del predio.
	SchoolReport(rec *entity.SchoolRecord, sameSite []entity.SchoolSummary) ([]byte, error)
	// SearchResults hoja "Resultados" con una fila por escuela.
	SearchResults(items []entity.SchoolSummary) ([]byte, error)
	// CoverageReport libro con la cobertura de internet y de piso por categoría.
	CoverageReport(report *dto.CoverageReportResponse) ([]byte, error)
}

// PDFRenderer genera la ficha de una escuela.
type PDFRenderer interface {
	SchoolSheet(rec *entity.SchoolRecord, sameSite []entity.SchoolSummary) ([]byte, error)
}

// MapRenderer exporta puntos de escuelas a un formato de mapa (KML).
type MapRenderer interface {
	Placemarks(title string, points []entity.MapPoint) ([]byte, error)
}

// RecordWriter destino de la exportación completa, una escuela por vez.
type RecordWriter interface {
	Write(rec entity.SchoolRecord) error
	Flush() error
}
