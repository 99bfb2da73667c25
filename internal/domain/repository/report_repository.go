package repository

import (
	"context"

	"github.com/jhoicas/registro-escuelas/internal/domain/entity"
)

// ReportFilter acota los reportes de cobertura por región y/o distrito.
type ReportFilter struct {
	RegionID   string
	DistrictID string
}

// Totals conteos globales de escuelas.
type Totals struct {
	Total        int
	WithInternet int
	WithFloor    int
}

// CategoryCoverage conteos por categoría para los reportes de cobertura.
type CategoryCoverage struct {
	Category     string
	Total        int
	WithInternet int
	WithFloor    int
}

// CategoryCount escuelas conectadas por categoría (gráfico del dashboard).
type CategoryCount struct {
	Category  string
	Connected int
}

// ReportRepository consultas agregadas de solo lectura.
type ReportRepository interface {
	Totals(ctx context.Context, f ReportFilter) (Totals, error)
	// ConnectedByStateKeys cuenta escuelas con internet cuyo estado de conectividad tiene alguno de los NameKey dados.
	ConnectedByStateKeys(ctx context.Context, keys []string) (int, error)
	ConnectedByCategory(ctx context.Context) ([]CategoryCount, error)
	// CoverageByCategory omite categorías sin escuelas y ordena por nombre.
	CoverageByCategory(ctx context.Context, f ReportFilter) ([]CategoryCoverage, error)
	// DistrictsByRegions distritos usados por escuelas de las regiones dadas.
	DistrictsByRegions(ctx context.Context, regionIDs []string) ([]*entity.CatalogEntry, error)
}
