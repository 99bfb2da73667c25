package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/jhoicas/registro-escuelas/internal/application/dto"
	"github.com/jhoicas/registro-escuelas/internal/application/ports"
	"github.com/jhoicas/registro-escuelas/internal/domain/entity"
	"github.com/jhoicas/registro-escuelas/internal/domain/repository"
	"github.com/jhoicas/registro-escuelas/pkg/logger"
)

// Claves de caché. Todas comparten el prefijo que borra InvalidateReports.
const (
	ReportKeyPrefix   = "reportes:"
	keyDashboard      = ReportKeyPrefix + "dashboard"
	keyInternet       = ReportKeyPrefix + "internet"
	keyFloor          = ReportKeyPrefix + "piso"
	keyCoverageFormat = ReportKeyPrefix + "cobertura:%s:%s"
)

// Estados de conectividad (name_key) que cuentan para cada programa.
var (
	pnceStateKeys = []string{"pnce"}
	pbaStateKeys  = []string{"pba", "pnce - pba"}
)

const defaultCoverageTitle = "Reportes Generales de Cobertura"

// ReportUseCase dashboard y reportes de cobertura, cacheados hasta la próxima importación.
type ReportUseCase struct {
	reports  repository.ReportRepository
	catalogs *CatalogUseCase
	cache    ports.ReportCache
	log      *logger.Logger
}

// NewReportUseCase construye el caso de uso. cache nil desactiva la caché.
func NewReportUseCase(reports repository.ReportRepository, catalogs *CatalogUseCase, cache ports.ReportCache, log *logger.Logger) *ReportUseCase {
	if cache == nil {
		cache = ports.NoCache{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ReportUseCase{reports: reports, catalogs: catalogs, cache: cache, log: log.Component("reports")}
}

// Dashboard totales, porcentaje de conectividad, conectadas por programa y por categoría.
func (uc *ReportUseCase) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	return cached(ctx, uc, keyDashboard, func() (*dto.DashboardResponse, error) {
		t, err := uc.reports.Totals(ctx, repository.ReportFilter{})
		if err != nil {
			return nil, err
		}
		pnce, err := uc.reports.ConnectedByStateKeys(ctx, pnceStateKeys)
		if err != nil {
			return nil, err
		}
		pba, err := uc.reports.ConnectedByStateKeys(ctx, pbaStateKeys)
		if err != nil {
			return nil, err
		}
		byCategory, err := uc.reports.ConnectedByCategory(ctx)
		if err != nil {
			return nil, err
		}
		cats := make([]dto.CategoryConnectedResponse, 0, len(byCategory))
		for _, c := range byCategory {
			cats = append(cats, dto.CategoryConnectedResponse{Category: c.Category, Connected: c.Connected})
		}
		return &dto.DashboardResponse{
			TotalSchools:        t.Total,
			WithInternet:        t.WithInternet,
			WithoutInternet:     t.Total - t.WithInternet,
			WithFloor:           t.WithFloor,
			WithoutFloor:        t.Total - t.WithFloor,
			ConnectivityPercent: fmt.Sprintf("%.2f", percent(t.WithInternet, t.Total)),
			ConnectedPNCE:       pnce,
			ConnectedPBA:        pba,
			ConnectedByCategory: cats,
		}, nil
	})
}

// Internet reporte de conectividad a internet.
func (uc *ReportUseCase) Internet(ctx context.Context) (*dto.CoverageResponse, error) {
	return cached(ctx, uc, keyInternet, func() (*dto.CoverageResponse, error) {
		t, err := uc.reports.Totals(ctx, repository.ReportFilter{})
		if err != nil {
			return nil, err
		}
		return coverage("Reporte de Conectividad a Internet", t.Total, t.WithInternet), nil
	})
}

// Floor reporte de piso tecnológico.
func (uc *ReportUseCase) Floor(ctx context.Context) (*dto.CoverageResponse, error) {
	return cached(ctx, uc, keyFloor, func() (*dto.CoverageResponse, error) {
		t, err := uc.reports.Totals(ctx, repository.ReportFilter{})
		if err != nil {
			return nil, err
		}
		return coverage("Reporte de Piso Tecnológico", t.Total, t.WithFloor), nil
	})
}

// Coverage reporte general por categoría, filtrado por región y/o distrito.
// Un id de región o distrito que no existe deja el título por defecto.
func (uc *ReportUseCase) Coverage(ctx context.Context, in dto.CoverageReportRequest) (*dto.CoverageReportResponse, error) {
	if err := checkIDs(in.RegionID, in.DistrictID); err != nil {
		return nil, err
	}
	key := fmt.Sprintf(keyCoverageFormat, in.RegionID, in.DistrictID)
	return cached(ctx, uc, key, func() (*dto.CoverageReportResponse, error) {
		title, err := uc.coverageTitle(ctx, in)
		if err != nil {
			return nil, err
		}
		f := repository.ReportFilter{RegionID: in.RegionID, DistrictID: in.DistrictID}
		t, err := uc.reports.Totals(ctx, f)
		if err != nil {
			return nil, err
		}
		rows, err := uc.reports.CoverageByCategory(ctx, f)
		if err != nil {
			return nil, err
		}
		out := &dto.CoverageReportResponse{
			Title:            title,
			TotalSchools:     t.Total,
			WithInternet:     t.WithInternet,
			WithFloor:        t.WithFloor,
			InternetCoverage: make([]dto.CategoryCoverageResponse, 0, len(rows)),
			FloorCoverage:    make([]dto.CategoryCoverageResponse, 0, len(rows)),
		}
		for _, r := range rows {
			if r.Total == 0 {
				continue
			}
			out.InternetCoverage = append(out.InternetCoverage, categoryCoverage(r.Category, r.Total, r.WithInternet))
			out.FloorCoverage = append(out.FloorCoverage, categoryCoverage(r.Category, r.Total, r.WithFloor))
		}
		return out, nil
	})
}

// CoverageFileName nombre del xlsx del reporte general según el filtro aplicado.
func CoverageFileName(report *dto.CoverageReportResponse) string {
	name := "Reporte_Cobertura_General"
	switch {
	case strings.HasPrefix(report.Title, "Reporte por Distrito: "):
		name = "Reporte_Distrito_" + strings.TrimPrefix(report.Title, "Reporte por Distrito: ")
	case strings.HasPrefix(report.Title, "Reporte por Región: "):
		name = "Reporte_Region_" + strings.TrimPrefix(report.Title, "Reporte por Región: ")
	}
	return strings.ReplaceAll(name, " ", "_") + ".xlsx"
}

// El distrito tiene prioridad sobre la región en el título.
func (uc *ReportUseCase) coverageTitle(ctx context.Context, in dto.CoverageReportRequest) (string, error) {
	title := defaultCoverageTitle
	region, err := uc.catalogs.EntryName(ctx, entity.KindRegion, in.RegionID)
	if err != nil {
		return "", err
	}
	if region != "" {
		title = "Reporte por Región: " + region
	}
	district, err := uc.catalogs.EntryName(ctx, entity.KindDistrict, in.DistrictID)
	if err != nil {
		return "", err
	}
	if district != "" {
		title = "Reporte por Distrito: " + district
	}
	return title, nil
}

// cached devuelve el valor de la caché o lo calcula y lo guarda. Un fallo de la caché
// nunca impide responder: se registra y se calcula contra la base.
func cached[T any](ctx context.Context, uc *ReportUseCase, key string, load func() (*T, error)) (*T, error) {
	var hit T
	found, err := uc.cache.Get(ctx, key, &hit)
	if err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("lectura de caché fallida")
	}
	if found {
		return &hit, nil
	}
	v, err := load()
	if err != nil {
		return nil, err
	}
	if err := uc.cache.Set(ctx, key, v); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("escritura de caché fallida")
	}
	return v, nil
}

func coverage(title string, total, with int) *dto.CoverageResponse {
	return &dto.CoverageResponse{
		Title:        title,
		Total:        total,
		With:         with,
		Without:      total - with,
		CoverageRate: round1(percent(with, total)),
	}
}

func categoryCoverage(name string, total, covered int) dto.CategoryCoverageResponse {
	return dto.CategoryCoverageResponse{
		Category:     name,
		Total:        total,
		Covered:      covered,
		CoverageRate: round1(percent(covered, total)),
	}
}

func percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
