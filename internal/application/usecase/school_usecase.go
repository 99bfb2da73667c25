package usecase

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/registro-escuelas/internal/application/dto"
	"github.com/jhoicas/registro-escuelas/internal/domain"
	"github.com/jhoicas/registro-escuelas/internal/domain/entity"
	"github.com/jhoicas/registro-escuelas/internal/domain/repository"
)

// SchoolUseCase consultas de escuelas: búsqueda, detalle y mapa.
type SchoolUseCase struct {
	repo repository.SchoolQueryRepository
}

// NewSchoolUseCase construye el caso de uso.
func NewSchoolUseCase(repo repository.SchoolQueryRepository) *SchoolUseCase {
	return &SchoolUseCase{repo: repo}
}

// Search búsqueda avanzada paginada, ordenada por nombre.
func (uc *SchoolUseCase) Search(ctx context.Context, in dto.SchoolSearchRequest) (*dto.SchoolListResponse, error) {
	in.DefaultPage()
	if err := checkSearchIDs(in); err != nil {
		return nil, err
	}
	list, total, err := uc.repo.Search(ctx, toSchoolFilter(in), in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	return &dto.SchoolListResponse{
		Items: toSummaryResponses(list),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

// SearchAll mismos filtros que Search, sin paginar (exportación a Excel).
func (uc *SchoolUseCase) SearchAll(ctx context.Context, in dto.SchoolSearchRequest) ([]entity.SchoolSummary, error) {
	if err := checkSearchIDs(in); err != nil {
		return nil, err
	}
	list, _, err := uc.repo.Search(ctx, toSchoolFilter(in), 0, 0)
	return list, err
}

// Record escuela aplanada y las otras escuelas de su predio. Devuelve nil si el CUE no existe.
func (uc *SchoolUseCase) Record(ctx context.Context, cue string) (*entity.SchoolRecord, []entity.SchoolSummary, error) {
	rec, err := uc.repo.GetRecord(ctx, strings.TrimSpace(cue))
	if err != nil || rec == nil {
		return nil, nil, err
	}
	// El predio 0 agrupa escuelas sin predio informado: no son vecinas entre sí.
	if rec.SiteNumber == 0 {
		return rec, []entity.SchoolSummary{}, nil
	}
	same, err := uc.repo.SameSite(ctx, rec.SiteID, rec.CUE)
	if err != nil {
		return nil, nil, err
	}
	return rec, same, nil
}

// Detail detalle de una escuela. Devuelve nil, nil si el CUE no existe.
func (uc *SchoolUseCase) Detail(ctx context.Context, cue string) (*dto.SchoolDetailResponse, error) {
	rec, same, err := uc.Record(ctx, cue)
	if err != nil || rec == nil {
		return nil, err
	}
	return toSchoolDetailResponse(rec, same), nil
}

// InBounds escuelas dentro del rectángulo. Los cuatro límites son obligatorios.
func (uc *SchoolUseCase) InBounds(ctx context.Context, in dto.BoundsRequest) ([]dto.MapPointResponse, error) {
	points, err := uc.Points(ctx, in, true)
	if err != nil {
		return nil, err
	}
	return toMapPointResponses(points), nil
}

// Points puntos del mapa; con requireBounds=false los límites son opcionales (todos o ninguno).
func (uc *SchoolUseCase) Points(ctx context.Context, in dto.BoundsRequest, requireBounds bool) ([]entity.MapPoint, error) {
	f, err := toBoundsFilter(in, requireBounds)
	if err != nil {
		return nil, err
	}
	return uc.repo.InBounds(ctx, f)
}

// ConnectedPoints escuelas con internet y coordenadas, con el nombre de su región.
func (uc *SchoolUseCase) ConnectedPoints(ctx context.Context) ([]dto.MapPointResponse, error) {
	points, err := uc.repo.ConnectedPoints(ctx)
	if err != nil {
		return nil, err
	}
	return toMapPointResponses(points), nil
}

func checkSearchIDs(in dto.SchoolSearchRequest) error {
	return checkIDs(in.RegionID, in.DistrictID, in.CityID, in.ScopeID, in.AuthorityID, in.ShiftID,
		in.CategoryID, in.EstablishmentTypeID, in.InternetProviderID, in.FloorProviderID,
		in.ConnectivityStateID, in.FloorPlanID)
}

func toSchoolFilter(in dto.SchoolSearchRequest) repository.SchoolFilter {
	return repository.SchoolFilter{
		CUE:                 strings.TrimSpace(in.CUE),
		Name:                strings.TrimSpace(in.Name),
		SiteNumber:          strings.TrimSpace(in.SiteNumber),
		RegionID:            in.RegionID,
		DistrictID:          in.DistrictID,
		CityID:              in.CityID,
		ScopeID:             in.ScopeID,
		AuthorityID:         in.AuthorityID,
		ShiftID:             in.ShiftID,
		CategoryID:          in.CategoryID,
		EstablishmentTypeID: in.EstablishmentTypeID,
		InternetProviderID:  in.InternetProviderID,
		FloorProviderID:     in.FloorProviderID,
		ConnectivityStateID: in.ConnectivityStateID,
		FloorPlanID:         in.FloorPlanID,
		HasInternet:         parseFlag(in.HasInternet, "si", "no"),
		HasFloor:            parseFlag(in.HasFloor, "si", "no"),
		ConnectedYear:       in.ConnectedYear,
		FloorYear:           in.FloorYear,
	}
}

// parseFlag traduce el valor de un filtro booleano; cualquier otro valor no filtra.
func parseFlag(v, yes, no string) *bool {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "sí" {
		v = "si"
	}
	switch v {
	case yes:
		b := true
		return &b
	case no:
		b := false
		return &b
	}
	return nil
}

func toBoundsFilter(in dto.BoundsRequest, requireBounds bool) (repository.BoundsFilter, error) {
	if err := checkIDs(in.RegionID, in.DistrictID, in.ConnectivityStateID); err != nil {
		return repository.BoundsFilter{}, err
	}
	f := repository.BoundsFilter{
		RegionID:            in.RegionID,
		DistrictID:          in.DistrictID,
		ConnectivityStateID: in.ConnectivityStateID,
		CUE:                 strings.TrimSpace(in.CUE),
		SiteNumber:          strings.TrimSpace(in.SiteNumber),
		HasInternet:         parseFlag(in.HasInternet, "1", "0"),
		HasFloor:            parseFlag(in.HasFloor, "1", "0"),
	}
	if !requireBounds && !in.HasBounds() {
		return f, nil
	}
	if err := validateBounds(in); err != nil {
		return f, err
	}
	f.MinLat, f.MaxLat, f.MinLng, f.MaxLng = in.MinLat, in.MaxLat, in.MinLng, in.MaxLng
	return f, nil
}

func validateBounds(in dto.BoundsRequest) error {
	for _, v := range []*float64{in.MinLat, in.MaxLat, in.MinLng, in.MaxLng} {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			return domain.ErrInvalidBounds
		}
	}
	switch {
	case *in.MinLat > *in.MaxLat, *in.MinLng > *in.MaxLng:
		return domain.ErrInvalidBounds
	case *in.MinLat < -90, *in.MaxLat > 90:
		return domain.ErrInvalidBounds
	case *in.MinLng < -180, *in.MaxLng > 180:
		return domain.ErrInvalidBounds
	}
	return nil
}

func toSummaryResponses(list []entity.SchoolSummary) []dto.SchoolSummaryResponse {
	out := make([]dto.SchoolSummaryResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.SchoolSummaryResponse{
			CUE:                s.CUE,
			Name:               s.Name,
			Region:             s.Region,
			District:           s.District,
			Category:           s.Category,
			SiteNumber:         s.SiteNumber,
			HasInternet:        s.HasInternet,
			HasTechnologyFloor: s.HasFloor,
		})
	}
	return out
}

func toSchoolDetailResponse(rec *entity.SchoolRecord, same []entity.SchoolSummary) *dto.SchoolDetailResponse {
	out := &dto.SchoolDetailResponse{
		CUE:                rec.CUE,
		ProvincialKey:      rec.ProvincialKey,
		Name:               rec.Name,
		Address:            rec.Address,
		Enrollment:         rec.Enrollment,
		Latitude:           toFloat(rec.Latitude),
		Longitude:          toFloat(rec.Longitude),
		Region:             rec.Region,
		District:           rec.District,
		City:               rec.City,
		Scope:              rec.Scope,
		Authority:          rec.Authority,
		Shift:              rec.Shift,
		Category:           rec.Category,
		EstablishmentType:  rec.EstablishmentType,
		SiteNumber:         rec.SiteNumber,
		HasInternet:        rec.HasInternet,
		HasTechnologyFloor: rec.HasFloor,
		SameSite:           toSummaryResponses(same),
	}
	if c := rec.Connectivity; c != nil {
		out.Connectivity = &dto.ConnectivityResponse{
			Provider:      c.Provider,
			State:         c.State,
			SpeedMbps:     c.SpeedMbps,
			InstallDate:   toDate(c.InstallDate),
			UpgradeDate:   toDate(c.UpgradeDate),
			RequestMethod: c.RequestMethod,
			Notes:         c.Notes,
		}
	}
	if f := rec.Floor; f != nil {
		out.Floor = &dto.FloorResponse{
			Plan:           f.Plan,
			Provider:       f.Provider,
			InstalledType:  f.InstalledType,
			CompletionDate: toDate(f.CompletionDate),
			UpgradeType:    f.UpgradeType,
			UpgradeDate:    toDate(f.UpgradeDate),
			Notes:          f.Notes,
		}
	}
	return out
}

func toMapPointResponses(points []entity.MapPoint) []dto.MapPointResponse {
	out := make([]dto.MapPointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, dto.MapPointResponse{
			CUE:                p.CUE,
			Name:               p.Name,
			Latitude:           toFloat(p.Latitude),
			Longitude:          toFloat(p.Longitude),
			HasInternet:        p.HasInternet,
			HasTechnologyFloor: p.HasFloor,
			RegionID:           p.RegionID,
			DistrictID:         p.DistrictID,
			RegionName:         p.RegionName,
		})
	}
	return out
}

func toFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

func toDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
