package repository

import (
	"context"

	"github.com/jhoicas/registro-escuelas/internal/domain/entity"
)

// SchoolRepository puerto de escritura de escuelas, usado dentro de la transacción de cada fila.
type SchoolRepository interface {
	GetByCUE(ctx context.Context, cue string) (*entity.School, error)
	Create(ctx context.Context, school *entity.School) error
	Update(ctx context.Context, school *entity.School) error
}

// ConnectivityRepository puerto del servicio de conectividad (uno por escuela).
type ConnectivityRepository interface {
	// Upsert reemplaza el servicio existente de la escuela o lo crea.
	Upsert(ctx context.Context, svc *entity.ConnectivityService) error
	DeleteBySchool(ctx context.Context, schoolID string) error
}

// FloorRepository puerto del piso tecnológico (uno por escuela).
type FloorRepository interface {
	Upsert(ctx context.Context, floor *entity.FloorInstallation) error
	DeleteBySchool(ctx context.Context, schoolID string) error
}

// SchoolFilter filtros de la búsqueda avanzada. Los campos vacíos no filtran.
type SchoolFilter struct {
	CUE        string // subcadena, sin distinguir mayúsculas
	Name       string // subcadena, sin distinguir mayúsculas
	SiteNumber string // subcadena del número de predio

	RegionID            string
	DistrictID          string
	CityID              string
	ScopeID             string
	AuthorityID         string
	ShiftID             string
	CategoryID          string
	EstablishmentTypeID string

	InternetProviderID  string
	FloorProviderID     string
	ConnectivityStateID string
	FloorPlanID         string

	HasInternet *bool
	HasFloor    *bool

	ConnectedYear int // año de instalación o de mejora del servicio
	FloorYear     int // año de finalización del piso
}

// BoundsFilter filtros del mapa. Sin límites (nil) se devuelven todas las escuelas con coordenadas.
type BoundsFilter struct {
	MinLat, MaxLat *float64
	MinLng, MaxLng *float64

	RegionID            string
	DistrictID          string
	ConnectivityStateID string
	CUE                 string
	SiteNumber          string
	HasInternet         *bool
	HasFloor            *bool
}

// SchoolQueryRepository consultas de lectura sobre escuelas (read-only).
type SchoolQueryRepository interface {
	Search(ctx context.Context, f SchoolFilter, limit, offset int) ([]entity.SchoolSummary, int, error)
	// GetRecord devuelve nil, nil si el CUE no existe.
	GetRecord(ctx context.Context, cue string) (*entity.SchoolRecord, error)
	SameSite(ctx context.Context, siteID, excludeCUE string) ([]entity.SchoolSummary, error)
	InBounds(ctx context.Context, f BoundsFilter) ([]entity.MapPoint, error)
	ConnectedPoints(ctx context.Context) ([]entity.MapPoint, error)
	// ForEachRecord recorre todas las escuelas ordenadas por CUE.
	ForEachRecord(ctx context.Context, fn func(entity.SchoolRecord) error) error
}
