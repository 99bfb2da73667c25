package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/registro-escuelas/internal/domain"
	"github.com/jhoicas/registro-escuelas/internal/domain/entity"
	"github.com/jhoicas/registro-escuelas/internal/domain/repository"
)

var _ repository.SchoolRepository = (*SchoolRepo)(nil)

// SchoolRepo implementación del puerto SchoolRepository sobre PostgreSQL (usable con pool o tx).
type SchoolRepo struct {
	q Querier
}

// NewSchoolRepository construye el adaptador de persistencia para escuelas. Pasar pool o tx (Querier).
func NewSchoolRepository(q Querier) *SchoolRepo {
	return &SchoolRepo{q: q}
}

const schoolColumns = `id, cue, provincial_key, name, address, enrollment, has_internet, has_floor,
	latitude, longitude, site_id, region_id, district_id, city_id, scope_id, authority_id,
	shift_id, category_id, establishment_type_id, created_at, updated_at`

// GetByCUE obtiene una escuela por CUE. Devuelve nil, nil si no existe.
func (r *SchoolRepo) GetByCUE(ctx context.Context, cue string) (*entity.School, error) {
	var s entity.School
	err := r.q.QueryRow(ctx, `SELECT `+schoolColumns+` FROM schools WHERE cue = $1`, cue).Scan(
		&s.ID, &s.CUE, &s.ProvincialKey, &s.Name, &s.Address, &s.Enrollment, &s.HasInternet, &s.HasFloor,
		&s.Latitude, &s.Longitude, &s.SiteID, &s.RegionID, &s.DistrictID, &s.CityID, &s.ScopeID, &s.AuthorityID,
		&s.ShiftID, &s.CategoryID, &s.EstablishmentTypeID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get school: %w", err)
	}
	return &s, nil
}

// Create persiste una nueva escuela.
func (r *SchoolRepo) Create(ctx context.Context, s *entity.School) error {
	query := `INSERT INTO schools (` + schoolColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.CUE, s.ProvincialKey, s.Name, s.Address, s.Enrollment, s.HasInternet, s.HasFloor,
		s.Latitude, s.Longitude, s.SiteID, s.RegionID, s.DistrictID, s.CityID, s.ScopeID, s.AuthorityID,
		s.ShiftID, s.CategoryID, s.EstablishmentTypeID, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert school: %w", err)
	}
	return nil
}

// Update reemplaza todos los campos de la escuela menos id, cue y created_at.
func (r *SchoolRepo) Update(ctx context.Context, s *entity.School) error {
	query := `
		UPDATE schools SET provincial_key = $2, name = $3, address = $4, enrollment = $5,
			has_internet = $6, has_floor = $7, latitude = $8, longitude = $9, site_id = $10,
			region_id = $11, district_id = $12, city_id = $13, scope_id = $14, authority_id = $15,
			shift_id = $16, category_id = $17, establishment_type_id = $18, updated_at = $19
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		s.ID, s.ProvincialKey, s.Name, s.Address, s.Enrollment,
		s.HasInternet, s.HasFloor, s.Latitude, s.Longitude, s.SiteID,
		s.RegionID, s.DistrictID, s.CityID, s.ScopeID, s.AuthorityID,
		s.ShiftID, s.CategoryID, s.EstablishmentTypeID, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update school: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ repository.ConnectivityRepository = (*ConnectivityRepo)(nil)

// ConnectivityRepo servicio de conectividad, uno por escuela (UNIQUE school_id).
type ConnectivityRepo struct {
	q Querier
}

// NewConnectivityRepository construye el adaptador del servicio de conectividad.
func NewConnectivityRepository(q Querier) *ConnectivityRepo {
	return &ConnectivityRepo{q: q}
}

// Upsert crea el servicio o reemplaza el existente conservando su id.
func (r *ConnectivityRepo) Upsert(ctx context.Context, svc *entity.ConnectivityService) error {
	query := `
		INSERT INTO connectivity_services
			(id, school_id, provider_id, state_id, speed_mbps, install_date, upgrade_date, request_method_id, notes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (school_id) DO UPDATE SET
			provider_id = EXCLUDED.provider_id,
			state_id = EXCLUDED.state_id,
			speed_mbps = EXCLUDED.speed_mbps,
			install_date = EXCLUDED.install_date,
			upgrade_date = EXCLUDED.upgrade_date,
			request_method_id = EXCLUDED.request_method_id,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		svc.ID, svc.SchoolID, svc.ProviderID, svc.StateID, svc.SpeedMbps,
		svc.InstallDate, svc.UpgradeDate, svc.RequestMethodID, svc.Notes, svc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert connectivity service: %w", err)
	}
	return nil
}

// DeleteBySchool elimina el servicio de la escuela; no falla si no había ninguno.
func (r *ConnectivityRepo) DeleteBySchool(ctx context.Context, schoolID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM connectivity_services WHERE school_id = $1`, schoolID); err != nil {
		return fmt.Errorf("delete connectivity service: %w", err)
	}
	return nil
}

var _ repository.FloorRepository = (*FloorRepo)(nil)

// FloorRepo piso tecnológico, uno por escuela (UNIQUE school_id).
type FloorRepo struct {
	q Querier
}

// NewFloorRepository construye el adaptador del piso tecnológico.
func NewFloorRepository(q Querier) *FloorRepo {
	return &FloorRepo{q: q}
}

// Upsert crea el piso o reemplaza el existente conservando su id.
func (r *FloorRepo) Upsert(ctx context.Context, f *entity.FloorInstallation) error {
	query := `
		INSERT INTO floor_installations
			(id, school_id, plan_id, provider_id, installed_type_id, completion_date, upgrade_type, upgrade_date, notes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (school_id) DO UPDATE SET
			plan_id = EXCLUDED.plan_id,
			provider_id = EXCLUDED.provider_id,
			installed_type_id = EXCLUDED.installed_type_id,
			completion_date = EXCLUDED.completion_date,
			upgrade_type = EXCLUDED.upgrade_type,
			upgrade_date = EXCLUDED.upgrade_date,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		f.ID, f.SchoolID, f.PlanID, f.ProviderID, f.InstalledTypeID,
		f.CompletionDate, f.UpgradeType, f.UpgradeDate, f.Notes, f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert floor installation: %w", err)
	}
	return nil
}

// DeleteBySchool elimina el piso de la escuela; no falla si no había ninguno.
func (r *FloorRepo) DeleteBySchool(ctx context.Context, schoolID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM floor_installations WHERE school_id = $1`, schoolID); err != nil {
		return fmt.Errorf("delete floor installation: %w", err)
	}
	return nil
}
