package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/registro-escuelas/internal/domain/entity"
	"github.com/jhoicas/registro-escuelas/internal/domain/normalize"
	"github.com/jhoicas/registro-escuelas/internal/domain/repository"
)

// UpsertSchool crea la escuela del CUE de la fila o reemplaza todos sus campos si ya existe.
// No hay merge: el último archivo importado gana.
func UpsertSchool(ctx context.Context, schools repository.SchoolRepository, row *normalize.Row, refs *Refs, now time.Time) (*entity.School, bool, error) {
	school, err := schools.GetByCUE(ctx, row.CUE)
	if err != nil {
		return nil, false, fmt.Errorf("buscar escuela %s: %w", row.CUE, err)
	}
	created := school == nil
	if created {
		school = &entity.School{
			ID:        uuid.New().String(),
			CUE:       row.CUE,
			CreatedAt: now,
		}
	}

	applyRow(school, row, refs)
	school.UpdatedAt = now

	if created {
		if err := schools.Create(ctx, school); err != nil {
			return nil, false, fmt.Errorf("crear escuela %s: %w", row.CUE, err)
		}
		return school, true, nil
	}
	if err := schools.Update(ctx, school); err != nil {
		return nil, false, fmt.Errorf("actualizar escuela %s: %w", row.CUE, err)
	}
	return school, false, nil
}

func applyRow(s *entity.School, row *normalize.Row, refs *Refs) {
	s.ProvincialKey = row.ProvincialKey
	s.Name = row.Name
	s.Address = row.Address
	s.Enrollment = row.Enrollment
	s.HasInternet = row.HasInternet
	s.HasFloor = row.HasFloor
	s.Latitude = row.Latitude
	s.Longitude = row.Longitude

	s.SiteID = refs.SiteID
	s.RegionID = refs.Region
	s.DistrictID = refs.District
	s.CityID = refs.City
	s.ScopeID = refs.Scope
	s.AuthorityID = refs.Authority
	s.ShiftID = refs.Shift
	s.CategoryID = refs.Category
	s.EstablishmentTypeID = refs.EstablishmentType
}
