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

// Reconcile deja el servicio de conectividad y el piso tecnológico de la escuela
// en el estado que declara la fila: existen si y solo si el flag correspondiente es verdadero.
func Reconcile(
	ctx context.Context,
	conns repository.ConnectivityRepository,
	floors repository.FloorRepository,
	school *entity.School,
	row *normalize.Row,
	refs *Refs,
	now time.Time,
) error {
	if row.HasInternet {
		svc := &entity.ConnectivityService{
			ID:              uuid.New().String(),
			SchoolID:        school.ID,
			ProviderID:      refs.InternetProvider,
			StateID:         refs.ConnectivityState,
			SpeedMbps:       row.Connectivity.SpeedMbps,
			InstallDate:     row.Connectivity.InstallDate,
			UpgradeDate:     row.Connectivity.UpgradeDate,
			RequestMethodID: refs.RequestMethod,
			Notes:           row.Connectivity.Notes,
			UpdatedAt:       now,
		}
		if err := conns.Upsert(ctx, svc); err != nil {
			return fmt.Errorf("servicio de conectividad de %s: %w", school.CUE, err)
		}
	} else if err := conns.DeleteBySchool(ctx, school.ID); err != nil {
		return fmt.Errorf("eliminar servicio de conectividad de %s: %w", school.CUE, err)
	}

	if row.HasFloor {
		floor := &entity.FloorInstallation{
			ID:              uuid.New().String(),
			SchoolID:        school.ID,
			PlanID:          refs.FloorPlan,
			ProviderID:      refs.FloorProvider,
			InstalledTypeID: refs.FloorType,
			CompletionDate:  row.Floor.CompletionDate,
			UpgradeType:     row.Floor.UpgradeType,
			UpgradeDate:     row.Floor.UpgradeDate,
			Notes:           row.Floor.Notes,
			UpdatedAt:       now,
		}
		if err := floors.Upsert(ctx, floor); err != nil {
			return fmt.Errorf("piso tecnológico de %s: %w", school.CUE, err)
		}
	} else if err := floors.DeleteBySchool(ctx, school.ID); err != nil {
		return fmt.Errorf("eliminar piso tecnológico de %s: %w", school.CUE, err)
	}
	return nil
}
