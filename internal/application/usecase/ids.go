package usecase

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/registro-escuelas/internal/domain"
)

// checkIDs rechaza filtros por id que no son UUID antes de llegar a la base.
// Los vacíos se ignoran.
func checkIDs(ids ...string) error {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("%w: id %q", domain.ErrInvalidInput, id)
		}
	}
	return nil
}
