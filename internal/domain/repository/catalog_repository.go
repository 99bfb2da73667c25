package repository

import (
	"context"

	"github.com/jhoicas/registro-escuelas/internal/domain/entity"
)

// CatalogRepository define el puerto de persistencia genérico para los catálogos (DIP).
// Las búsquedas por nombre comparan NameKey (sin distinguir mayúsculas).
type CatalogRepository interface {
	// FindByKey devuelve nil, nil si no existe.
	FindByKey(ctx context.Context, kind entity.CatalogKind, nameKey string) (*entity.CatalogEntry, error)
	// Create inserta la entrada; si otra transacción ya creó el mismo NameKey devuelve domain.ErrDuplicate
	// sin invalidar la transacción en curso.
	Create(ctx context.Context, entry *entity.CatalogEntry) error
	GetByID(ctx context.Context, kind entity.CatalogKind, id string) (*entity.CatalogEntry, error)
	List(ctx context.Context, kind entity.CatalogKind, search string) ([]*entity.CatalogEntry, error)
}

// SiteRepository puerto de persistencia para predios.
type SiteRepository interface {
	FindByNumber(ctx context.Context, number int) (*entity.Site, error)
	// Create devuelve domain.ErrDuplicate si el número ya existe.
	Create(ctx context.Context, site *entity.Site) error
	List(ctx context.Context) ([]*entity.Site, error)
}
