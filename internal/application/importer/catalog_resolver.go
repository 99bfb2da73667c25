package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/registro-escuelas/internal/domain"
	"github.com/jhoicas/registro-escuelas/internal/domain/entity"
	"github.com/jhoicas/registro-escuelas/internal/domain/normalize"
	"github.com/jhoicas/registro-escuelas/internal/domain/repository"
)

// CatalogResolver obtiene o crea entradas de catálogo y predios a partir de texto libre.
type CatalogResolver struct {
	catalogs repository.CatalogRepository
	sites    repository.SiteRepository
	now      func() time.Time
}

// NewCatalogResolver construye el resolver sobre repositorios atados a la transacción de la fila.
func NewCatalogResolver(catalogs repository.CatalogRepository, sites repository.SiteRepository, now func() time.Time) *CatalogResolver {
	if now == nil {
		now = time.Now
	}
	return &CatalogResolver{catalogs: catalogs, sites: sites, now: now}
}

// Resolve devuelve la entrada del catálogo kind para raw, creándola si no existe.
// Texto vacío devuelve nil sin crear nada. La comparación no distingue mayúsculas y
// conserva la grafía de la primera aparición.
func (r *CatalogResolver) Resolve(ctx context.Context, kind entity.CatalogKind, raw string) (*entity.CatalogEntry, error) {
	if _, ok := entity.LookupCatalog(kind); !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCatalog, kind)
	}
	name := normalize.CanonicalName(raw)
	if name == "" {
		return nil, nil
	}
	key := strings.ToLower(name)

	existing, err := r.catalogs.FindByKey(ctx, kind, key)
	if err != nil {
		return nil, fmt.Errorf("buscar %s %q: %w", kind, name, err)
	}
	if existing != nil {
		return existing, nil
	}

	entry := &entity.CatalogEntry{
		ID:        uuid.New().String(),
		Kind:      kind,
		Name:      name,
		NameKey:   key,
		CreatedAt: r.now(),
	}
	if err := r.catalogs.Create(ctx, entry); err != nil {
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("crear %s %q: %w", kind, name, err)
		}
		// Otra importación creó el mismo nombre entre la búsqueda y el insert.
		existing, err = r.catalogs.FindByKey(ctx, kind, key)
		if err != nil {
			return nil, fmt.Errorf("releer %s %q: %w", kind, name, err)
		}
		if existing == nil {
			return nil, fmt.Errorf("releer %s %q: %w", kind, name, domain.ErrNotFound)
		}
		return existing, nil
	}
	return entry, nil
}

// ResolveSite devuelve el predio con ese número, creándolo si no existe.
func (r *CatalogResolver) ResolveSite(ctx context.Context, number int) (*entity.Site, error) {
	site, err := r.sites.FindByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("buscar predio %d: %w", number, err)
	}
	if site != nil {
		return site, nil
	}
	site = &entity.Site{ID: uuid.New().String(), Number: number, CreatedAt: r.now()}
	if err := r.sites.Create(ctx, site); err != nil {
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("crear predio %d: %w", number, err)
		}
		site, err = r.sites.FindByNumber(ctx, number)
		if err != nil {
			return nil, fmt.Errorf("releer predio %d: %w", number, err)
		}
		if site == nil {
			return nil, fmt.Errorf("releer predio %d: %w", number, domain.ErrNotFound)
		}
	}
	return site, nil
}

// Refs ids resueltos de todas las referencias de una fila. nil = sin valor.
type Refs struct {
	SiteID string

	Region            *string
	District          *string
	City              *string
	Scope             *string
	Authority         *string
	Shift             *string
	Category          *string
	EstablishmentType *string

	InternetProvider  *string
	ConnectivityState *string
	RequestMethod     *string

	FloorProvider *string
	FloorPlan     *string
	FloorType     *string
}

type catalogField struct {
	kind entity.CatalogKind
	raw  string
	dst  **string
}

// ResolveRow resuelve el predio y todos los campos categóricos de la fila.
// Los catálogos del servicio y del piso solo se resuelven si la fila declara tenerlos.
func (r *CatalogResolver) ResolveRow(ctx context.Context, row *normalize.Row) (*Refs, error) {
	site, err := r.ResolveSite(ctx, row.SiteNumber)
	if err != nil {
		return nil, err
	}
	refs := &Refs{SiteID: site.ID}

	fields := []catalogField{
		{entity.KindRegion, row.Region, &refs.Region},
		{entity.KindDistrict, row.District, &refs.District},
		{entity.KindCity, row.City, &refs.City},
		{entity.KindScope, row.Scope, &refs.Scope},
		{entity.KindAuthority, row.Authority, &refs.Authority},
		{entity.KindShift, row.Shift, &refs.Shift},
		{entity.KindCategory, row.Category, &refs.Category},
		{entity.KindEstablishmentType, row.EstablishmentType, &refs.EstablishmentType},
	}
	if row.HasInternet {
		fields = append(fields,
			catalogField{entity.KindInternetProvider, row.Connectivity.Provider, &refs.InternetProvider},
			catalogField{entity.KindConnectivityState, row.Connectivity.State, &refs.ConnectivityState},
			catalogField{entity.KindRequestMethod, row.Connectivity.RequestMethod, &refs.RequestMethod},
		)
	}
	if row.HasFloor {
		fields = append(fields,
			catalogField{entity.KindFloorProvider, row.Floor.Provider, &refs.FloorProvider},
			catalogField{entity.KindFloorPlan, row.Floor.Plan, &refs.FloorPlan},
			catalogField{entity.KindFloorType, row.Floor.InstalledType, &refs.FloorType},
		)
	}

	for _, f := range fields {
		entry, err := r.Resolve(ctx, f.kind, f.raw)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			id := entry.ID
			*f.dst = &id
		}
	}
	return refs, nil
}
