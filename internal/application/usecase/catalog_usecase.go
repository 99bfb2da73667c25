package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/registro-escuelas/internal/application/dto"
	"github.com/jhoicas/registro-escuelas/internal/domain"
	"github.com/jhoicas/registro-escuelas/internal/domain/entity"
	"github.com/jhoicas/registro-escuelas/internal/domain/repository"
)

// CatalogUseCase listados genéricos de catálogos y predios, guiados por la tabla de capacidades.
type CatalogUseCase struct {
	catalogs repository.CatalogRepository
	sites    repository.SiteRepository
	reports  repository.ReportRepository
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(catalogs repository.CatalogRepository, sites repository.SiteRepository, reports repository.ReportRepository) *CatalogUseCase {
	return &CatalogUseCase{catalogs: catalogs, sites: sites, reports: reports}
}

// Kinds tabla de capacidades: un elemento por catálogo.
func (uc *CatalogUseCase) Kinds() []dto.CatalogKindResponse {
	specs := entity.CatalogKinds()
	out := make([]dto.CatalogKindResponse, 0, len(specs))
	for _, s := range specs {
		out = append(out, dto.CatalogKindResponse{
			Kind:        string(s.Kind),
			Label:       s.Label,
			SearchField: s.SearchField,
		})
	}
	return out
}

// List entradas de un catálogo ordenadas por nombre, con filtro opcional por subcadena.
func (uc *CatalogUseCase) List(ctx context.Context, kind, search string) (*dto.CatalogListResponse, error) {
	spec, ok := entity.LookupCatalog(entity.CatalogKind(kind))
	if !ok {
		return nil, domain.ErrUnknownCatalog
	}
	entries, err := uc.catalogs.List(ctx, spec.Kind, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}
	return &dto.CatalogListResponse{
		Kind:  string(spec.Kind),
		Label: spec.Label,
		Items: toCatalogEntryResponses(entries),
	}, nil
}

// DistrictsByRegions distritos usados por escuelas de las regiones dadas (selects encadenados).
// Sin regiones devuelve una lista vacía.
func (uc *CatalogUseCase) DistrictsByRegions(ctx context.Context, regionIDs []string) ([]dto.CatalogEntryResponse, error) {
	ids := make([]string, 0, len(regionIDs))
	for _, id := range regionIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return []dto.CatalogEntryResponse{}, nil
	}
	if err := checkIDs(ids...); err != nil {
		return nil, err
	}
	entries, err := uc.reports.DistrictsByRegions(ctx, ids)
	if err != nil {
		return nil, err
	}
	return toCatalogEntryResponses(entries), nil
}

// Sites predios ordenados por número.
func (uc *CatalogUseCase) Sites(ctx context.Context) ([]dto.SiteResponse, error) {
	list, err := uc.sites.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SiteResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.SiteResponse{ID: s.ID, Number: s.Number})
	}
	return out, nil
}

// EntryName nombre de una entrada, o "" si no existe.
func (uc *CatalogUseCase) EntryName(ctx context.Context, kind entity.CatalogKind, id string) (string, error) {
	if id == "" {
		return "", nil
	}
	if err := checkIDs(id); err != nil {
		return "", err
	}
	e, err := uc.catalogs.GetByID(ctx, kind, id)
	if err != nil || e == nil {
		return "", err
	}
	return e.Name, nil
}

func toCatalogEntryResponses(entries []*entity.CatalogEntry) []dto.CatalogEntryResponse {
	out := make([]dto.CatalogEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.CatalogEntryResponse{ID: e.ID, Name: e.Name})
	}
	return out
}
