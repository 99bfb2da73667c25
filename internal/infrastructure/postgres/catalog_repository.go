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

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo repositorio genérico para las catorce tablas de catálogo. La tabla sale de
// entity.LookupCatalog, nunca del texto del usuario.
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el adaptador de catálogos. Pasar pool o tx (Querier).
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

func catalogTable(kind entity.CatalogKind) (string, error) {
	spec, ok := entity.LookupCatalog(kind)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownCatalog, kind)
	}
	return spec.Table, nil
}

func scanCatalogEntry(row pgx.Row, kind entity.CatalogKind) (*entity.CatalogEntry, error) {
	e := entity.CatalogEntry{Kind: kind}
	if err := row.Scan(&e.ID, &e.Name, &e.NameKey, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// FindByKey busca por name_key. Devuelve nil, nil si no existe.
func (r *CatalogRepo) FindByKey(ctx context.Context, kind entity.CatalogKind, nameKey string) (*entity.CatalogEntry, error) {
	table, err := catalogTable(kind)
	if err != nil {
		return nil, err
	}
	query := `SELECT id, name, name_key, created_at FROM ` + table + ` WHERE name_key = $1`
	e, err := scanCatalogEntry(r.q.QueryRow(ctx, query, nameKey), kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s by key: %w", table, err)
	}
	return e, nil
}

// Create inserta dentro de una transacción anidada (SAVEPOINT si r.q ya es una tx).
// Si otra importación insertó el mismo name_key, solo se revierte el savepoint y la
// transacción de la fila sigue utilizable.
func (r *CatalogRepo) Create(ctx context.Context, entry *entity.CatalogEntry) error {
	table, err := catalogTable(entry.Kind)
	if err != nil {
		return err
	}
	sp, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint %s: %w", table, err)
	}
	defer func() { _ = sp.Rollback(ctx) }()

	_, err = sp.Exec(ctx,
		`INSERT INTO `+table+` (id, name, name_key, created_at) VALUES ($1, $2, $3, $4)`,
		entry.ID, entry.Name, entry.NameKey, entry.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert %s: %w", table, err)
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("release savepoint %s: %w", table, err)
	}
	return nil
}

// GetByID obtiene una entrada por ID. Devuelve nil, nil si no existe.
func (r *CatalogRepo) GetByID(ctx context.Context, kind entity.CatalogKind, id string) (*entity.CatalogEntry, error) {
	table, err := catalogTable(kind)
	if err != nil {
		return nil, err
	}
	query := `SELECT id, name, name_key, created_at FROM ` + table + ` WHERE id = $1`
	e, err := scanCatalogEntry(r.q.QueryRow(ctx, query, id), kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", table, err)
	}
	return e, nil
}

// List devuelve las entradas ordenadas por nombre; search filtra por subcadena.
func (r *CatalogRepo) List(ctx context.Context, kind entity.CatalogKind, search string) ([]*entity.CatalogEntry, error) {
	table, err := catalogTable(kind)
	if err != nil {
		return nil, err
	}
	query := `SELECT id, name, name_key, created_at FROM ` + table
	var args []any
	if search != "" {
		query += ` WHERE name ILIKE $1`
		args = append(args, likePattern(search))
	}
	query += ` ORDER BY name`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()
	list := make([]*entity.CatalogEntry, 0)
	for rows.Next() {
		e, err := scanCatalogEntry(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

var _ repository.SiteRepository = (*SiteRepo)(nil)

// SiteRepo predios.
type SiteRepo struct {
	q Querier
}

// NewSiteRepository construye el adaptador de predios.
func NewSiteRepository(q Querier) *SiteRepo {
	return &SiteRepo{q: q}
}

// FindByNumber devuelve nil, nil si el número no existe.
func (r *SiteRepo) FindByNumber(ctx context.Context, number int) (*entity.Site, error) {
	var s entity.Site
	err := r.q.QueryRow(ctx,
		`SELECT id, site_number, created_at FROM sites WHERE site_number = $1`, number,
	).Scan(&s.ID, &s.Number, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get site: %w", err)
	}
	return &s, nil
}

// Create usa el mismo savepoint que los catálogos para tolerar la carrera.
func (r *SiteRepo) Create(ctx context.Context, site *entity.Site) error {
	sp, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint sites: %w", err)
	}
	defer func() { _ = sp.Rollback(ctx) }()

	_, err = sp.Exec(ctx,
		`INSERT INTO sites (id, site_number, created_at) VALUES ($1, $2, $3)`,
		site.ID, site.Number, site.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert site: %w", err)
	}
	return sp.Commit(ctx)
}

// List todos los predios ordenados por número.
func (r *SiteRepo) List(ctx context.Context) ([]*entity.Site, error) {
	rows, err := r.q.Query(ctx, `SELECT id, site_number, created_at FROM sites ORDER BY site_number`)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Site, 0)
	for rows.Next() {
		var s entity.Site
		if err := rows.Scan(&s.ID, &s.Number, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
