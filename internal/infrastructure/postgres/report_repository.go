package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/registro-escuelas/internal/domain/entity"
	"github.com/jhoicas/registro-escuelas/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas agregadas para dashboard y cobertura.
type ReportRepo struct {
	pool *pgxpool.Pool
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

func reportWhere(f repository.ReportFilter) *whereBuilder {
	w := &whereBuilder{}
	w.eq("s.region_id", f.RegionID)
	w.eq("s.district_id", f.DistrictID)
	return w
}

// Totals cantidad total de escuelas y cuántas tienen internet y piso tecnológico.
// COALESCE devuelve ceros si no hay filas.
func (r *ReportRepo) Totals(ctx context.Context, f repository.ReportFilter) (repository.Totals, error) {
	w := reportWhere(f)
	query := `
	SELECT
	    COUNT(*)                                          AS total,
	    COALESCE(SUM(CASE WHEN s.has_internet THEN 1 END), 0) AS with_internet,
	    COALESCE(SUM(CASE WHEN s.has_floor    THEN 1 END), 0) AS with_floor
	FROM schools s` + w.sql()

	var t repository.Totals
	if err := r.pool.QueryRow(ctx, query, w.args...).Scan(&t.Total, &t.WithInternet, &t.WithFloor); err != nil {
		return t, fmt.Errorf("report.Totals: %w", err)
	}
	return t, nil
}

// ConnectedByStateKeys escuelas con internet cuyo estado de conectividad está en keys (name_key).
func (r *ReportRepo) ConnectedByStateKeys(ctx context.Context, keys []string) (int, error) {
	const query = `
	SELECT COUNT(*)
	FROM schools s
	JOIN connectivity_services cs  ON cs.school_id = s.id
	JOIN connectivity_states   cst ON cst.id       = cs.state_id
	WHERE s.has_internet
	  AND cst.name_key = ANY($1)`

	var n int
	if err := r.pool.QueryRow(ctx, query, keys).Scan(&n); err != nil {
		return 0, fmt.Errorf("report.ConnectedByStateKeys: %w", err)
	}
	return n, nil
}

// ConnectedByCategory escuelas conectadas agrupadas por categoría; sin categoría se agrupa como "Sin categoría".
func (r *ReportRepo) ConnectedByCategory(ctx context.Context) ([]repository.CategoryCount, error) {
	const query = `
	SELECT COALESCE(ca.name, 'Sin categoría') AS category, COUNT(*) AS connected
	FROM schools s
	LEFT JOIN categories ca ON ca.id = s.category_id
	WHERE s.has_internet
	GROUP BY ca.name
	ORDER BY connected DESC, category`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("report.ConnectedByCategory: %w", err)
	}
	defer rows.Close()

	results := make([]repository.CategoryCount, 0)
	for rows.Next() {
		var c repository.CategoryCount
		if err := rows.Scan(&c.Category, &c.Connected); err != nil {
			return nil, fmt.Errorf("report.ConnectedByCategory scan: %w", err)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

// CoverageByCategory conteos por categoría. Solo aparecen categorías con al menos una escuela.
func (r *ReportRepo) CoverageByCategory(ctx context.Context, f repository.ReportFilter) ([]repository.CategoryCoverage, error) {
	w := reportWhere(f)
	query := `
	SELECT
	    ca.name,
	    COUNT(s.id)                                               AS total,
	    COALESCE(SUM(CASE WHEN s.has_internet THEN 1 END), 0)     AS with_internet,
	    COALESCE(SUM(CASE WHEN s.has_floor    THEN 1 END), 0)     AS with_floor
	FROM categories ca
	JOIN schools s ON s.category_id = ca.id` + w.sql() + `
	GROUP BY ca.id, ca.name
	ORDER BY ca.name`

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("report.CoverageByCategory: %w", err)
	}
	defer rows.Close()

	results := make([]repository.CategoryCoverage, 0)
	for rows.Next() {
		var c repository.CategoryCoverage
		if err := rows.Scan(&c.Category, &c.Total, &c.WithInternet, &c.WithFloor); err != nil {
			return nil, fmt.Errorf("report.CoverageByCategory scan: %w", err)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

// DistrictsByRegions distritos que aparecen en escuelas de las regiones dadas.
func (r *ReportRepo) DistrictsByRegions(ctx context.Context, regionIDs []string) ([]*entity.CatalogEntry, error) {
	const query = `
	SELECT DISTINCT d.id, d.name, d.name_key, d.created_at
	FROM districts d
	JOIN schools s ON s.district_id = d.id
	WHERE s.region_id = ANY($1)
	ORDER BY d.name`

	rows, err := r.pool.Query(ctx, query, regionIDs)
	if err != nil {
		return nil, fmt.Errorf("report.DistrictsByRegions: %w", err)
	}
	defer rows.Close()

	results := make([]*entity.CatalogEntry, 0)
	for rows.Next() {
		e := &entity.CatalogEntry{Kind: entity.KindDistrict}
		if err := rows.Scan(&e.ID, &e.Name, &e.NameKey, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("report.DistrictsByRegions scan: %w", err)
		}
		results = append(results, e)
	}
	return results, rows.Err()
}
