package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/registro-escuelas/internal/domain/entity"
	"github.com/jhoicas/registro-escuelas/internal/domain/repository"
)

var _ repository.SchoolQueryRepository = (*SchoolQueryRepo)(nil)

// SchoolQueryRepo consultas de solo lectura sobre escuelas: búsqueda, detalle, mapa y exportación.
type SchoolQueryRepo struct {
	pool *pgxpool.Pool
}

// NewSchoolQueryRepository construye el adaptador de consultas.
func NewSchoolQueryRepository(pool *pgxpool.Pool) *SchoolQueryRepo {
	return &SchoolQueryRepo{pool: pool}
}

// whereBuilder arma condiciones con placeholders numerados. `?` se reemplaza por $n.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, args ...any) {
	for _, a := range args {
		w.args = append(w.args, a)
		cond = strings.Replace(cond, "?", "$"+strconv.Itoa(len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) eq(column, value string) {
	if value != "" {
		w.add(column+" = ?", value)
	}
}

func (w *whereBuilder) flag(column string, value *bool) {
	if value != nil {
		w.add(column+" = ?", *value)
	}
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func (w *whereBuilder) next() string { return "$" + strconv.Itoa(len(w.args)+1) }

const summaryFrom = `
	FROM schools s
	JOIN sites st ON st.id = s.site_id
	LEFT JOIN regions rg ON rg.id = s.region_id
	LEFT JOIN districts di ON di.id = s.district_id
	LEFT JOIN categories ca ON ca.id = s.category_id
	LEFT JOIN connectivity_services cs ON cs.school_id = s.id
	LEFT JOIN floor_installations fi ON fi.school_id = s.id`

const summaryColumns = `s.cue, s.name, rg.name, di.name, ca.name, st.site_number, s.has_internet, s.has_floor`

func scanSummary(row pgx.Row) (entity.SchoolSummary, error) {
	var s entity.SchoolSummary
	err := row.Scan(&s.CUE, &s.Name, &s.Region, &s.District, &s.Category, &s.SiteNumber, &s.HasInternet, &s.HasFloor)
	return s, err
}

func searchWhere(f repository.SchoolFilter) *whereBuilder {
	w := &whereBuilder{}
	if f.CUE != "" {
		w.add(`s.cue ILIKE ?`, likePattern(f.CUE))
	}
	if f.Name != "" {
		w.add(`s.name ILIKE ?`, likePattern(f.Name))
	}
	if f.SiteNumber != "" {
		w.add(`st.site_number::text LIKE ?`, likePattern(f.SiteNumber))
	}
	w.eq("s.region_id", f.RegionID)
	w.eq("s.district_id", f.DistrictID)
	w.eq("s.city_id", f.CityID)
	w.eq("s.scope_id", f.ScopeID)
	w.eq("s.authority_id", f.AuthorityID)
	w.eq("s.shift_id", f.ShiftID)
	w.eq("s.category_id", f.CategoryID)
	w.eq("s.establishment_type_id", f.EstablishmentTypeID)
	w.eq("cs.provider_id", f.InternetProviderID)
	w.eq("cs.state_id", f.ConnectivityStateID)
	w.eq("fi.provider_id", f.FloorProviderID)
	w.eq("fi.plan_id", f.FloorPlanID)
	w.flag("s.has_internet", f.HasInternet)
	w.flag("s.has_floor", f.HasFloor)
	if f.ConnectedYear > 0 {
		w.add(`(EXTRACT(YEAR FROM cs.install_date) = ? OR EXTRACT(YEAR FROM cs.upgrade_date) = ?)`, f.ConnectedYear, f.ConnectedYear)
	}
	if f.FloorYear > 0 {
		w.add(`EXTRACT(YEAR FROM fi.completion_date) = ?`, f.FloorYear)
	}
	return w
}

// Search devuelve una página ordenada por nombre y el total de coincidencias.
// limit <= 0 devuelve todas (exportación a Excel).
func (r *SchoolQueryRepo) Search(ctx context.Context, f repository.SchoolFilter, limit, offset int) ([]entity.SchoolSummary, int, error) {
	w := searchWhere(f)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+summaryFrom+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count schools: %w", err)
	}

	query := `SELECT ` + summaryColumns + summaryFrom + w.sql() + ` ORDER BY s.name, s.cue`
	args := w.args
	if limit > 0 {
		query += ` LIMIT ` + w.next()
		args = append(args, limit)
		query += ` OFFSET $` + strconv.Itoa(len(args)+1)
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search schools: %w", err)
	}
	defer rows.Close()
	list := make([]entity.SchoolSummary, 0)
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan school summary: %w", err)
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}

// SameSite otras escuelas del predio, excluyendo excludeCUE.
func (r *SchoolQueryRepo) SameSite(ctx context.Context, siteID, excludeCUE string) ([]entity.SchoolSummary, error) {
	query := `SELECT ` + summaryColumns + summaryFrom + ` WHERE s.site_id = $1 AND s.cue <> $2 ORDER BY s.name`
	rows, err := r.pool.Query(ctx, query, siteID, excludeCUE)
	if err != nil {
		return nil, fmt.Errorf("same site schools: %w", err)
	}
	defer rows.Close()
	list := make([]entity.SchoolSummary, 0)
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan school summary: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

const recordQuery = `
	SELECT s.id, s.cue, COALESCE(s.provincial_key, ''), s.name, s.address, s.enrollment,
	       s.has_internet, s.has_floor, s.latitude, s.longitude,
	       s.site_id, st.site_number, s.region_id, s.district_id,
	       rg.name, di.name, ci.name, sc.name, au.name, sh.name, ca.name, et.name,
	       cs.id IS NOT NULL, ip.name, cst.name, COALESCE(cs.speed_mbps, 0), cs.install_date,
	       cs.upgrade_date, rm.name, COALESCE(cs.notes, ''),
	       fi.id IS NOT NULL, fpl.name, fpr.name, ft.name, fi.completion_date,
	       COALESCE(fi.upgrade_type, ''), fi.upgrade_date, COALESCE(fi.notes, '')
	FROM schools s
	JOIN sites st ON st.id = s.site_id
	LEFT JOIN regions rg ON rg.id = s.region_id
	LEFT JOIN districts di ON di.id = s.district_id
	LEFT JOIN cities ci ON ci.id = s.city_id
	LEFT JOIN scopes sc ON sc.id = s.scope_id
	LEFT JOIN authorities au ON au.id = s.authority_id
	LEFT JOIN shifts sh ON sh.id = s.shift_id
	LEFT JOIN categories ca ON ca.id = s.category_id
	LEFT JOIN establishment_types et ON et.id = s.establishment_type_id
	LEFT JOIN connectivity_services cs ON cs.school_id = s.id
	LEFT JOIN internet_providers ip ON ip.id = cs.provider_id
	LEFT JOIN connectivity_states cst ON cst.id = cs.state_id
	LEFT JOIN request_methods rm ON rm.id = cs.request_method_id
	LEFT JOIN floor_installations fi ON fi.school_id = s.id
	LEFT JOIN floor_plans fpl ON fpl.id = fi.plan_id
	LEFT JOIN floor_providers fpr ON fpr.id = fi.provider_id
	LEFT JOIN floor_types ft ON ft.id = fi.installed_type_id`

func scanRecord(row pgx.Row) (entity.SchoolRecord, error) {
	var (
		rec              entity.SchoolRecord
		conn             entity.ConnectivityRecord
		floor            entity.FloorRecord
		hasConn, hasFlr  bool
		install, upgrade *time.Time
		done, fUpgrade   *time.Time
	)
	err := row.Scan(
		&rec.ID, &rec.CUE, &rec.ProvincialKey, &rec.Name, &rec.Address, &rec.Enrollment,
		&rec.HasInternet, &rec.HasFloor, &rec.Latitude, &rec.Longitude,
		&rec.SiteID, &rec.SiteNumber, &rec.RegionID, &rec.DistrictID,
		&rec.Region, &rec.District, &rec.City, &rec.Scope, &rec.Authority, &rec.Shift, &rec.Category, &rec.EstablishmentType,
		&hasConn, &conn.Provider, &conn.State, &conn.SpeedMbps, &install,
		&upgrade, &conn.RequestMethod, &conn.Notes,
		&hasFlr, &floor.Plan, &floor.Provider, &floor.InstalledType, &done,
		&floor.UpgradeType, &fUpgrade, &floor.Notes,
	)
	if err != nil {
		return rec, err
	}
	if hasConn {
		conn.InstallDate, conn.UpgradeDate = install, upgrade
		rec.Connectivity = &conn
	}
	if hasFlr {
		floor.CompletionDate, floor.UpgradeDate = done, fUpgrade
		rec.Floor = &floor
	}
	return rec, nil
}

// GetRecord devuelve la escuela aplanada o nil, nil si el CUE no existe.
func (r *SchoolQueryRepo) GetRecord(ctx context.Context, cue string) (*entity.SchoolRecord, error) {
	rec, err := scanRecord(r.pool.QueryRow(ctx, recordQuery+` WHERE s.cue = $1`, cue))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get school record: %w", err)
	}
	return &rec, nil
}

// ForEachRecord recorre todas las escuelas ordenadas por CUE sin cargarlas en memoria.
func (r *SchoolQueryRepo) ForEachRecord(ctx context.Context, fn func(entity.SchoolRecord) error) error {
	rows, err := r.pool.Query(ctx, recordQuery+` ORDER BY s.cue`)
	if err != nil {
		return fmt.Errorf("export schools: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return fmt.Errorf("scan school record: %w", err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return rows.Err()
}

const pointQuery = `
	SELECT s.cue, s.name, s.latitude, s.longitude, s.has_internet, s.has_floor,
	       s.region_id, s.district_id, rg.name, st.site_number
	FROM schools s
	JOIN sites st ON st.id = s.site_id
	LEFT JOIN regions rg ON rg.id = s.region_id
	LEFT JOIN connectivity_services cs ON cs.school_id = s.id`

func (r *SchoolQueryRepo) points(ctx context.Context, w *whereBuilder) ([]entity.MapPoint, error) {
	w.add(`s.latitude IS NOT NULL AND s.longitude IS NOT NULL`)
	rows, err := r.pool.Query(ctx, pointQuery+w.sql()+` ORDER BY s.cue`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("map points: %w", err)
	}
	defer rows.Close()
	list := make([]entity.MapPoint, 0)
	for rows.Next() {
		var p entity.MapPoint
		if err := rows.Scan(&p.CUE, &p.Name, &p.Latitude, &p.Longitude, &p.HasInternet, &p.HasFloor,
			&p.RegionID, &p.DistrictID, &p.RegionName, &p.SiteNumber); err != nil {
			return nil, fmt.Errorf("scan map point: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// InBounds escuelas con coordenadas dentro del rectángulo y los filtros dados.
func (r *SchoolQueryRepo) InBounds(ctx context.Context, f repository.BoundsFilter) ([]entity.MapPoint, error) {
	w := &whereBuilder{}
	if f.MinLat != nil && f.MaxLat != nil {
		w.add(`s.latitude BETWEEN ? AND ?`, *f.MinLat, *f.MaxLat)
	}
	if f.MinLng != nil && f.MaxLng != nil {
		w.add(`s.longitude BETWEEN ? AND ?`, *f.MinLng, *f.MaxLng)
	}
	w.eq("s.region_id", f.RegionID)
	w.eq("s.district_id", f.DistrictID)
	w.eq("cs.state_id", f.ConnectivityStateID)
	if f.CUE != "" {
		w.add(`s.cue ILIKE ?`, likePattern(f.CUE))
	}
	if f.SiteNumber != "" {
		w.add(`st.site_number::text LIKE ?`, likePattern(f.SiteNumber))
	}
	w.flag("s.has_internet", f.HasInternet)
	w.flag("s.has_floor", f.HasFloor)
	return r.points(ctx, w)
}

// ConnectedPoints escuelas con internet y coordenadas, para el mapa de conectividad.
func (r *SchoolQueryRepo) ConnectedPoints(ctx context.Context) ([]entity.MapPoint, error) {
	w := &whereBuilder{}
	w.add(`s.has_internet = TRUE`)
	return r.points(ctx, w)
}
