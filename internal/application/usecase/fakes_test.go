package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/jhoicas/registro-escuelas/internal/application/dto"
	"github.com/jhoicas/registro-escuelas/internal/domain/entity"
	"github.com/jhoicas/registro-escuelas/internal/domain/repository"
)

// ─────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria
// ─────────────────────────────────────────────────────────────────────────────

type fakeQueryRepo struct {
	records    []entity.SchoolRecord
	lastFilter repository.SchoolFilter
	lastBounds repository.BoundsFilter
	lastLimit  int
	points     []entity.MapPoint
	sameCalls  int
}

func summaryOf(r entity.SchoolRecord) entity.SchoolSummary {
	return entity.SchoolSummary{
		CUE:         r.CUE,
		Name:        r.Name,
		Region:      r.Region,
		District:    r.District,
		Category:    r.Category,
		SiteNumber:  r.SiteNumber,
		HasInternet: r.HasInternet,
		HasFloor:    r.HasFloor,
	}
}

func (f *fakeQueryRepo) Search(_ context.Context, filter repository.SchoolFilter, limit, offset int) ([]entity.SchoolSummary, int, error) {
	f.lastFilter = filter
	f.lastLimit = limit
	var all []entity.SchoolSummary
	for _, r := range f.records {
		if filter.HasInternet != nil && r.HasInternet != *filter.HasInternet {
			continue
		}
		if filter.Name != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(filter.Name)) {
			continue
		}
		all = append(all, summaryOf(r))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	if limit > 0 {
		if offset > len(all) {
			offset = len(all)
		}
		end := offset + limit
		if end > len(all) {
			end = len(all)
		}
		all = all[offset:end]
	}
	return all, total, nil
}

func (f *fakeQueryRepo) GetRecord(_ context.Context, cue string) (*entity.SchoolRecord, error) {
	for i := range f.records {
		if f.records[i].CUE == cue {
			r := f.records[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeQueryRepo) SameSite(_ context.Context, siteID, excludeCUE string) ([]entity.SchoolSummary, error) {
	f.sameCalls++
	out := []entity.SchoolSummary{}
	for _, r := range f.records {
		if r.SiteID == siteID && r.CUE != excludeCUE {
			out = append(out, summaryOf(r))
		}
	}
	return out, nil
}

func (f *fakeQueryRepo) InBounds(_ context.Context, b repository.BoundsFilter) ([]entity.MapPoint, error) {
	f.lastBounds = b
	return f.points, nil
}

func (f *fakeQueryRepo) ConnectedPoints(context.Context) ([]entity.MapPoint, error) {
	return f.points, nil
}

func (f *fakeQueryRepo) ForEachRecord(_ context.Context, fn func(entity.SchoolRecord) error) error {
	for _, r := range f.records {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

type fakeReportRepo struct {
	totals     repository.Totals
	byState    map[string]int
	byCategory []repository.CategoryCount
	coverage   []repository.CategoryCoverage
	districts  []*entity.CatalogEntry
	lastFilter repository.ReportFilter
	calls      int
}

func (f *fakeReportRepo) Totals(_ context.Context, filter repository.ReportFilter) (repository.Totals, error) {
	f.calls++
	f.lastFilter = filter
	return f.totals, nil
}

func (f *fakeReportRepo) ConnectedByStateKeys(_ context.Context, keys []string) (int, error) {
	n := 0
	for _, k := range keys {
		n += f.byState[k]
	}
	return n, nil
}

func (f *fakeReportRepo) ConnectedByCategory(context.Context) ([]repository.CategoryCount, error) {
	return f.byCategory, nil
}

func (f *fakeReportRepo) CoverageByCategory(context.Context, repository.ReportFilter) ([]repository.CategoryCoverage, error) {
	return f.coverage, nil
}

func (f *fakeReportRepo) DistrictsByRegions(context.Context, []string) ([]*entity.CatalogEntry, error) {
	return f.districts, nil
}

type fakeCatalogRepo struct {
	entries map[entity.CatalogKind][]*entity.CatalogEntry
}

func (f *fakeCatalogRepo) FindByKey(context.Context, entity.CatalogKind, string) (*entity.CatalogEntry, error) {
	return nil, nil
}

func (f *fakeCatalogRepo) Create(context.Context, *entity.CatalogEntry) error { return nil }

func (f *fakeCatalogRepo) GetByID(_ context.Context, kind entity.CatalogKind, id string) (*entity.CatalogEntry, error) {
	for _, e := range f.entries[kind] {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalogRepo) List(_ context.Context, kind entity.CatalogKind, search string) ([]*entity.CatalogEntry, error) {
	out := []*entity.CatalogEntry{}
	for _, e := range f.entries[kind] {
		if search == "" || strings.Contains(e.NameKey, strings.ToLower(search)) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeSiteRepo struct {
	sites []*entity.Site
}

func (f *fakeSiteRepo) FindByNumber(context.Context, int) (*entity.Site, error) { return nil, nil }
func (f *fakeSiteRepo) Create(context.Context, *entity.Site) error { return nil }
func (f *fakeSiteRepo) List(context.Context) ([]*entity.Site, error) { return f.sites, nil }

// ─────────────────────────────────────────────────────────────────────────────
// Caché y renderers
// ─────────────────────────────────────────────────────────────────────────────

type memCache struct {
	data    map[string][]byte
	failGet bool
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	if c.failGet {
		return false, errors.New("redis caído")
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *memCache) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memCache) InvalidateReports(context.Context) error {
	c.data = map[string][]byte{}
	return nil
}

type fakeRenderer struct {
	lastRecord   *entity.SchoolRecord
	lastSameSite []entity.SchoolSummary
	lastList     []entity.SchoolSummary
	lastReport   *dto.CoverageReportResponse
	lastPoints   []entity.MapPoint
}

func (r *fakeRenderer) SchoolReport(rec *entity.SchoolRecord, same []entity.SchoolSummary) ([]byte, error) {
	r.lastRecord, r.lastSameSite = rec, same
	return []byte("xlsx"), nil
}

func (r *fakeRenderer) SearchResults(items []entity.SchoolSummary) ([]byte, error) {
	r.lastList = items
	return []byte("xlsx"), nil
}

func (r *fakeRenderer) CoverageReport(report *dto.CoverageReportResponse) ([]byte, error) {
	r.lastReport = report
	return []byte("xlsx"), nil
}

func (r *fakeRenderer) SchoolSheet(rec *entity.SchoolRecord, same []entity.SchoolSummary) ([]byte, error) {
	r.lastRecord, r.lastSameSite = rec, same
	return []byte("%PDF"), nil
}

func (r *fakeRenderer) Placemarks(_ string, points []entity.MapPoint) ([]byte, error) {
	r.lastPoints = points
	return []byte("<kml/>"), nil
}

type sliceWriter struct {
	cues    []string
	flushed bool
}

func (w *sliceWriter) Write(rec entity.SchoolRecord) error {
	w.cues = append(w.cues, rec.CUE)
	return nil
}

func (w *sliceWriter) Flush() error {
	w.flushed = true
	return nil
}
