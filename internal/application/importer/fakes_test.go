package importer

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/registro-escuelas/internal/domain"
	"github.com/jhoicas/registro-escuelas/internal/domain/entity"
	"github.com/jhoicas/registro-escuelas/internal/domain/normalize"
	"github.com/jhoicas/registro-escuelas/internal/domain/repository"
)

// ─────────────────────────────────────────────────────────────────────────────
// memStore: base en memoria con snapshot/rollback por fila
// ─────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu sync.Mutex

	// catalogs por kind y NameKey; schools por CUE; conns y floors por schoolID.
	catalogs map[entity.CatalogKind]map[string]*entity.CatalogEntry
	sites    map[int]*entity.Site
	schools  map[string]*entity.School
	conns    map[string]*entity.ConnectivityService
	floors   map[string]*entity.FloorInstallation

	// failOnCUE fuerza un error al escribir la escuela con ese CUE.
	failOnCUE string
	// racing simula que otra importación crea el nombre entre FindByKey y Create.
	racing map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		catalogs: map[entity.CatalogKind]map[string]*entity.CatalogEntry{},
		sites:    map[int]*entity.Site{},
		schools:  map[string]*entity.School{},
		conns:    map[string]*entity.ConnectivityService{},
		floors:   map[string]*entity.FloorInstallation{},
		racing:   map[string]bool{},
	}
}

type memSnapshot struct {
	catalogs map[entity.CatalogKind]map[string]*entity.CatalogEntry
	sites    map[int]*entity.Site
	schools  map[string]*entity.School
	conns    map[string]*entity.ConnectivityService
	floors   map[string]*entity.FloorInstallation
}

func copyMap[K comparable, V any](m map[K]*V) map[K]*V {
	out := make(map[K]*V, len(m))
	for k, v := range m {
		cp := *v
		out[k] = &cp
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	cats := make(map[entity.CatalogKind]map[string]*entity.CatalogEntry, len(s.catalogs))
	for k, m := range s.catalogs {
		cats[k] = copyMap(m)
	}
	return memSnapshot{
		catalogs: cats,
		sites:    copyMap(s.sites),
		schools:  copyMap(s.schools),
		conns:    copyMap(s.conns),
		floors:   copyMap(s.floors),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.catalogs = snap.catalogs
	s.sites = snap.sites
	s.schools = snap.schools
	s.conns = snap.conns
	s.floors = snap.floors
}

// RunRow aplica fn sobre el estado actual y lo revierte completo si fn falla.
func (s *memStore) RunRow(_ context.Context, fn func(
	repository.CatalogRepository,
	repository.SiteRepository,
	repository.SchoolRepository,
	repository.ConnectivityRepository,
	repository.FloorRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&memCatalogs{s}, &memSites{s}, &memSchools{s}, &memConns{s}, &memFloors{s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memStore) catalogCount(kind entity.CatalogKind) int { return len(s.catalogs[kind]) }

func (s *memStore) school(cue string) *entity.School { return s.schools[cue] }

func (s *memStore) schoolCount() int { return len(s.schools) }

// ─────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria (el lock lo toma RunRow)
// ─────────────────────────────────────────────────────────────────────────────

type memCatalogs struct{ s *memStore }

var _ repository.CatalogRepository = (*memCatalogs)(nil)

func (r *memCatalogs) FindByKey(_ context.Context, kind entity.CatalogKind, key string) (*entity.CatalogEntry, error) {
	e, ok := r.s.catalogs[kind][key]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *memCatalogs) Create(_ context.Context, e *entity.CatalogEntry) error {
	m, ok := r.s.catalogs[e.Kind]
	if !ok {
		m = map[string]*entity.CatalogEntry{}
		r.s.catalogs[e.Kind] = m
	}
	race := string(e.Kind) + "/" + e.NameKey
	if r.s.racing[race] {
		delete(r.s.racing, race)
		// la otra transacción confirmó primero, con su propio id
		m[e.NameKey] = &entity.CatalogEntry{ID: "concurrente", Kind: e.Kind, Name: e.Name, NameKey: e.NameKey}
		return domain.ErrDuplicate
	}
	if _, exists := m[e.NameKey]; exists {
		return domain.ErrDuplicate
	}
	cp := *e
	m[e.NameKey] = &cp
	return nil
}

func (r *memCatalogs) GetByID(_ context.Context, kind entity.CatalogKind, id string) (*entity.CatalogEntry, error) {
	for _, e := range r.s.catalogs[kind] {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memCatalogs) List(_ context.Context, kind entity.CatalogKind, _ string) ([]*entity.CatalogEntry, error) {
	out := make([]*entity.CatalogEntry, 0, len(r.s.catalogs[kind]))
	for _, e := range r.s.catalogs[kind] {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memSites struct{ s *memStore }

var _ repository.SiteRepository = (*memSites)(nil)

func (r *memSites) FindByNumber(_ context.Context, n int) (*entity.Site, error) {
	site, ok := r.s.sites[n]
	if !ok {
		return nil, nil
	}
	cp := *site
	return &cp, nil
}

func (r *memSites) Create(_ context.Context, site *entity.Site) error {
	if _, ok := r.s.sites[site.Number]; ok {
		return domain.ErrDuplicate
	}
	cp := *site
	r.s.sites[site.Number] = &cp
	return nil
}

func (r *memSites) List(_ context.Context) ([]*entity.Site, error) {
	out := make([]*entity.Site, 0, len(r.s.sites))
	for _, site := range r.s.sites {
		out = append(out, site)
	}
	return out, nil
}

type memSchools struct{ s *memStore }

var _ repository.SchoolRepository = (*memSchools)(nil)

func (r *memSchools) GetByCUE(_ context.Context, cue string) (*entity.School, error) {
	sc, ok := r.s.schools[cue]
	if !ok {
		return nil, nil
	}
	cp := *sc
	return &cp, nil
}

func (r *memSchools) Create(_ context.Context, school *entity.School) error {
	if school.CUE == r.s.failOnCUE {
		return errors.New("error de base simulado")
	}
	if _, ok := r.s.schools[school.CUE]; ok {
		return domain.ErrDuplicate
	}
	cp := *school
	r.s.schools[school.CUE] = &cp
	return nil
}

func (r *memSchools) Update(_ context.Context, school *entity.School) error {
	if school.CUE == r.s.failOnCUE {
		return errors.New("error de base simulado")
	}
	if _, ok := r.s.schools[school.CUE]; !ok {
		return domain.ErrNotFound
	}
	cp := *school
	r.s.schools[school.CUE] = &cp
	return nil
}

type memConns struct{ s *memStore }

var _ repository.ConnectivityRepository = (*memConns)(nil)

// Upsert conserva el id del servicio existente, igual que ON CONFLICT (school_id).
func (r *memConns) Upsert(_ context.Context, svc *entity.ConnectivityService) error {
	cp := *svc
	if prev, ok := r.s.conns[svc.SchoolID]; ok {
		cp.ID = prev.ID
	}
	r.s.conns[svc.SchoolID] = &cp
	return nil
}

func (r *memConns) DeleteBySchool(_ context.Context, schoolID string) error {
	delete(r.s.conns, schoolID)
	return nil
}

type memFloors struct{ s *memStore }

var _ repository.FloorRepository = (*memFloors)(nil)

func (r *memFloors) Upsert(_ context.Context, f *entity.FloorInstallation) error {
	cp := *f
	if prev, ok := r.s.floors[f.SchoolID]; ok {
		cp.ID = prev.ID
	}
	r.s.floors[f.SchoolID] = &cp
	return nil
}

func (r *memFloors) DeleteBySchool(_ context.Context, schoolID string) error {
	delete(r.s.floors, schoolID)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Fuente de filas, caché y métricas
// ─────────────────────────────────────────────────────────────────────────────

type sliceSource struct {
	rows []normalize.RawRow
	pos  int
	// failAt devuelve un error de lectura al llegar a ese índice (-1 desactiva).
	failAt int
}

func newSliceSource(rows ...normalize.RawRow) *sliceSource {
	return &sliceSource{rows: rows, failAt: -1}
}

func (s *sliceSource) Next() (int, normalize.RawRow, error) {
	if s.pos == s.failAt {
		return 0, normalize.RawRow{}, errors.New("registro ilegible")
	}
	if s.pos >= len(s.rows) {
		return 0, normalize.RawRow{}, io.EOF
	}
	raw := s.rows[s.pos]
	s.pos++
	return s.pos + 1, raw, nil // el encabezado es la línea 1
}

type fakeCache struct {
	calls int
	err   error
}

func (c *fakeCache) InvalidateReports(context.Context) error {
	c.calls++
	return c.err
}

type fakeRecorder struct {
	rows     map[string]int
	outcomes []string
}

func newFakeRecorder() *fakeRecorder { return &fakeRecorder{rows: map[string]int{}} }

func (r *fakeRecorder) RowProcessed(result string) { r.rows[result]++ }

func (r *fakeRecorder) SessionFinished(_ string, outcome string, _ time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
}
