package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/registro-escuelas/internal/application/dto"
	"github.com/jhoicas/registro-escuelas/internal/application/importer"
	"github.com/jhoicas/registro-escuelas/internal/application/usecase"
	"github.com/jhoicas/registro-escuelas/internal/domain/entity"
	"github.com/jhoicas/registro-escuelas/internal/domain/normalize"
	"github.com/jhoicas/registro-escuelas/internal/domain/repository"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/csvio"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/excel"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/kml"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/registro-escuelas/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/registro-escuelas/pkg/jwt"
	"github.com/jhoicas/registro-escuelas/pkg/logger"
	"github.com/jhoicas/registro-escuelas/pkg/validator"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

const regionID = "11111111-1111-1111-1111-111111111111"

type queryRepo struct {
	records map[string]*entity.SchoolRecord
}

func (r *queryRepo) sorted() []*entity.SchoolRecord {
	out := make([]*entity.SchoolRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CUE < out[j].CUE })
	return out
}

func summary(rec *entity.SchoolRecord) entity.SchoolSummary {
	return entity.SchoolSummary{CUE: rec.CUE, Name: rec.Name, Region: rec.Region, SiteNumber: rec.SiteNumber, HasInternet: rec.HasInternet, HasFloor: rec.HasFloor}
}

func (r *queryRepo) Search(_ context.Context, f repository.SchoolFilter, _, _ int) ([]entity.SchoolSummary, int, error) {
	var out []entity.SchoolSummary
	for _, rec := range r.sorted() {
		if f.Name != "" && !strings.Contains(strings.ToLower(rec.Name), strings.ToLower(f.Name)) {
			continue
		}
		out = append(out, summary(rec))
	}
	return out, len(out), nil
}

func (r *queryRepo) GetRecord(_ context.Context, cue string) (*entity.SchoolRecord, error) {
	return r.records[cue], nil
}

func (r *queryRepo) SameSite(_ context.Context, siteID, excludeCUE string) ([]entity.SchoolSummary, error) {
	var out []entity.SchoolSummary
	for _, rec := range r.sorted() {
		if rec.SiteID == siteID && rec.CUE != excludeCUE {
			out = append(out, summary(rec))
		}
	}
	return out, nil
}

func (r *queryRepo) points() []entity.MapPoint {
	var out []entity.MapPoint
	for _, rec := range r.sorted() {
		if rec.Latitude == nil || rec.Longitude == nil {
			continue
		}
		out = append(out, entity.MapPoint{CUE: rec.CUE, Name: rec.Name, Latitude: rec.Latitude, Longitude: rec.Longitude, HasInternet: rec.HasInternet})
	}
	return out
}

func (r *queryRepo) InBounds(context.Context, repository.BoundsFilter) ([]entity.MapPoint, error) {
	return r.points(), nil
}

func (r *queryRepo) ConnectedPoints(context.Context) ([]entity.MapPoint, error) {
	return r.points(), nil
}

func (r *queryRepo) ForEachRecord(_ context.Context, fn func(entity.SchoolRecord) error) error {
	for _, rec := range r.sorted() {
		if err := fn(*rec); err != nil {
			return err
		}
	}
	return nil
}

type reportRepo struct{}

func (reportRepo) Totals(context.Context, repository.ReportFilter) (repository.Totals, error) {
	return repository.Totals{Total: 4, WithInternet: 1, WithFloor: 2}, nil
}

func (reportRepo) ConnectedByStateKeys(context.Context, []string) (int, error) { return 1, nil }

func (reportRepo) ConnectedByCategory(context.Context) ([]repository.CategoryCount, error) {
	return []repository.CategoryCount{{Category: "Primaria", Connected: 1}}, nil
}

func (reportRepo) CoverageByCategory(context.Context, repository.ReportFilter) ([]repository.CategoryCoverage, error) {
	return []repository.CategoryCoverage{{Category: "Primaria", Total: 4, WithInternet: 1, WithFloor: 2}}, nil
}

func (reportRepo) DistrictsByRegions(context.Context, []string) ([]*entity.CatalogEntry, error) {
	return []*entity.CatalogEntry{{ID: "d1", Kind: entity.KindDistrict, Name: "Capital"}}, nil
}

type catalogRepo struct{}

func (catalogRepo) FindByKey(context.Context, entity.CatalogKind, string) (*entity.CatalogEntry, error) {
	return nil, nil
}

func (catalogRepo) Create(context.Context, *entity.CatalogEntry) error { return nil }

func (catalogRepo) GetByID(_ context.Context, kind entity.CatalogKind, id string) (*entity.CatalogEntry, error) {
	if kind == entity.KindRegion && id == regionID {
		return &entity.CatalogEntry{ID: id, Kind: kind, Name: "Región I"}, nil
	}
	return nil, nil
}

func (catalogRepo) List(_ context.Context, kind entity.CatalogKind, _ string) ([]*entity.CatalogEntry, error) {
	return []*entity.CatalogEntry{{ID: regionID, Kind: kind, Name: "Región I"}}, nil
}

type siteRepo struct{}

func (siteRepo) FindByNumber(context.Context, int) (*entity.Site, error) { return nil, nil }
func (siteRepo) Create(context.Context, *entity.Site) error { return nil }
func (siteRepo) List(context.Context) ([]*entity.Site, error) {
	return []*entity.Site{{ID: "p1", Number: 7}}, nil
}

// failingTx simula una base caída: toda fila que llega a persistirse falla.
type failingTx struct{}

func (failingTx) RunRow(context.Context, func(repository.CatalogRepository, repository.SiteRepository, repository.SchoolRepository, repository.ConnectivityRepository, repository.FloorRepository) error) error {
	return errors.New("db caída")
}

// ──────────────────────────────────────────────────────────────────────────────
// App de prueba
// ──────────────────────────────────────────────────────────────────────────────

func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	lat := decimal.RequireFromString("-34.6037")
	lng := decimal.RequireFromString("-58.3816")
	region := "Región I"
	q := &queryRepo{records: map[string]*entity.SchoolRecord{
		"123": {CUE: "123", Name: "Escuela Modelo", Address: "Calle 1", SiteID: "p1", SiteNumber: 7, HasInternet: true, Latitude: &lat, Longitude: &lng, Region: &region},
		"456": {CUE: "456", Name: "Anexo Modelo", Address: "Calle 1", SiteID: "p1", SiteNumber: 7},
	}}

	catalogUC := usecase.NewCatalogUseCase(catalogRepo{}, siteRepo{}, reportRepo{})
	schoolUC := usecase.NewSchoolUseCase(q)
	reportUC := usecase.NewReportUseCase(reportRepo{}, catalogUC, nil, nil)
	docUC := usecase.NewDocumentUseCase(schoolUC, reportUC, excel.NewRenderer(), pdf.NewSchoolSheetGenerator(), kml.NewRenderer())
	val := validator.New()
	svc := importer.NewService(failingTx{}, normalize.NewNormalizer(val), logger.Nop())
	dataUC := usecase.NewDataUseCase(svc, q)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		SchoolUC:    schoolUC,
		CatalogUC:   catalogUC,
		ReportUC:    reportUC,
		DocumentUC:  docUC,
		DataUC:      dataUC,
		CSVDefaults: csvio.Options{},
		Validator:   val,
		Logger:      logger.Nop(),
		JWTSecret:   testJWTSecret,
	})
	return app
}

func get(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	return decode[dto.ErrorResponse](t, resp).Code
}

// ──────────────────────────────────────────────────────────────────────────────
// Escuelas
// ──────────────────────────────────────────────────────────────────────────────

func TestSearch_FiltraPorNombre(t *testing.T) {
	resp := get(t, newAPI(t), "/api/escuelas?nombre=anexo")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[dto.SchoolListResponse](t, resp)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "456", out.Items[0].CUE)
	assert.Equal(t, 20, out.Page.Limit, "límite por defecto")
}

func TestSearch_ParametrosInvalidos(t *testing.T) {
	app := newAPI(t)
	cases := map[string]string{
		"flag inválido":   "/api/escuelas?tiene_internet=quizas",
		"límite excedido": "/api/escuelas?limit=500",
		"región no es id": "/api/escuelas?region=abc",
		"año fuera rango": "/api/escuelas?anio_conexion=1800",
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			resp := get(t, app, path)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "VALIDATION", errorCode(t, resp))
		})
	}
}

func TestDetail_IncluyeOtrasEscuelasDelPredio(t *testing.T) {
	resp := get(t, newAPI(t), "/api/escuelas/123")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[dto.SchoolDetailResponse](t, resp)
	assert.Equal(t, "Escuela Modelo", out.Name)
	require.Len(t, out.SameSite, 1)
	assert.Equal(t, "456", out.SameSite[0].CUE)
}

func TestDetail_CUEInexistente_Retorna404(t *testing.T) {
	resp := get(t, newAPI(t), "/api/escuelas/999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, resp))
}

func TestBounds(t *testing.T) {
	app := newAPI(t)

	t.Run("sin límites", func(t *testing.T) {
		resp := get(t, app, "/api/escuelas/bounds")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BOUNDS", errorCode(t, resp))
	})
	t.Run("límite no numérico", func(t *testing.T) {
		resp := get(t, app, "/api/escuelas/bounds?minLat=abc&maxLat=1&minLng=1&maxLng=2")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BOUNDS", errorCode(t, resp))
	})
	t.Run("min mayor que max", func(t *testing.T) {
		resp := get(t, app, "/api/escuelas/bounds?minLat=10&maxLat=1&minLng=1&maxLng=2")
		assert.Equal(t, "INVALID_BOUNDS", errorCode(t, resp))
	})
	t.Run("válido", func(t *testing.T) {
		resp := get(t, app, "/api/escuelas/bounds?minLat=-40&maxLat=-30&minLng=-60&maxLng=-50")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		out := decode[[]dto.MapPointResponse](t, resp)
		require.Len(t, out, 1)
		assert.Equal(t, "123", out[0].CUE)
	})
}

func TestDocumentosPorEscuela(t *testing.T) {
	app := newAPI(t)

	resp := get(t, app, "/api/escuelas/123/excel")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, dto.ContentTypeXLSX, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "escuela_123.xlsx")

	resp = get(t, app, "/api/escuelas/123/pdf")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp = get(t, app, "/api/escuelas/999/pdf")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestKMLYExcelDeResultados(t *testing.T) {
	app := newAPI(t)

	resp := get(t, app, "/api/escuelas/kml")
	require.Equal(t, http.StatusOK, resp.StatusCode, "los límites son opcionales en KML")
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "<Placemark>")

	resp = get(t, app, "/api/escuelas/kml?minLat=1")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "límites incompletos")

	resp = get(t, app, "/api/escuelas/export/excel?nombre=modelo")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "resultados_busqueda.xlsx")
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogos y reportes
// ──────────────────────────────────────────────────────────────────────────────

func TestCatalogos(t *testing.T) {
	app := newAPI(t)

	kinds := decode[[]dto.CatalogKindResponse](t, get(t, app, "/api/catalogos"))
	assert.Len(t, kinds, 14)

	resp := get(t, app, "/api/catalogos/inexistente")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "UNKNOWN_CATALOG", errorCode(t, resp))

	list := decode[dto.CatalogListResponse](t, get(t, app, "/api/catalogos/regiones"))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Región I", list.Items[0].Name)

	districts := decode[[]dto.CatalogEntryResponse](t, get(t, app, "/api/catalogos/distritos/por-region?region_ids="+regionID))
	require.Len(t, districts, 1)
	assert.Equal(t, "Capital", districts[0].Name)

	sites := decode[[]dto.SiteResponse](t, get(t, app, "/api/predios"))
	require.Len(t, sites, 1)
	assert.Equal(t, 7, sites[0].Number)
}

func TestReportes(t *testing.T) {
	app := newAPI(t)

	dash := decode[dto.DashboardResponse](t, get(t, app, "/api/reportes/dashboard"))
	assert.Equal(t, "25.00", dash.ConnectivityPercent)
	assert.Equal(t, 3, dash.WithoutInternet)

	floor := decode[dto.CoverageResponse](t, get(t, app, "/api/reportes/piso"))
	assert.Equal(t, 50.0, floor.CoverageRate)

	cov := decode[dto.CoverageReportResponse](t, get(t, app, "/api/reportes/cobertura?region="+regionID))
	assert.Equal(t, "Reporte por Región: Región I", cov.Title)

	resp := get(t, app, "/api/reportes/cobertura/excel")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Reporte_Cobertura_General.xlsx")
}

// ──────────────────────────────────────────────────────────────────────────────
// Datos: importar, exportar, plantilla
// ──────────────────────────────────────────────────────────────────────────────

func importRequest(t *testing.T, csvBody, authHeader string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if csvBody != "" {
		fw, err := mw.CreateFormFile("csv_file", "escuelas.csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(csvBody))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/datos/importar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	return req
}

func doImport(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestImport_AutorizacionPorRol(t *testing.T) {
	app := newAPI(t)
	const body = "CUE,Nombre,Direccion\n"

	resp := doImport(t, app, importRequest(t, body, "", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doImport(t, app, importRequest(t, body, tokenForRole(t, pkgjwt.RoleConsulta), nil))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doImport(t, app, importRequest(t, body, tokenForRole(t, pkgjwt.RoleOperador), nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode, "sólo encabezado: sesión exitosa sin filas")
}

func TestImport_SinArchivo_Retorna400(t *testing.T) {
	resp := doImport(t, newAPI(t), importRequest(t, "", tokenForRole(t, pkgjwt.RoleAdmin), map[string]string{"charset": "utf-8"}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, resp))
}

func TestImport_CharsetInvalido_Retorna400(t *testing.T) {
	req := importRequest(t, "CUE,Nombre,Direccion\n", tokenForRole(t, pkgjwt.RoleAdmin), map[string]string{"charset": "ebcdic"})
	resp := doImport(t, newAPI(t), req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, resp))
}

func TestImport_FaltaColumna_RetornaImportFailed(t *testing.T) {
	resp := doImport(t, newAPI(t), importRequest(t, "Nombre,Direccion\nA,B\n", tokenForRole(t, pkgjwt.RoleAdmin), nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "IMPORT_FAILED", errorCode(t, resp))
}

func TestImport_TodasLasFilasFallan_Retorna422(t *testing.T) {
	csvBody := "CUE,Nombre,Direccion\n1,Escuela Uno,Calle 1\n,Sin CUE,Calle 2\n"
	resp := doImport(t, newAPI(t), importRequest(t, csvBody, tokenForRole(t, pkgjwt.RoleAdmin), nil))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	out := decode[dto.ImportResponse](t, resp)
	assert.Equal(t, "failure", out.Outcome)
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, 1, out.Failed, "la fila 2 llega a la base y falla")
	assert.Equal(t, 1, out.Skipped, "la fila 3 no tiene CUE")
	require.Len(t, out.Errors, 2)
	assert.Equal(t, 3, out.Errors[1].Line)
}

func TestExport_RequiereTokenYDevuelveCSV(t *testing.T) {
	app := newAPI(t)

	resp := get(t, app, "/api/datos/exportar")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/datos/exportar", nil)
	req.Header.Set("Authorization", tokenForRole(t, pkgjwt.RoleConsulta))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "escuelas_export_")

	body, _ := io.ReadAll(resp.Body)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 3, "encabezado y dos escuelas")
	assert.True(t, strings.HasPrefix(lines[1], "123,"))
}

func TestTemplate_EsPublica(t *testing.T) {
	resp := get(t, newAPI(t), "/api/datos/plantilla")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), csvio.TemplateFileName)

	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.HasPrefix(string(body), "CUE,Clave_Provincial,Nombre"))
}

func TestMetrics_Expuesto(t *testing.T) {
	resp := get(t, newAPI(t), "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
