// Package excel genera las planillas xlsx del registro con excelize.
//
// Tres documentos:
//
//	Reporte de Escuela   bloque "INFORMACIÓN GENERAL" (campo | valor), luego
//	                     "DETALLES DE CONECTIVIDAD", "DETALLES DE PISO TECNOLÓGICO"
//	                     y "OTRAS ESCUELAS DEL PREDIO", cada uno con cabecera de 7 columnas.
//	Resultados           una fila por escuela de la búsqueda avanzada.
//	Cobertura            hojas "Internet por Categoria" y "Piso Tecnologico por Categoria".
package excel

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/registro-escuelas/internal/application/dto"
	"github.com/jhoicas/registro-escuelas/internal/application/ports"
	"github.com/jhoicas/registro-escuelas/internal/domain/entity"
)

// Nombres de hoja y formato.
const (
	SheetSchool        = "Reporte de Escuela"
	SheetResults       = "Resultados"
	SheetInternet      = "Internet por Categoria"
	SheetFloor         = "Piso Tecnologico por Categoria"
	defaultSheet       = "Sheet1"
	noData             = "Sin datos"
	sectionColor       = "D6EAF8"
	resultsHeaderColor = "007BFF"
	detailColumns      = 7
)

var _ ports.SpreadsheetRenderer = (*Renderer)(nil)

// Renderer implementa ports.SpreadsheetRenderer.
type Renderer struct{}

// NewRenderer construye el renderer.
func NewRenderer() *Renderer { return &Renderer{} }

// styles ids de estilo registrados en un libro.
type styles struct {
	section int // título de bloque: negrita, fondo celeste, centrado
	header  int // cabecera de tabla: negrita, fondo celeste, borde fino
	label   int // columna de campo: negrita
	cell    int // celda de tabla con borde fino
	empty   int // "No hay datos...": itálica centrada
	blue    int // cabecera de "Resultados": blanco sobre azul
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}

func newStyles(f *excelize.File) (*styles, error) {
	fill := excelize.Fill{Type: "pattern", Color: []string{sectionColor}, Pattern: 1}
	defs := []*excelize.Style{
		{Font: &excelize.Font{Bold: true}, Fill: fill, Alignment: &excelize.Alignment{Horizontal: "center"}},
		{Font: &excelize.Font{Bold: true}, Fill: fill, Border: thinBorder()},
		{Font: &excelize.Font{Bold: true}},
		{Border: thinBorder()},
		{Font: &excelize.Font{Italic: true}, Alignment: &excelize.Alignment{Horizontal: "center"}},
		{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{resultsHeaderColor}, Pattern: 1},
			Border:    thinBorder(),
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		},
	}
	ids := make([]int, len(defs))
	for i, d := range defs {
		id, err := f.NewStyle(d)
		if err != nil {
			return nil, fmt.Errorf("registrar estilo: %w", err)
		}
		ids[i] = id
	}
	return &styles{section: ids[0], header: ids[1], label: ids[2], cell: ids[3], empty: ids[4], blue: ids[5]}, nil
}

// sheetWriter escribe filas consecutivas en una hoja, acumulando el primer error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func (w *sheetWriter) cell(col int) string {
	name, err := excelize.CoordinatesToCellName(col, w.row)
	if err != nil && w.err == nil {
		w.err = err
	}
	return name
}

func (w *sheetWriter) set(col int, v any, style int) {
	if w.err != nil {
		return
	}
	c := w.cell(col)
	if err := w.f.SetCellValue(w.sheet, c, v); err != nil {
		w.err = err
		return
	}
	if style != 0 {
		w.err = w.f.SetCellStyle(w.sheet, c, c, style)
	}
}

// merged escribe v en una fila combinada de cols columnas.
func (w *sheetWriter) merged(cols int, v any, style int) {
	w.set(1, v, style)
	if w.err == nil && cols > 1 {
		w.err = w.f.MergeCell(w.sheet, w.cell(1), w.cell(cols))
	}
	w.row++
}

// line escribe una fila de valores con el mismo estilo.
func (w *sheetWriter) line(style int, values ...any) {
	for i, v := range values {
		w.set(i+1, v, style)
	}
	w.row++
}

func finish(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializar xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// ── Reporte de Escuela ───────────────────────────────────────────────────────

// SchoolReport planilla detallada de una escuela.
func (r *Renderer) SchoolReport(rec *entity.SchoolRecord, sameSite []entity.SchoolSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(defaultSheet, SheetSchool); err != nil {
		return nil, err
	}
	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}
	w := &sheetWriter{f: f, sheet: SheetSchool, row: 1}

	w.merged(2, "INFORMACIÓN GENERAL", st.section)
	for _, kv := range generalFields(rec) {
		w.set(1, kv[0], st.label)
		w.set(2, kv[1], 0)
		w.row++
	}
	w.row += 2

	w.merged(detailColumns, "DETALLES DE CONECTIVIDAD", st.section)
	w.line(st.header, "Proveedor", "Estado", "Velocidad (Mbps)", "Método de Solicitud",
		"Fecha de Instalación", "Fecha de Mejora", "Observaciones")
	if c := rec.Connectivity; c != nil {
		w.line(st.cell, orNoData(c.Provider), orNoData(c.State), c.SpeedMbps, orNoData(c.RequestMethod),
			date(c.InstallDate), date(c.UpgradeDate), c.Notes)
	} else {
		w.merged(detailColumns, "No hay datos de conectividad.", st.empty)
	}
	w.row += 2

	w.merged(detailColumns, "DETALLES DE PISO TECNOLÓGICO", st.section)
	w.line(st.header, "Proveedor", "Tipo de Piso", "Plan de Piso", "Tipo de Mejora",
		"Fecha de Finalización", "Fecha de Mejora", "Observaciones")
	if p := rec.Floor; p != nil {
		w.line(st.cell, orNoData(p.Provider), orNoData(p.InstalledType), orNoData(p.Plan), p.UpgradeType,
			date(p.CompletionDate), date(p.UpgradeDate), p.Notes)
	} else {
		w.merged(detailColumns, "No hay datos de piso tecnológico.", st.empty)
	}

	if len(sameSite) > 0 {
		w.row += 2
		w.merged(detailColumns, "OTRAS ESCUELAS DEL PREDIO", st.section)
		w.line(st.header, "CUE", "Nombre", "Región", "Distrito", "Categoría", "Tiene Internet", "Piso Tecnológico")
		for _, s := range sameSite {
			w.line(st.cell, s.CUE, s.Name, orNoData(s.Region), orNoData(s.District), orNoData(s.Category),
				yesNo(s.HasInternet), yesNo(s.HasFloor))
		}
	}
	if w.err != nil {
		return nil, fmt.Errorf("escribir %s: %w", SheetSchool, w.err)
	}
	if err := f.SetColWidth(SheetSchool, "A", "G", 25); err != nil {
		return nil, err
	}
	return finish(f)
}

func generalFields(rec *entity.SchoolRecord) [][2]any {
	site := any(noData)
	if rec.SiteNumber != 0 {
		site = rec.SiteNumber
	}
	return [][2]any{
		{"Nombre", rec.Name},
		{"CUE", rec.CUE},
		{"Clave Provincial", rec.ProvincialKey},
		{"Dirección", rec.Address},
		{"Matrícula", rec.Enrollment},
		{"Dependencia", orNoData(rec.Authority)},
		{"Ámbito", orNoData(rec.Scope)},
		{"Turno", orNoData(rec.Shift)},
		{"Categoría", orNoData(rec.Category)},
		{"Tipo de Establecimiento", orNoData(rec.EstablishmentType)},
		{"Región", orNoData(rec.Region)},
		{"Distrito", orNoData(rec.District)},
		{"Ciudad", orNoData(rec.City)},
		{"Predio", site},
		{"Coordenadas", coordinates(rec.Latitude, rec.Longitude)},
		{"Latitud", coordinate(rec.Latitude)},
		{"Longitud", coordinate(rec.Longitude)},
		{"Tiene Internet", yesNo(rec.HasInternet)},
		{"Tiene Piso Tecnológico", yesNo(rec.HasFloor)},
	}
}

// ── Resultados ───────────────────────────────────────────────────────────────

// SearchResults hoja "Resultados" de la búsqueda avanzada.
func (r *Renderer) SearchResults(items []entity.SchoolSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(defaultSheet, SheetResults); err != nil {
		return nil, err
	}
	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}
	w := &sheetWriter{f: f, sheet: SheetResults, row: 1}
	w.line(st.blue, "CUE", "Nombre", "Región", "Distrito", "Predio", "Tiene Internet", "Piso Tecnológico")
	for _, s := range items {
		site := any("N/A")
		if s.SiteNumber != 0 {
			site = s.SiteNumber
		}
		w.line(0, s.CUE, s.Name, orNA(s.Region), orNA(s.District), site,
			upperYesNo(s.HasInternet), upperYesNo(s.HasFloor))
	}
	if w.err != nil {
		return nil, fmt.Errorf("escribir %s: %w", SheetResults, w.err)
	}
	for i, width := range []float64{15, 60, 20, 20, 15, 15, 20} {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetResults, col, col, width); err != nil {
			return nil, err
		}
	}
	return finish(f)
}

// ── Cobertura ────────────────────────────────────────────────────────────────

// CoverageReport libro del reporte general: una hoja para internet y otra para piso.
func (r *Renderer) CoverageReport(report *dto.CoverageReportResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(defaultSheet, SheetInternet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetFloor); err != nil {
		return nil, err
	}
	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	sheets := []struct {
		name   string
		header []any
		rows   []dto.CategoryCoverageResponse
	}{
		{SheetInternet, []any{"Categoría", "Total Escuelas", "Escuelas con Internet",
			"Escuelas sin Internet", "Cobertura Internet (%)"}, report.InternetCoverage},
		{SheetFloor, []any{"Categoría", "Total Escuelas", "Escuelas con Piso Tecnológico",
			"Escuelas sin Piso Tecnológico", "Cobertura Piso Tecnológico (%)"}, report.FloorCoverage},
	}
	for _, s := range sheets {
		w := &sheetWriter{f: f, sheet: s.name, row: 1}
		w.line(st.header, s.header...)
		for _, c := range s.rows {
			w.line(0, c.Category, c.Total, c.Covered, c.Total-c.Covered, c.CoverageRate)
		}
		if w.err != nil {
			return nil, fmt.Errorf("escribir %s: %w", s.name, w.err)
		}
		if err := f.SetColWidth(s.name, "A", "E", 28); err != nil {
			return nil, err
		}
	}
	return finish(f)
}

// ── Formato ──────────────────────────────────────────────────────────────────

func orNoData(p *string) string {
	if p == nil || *p == "" {
		return noData
	}
	return *p
}

func orNA(p *string) string {
	if p == nil || *p == "" {
		return "N/A"
	}
	return *p
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

func upperYesNo(b bool) string {
	if b {
		return "SÍ"
	}
	return "NO"
}

func date(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func coordinate(d *decimal.Decimal) string {
	if d == nil {
		return noData
	}
	return d.StringFixed(6)
}

func coordinates(lat, lng *decimal.Decimal) string {
	if lat == nil || lng == nil {
		return noData
	}
	return lat.StringFixed(6) + ", " + lng.StringFixed(6)
}
