// Package pdf genera la ficha imprimible de una escuela con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre de la escuela     │  CUE + Predio            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  INFORMACIÓN GENERAL: campo | valor (dos columnas)          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONECTIVIDAD: proveedor / estado / velocidad / fechas      │
//	│  PISO TECNOLÓGICO: plan / proveedor / tipo / fechas         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  OTRAS ESCUELAS DEL PREDIO: CUE | Nombre | Internet         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el CUE + fecha de emisión                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/registro-escuelas/internal/application/ports"
	"github.com/jhoicas/registro-escuelas/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorGreen   = &props.Color{Red: 0, Green: 128, Blue: 64}
	colorRed     = &props.Color{Red: 180, Green: 30, Blue: 30}
)

const noData = "Sin datos"

// ── Generator ─────────────────────────────────────────────────────────────────

var _ ports.PDFRenderer = (*SchoolSheetGenerator)(nil)

// SchoolSheetGenerator implementa ports.PDFRenderer usando Maroto v2.
type SchoolSheetGenerator struct {
	now func() time.Time
}

// NewSchoolSheetGenerator construye el generador.
func NewSchoolSheetGenerator() *SchoolSheetGenerator {
	return &SchoolSheetGenerator{now: time.Now}
}

// SchoolSheet genera la ficha y devuelve sus bytes.
func (g *SchoolSheetGenerator) SchoolSheet(rec *entity.SchoolRecord, sameSite []entity.SchoolSummary) ([]byte, error) {
	if rec == nil {
		return nil, fmt.Errorf("pdf: escuela nula")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Ficha de Escuela "+rec.CUE, true).
		WithAuthor("Registro de Escuelas", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(rec))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(sectionRow("INFORMACIÓN GENERAL"))
	m.AddRows(fieldRows(generalFields(rec))...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionRow("CONECTIVIDAD"))
	m.AddRows(connectivityRows(rec.Connectivity)...)

	m.AddRows(sectionRow("PISO TECNOLÓGICO"))
	m.AddRows(floorRows(rec.Floor)...)

	if len(sameSite) > 0 {
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
		m.AddRows(sectionRow("OTRAS ESCUELAS DEL PREDIO"))
		m.AddRows(siteTableHeaderRow())
		m.AddRows(siteTableRows(sameSite)...)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(rec, g.now()))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre (izq) y CUE + predio (der).
func headerRow(rec *entity.SchoolRecord) core.Row {
	site := "Sin predio"
	if rec.SiteNumber != 0 {
		site = "Predio N° " + strconv.Itoa(rec.SiteNumber)
	}
	return row.New(18).Add(
		col.New(8).Add(
			text.New(rec.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(rec.Address, noData), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("FICHA DE ESCUELA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("CUE "+rec.CUE, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New(site, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func sectionRow(title string) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 2,
		}),
	))
}

// fieldRows: pares campo | valor, dos por fila.
func fieldRows(fields [][2]string) []core.Row {
	label := func(s string) core.Col {
		return col.New(2).Add(text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 8, Top: 1, Color: colorGray,
		}))
	}
	value := func(s string) core.Col {
		return col.New(4).Add(text.New(s, props.Text{Size: 8, Top: 1, Right: 2}))
	}

	rows := make([]core.Row, 0, (len(fields)+1)/2)
	for i := 0; i < len(fields); i += 2 {
		cols := []core.Col{label(fields[i][0]), value(fields[i][1])}
		if i+1 < len(fields) {
			cols = append(cols, label(fields[i+1][0]), value(fields[i+1][1]))
		}
		rows = append(rows, row.New(6).Add(cols...))
	}
	return rows
}

func generalFields(rec *entity.SchoolRecord) [][2]string {
	return [][2]string{
		{"CUE", rec.CUE},
		{"Clave provincial", nonEmpty(rec.ProvincialKey, noData)},
		{"Región", orNoData(rec.Region)},
		{"Distrito", orNoData(rec.District)},
		{"Ciudad", orNoData(rec.City)},
		{"Ámbito", orNoData(rec.Scope)},
		{"Dependencia", orNoData(rec.Authority)},
		{"Turno", orNoData(rec.Shift)},
		{"Categoría", orNoData(rec.Category)},
		{"Tipo", orNoData(rec.EstablishmentType)},
		{"Matrícula", strconv.Itoa(rec.Enrollment)},
		{"Coordenadas", coordinates(rec.Latitude, rec.Longitude)},
	}
}

func connectivityRows(c *entity.ConnectivityRecord) []core.Row {
	if c == nil {
		return []core.Row{emptyRow("No hay datos de conectividad.")}
	}
	return fieldRows([][2]string{
		{"Proveedor", orNoData(c.Provider)},
		{"Estado", orNoData(c.State)},
		{"Velocidad", strconv.Itoa(c.SpeedMbps) + " Mbps"},
		{"Solicitud", orNoData(c.RequestMethod)},
		{"Instalación", date(c.InstallDate)},
		{"Mejora", date(c.UpgradeDate)},
		{"Observaciones", nonEmpty(c.Notes, "-")},
	})
}

func floorRows(f *entity.FloorRecord) []core.Row {
	if f == nil {
		return []core.Row{emptyRow("No hay datos de piso tecnológico.")}
	}
	return fieldRows([][2]string{
		{"Plan", orNoData(f.Plan)},
		{"Proveedor", orNoData(f.Provider)},
		{"Tipo instalado", orNoData(f.InstalledType)},
		{"Terminación", date(f.CompletionDate)},
		{"Tipo de mejora", nonEmpty(f.UpgradeType, "-")},
		{"Fecha de mejora", date(f.UpgradeDate)},
		{"Observaciones", nonEmpty(f.Notes, "-")},
	})
}

func emptyRow(msg string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(msg, props.Text{
			Style: fontstyle.Italic, Size: 8, Align: align.Center, Color: colorGray, Top: 1,
		}),
	))
}

// siteTableHeaderRow: cabecera de la tabla de escuelas del mismo predio.
func siteTableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("CUE", 2, align.Left),
		h("Nombre", 6, align.Left),
		h("Categoría", 2, align.Left),
		h("Internet", 2, align.Center),
	)
}

func siteTableRows(items []entity.SchoolSummary) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, s := range items {
		internet, color := "NO", colorRed
		if s.HasInternet {
			internet, color = "SÍ", colorGreen
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(s.CUE, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(6).Add(text.New(s.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(orNoData(s.Category), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(internet, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Center, Top: 1, Color: color,
			})),
		))
	}
	return result
}

// footerRow: QR con el CUE + leyenda.
func footerRow(rec *entity.SchoolRecord, now time.Time) core.Row {
	return row.New(32).Add(
		col.New(3).Add(code.NewQr(rec.CUE, props.Rect{
			Percent: 90,
			Center:  true,
		})),
		col.New(9).Add(
			text.New("Documento generado por el Registro de Escuelas.", props.Text{
				Size: 8, Top: 8, Left: 3, Color: colorGray,
			}),
			text.New("Emitido el "+now.Format("02/01/2006 15:04"), props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 16, Left: 3, Color: colorPrimary,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func orNoData(p *string) string {
	if p == nil || *p == "" {
		return noData
	}
	return *p
}

func date(t *time.Time) string {
	if t == nil {
		return noData
	}
	return t.Format("02/01/2006")
}

func coordinates(lat, lng *decimal.Decimal) string {
	if lat == nil || lng == nil {
		return noData
	}
	return lat.StringFixed(6) + ", " + lng.StringFixed(6)
}
