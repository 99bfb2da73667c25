package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/registro-escuelas/internal/domain/entity"
	"github.com/jhoicas/registro-escuelas/internal/domain/normalize"
)

// TemplateFileName nombre de descarga de la plantilla.
const TemplateFileName = "plantilla_carga_masiva.csv"

// ExportFileName nombre de descarga de la exportación completa.
func ExportFileName(now time.Time) string {
	return "escuelas_export_" + now.Format("20060102_1504") + ".csv"
}

// Writer escribe escuelas en el formato canónico. El archivo resultante se puede volver a importar.
type Writer struct {
	w       *csv.Writer
	started bool
}

// NewWriter construye el writer; el encabezado se escribe con la primera escuela (o en Flush).
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: csv.NewWriter(w)}
}

func (w *Writer) header() error {
	if w.started {
		return nil
	}
	w.started = true
	if err := w.w.Write(Header()); err != nil {
		return fmt.Errorf("escribir encabezado: %w", err)
	}
	return nil
}

// Write agrega una escuela.
func (w *Writer) Write(rec entity.SchoolRecord) error {
	if err := w.header(); err != nil {
		return err
	}
	if err := w.w.Write(RecordRow(rec)); err != nil {
		return fmt.Errorf("escribir escuela %s: %w", rec.CUE, err)
	}
	return nil
}

// Flush vacía el buffer. Un export sin escuelas igual lleva encabezado.
func (w *Writer) Flush() error {
	if err := w.header(); err != nil {
		return err
	}
	w.w.Flush()
	return w.w.Error()
}

// RecordRow convierte una escuela en la fila canónica.
func RecordRow(rec entity.SchoolRecord) []string {
	raw := normalize.RawRow{
		CUE:               rec.CUE,
		ProvincialKey:     rec.ProvincialKey,
		Name:              rec.Name,
		Address:           rec.Address,
		Enrollment:        strconv.Itoa(rec.Enrollment),
		Latitude:          fixed(rec.Latitude),
		Longitude:         fixed(rec.Longitude),
		Region:            str(rec.Region),
		District:          str(rec.District),
		City:              str(rec.City),
		Scope:             str(rec.Scope),
		Authority:         str(rec.Authority),
		Shift:             str(rec.Shift),
		Category:          str(rec.Category),
		EstablishmentType: str(rec.EstablishmentType),
		HasInternet:       yesNo(rec.HasInternet),
		SpeedMbps:         "0",
		HasFloor:          yesNo(rec.HasFloor),
	}
	if rec.SiteNumber != 0 {
		raw.SiteNumber = strconv.Itoa(rec.SiteNumber)
	}
	if c := rec.Connectivity; c != nil {
		raw.InternetProvider = str(c.Provider)
		raw.SpeedMbps = strconv.Itoa(c.SpeedMbps)
		raw.ConnectivityState = str(c.State)
		raw.InstallDate = isoDate(c.InstallDate)
		raw.InternetUpgradeDate = isoDate(c.UpgradeDate)
		raw.RequestMethod = str(c.RequestMethod)
		raw.InternetNotes = normalize.FlattenLines(c.Notes)
	}
	if f := rec.Floor; f != nil {
		raw.FloorProvider = str(f.Provider)
		raw.FloorPlan = str(f.Plan)
		raw.FloorType = str(f.InstalledType)
		raw.FloorCompletionDate = isoDate(f.CompletionDate)
		raw.FloorUpgradeType = f.UpgradeType
		raw.FloorUpgradeDate = isoDate(f.UpgradeDate)
		raw.FloorNotes = normalize.FlattenLines(f.Notes)
	}
	return rawToRow(&raw)
}

func rawToRow(raw *normalize.RawRow) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = *c.field(raw)
	}
	return out
}

// exampleRow fila de ejemplo de la plantilla.
var exampleRow = normalize.RawRow{
	CUE:               "012345678",
	ProvincialKey:     "CP001",
	Name:              "Escuela Modelo",
	Address:           "Av. Siempre Viva 123",
	Enrollment:        "500",
	Latitude:          "-34.6037",
	Longitude:         "-58.3816",
	Region:            "Región 1",
	District:          "Distrito Central",
	City:              "Capital",
	Scope:             "Urbano",
	Authority:         "Nacional",
	Shift:             "Mañana",
	Category:          "Nivel Primario",
	EstablishmentType: "Pública",
	SiteNumber:        "P-001",
	HasInternet:       "Sí",
	InternetProvider:  "Telecom",
	SpeedMbps:         "100",
	ConnectivityState: "Activo",
	InstallDate:       "2023-01-15",
	RequestMethod:     "Presencial",
	InternetNotes:     "Buena velocidad",
	HasFloor:          "No",
}

// WriteTemplate escribe el encabezado canónico y una fila de ejemplo.
func WriteTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	row := exampleRow
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("escribir plantilla: %w", err)
	}
	if err := cw.Write(rawToRow(&row)); err != nil {
		return fmt.Errorf("escribir plantilla: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

func isoDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func fixed(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(6)
}
