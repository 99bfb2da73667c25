// Package normalize convierte una fila cruda de importación en una fila tipada y validada.
//
// Reglas de conversión:
//   - enteros (matrícula, velocidad, predio): vacío = 0; mal formado o negativo = 0 con advertencia.
//   - coordenadas: vacío = nil; mal formada o fuera de rango = fila rechazada.
//   - booleanos: verdadero solo para SI, SÍ o TRUE (sin distinguir mayúsculas).
//   - fechas: AAAA-MM-DD, DD/MM/AAAA, MM/DD/AAAA en ese orden; sin coincidencia = nil con advertencia.
package normalize

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RawRow fila tal como llega del archivo, un campo por columna reconocida.
type RawRow struct {
	CUE               string
	ProvincialKey     string
	Name              string
	Address           string
	Enrollment        string
	Latitude          string
	Longitude         string
	Region            string
	District          string
	City              string
	Scope             string
	Authority         string
	Shift             string
	Category          string
	EstablishmentType string
	SiteNumber        string

	HasInternet         string
	InternetProvider    string
	SpeedMbps           string
	ConnectivityState   string
	InstallDate         string
	InternetUpgradeDate string
	RequestMethod       string
	InternetNotes       string

	HasFloor            string
	FloorProvider       string
	FloorPlan           string
	FloorType           string
	FloorCompletionDate string
	FloorUpgradeType    string
	FloorUpgradeDate    string
	FloorNotes          string
}

// Row fila normalizada lista para el upsert. Los nombres de catálogo ya están en forma canónica.
type Row struct {
	CUE     string `validate:"required" field:"cue"`
	Name    string `validate:"required" field:"nombre"`
	Address string `validate:"required" field:"direccion"`

	Line          int
	ProvincialKey *string
	Enrollment    int
	Latitude      *decimal.Decimal
	Longitude     *decimal.Decimal
	SiteNumber    int
	HasInternet   bool
	HasFloor      bool

	Region            string
	District          string
	City              string
	Scope             string
	Authority         string
	Shift             string
	Category          string
	EstablishmentType string

	Connectivity ConnectivityFields
	Floor        FloorFields
}

// ConnectivityFields columnas del servicio de internet.
type ConnectivityFields struct {
	Provider      string
	State         string
	RequestMethod string
	SpeedMbps     int
	InstallDate   *time.Time
	UpgradeDate   *time.Time
	Notes         string
}

// FloorFields columnas del piso tecnológico.
type FloorFields struct {
	Provider       string
	Plan           string
	InstalledType  string
	CompletionDate *time.Time
	UpgradeType    string
	UpgradeDate    *time.Time
	Notes          string
}

// RowError rechazo de una fila completa: no se persiste nada de ella.
type RowError struct {
	Line   int
	Field  string
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("fila %d: %s: %s", e.Line, e.Field, e.Reason)
}

// Warning valor no crítico reemplazado por su valor por defecto; la fila continúa.
type Warning struct {
	Line    int
	Field   string
	Message string
}
