// Package csvio lee y escribe el formato CSV de carga masiva de escuelas.
//
// Las columnas se identifican por nombre. Antes de comparar, cada encabezado se normaliza:
// se quita el sufijo entre paréntesis ("(Sí/No)", "(AAAA-MM-DD)"), los acentos y las
// mayúsculas, y los espacios o guiones pasan a "_". Así "Internet_Tiene (Sí/No)" y
// "internet tiene" resuelven a la misma columna.
package csvio

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/registro-escuelas/internal/domain/normalize"
)

// column columna del formato canónico y el campo de RawRow que alimenta.
type column struct {
	header string
	field  func(r *normalize.RawRow) *string
}

// columns orden canónico de exportación, plantilla e importación.
var columns = []column{
	{"CUE", func(r *normalize.RawRow) *string { return &r.CUE }},
	{"Clave_Provincial", func(r *normalize.RawRow) *string { return &r.ProvincialKey }},
	{"Nombre", func(r *normalize.RawRow) *string { return &r.Name }},
	{"Direccion", func(r *normalize.RawRow) *string { return &r.Address }},
	{"Matricula", func(r *normalize.RawRow) *string { return &r.Enrollment }},
	{"Latitud", func(r *normalize.RawRow) *string { return &r.Latitude }},
	{"Longitud", func(r *normalize.RawRow) *string { return &r.Longitude }},
	{"Region", func(r *normalize.RawRow) *string { return &r.Region }},
	{"Distrito", func(r *normalize.RawRow) *string { return &r.District }},
	{"Ciudad", func(r *normalize.RawRow) *string { return &r.City }},
	{"Ambito", func(r *normalize.RawRow) *string { return &r.Scope }},
	{"Dependencia", func(r *normalize.RawRow) *string { return &r.Authority }},
	{"Turno", func(r *normalize.RawRow) *string { return &r.Shift }},
	{"Categoria", func(r *normalize.RawRow) *string { return &r.Category }},
	{"Tipo_Establecimiento", func(r *normalize.RawRow) *string { return &r.EstablishmentType }},
	{"Numero_Predio", func(r *normalize.RawRow) *string { return &r.SiteNumber }},
	{"Internet_Tiene (Sí/No)", func(r *normalize.RawRow) *string { return &r.HasInternet }},
	{"Internet_Proveedor", func(r *normalize.RawRow) *string { return &r.InternetProvider }},
	{"Internet_Velocidad_Mbps", func(r *normalize.RawRow) *string { return &r.SpeedMbps }},
	{"Internet_Estado_Conectividad", func(r *normalize.RawRow) *string { return &r.ConnectivityState }},
	{"Internet_Fecha_Instalacion (AAAA-MM-DD)", func(r *normalize.RawRow) *string { return &r.InstallDate }},
	{"Internet_Fecha_Mejora (AAAA-MM-DD)", func(r *normalize.RawRow) *string { return &r.InternetUpgradeDate }},
	{"Internet_Metodo_Solicitud", func(r *normalize.RawRow) *string { return &r.RequestMethod }},
	{"Internet_Observaciones", func(r *normalize.RawRow) *string { return &r.InternetNotes }},
	{"Piso_Tiene (Sí/No)", func(r *normalize.RawRow) *string { return &r.HasFloor }},
	{"Piso_Proveedor", func(r *normalize.RawRow) *string { return &r.FloorProvider }},
	{"Piso_Plan", func(r *normalize.RawRow) *string { return &r.FloorPlan }},
	{"Piso_Tipo_Instalado", func(r *normalize.RawRow) *string { return &r.FloorType }},
	{"Piso_Fecha_Terminado (AAAA-MM-DD)", func(r *normalize.RawRow) *string { return &r.FloorCompletionDate }},
	{"Piso_Tipo_Mejora", func(r *normalize.RawRow) *string { return &r.FloorUpgradeType }},
	{"Piso_Fecha_Mejora (AAAA-MM-DD)", func(r *normalize.RawRow) *string { return &r.FloorUpgradeDate }},
	{"Piso_Observaciones", func(r *normalize.RawRow) *string { return &r.FloorNotes }},
}

// aliases nombres heredados de los comandos de carga anteriores (snake_case) -> clave canónica.
var aliases = map[string]string{
	"nombre_escuela":                 "nombre",
	"predio":                         "numero_predio",
	"tiene_internet":                 "internet_tiene",
	"proveedor_internet":             "internet_proveedor",
	"proveedor_conectividad":         "internet_proveedor",
	"velocidad_mbps":                 "internet_velocidad_mbps",
	"estado_conectividad":            "internet_estado_conectividad",
	"fecha_instalacion":              "internet_fecha_instalacion",
	"fecha_instalacion_conectividad": "internet_fecha_instalacion",
	"fecha_mejora_conectividad":      "internet_fecha_mejora",
	"metodo_solicitud":               "internet_metodo_solicitud",
	"observaciones_conectividad":     "internet_observaciones",
	"tiene_piso":                     "piso_tiene",
	"tiene_piso_tecnologico":         "piso_tiene",
	"proveedor_piso":                 "piso_proveedor",
	"plan_piso":                      "piso_plan",
	"tipo_piso_instalado":            "piso_tipo_instalado",
	"fecha_terminado_piso":           "piso_fecha_terminado",
	"tipo_mejora":                    "piso_tipo_mejora",
	"fecha_mejora_piso":              "piso_fecha_mejora",
	"observaciones_piso":             "piso_observaciones",
}

// requiredKeys columnas sin las cuales el archivo no se puede importar.
var requiredKeys = []string{"cue", "nombre", "direccion"}

var (
	parenSuffix = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	separators  = regexp.MustCompile(`[\s\-_]+`)
)

// HeaderKey normaliza un encabezado para compararlo con las columnas conocidas.
func HeaderKey(h string) string {
	s := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	s = parenSuffix.ReplaceAllString(s, "")
	s = stripAccents(strings.ToLower(s))
	s = separators.ReplaceAllString(strings.TrimSpace(s), "_")
	return strings.Trim(s, "_")
}

func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// columnIndex clave normalizada -> posición en columns.
var columnIndex = func() map[string]int {
	m := make(map[string]int, len(columns)+len(aliases))
	for i, c := range columns {
		m[HeaderKey(c.header)] = i
	}
	for alias, key := range aliases {
		m[alias] = m[key]
	}
	return m
}()

// Header encabezado canónico en orden.
func Header() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.header
	}
	return out
}
