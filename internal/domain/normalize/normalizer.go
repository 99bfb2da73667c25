package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/registro-escuelas/pkg/validator"
)

var (
	maxLatitude  = decimal.NewFromInt(90)
	maxLongitude = decimal.NewFromInt(180)
	maxInteger   = decimal.NewFromInt(math.MaxInt32)

	affirmative = map[string]bool{"SI": true, "SÍ": true, "TRUE": true}

	dateLayouts = []string{"2006-01-02", "02/01/2006", "01/02/2006"}
)

// coordScale decimales que conserva la base (numeric(9,6)).
const coordScale = 6

// Normalizer aplica las reglas de conversión de una fila. Es seguro para uso concurrente.
type Normalizer struct {
	v *validator.Validator
}

// NewNormalizer construye el normalizador.
func NewNormalizer(v *validator.Validator) *Normalizer {
	if v == nil {
		v = validator.New()
	}
	return &Normalizer{v: v}
}

// Normalize convierte raw en una Row. line es el número físico de registro en el archivo.
// Si la fila se rechaza devuelve un RowError y ninguna Row.
func (n *Normalizer) Normalize(line int, raw RawRow) (*Row, []Warning, *RowError) {
	p := &parser{line: line}

	row := &Row{
		Line:    line,
		CUE:     strings.TrimSpace(raw.CUE),
		Name:    CanonicalName(raw.Name),
		Address: CanonicalName(raw.Address),
	}
	if err := n.v.Struct(row); err != nil {
		field := "cue"
		if fe, ok := validator.FirstError(err); ok {
			field = fe.Field
		}
		return nil, nil, &RowError{Line: line, Field: field, Reason: "campo obligatorio vacío"}
	}

	var rejected *RowError
	row.Latitude, rejected = p.coordinate("latitud", raw.Latitude, maxLatitude)
	if rejected != nil {
		return nil, nil, rejected
	}
	row.Longitude, rejected = p.coordinate("longitud", raw.Longitude, maxLongitude)
	if rejected != nil {
		return nil, nil, rejected
	}

	if pk := strings.TrimSpace(raw.ProvincialKey); pk != "" {
		row.ProvincialKey = &pk
	}
	row.Enrollment = p.integer("matricula", raw.Enrollment)
	row.SiteNumber = p.siteNumber(raw.SiteNumber)
	row.HasInternet = ParseBool(raw.HasInternet)
	row.HasFloor = ParseBool(raw.HasFloor)

	row.Region = CanonicalName(raw.Region)
	row.District = CanonicalName(raw.District)
	row.City = CanonicalName(raw.City)
	row.Scope = CanonicalName(raw.Scope)
	row.Authority = CanonicalName(raw.Authority)
	row.Shift = CanonicalName(raw.Shift)
	row.Category = CanonicalName(raw.Category)
	row.EstablishmentType = CanonicalName(raw.EstablishmentType)

	row.Connectivity = ConnectivityFields{
		Provider:      CanonicalName(raw.InternetProvider),
		State:         CanonicalName(raw.ConnectivityState),
		RequestMethod: CanonicalName(raw.RequestMethod),
		SpeedMbps:     p.integer("velocidad_mbps", raw.SpeedMbps),
		InstallDate:   p.date("fecha_instalacion", raw.InstallDate),
		UpgradeDate:   p.date("fecha_mejora_internet", raw.InternetUpgradeDate),
		Notes:         strings.TrimSpace(raw.InternetNotes),
	}
	row.Floor = FloorFields{
		Provider:       CanonicalName(raw.FloorProvider),
		Plan:           CanonicalName(raw.FloorPlan),
		InstalledType:  CanonicalName(raw.FloorType),
		CompletionDate: p.date("fecha_terminado", raw.FloorCompletionDate),
		UpgradeType:    strings.TrimSpace(raw.FloorUpgradeType),
		UpgradeDate:    p.date("fecha_mejora_piso", raw.FloorUpgradeDate),
		Notes:          strings.TrimSpace(raw.FloorNotes),
	}

	return row, p.warnings, nil
}

// ParseBool interpreta los tokens afirmativos SI, SÍ y TRUE. Cualquier otro valor es falso.
func ParseBool(raw string) bool {
	s := strings.ToUpper(norm.NFC.String(strings.TrimSpace(raw)))
	return affirmative[s]
}

// ParseDate prueba los formatos conocidos en orden. ok=false si ninguno coincide.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parser acumula las advertencias de una fila.
type parser struct {
	line     int
	warnings []Warning
}

func (p *parser) warn(field, msg string) {
	p.warnings = append(p.warnings, Warning{Line: p.line, Field: field, Message: msg})
}

func (p *parser) integer(field, raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// "500.0" es habitual en archivos exportados desde planillas.
		d, derr := decimal.NewFromString(s)
		if derr != nil || !d.IsInteger() {
			p.warn(field, "valor entero inválido "+strconv.Quote(s)+", se usa 0")
			return 0
		}
		if d.GreaterThan(maxInteger) {
			p.warn(field, "valor fuera de rango "+strconv.Quote(s)+", se usa 0")
			return 0
		}
		if d.IsNegative() {
			p.warn(field, "valor negativo "+strconv.Quote(s)+", se usa 0")
			return 0
		}
		n = int(d.IntPart())
	}
	if n < 0 {
		p.warn(field, "valor negativo "+strconv.Quote(s)+", se usa 0")
		return 0
	}
	// Las columnas de la base son INTEGER.
	if n > math.MaxInt32 {
		p.warn(field, "valor fuera de rango "+strconv.Quote(s)+", se usa 0")
		return 0
	}
	return n
}

func (p *parser) siteNumber(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
	n, err := strconv.Atoi(digits)
	if err != nil {
		p.warn("numero_predio", "número de predio inválido "+strconv.Quote(s)+", se usa 0")
		return 0
	}
	p.warn("numero_predio", "número de predio "+strconv.Quote(s)+" interpretado como "+strconv.Itoa(n))
	return n
}

func (p *parser) date(field, raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	t, ok := ParseDate(s)
	if !ok {
		p.warn(field, "fecha no reconocida "+strconv.Quote(s)+", se deja vacía")
		return nil
	}
	return &t
}

func (p *parser) coordinate(field, raw string, limit decimal.Decimal) (*decimal.Decimal, *RowError) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return nil, &RowError{Line: p.line, Field: field, Reason: "coordenada inválida " + strconv.Quote(s)}
	}
	if d.Abs().GreaterThan(limit) {
		return nil, &RowError{Line: p.line, Field: field, Reason: "coordenada fuera de rango " + strconv.Quote(s)}
	}
	d = d.Round(coordScale)
	return &d, nil
}
