package csvio

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/registro-escuelas/internal/domain/entity"
	"github.com/jhoicas/registro-escuelas/internal/domain/normalize"
	"github.com/jhoicas/registro-escuelas/pkg/config"
)

func ptr[T any](v T) *T { return &v }

// ─────────────────────────────────────────────────────────────────────────────
// Encabezados
// ─────────────────────────────────────────────────────────────────────────────

func TestHeaderKey(t *testing.T) {
	cases := map[string]string{
		"Internet_Tiene (Sí/No)":                  "internet_tiene",
		"Piso_Fecha_Terminado (AAAA-MM-DD)":       "piso_fecha_terminado",
		"  Dirección ":                            "direccion",
		"Tipo Establecimiento":                    "tipo_establecimiento",
		"Número-Predio":                           "numero_predio",
		"\ufeffCUE":                               "cue",
		"Internet_Fecha_Instalacion (AAAA-MM-DD)": "internet_fecha_instalacion",
	}
	for in, want := range cases {
		assert.Equal(t, want, HeaderKey(in), "encabezado %q", in)
	}
}

func TestHeader_TieneTreintaYDosColumnas(t *testing.T) {
	h := Header()
	require.Len(t, h, 32)
	assert.Equal(t, "CUE", h[0])
	assert.Equal(t, "Piso_Observaciones", h[31])
}

// ─────────────────────────────────────────────────────────────────────────────
// Lectura
// ─────────────────────────────────────────────────────────────────────────────

func TestRead_EncabezadoCanonicoYPlantilla(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf))

	src, err := Read(&buf, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, src.Len())

	line, raw, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, line)
	assert.Equal(t, "012345678", raw.CUE)
	assert.Equal(t, "Sí", raw.HasInternet)
	assert.Equal(t, "2023-01-15", raw.InstallDate)
	assert.Equal(t, "P-001", raw.SiteNumber)

	_, _, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestRead_NombresHeredados(t *testing.T) {
	in := "cue,nombre_escuela,direccion,tiene_internet,proveedor_conectividad,predio,extra\n" +
		"1,Escuela A,Calle 1,si,Claro,7,ignorada\n"

	src, err := Read(strings.NewReader(in), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"extra"}, src.Unknown)

	_, raw, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, "Escuela A", raw.Name)
	assert.Equal(t, "si", raw.HasInternet)
	assert.Equal(t, "Claro", raw.InternetProvider)
	assert.Equal(t, "7", raw.SiteNumber)
}

func TestRead_ColumnaDuplicadaConservaLaPrimera(t *testing.T) {
	in := "CUE,Nombre,Direccion,nombre_escuela\n" +
		"1,Escuela A,Calle 1,Escuela B\n"

	src, err := Read(strings.NewReader(in), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"nombre_escuela"}, src.Unknown)

	_, raw, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, "Escuela A", raw.Name)
}

func TestRead_FilaCortaSeCompletaConVacios(t *testing.T) {
	in := "CUE,Nombre,Direccion,Matricula\n1,A\n"
	src, err := Read(strings.NewReader(in), Options{})
	require.NoError(t, err)

	_, raw, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, "A", raw.Name)
	assert.Equal(t, "", raw.Address)
	assert.Equal(t, "", raw.Enrollment)
}

func TestRead_FaltaColumnaObligatoria(t *testing.T) {
	_, err := Read(strings.NewReader("CUE,Nombre\n1,A\n"), Options{})
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "direccion")
}

func TestRead_ArchivoVacio(t *testing.T) {
	_, err := Read(strings.NewReader("\ufeff  \n"), Options{})
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestRead_UTF8EstrictoRechazaLatin1(t *testing.T) {
	// "Región" en windows-1252
	in := []byte("CUE,Nombre,Direccion,Region\n1,A,B,Regi\xf3n\n")

	_, err := Read(bytes.NewReader(in), Options{Charset: CharsetUTF8})
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	src, err := Read(bytes.NewReader(in), Options{Charset: CharsetLatin1})
	require.NoError(t, err)
	_, raw, _ := src.Next()
	assert.Equal(t, "Región", raw.Region)

	src, err = Read(bytes.NewReader(in), Options{Charset: CharsetAuto})
	require.NoError(t, err)
	_, raw, _ = src.Next()
	assert.Equal(t, "Región", raw.Region)
}

func TestRead_CharsetDesconocido(t *testing.T) {
	_, err := Read(strings.NewReader("CUE,Nombre,Direccion\n"), Options{Charset: "ebcdic"})
	assert.ErrorIs(t, err, ErrUnknownCharset)
}

func TestRead_SaltarFilasYDelimitador(t *testing.T) {
	in := "CUE;Nombre;Direccion\nnota;no;importar\n2;B;Calle 2\n"
	src, err := Read(strings.NewReader(in), Options{Delimiter: ';', SkipRows: 1})
	require.NoError(t, err)
	require.Equal(t, 1, src.Len())

	line, raw, _ := src.Next()
	assert.Equal(t, 3, line, "el número de línea cuenta las filas saltadas")
	assert.Equal(t, "2", raw.CUE)
}

// ─────────────────────────────────────────────────────────────────────────────
// Escritura e ida y vuelta
// ─────────────────────────────────────────────────────────────────────────────

func fullRecord() entity.SchoolRecord {
	lat := decimal.RequireFromString("-34.603700")
	lng := decimal.RequireFromString("-58.381600")
	install := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
	done := time.Date(2022, 6, 30, 0, 0, 0, 0, time.UTC)
	return entity.SchoolRecord{
		CUE:           "012345678",
		ProvincialKey: "CP001",
		Name:          "Escuela Modelo",
		Address:       "Av. Siempre Viva 123",
		Enrollment:    500,
		HasInternet:   true,
		HasFloor:      true,
		Latitude:      &lat,
		Longitude:     &lng,
		SiteNumber:    12,
		Region:        ptr("Región 1"),
		Category:      ptr("PNCE"),
		Connectivity: &entity.ConnectivityRecord{
			Provider:    ptr("Telecom"),
			State:       ptr("Activo"),
			SpeedMbps:   100,
			InstallDate: &install,
			Notes:       "línea 1\r\nlínea 2",
		},
		Floor: &entity.FloorRecord{
			Plan:           ptr("Plan Federal"),
			CompletionDate: &done,
			UpgradeType:    "Ampliación",
		},
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(config.ImportConfig{Charset: "latin1", Delimiter: ";", SkipRows: 2})
	assert.Equal(t, Options{Charset: "latin1", Delimiter: ';', SkipRows: 2}, opts)

	opts = OptionsFromConfig(config.ImportConfig{Delimiter: ""})
	assert.Equal(t, rune(0), opts.Delimiter, "sin delimitador se usa la coma del lector")
}

func TestRecordRow_Formato(t *testing.T) {
	row := RecordRow(fullRecord())
	require.Len(t, row, 32)
	assert.Equal(t, "-34.603700", row[5])
	assert.Equal(t, "12", row[15])
	assert.Equal(t, "Sí", row[16])
	assert.Equal(t, "2023-01-15", row[20])
	assert.Equal(t, "línea 1 línea 2", row[23], "las observaciones se aplanan")

	empty := RecordRow(entity.SchoolRecord{CUE: "1", Name: "A", Address: "B"})
	assert.Equal(t, "", empty[5], "coordenada nula se exporta vacía")
	assert.Equal(t, "", empty[15], "predio 0 se exporta vacío")
	assert.Equal(t, "No", empty[16])
	assert.Equal(t, "0", empty[18], "sin servicio la velocidad es 0")
}

func TestExportacionReimportable(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Write(fullRecord()))
	require.NoError(t, w.Flush())

	src, err := Read(&buf, Options{})
	require.NoError(t, err)
	line, raw, err := src.Next()
	require.NoError(t, err)

	row, warnings, rerr := normalize.NewNormalizer(nil).Normalize(line, raw)
	require.Nil(t, rerr)
	assert.Empty(t, warnings)

	assert.Equal(t, "012345678", row.CUE)
	require.NotNil(t, row.ProvincialKey)
	assert.Equal(t, "CP001", *row.ProvincialKey)
	assert.Equal(t, 500, row.Enrollment)
	assert.Equal(t, "-34.603700", row.Latitude.StringFixed(6))
	assert.Equal(t, 12, row.SiteNumber)
	assert.True(t, row.HasInternet)
	assert.True(t, row.HasFloor)
	assert.Equal(t, "Región 1", row.Region)
	assert.Equal(t, "Telecom", row.Connectivity.Provider)
	assert.Equal(t, 100, row.Connectivity.SpeedMbps)
	require.NotNil(t, row.Connectivity.InstallDate)
	assert.Equal(t, "2023-01-15", row.Connectivity.InstallDate.Format("2006-01-02"))
	assert.Equal(t, "Plan Federal", row.Floor.Plan)
	assert.Equal(t, "Ampliación", row.Floor.UpgradeType)
}

func TestWriter_SinEscuelasSoloEncabezado(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).Flush())

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, Header(), records[0])
}

func TestExportFileName(t *testing.T) {
	now := time.Date(2024, 3, 5, 9, 7, 0, 0, time.UTC)
	assert.Equal(t, "escuelas_export_20240305_0907.csv", ExportFileName(now))
}
