package csvio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/registro-escuelas/internal/application/importer"
	"github.com/jhoicas/registro-escuelas/internal/domain/normalize"
	"github.com/jhoicas/registro-escuelas/pkg/config"
)

// Charsets aceptados.
const (
	CharsetUTF8   = "utf-8"
	CharsetLatin1 = "latin1"
	CharsetAuto   = "auto"
)

var (
	ErrEmptyFile       = errors.New("archivo vacío")
	ErrInvalidEncoding = errors.New("el archivo no es UTF-8 válido")
	ErrMissingColumn   = errors.New("falta una columna obligatoria")
	ErrUnknownCharset  = errors.New("charset desconocido")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options lectura de un archivo de carga.
type Options struct {
	Charset   string // utf-8 (por defecto), latin1 o auto
	Delimiter rune   // ',' por defecto
	SkipRows  int    // filas a descartar después del encabezado
}

// OptionsFromConfig opciones por defecto tomadas de IMPORT_*.
func OptionsFromConfig(cfg config.ImportConfig) Options {
	opts := Options{Charset: cfg.Charset, SkipRows: cfg.SkipRows}
	if r := []rune(cfg.Delimiter); len(r) == 1 {
		opts.Delimiter = r[0]
	}
	return opts
}

// Source filas ya decodificadas, en orden de archivo. Implementa importer.RowSource.
type Source struct {
	rows []sourceRow
	pos  int
	// Unknown encabezados que no corresponden a ninguna columna (se ignoran).
	Unknown []string
}

type sourceRow struct {
	line int
	raw  normalize.RawRow
}

var _ importer.RowSource = (*Source)(nil)

// Next devuelve la siguiente fila o io.EOF.
func (s *Source) Next() (int, normalize.RawRow, error) {
	if s.pos >= len(s.rows) {
		return 0, normalize.RawRow{}, io.EOF
	}
	r := s.rows[s.pos]
	s.pos++
	return r.line, r.raw, nil
}

// Len cantidad de filas de datos.
func (s *Source) Len() int { return len(s.rows) }

// Read decodifica y parsea todo el archivo antes de devolver. Cualquier problema de
// codificación, de formato CSV o de encabezado se informa aquí, sin procesar filas.
func Read(r io.Reader, opts Options) (*Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("leer archivo: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}
	data, err = decode(data, opts.Charset)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}
	mapping, unknown, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	src := &Source{Unknown: unknown}
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if line-1 <= opts.SkipRows {
			continue
		}
		var raw normalize.RawRow
		for i, value := range record {
			if i < len(mapping) && mapping[i] >= 0 {
				*columns[mapping[i]].field(&raw) = value
			}
		}
		src.rows = append(src.rows, sourceRow{line: line, raw: raw})
	}
	return src, nil
}

// Opener adapta Read a la firma que recibe importer.Service.Import.
func Opener(r io.Reader, opts Options) importer.SourceFunc {
	return func() (importer.RowSource, error) {
		src, err := Read(r, opts)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
}

func decode(data []byte, charset string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", CharsetUTF8, "utf8":
		if !utf8.Valid(data) {
			return nil, ErrInvalidEncoding
		}
		return data, nil
	case CharsetLatin1, "iso-8859-1", "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Bytes(data)
	case CharsetAuto:
		if utf8.Valid(data) {
			return data, nil
		}
		return charmap.Windows1252.NewDecoder().Bytes(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCharset, charset)
	}
}

// mapHeader posición del archivo -> índice en columns (-1 = columna ignorada).
func mapHeader(header []string) ([]int, []string, error) {
	mapping := make([]int, len(header))
	seen := make(map[string]bool, len(header))
	var unknown []string
	for i, h := range header {
		key := HeaderKey(h)
		idx, ok := columnIndex[key]
		if !ok || key == "" {
			mapping[i] = -1
			if strings.TrimSpace(h) != "" {
				unknown = append(unknown, h)
			}
			continue
		}
		canonical := HeaderKey(columns[idx].header)
		if seen[canonical] {
			// La primera columna manda; los duplicados (p. ej. Nombre y nombre_escuela) se ignoran.
			mapping[i] = -1
			unknown = append(unknown, h)
			continue
		}
		mapping[i] = idx
		seen[canonical] = true
	}
	for _, k := range requiredKeys {
		if !seen[k] {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumn, k)
		}
	}
	return mapping, unknown, nil
}
