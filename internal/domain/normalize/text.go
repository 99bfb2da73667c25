package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CanonicalName limpia un texto libre de catálogo: recorta, normaliza a NFC y colapsa espacios internos.
// Devuelve "" si no queda contenido.
func CanonicalName(raw string) string {
	s := norm.NFC.String(raw)
	return strings.Join(strings.Fields(s), " ")
}

// NameKey forma comparable de un nombre de catálogo. Dos textos con la misma clave son la misma entrada.
func NameKey(raw string) string {
	return strings.ToLower(CanonicalName(raw))
}

// FlattenLines reemplaza saltos de línea (y sus espacios adyacentes) por un único espacio.
func FlattenLines(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	lines := strings.FieldsFunc(s, func(r rune) bool { return r == '\r' || r == '\n' })
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	out := lines[:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, " ")
}
