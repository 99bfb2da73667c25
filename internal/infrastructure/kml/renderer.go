// Package kml exporta escuelas como placemarks KML 2.2 (Google Earth, QGIS).
// El estilo del ícono distingue escuelas con y sin internet, igual que el mapa.
package kml

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"

	"github.com/jhoicas/registro-escuelas/internal/application/ports"
	"github.com/jhoicas/registro-escuelas/internal/domain/entity"
)

const namespace = "http://www.opengis.net/kml/2.2"

// Ids de estilo. Los colores KML son aabbggrr.
const (
	StyleConnected    = "conectada"
	StyleDisconnected = "sin-internet"
)

var styleColors = map[string]string{
	StyleConnected:    "ff00b050", // verde
	StyleDisconnected: "ff0000ff", // rojo
}

var _ ports.MapRenderer = (*Renderer)(nil)

// Renderer implementa ports.MapRenderer con etree.
type Renderer struct{}

// NewRenderer construye el renderer.
func NewRenderer() *Renderer { return &Renderer{} }

// Placemarks genera el documento. Los puntos sin coordenadas se omiten.
func (r *Renderer) Placemarks(title string, points []entity.MapPoint) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("kml")
	root.CreateAttr("xmlns", namespace)

	d := root.CreateElement("Document")
	d.CreateElement("name").SetText(title)
	for _, id := range []string{StyleConnected, StyleDisconnected} {
		st := d.CreateElement("Style")
		st.CreateAttr("id", id)
		st.CreateElement("IconStyle").CreateElement("color").SetText(styleColors[id])
	}

	for _, p := range points {
		if p.Latitude == nil || p.Longitude == nil {
			continue
		}
		pm := d.CreateElement("Placemark")
		pm.CreateElement("name").SetText(p.Name)
		pm.CreateElement("description").SetText(description(p))
		style := StyleDisconnected
		if p.HasInternet {
			style = StyleConnected
		}
		pm.CreateElement("styleUrl").SetText("#" + style)

		ext := pm.CreateElement("ExtendedData")
		addData(ext, "cue", p.CUE)
		addData(ext, "tiene_internet", strconv.FormatBool(p.HasInternet))
		addData(ext, "tiene_piso_tecnologico", strconv.FormatBool(p.HasFloor))
		if p.SiteNumber != 0 {
			addData(ext, "numero_predio", strconv.Itoa(p.SiteNumber))
		}

		// KML ordena longitud, latitud, altitud.
		coords := p.Longitude.StringFixed(6) + "," + p.Latitude.StringFixed(6) + ",0"
		pm.CreateElement("Point").CreateElement("coordinates").SetText(coords)
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("kml: serializar: %w", err)
	}
	return out, nil
}

func addData(parent *etree.Element, name, value string) {
	data := parent.CreateElement("Data")
	data.CreateAttr("name", name)
	data.CreateElement("value").SetText(value)
}

func description(p entity.MapPoint) string {
	region := "Sin datos"
	if p.RegionName != nil && *p.RegionName != "" {
		region = *p.RegionName
	}
	return fmt.Sprintf("CUE: %s\nRegión: %s\nInternet: %s\nPiso tecnológico: %s",
		p.CUE, region, yesNo(p.HasInternet), yesNo(p.HasFloor))
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}
