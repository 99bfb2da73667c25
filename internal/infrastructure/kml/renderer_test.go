package kml

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/registro-escuelas/internal/domain/entity"
)

func TestPlacemarks_CoordenadasYEstilo(t *testing.T) {
	lat := decimal.RequireFromString("-34.6037")
	lng := decimal.RequireFromString("-58.3816")
	region := "Región I"
	points := []entity.MapPoint{
		{CUE: "1", Name: "Escuela & Co", Latitude: &lat, Longitude: &lng, HasInternet: true, RegionName: &region, SiteNumber: 4},
		{CUE: "2", Name: "Sin coordenadas"},
	}

	b, err := NewRenderer().Placemarks("Escuelas", points)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(b), "el KML debe ser XML válido")
	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "kml", root.Tag)
	assert.Equal(t, namespace, root.SelectAttrValue("xmlns", ""))

	pms := doc.FindElements("//Placemark")
	require.Len(t, pms, 1, "los puntos sin coordenadas se omiten")
	pm := pms[0]
	assert.Equal(t, "Escuela & Co", pm.SelectElement("name").Text())
	assert.Equal(t, "#"+StyleConnected, pm.SelectElement("styleUrl").Text())
	assert.Equal(t, "-58.381600,-34.603700,0", pm.FindElement("Point/coordinates").Text())
	assert.Contains(t, pm.SelectElement("description").Text(), "Región: Región I")
	assert.Equal(t, "4", pm.FindElement("ExtendedData/Data[@name='numero_predio']/value").Text())
}

func TestPlacemarks_SinPuntos(t *testing.T) {
	b, err := NewRenderer().Placemarks("Vacío", nil)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(b))
	assert.Empty(t, doc.FindElements("//Placemark"))
	assert.Len(t, doc.FindElements("//Style"), 2)
}
