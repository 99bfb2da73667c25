package entity

import "time"

// CatalogKind identifica una de las tablas de catálogo (lookup) del registro.
type CatalogKind string

const (
	KindRegion            CatalogKind = "regiones"
	KindDistrict          CatalogKind = "distritos"
	KindCity              CatalogKind = "ciudades"
	KindScope             CatalogKind = "ambitos"
	KindAuthority         CatalogKind = "dependencias"
	KindShift             CatalogKind = "turnos"
	KindCategory          CatalogKind = "categorias"
	KindEstablishmentType CatalogKind = "tipos-establecimiento"
	KindConnectivityState CatalogKind = "estados-conectividad"
	KindRequestMethod     CatalogKind = "metodos-solicitud"
	KindFloorType         CatalogKind = "tipos-piso"
	KindFloorPlan         CatalogKind = "planes-piso"
	KindInternetProvider  CatalogKind = "proveedores-internet"
	KindFloorProvider     CatalogKind = "proveedores-piso"
)

// CatalogEntry valor deduplicado de un catálogo. Name conserva la grafía de la primera aparición;
// NameKey es la forma comparable (minúsculas) sobre la que se aplica la unicidad.
type CatalogEntry struct {
	ID        string
	Kind      CatalogKind
	Name      string
	NameKey   string
	CreatedAt time.Time
}

// CatalogSpec describe un catálogo para el listado genérico: tabla, etiqueta y campo buscable.
type CatalogSpec struct {
	Kind        CatalogKind
	Table       string
	Label       string
	SearchField string
}

var catalogSpecs = []CatalogSpec{
	{KindRegion, "regions", "Regiones", "name"},
	{KindDistrict, "districts", "Distritos", "name"},
	{KindCity, "cities", "Ciudades", "name"},
	{KindScope, "scopes", "Ámbitos", "name"},
	{KindAuthority, "authorities", "Dependencias", "name"},
	{KindShift, "shifts", "Turnos", "name"},
	{KindCategory, "categories", "Categorías", "name"},
	{KindEstablishmentType, "establishment_types", "Tipos de establecimiento", "name"},
	{KindConnectivityState, "connectivity_states", "Estados de conectividad", "name"},
	{KindRequestMethod, "request_methods", "Métodos de solicitud", "name"},
	{KindFloorType, "floor_types", "Tipos de piso tecnológico", "name"},
	{KindFloorPlan, "floor_plans", "Planes de piso", "name"},
	{KindInternetProvider, "internet_providers", "Proveedores de internet", "name"},
	{KindFloorProvider, "floor_providers", "Proveedores de piso tecnológico", "name"},
}

// CatalogKinds devuelve la tabla de capacidades de todos los catálogos, en orden fijo.
func CatalogKinds() []CatalogSpec {
	out := make([]CatalogSpec, len(catalogSpecs))
	copy(out, catalogSpecs)
	return out
}

// LookupCatalog busca la especificación de un catálogo por su slug.
func LookupCatalog(kind CatalogKind) (CatalogSpec, bool) {
	for _, s := range catalogSpecs {
		if s.Kind == kind {
			return s, true
		}
	}
	return CatalogSpec{}, false
}
