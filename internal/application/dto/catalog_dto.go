package dto

// CatalogKindResponse fila de la tabla de capacidades de catálogos.
type CatalogKindResponse struct {
	Kind        string `json:"slug"`
	Label       string `json:"etiqueta"`
	SearchField string `json:"campo_busqueda"`
}

// CatalogEntryResponse entrada de un catálogo.
type CatalogEntryResponse struct {
	ID   string `json:"id"`
	Name string `json:"nombre"`
}

// CatalogListResponse entradas de un catálogo ordenadas por nombre.
type CatalogListResponse struct {
	Kind  string                 `json:"slug"`
	Label string                 `json:"etiqueta"`
	Items []CatalogEntryResponse `json:"items"`
}

// SiteResponse predio.
type SiteResponse struct {
	ID     string `json:"id"`
	Number int    `json:"numero"`
}
