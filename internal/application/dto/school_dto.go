package dto

// SchoolSearchRequest filtros de la búsqueda avanzada (query string).
// Los ids de catálogo se comparan exactos; cue, nombre y predio son subcadenas.
type SchoolSearchRequest struct {
	CUE                 string `query:"cue"`
	Name                string `query:"nombre"`
	SiteNumber          string `query:"predio"`
	RegionID            string `query:"region"`
	DistrictID          string `query:"distrito"`
	CityID              string `query:"ciudad"`
	ScopeID             string `query:"ambito"`
	AuthorityID         string `query:"dependencia"`
	ShiftID             string `query:"turno"`
	CategoryID          string `query:"categoria"`
	EstablishmentTypeID string `query:"tipo_establecimiento"`
	InternetProviderID  string `query:"proveedor_internet"`
	FloorProviderID     string `query:"proveedor_piso"`
	ConnectivityStateID string `query:"estado_conectividad"`
	FloorPlanID         string `query:"plan_piso"`
	HasInternet         string `query:"tiene_internet" validate:"omitempty,oneof=si no"`
	HasFloor            string `query:"tiene_piso" validate:"omitempty,oneof=si no"`
	ConnectedYear       int    `query:"anio_conexion" validate:"omitempty,min=1900,max=2100"`
	FloorYear           int    `query:"anio_piso" validate:"omitempty,min=1900,max=2100"`
	PageRequest
}

// SchoolSummaryResponse fila de listados.
type SchoolSummaryResponse struct {
	CUE                string  `json:"cue"`
	Name               string  `json:"nombre"`
	Region             *string `json:"region"`
	District           *string `json:"distrito"`
	Category           *string `json:"categoria"`
	SiteNumber         int     `json:"numero_predio"`
	HasInternet        bool    `json:"tiene_internet"`
	HasTechnologyFloor bool    `json:"tiene_piso_tecnologico"`
}

// SchoolListResponse resultado paginado de la búsqueda.
type SchoolListResponse struct {
	Items []SchoolSummaryResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// ConnectivityResponse resumen del servicio de internet.
type ConnectivityResponse struct {
	Provider      *string `json:"proveedor"`
	State         *string `json:"estado"`
	SpeedMbps     int     `json:"velocidad_mbps"`
	InstallDate   *string `json:"fecha_instalacion"`
	UpgradeDate   *string `json:"fecha_mejora"`
	RequestMethod *string `json:"metodo_solicitud"`
	Notes         string  `json:"observaciones"`
}

// FloorResponse resumen del piso tecnológico.
type FloorResponse struct {
	Plan           *string `json:"plan"`
	Provider       *string `json:"proveedor"`
	InstalledType  *string `json:"tipo_instalado"`
	CompletionDate *string `json:"fecha_terminado"`
	UpgradeType    string  `json:"tipo_mejora"`
	UpgradeDate    *string `json:"fecha_mejora"`
	Notes          string  `json:"observaciones"`
}

// SchoolDetailResponse escuela con todas las referencias resueltas a nombre (o null).
type SchoolDetailResponse struct {
	CUE                string                  `json:"cue"`
	ProvincialKey      string                  `json:"clave_provincial"`
	Name               string                  `json:"nombre"`
	Address            string                  `json:"direccion"`
	Enrollment         int                     `json:"matricula"`
	Latitude           *float64                `json:"latitud"`
	Longitude          *float64                `json:"longitud"`
	Region             *string                 `json:"region"`
	District           *string                 `json:"distrito"`
	City               *string                 `json:"ciudad"`
	Scope              *string                 `json:"ambito"`
	Authority          *string                 `json:"dependencia"`
	Shift              *string                 `json:"turno"`
	Category           *string                 `json:"categoria"`
	EstablishmentType  *string                 `json:"tipo_establecimiento"`
	SiteNumber         int                     `json:"numero_predio"`
	HasInternet        bool                    `json:"tiene_internet"`
	HasTechnologyFloor bool                    `json:"tiene_piso_tecnologico"`
	Connectivity       *ConnectivityResponse   `json:"conectividad"`
	Floor              *FloorResponse          `json:"piso"`
	SameSite           []SchoolSummaryResponse `json:"otras_escuelas_predio"`
}

// BoundsRequest filtros del mapa. Los cuatro límites son obligatorios en /bounds
// y opcionales en la exportación KML.
type BoundsRequest struct {
	MinLat              *float64 `query:"minLat"`
	MaxLat              *float64 `query:"maxLat"`
	MinLng              *float64 `query:"minLng"`
	MaxLng              *float64 `query:"maxLng"`
	RegionID            string   `query:"region"`
	DistrictID          string   `query:"distrito"`
	ConnectivityStateID string   `query:"estado_conectividad"`
	HasInternet         string   `query:"tiene_internet" validate:"omitempty,oneof=1 0"`
	HasFloor            string   `query:"tiene_piso" validate:"omitempty,oneof=1 0"`
	CUE                 string   `query:"cue"`
	SiteNumber          string   `query:"predio"`
}

// HasBounds indica si se informó alguno de los cuatro límites.
func (b BoundsRequest) HasBounds() bool {
	return b.MinLat != nil || b.MaxLat != nil || b.MinLng != nil || b.MaxLng != nil
}

// MapPointResponse escuela en el mapa.
type MapPointResponse struct {
	CUE                string   `json:"cue"`
	Name               string   `json:"nombre"`
	Latitude           *float64 `json:"latitud"`
	Longitude          *float64 `json:"longitud"`
	HasInternet        bool     `json:"tiene_internet"`
	HasTechnologyFloor bool     `json:"tiene_piso_tecnologico"`
	RegionID           *string  `json:"region_id"`
	DistrictID         *string  `json:"distrito_id"`
	RegionName         *string  `json:"region,omitempty"`
}
