package dto

// CategoryConnectedResponse conectadas por categoría (gráfico del dashboard).
type CategoryConnectedResponse struct {
	Category  string `json:"categoria"`
	Connected int    `json:"conectadas"`
}

// DashboardResponse indicadores generales.
type DashboardResponse struct {
	TotalSchools        int                         `json:"total_escuelas"`
	WithInternet        int                         `json:"con_internet"`
	WithoutInternet     int                         `json:"sin_internet"`
	WithFloor           int                         `json:"con_piso"`
	WithoutFloor        int                         `json:"sin_piso"`
	ConnectivityPercent string                      `json:"porcentaje_conectividad"`
	ConnectedPNCE       int                         `json:"conectadas_pnce"`
	ConnectedPBA        int                         `json:"conectadas_pba"`
	ConnectedByCategory []CategoryConnectedResponse `json:"conectadas_por_categoria"`
}

// CoverageResponse reporte simple de cobertura (internet o piso).
type CoverageResponse struct {
	Title        string  `json:"titulo"`
	Total        int     `json:"total_escuelas"`
	With         int     `json:"con"`
	Without      int     `json:"sin"`
	CoverageRate float64 `json:"tasa_cobertura"`
}

// CategoryCoverageResponse cobertura de una categoría.
type CategoryCoverageResponse struct {
	Category     string  `json:"categoria"`
	Total        int     `json:"total"`
	Covered      int     `json:"con"`
	CoverageRate float64 `json:"porcentaje"`
}

// CoverageReportRequest filtro opcional de los reportes generales.
type CoverageReportRequest struct {
	RegionID   string `query:"region"`
	DistrictID string `query:"distrito"`
}

// CoverageReportResponse reporte general por categoría.
type CoverageReportResponse struct {
	Title            string                     `json:"titulo"`
	TotalSchools     int                        `json:"total_escuelas"`
	WithInternet     int                        `json:"con_internet"`
	WithFloor        int                        `json:"con_piso"`
	InternetCoverage []CategoryCoverageResponse `json:"cobertura_internet"`
	FloorCoverage    []CategoryCoverageResponse `json:"cobertura_piso"`
}
