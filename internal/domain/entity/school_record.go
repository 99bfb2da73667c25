package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SchoolRecord vista aplanada de una escuela: las referencias a catálogos se resuelven a nombres.
// La usan el detalle, la exportación CSV y los documentos (Excel, PDF).
type SchoolRecord struct {
	ID            string
	CUE           string
	ProvincialKey string
	Name          string
	Address       string
	Enrollment    int
	HasInternet   bool
	HasFloor      bool
	Latitude      *decimal.Decimal
	Longitude     *decimal.Decimal

	SiteID     string
	SiteNumber int
	RegionID   *string
	DistrictID *string

	Region            *string
	District          *string
	City              *string
	Scope             *string
	Authority         *string
	Shift             *string
	Category          *string
	EstablishmentType *string

	Connectivity *ConnectivityRecord
	Floor        *FloorRecord
}

// ConnectivityRecord servicio de conectividad con nombres de catálogo.
type ConnectivityRecord struct {
	Provider      *string
	State         *string
	SpeedMbps     int
	InstallDate   *time.Time
	UpgradeDate   *time.Time
	RequestMethod *string
	Notes         string
}

// FloorRecord piso tecnológico con nombres de catálogo.
type FloorRecord struct {
	Plan           *string
	Provider       *string
	InstalledType  *string
	CompletionDate *time.Time
	UpgradeType    string
	UpgradeDate    *time.Time
	Notes          string
}

// MapPoint datos mínimos de una escuela para pintar en el mapa.
type MapPoint struct {
	CUE         string
	Name        string
	Latitude    *decimal.Decimal
	Longitude   *decimal.Decimal
	HasInternet bool
	HasFloor    bool
	RegionID    *string
	DistrictID  *string
	RegionName  *string
	SiteNumber  int
}

// SchoolSummary fila corta de listados (búsqueda, otras escuelas del predio).
type SchoolSummary struct {
	CUE         string
	Name        string
	Region      *string
	District    *string
	Category    *string
	SiteNumber  int
	HasInternet bool
	HasFloor    bool
}
