package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Site representa un predio (campus físico) que puede alojar varias escuelas.
// El número 0 agrupa las escuelas sin predio informado.
type Site struct {
	ID        string
	Number    int
	CreatedAt time.Time
}

// School entidad central, identificada por su CUE.
type School struct {
	ID            string
	CUE           string
	ProvincialKey *string
	Name          string
	Address       string
	Enrollment    int
	HasInternet   bool
	HasFloor      bool
	Latitude      *decimal.Decimal
	Longitude     *decimal.Decimal

	SiteID              string
	RegionID            *string
	DistrictID          *string
	CityID              *string
	ScopeID             *string
	AuthorityID         *string
	ShiftID             *string
	CategoryID          *string
	EstablishmentTypeID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ConnectivityService servicio de internet vigente de una escuela (a lo sumo uno).
type ConnectivityService struct {
	ID              string
	SchoolID        string
	ProviderID      *string
	StateID         *string
	SpeedMbps       int
	InstallDate     *time.Time
	UpgradeDate     *time.Time
	RequestMethodID *string
	Notes           string
	UpdatedAt       time.Time
}

// FloorInstallation piso tecnológico instalado en una escuela (a lo sumo uno).
type FloorInstallation struct {
	ID              string
	SchoolID        string
	PlanID          *string
	ProviderID      *string
	InstalledTypeID *string
	CompletionDate  *time.Time
	UpgradeType     string
	UpgradeDate     *time.Time
	Notes           string
	UpdatedAt       time.Time
}
