package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// IoTDevice is an energy sensor installed at a supplier site.
type IoTDevice struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	DeviceID   string    `json:"device_id" gorm:"type:varchar(100);uniqueIndex;not null"`
	SupplierID uint      `json:"supplier_id" gorm:"index;not null"`
	Supplier   *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`

	Name     string `json:"name" gorm:"type:varchar(255);not null"`
	Type     string `json:"type" gorm:"type:varchar(100)"`
	Location string `json:"location" gorm:"type:varchar(255)"`

	Active      bool       `json:"active" gorm:"default:true"`
	InstalledAt time.Time  `json:"installed_at" gorm:"autoCreateTime"`
	LastSeen    *time.Time `json:"last_seen,omitempty"`

	// APIKey authenticates the device against the ingest layer.
	APIKey string `json:"-" gorm:"type:varchar(255);uniqueIndex"`
}

// TableName sets the database table name.
func (IoTDevice) TableName() string { return "iot_devices" }

// IoTReading is a single sensor sample. EstimatedEmissionsKg is derived
// exactly once by the reading processor and persisted back; it is never
// recomputed on read.
type IoTReading struct {
	ID       uint       `json:"id" gorm:"primaryKey"`
	DeviceID uint       `json:"device_id" gorm:"index;not null"`
	Device   *IoTDevice `json:"device,omitempty" gorm:"foreignKey:DeviceID"`

	Timestamp time.Time `json:"timestamp" gorm:"index;autoCreateTime"`

	// EnergyKWh is the consumed energy for the sample interval.
	EnergyKWh decimal.Decimal `json:"energy_kwh" gorm:"type:decimal(12,4);not null"`

	PowerKW     *decimal.Decimal `json:"power_kw,omitempty" gorm:"type:decimal(10,4)"`
	Voltage     *decimal.Decimal `json:"voltage,omitempty" gorm:"type:decimal(8,2)"`
	Current     *decimal.Decimal `json:"current,omitempty" gorm:"type:decimal(8,2)"`
	Temperature *decimal.Decimal `json:"temperature,omitempty" gorm:"type:decimal(6,2)"`

	EstimatedEmissionsKg *decimal.Decimal `json:"estimated_emissions_kg,omitempty" gorm:"type:decimal(10,4)"`

	Metadata datatypes.JSON `json:"metadata,omitempty"`
}

// TableName sets the database table name.
func (IoTReading) TableName() string { return "iot_readings" }
