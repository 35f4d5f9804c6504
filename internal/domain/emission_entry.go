package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DataSource identifies how an emission entry was produced.
type DataSource string

const (
	SourceManual     DataSource = "manual"
	SourceIoT        DataSource = "iot"
	SourceMLEstimate DataSource = "ml_estimate"
	SourceSpendBased DataSource = "spend_based"
)

// EmissionEntry is one reported Scope 3 emissions figure for a supplier.
// Entries are the unit of historical time-series data for hotspot prediction
// and scenario baselines. Once created, an entry is immutable except for the
// verification fields.
type EmissionEntry struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SupplierID uint      `json:"supplier_id" gorm:"index;not null"`
	Supplier   *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`

	DateReported time.Time `json:"date_reported" gorm:"index;not null"`

	// Scope3Emissions is the reported quantity in metric tons CO2e.
	Scope3Emissions decimal.Decimal `json:"scope3_emissions" gorm:"type:decimal(12,2);not null"`

	DataSource DataSource `json:"data_source" gorm:"type:varchar(20);default:'manual'"`
	Notes      string     `json:"notes" gorm:"type:text"`

	// Verification fields, written by the integrity service.
	Verified      bool   `json:"verified" gorm:"default:false"`
	IntegrityHash string `json:"integrity_hash" gorm:"type:varchar(64)"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the database table name.
func (EmissionEntry) TableName() string { return "emission_entries" }
