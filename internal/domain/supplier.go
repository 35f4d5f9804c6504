// Package domain holds the entities the emissions engine computes over.
// Persistence ownership lives in the store layer; the computation packages
// treat these as value-like records.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier is a value-chain partner whose activity produces Scope 3 emissions.
type Supplier struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	TenantID     uint   `json:"tenant_id" gorm:"index"`
	Code         string `json:"code" gorm:"type:varchar(50);uniqueIndex"`
	Name         string `json:"name" gorm:"type:varchar(255);not null"`
	Region       string `json:"region" gorm:"type:varchar(100)"`
	ContactEmail string `json:"contact_email" gorm:"type:varchar(255)"`
	Industry     string `json:"industry" gorm:"type:varchar(100)"`

	// AnnualSpend is the declared yearly spend with this supplier in USD.
	AnnualSpend *decimal.Decimal `json:"annual_spend,omitempty" gorm:"type:decimal(15,2)"`

	// EmissionFactor, when set, overrides the industry-average factor in
	// spend-based estimation (tCO2e per $1000 spend).
	EmissionFactor *decimal.Decimal `json:"emission_factor,omitempty" gorm:"type:decimal(10,4)"`

	Active  bool      `json:"active" gorm:"default:true"`
	AddedOn time.Time `json:"added_on" gorm:"autoCreateTime"`
}

// TableName sets the database table name.
func (Supplier) TableName() string { return "suppliers" }
