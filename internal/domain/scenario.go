package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ScenarioType is the closed set of reduction strategies. Adding a strategy
// is a table edit in the scenario engine, not new control flow.
type ScenarioType string

const (
	ScenarioSupplierSwitch        ScenarioType = "supplier_switch"
	ScenarioRenewableEnergy       ScenarioType = "renewable_energy"
	ScenarioEfficiency            ScenarioType = "efficiency"
	ScenarioTransportOptimization ScenarioType = "transport_optimization"
	ScenarioCustom                ScenarioType = "custom"
)

// Scenario models a named "what-if" reduction strategy over a supplier set.
// Baseline, projected and reduction fields are recomputed and overwritten
// each time the engine runs; previous values are discarded.
type Scenario struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	TenantID    *uint        `json:"tenant_id,omitempty" gorm:"index"`
	Name        string       `json:"name" gorm:"type:varchar(255);not null"`
	Description string       `json:"description" gorm:"type:text"`
	Type        ScenarioType `json:"type" gorm:"type:varchar(50);not null"`

	BaselineEmissions   decimal.Decimal `json:"baseline_emissions" gorm:"type:decimal(12,2)"`
	ProjectedEmissions  decimal.Decimal `json:"projected_emissions" gorm:"type:decimal(12,2)"`
	ReductionPercentage decimal.Decimal `json:"reduction_percentage" gorm:"type:decimal(5,2)"`
	ReductionAmount     decimal.Decimal `json:"reduction_amount" gorm:"type:decimal(12,2)"`

	// Parameters holds strategy-specific inputs; a "reduction_percentage"
	// key overrides the type-based reduction factor.
	Parameters datatypes.JSON `json:"parameters,omitempty"`

	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the database table name.
func (Scenario) TableName() string { return "scenarios" }

// CalculateReduction derives the reduction amount and percentage from the
// baseline and projected figures. A zero baseline leaves the percentage at
// zero instead of dividing by it.
func (s *Scenario) CalculateReduction() {
	s.ReductionAmount = s.BaselineEmissions.Sub(s.ProjectedEmissions)
	if s.BaselineEmissions.IsZero() {
		s.ReductionPercentage = decimal.Zero
		return
	}
	s.ReductionPercentage = s.ReductionAmount.
		Div(s.BaselineEmissions).
		Mul(decimal.NewFromInt(100))
}

// ScenarioSupplier is the per-supplier breakdown row under a scenario, with
// the supplier's own baseline and its proportionally derived projection.
type ScenarioSupplier struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ScenarioID uint      `json:"scenario_id" gorm:"index;not null"`
	SupplierID uint      `json:"supplier_id" gorm:"index;not null"`
	Supplier   *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`

	BaselineEmissions   decimal.Decimal `json:"baseline_emissions" gorm:"type:decimal(12,2)"`
	ProjectedEmissions  decimal.Decimal `json:"projected_emissions" gorm:"type:decimal(12,2)"`
	ReductionPercentage decimal.Decimal `json:"reduction_percentage" gorm:"type:decimal(5,2)"`

	InterventionDetails string `json:"intervention_details" gorm:"type:text"`
}

// TableName sets the database table name.
func (ScenarioSupplier) TableName() string { return "scenario_suppliers" }
