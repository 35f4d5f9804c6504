package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// MLModel describes a trained (or default) model artifact by name and version.
type MLModel struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	Name             string         `json:"name" gorm:"type:varchar(255);not null"`
	Type             string         `json:"type" gorm:"type:varchar(50);index;not null"`
	Version          string         `json:"version" gorm:"type:varchar(50);default:'1.0'"`
	Active           bool           `json:"active" gorm:"default:true"`
	ModelPath        string         `json:"model_path" gorm:"type:varchar(500)"`
	TrainingDataSize *int           `json:"training_data_size,omitempty"`
	Metadata         datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the database table name.
func (MLModel) TableName() string { return "ml_models" }

// MLPrediction is one hotspot scoring outcome for a supplier. Predictions are
// an append-only log: every invocation writes a new row, nothing is upserted.
type MLPrediction struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SupplierID uint      `json:"supplier_id" gorm:"index;not null"`
	Supplier   *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	ModelID    uint      `json:"model_id" gorm:"index;not null"`

	// PredictedEmissions is the expected emissions level in tCO2e.
	PredictedEmissions decimal.Decimal `json:"predicted_emissions" gorm:"type:decimal(12,2)"`

	// Confidence is in [0,1]. It is a fixed rescaling of the anomaly score,
	// not a calibrated probability.
	Confidence decimal.Decimal `json:"confidence" gorm:"type:decimal(5,4)"`

	IsHotspot     bool   `json:"is_hotspot" gorm:"default:false"`
	HotspotReason string `json:"hotspot_reason" gorm:"type:text"`

	PredictedAt time.Time `json:"predicted_at" gorm:"autoCreateTime"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	// InputFeatures snapshots the feature values used for this prediction.
	InputFeatures datatypes.JSON `json:"input_features,omitempty"`
}

// TableName sets the database table name.
func (MLPrediction) TableName() string { return "ml_predictions" }

// SpendBasedEstimate records one spend-to-emissions conversion. Like
// predictions, estimates accumulate as an append-only audit trail.
type SpendBasedEstimate struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SupplierID uint      `json:"supplier_id" gorm:"index;not null"`
	Supplier   *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`

	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	// SpendAmount is the declared spend in USD.
	SpendAmount decimal.Decimal `json:"spend_amount" gorm:"type:decimal(15,2);not null"`

	// EmissionFactor is the factor actually applied (tCO2e per $1000 spend).
	EmissionFactor decimal.Decimal `json:"emission_factor" gorm:"type:decimal(10,4);not null"`

	EstimatedEmissions decimal.Decimal `json:"estimated_emissions" gorm:"type:decimal(12,2);not null"`
	IndustryCategory   string          `json:"industry_category" gorm:"type:varchar(100)"`
	CreatedAt          time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the database table name.
func (SpendBasedEstimate) TableName() string { return "spend_based_estimates" }
