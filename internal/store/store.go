// Package store defines the narrow persistence interfaces the computation
// packages consume. Implementations live in the memory and gormstore
// subpackages; faults they return propagate unchanged, the engine never
// retries.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/carbonlens/scope3-engine/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// SupplierStore reads and writes suppliers.
type SupplierStore interface {
	Supplier(ctx context.Context, id uint) (*domain.Supplier, error)
	Suppliers(ctx context.Context) ([]*domain.Supplier, error)
	SuppliersByTenant(ctx context.Context, tenantID uint) ([]*domain.Supplier, error)
	SaveSupplier(ctx context.Context, s *domain.Supplier) error
}

// EntryStore reads and writes emission entries.
type EntryStore interface {
	// EntriesBySupplier returns all entries for one supplier, most recent
	// DateReported first.
	EntriesBySupplier(ctx context.Context, supplierID uint) ([]*domain.EmissionEntry, error)

	// EntriesInPeriod returns entries belonging to the given suppliers whose
	// reported date falls within [from, to]. Bounds are inclusive, compared
	// on the calendar date only, and either bound may be nil for "unbounded".
	EntriesInPeriod(ctx context.Context, supplierIDs []uint, from, to *time.Time) ([]*domain.EmissionEntry, error)

	CreateEntry(ctx context.Context, e *domain.EmissionEntry) error
	SaveEntry(ctx context.Context, e *domain.EmissionEntry) error
}

// DeviceStore reads IoT devices.
type DeviceStore interface {
	Device(ctx context.Context, id uint) (*domain.IoTDevice, error)
	DeviceByDeviceID(ctx context.Context, deviceID string) (*domain.IoTDevice, error)
	ActiveDevices(ctx context.Context) ([]*domain.IoTDevice, error)
	SaveDevice(ctx context.Context, d *domain.IoTDevice) error
}

// ReadingStore reads and writes IoT readings.
type ReadingStore interface {
	// ReadingsForDeviceBetween returns readings for the device with
	// timestamps in [start, end), oldest first.
	ReadingsForDeviceBetween(ctx context.Context, deviceID uint, start, end time.Time) ([]*domain.IoTReading, error)

	CreateReading(ctx context.Context, r *domain.IoTReading) error
	SaveReading(ctx context.Context, r *domain.IoTReading) error
}

// ModelStore manages model registry rows.
type ModelStore interface {
	// EnsureModel returns the active model row of the given type, creating
	// it with the supplied name and version if absent.
	EnsureModel(ctx context.Context, modelType, name, version string) (*domain.MLModel, error)
	SaveModel(ctx context.Context, m *domain.MLModel) error
}

// PredictionStore appends prediction rows. Predictions are an insert-only
// log; there is no upsert.
type PredictionStore interface {
	CreatePrediction(ctx context.Context, p *domain.MLPrediction) error

	// PredictionsBySupplier returns the supplier's prediction log, most
	// recent first.
	PredictionsBySupplier(ctx context.Context, supplierID uint) ([]*domain.MLPrediction, error)
}

// EstimateStore appends spend-based estimate rows.
type EstimateStore interface {
	CreateEstimate(ctx context.Context, e *domain.SpendBasedEstimate) error
}

// ScenarioStore reads and writes scenarios and their per-supplier rows.
type ScenarioStore interface {
	Scenario(ctx context.Context, id uint) (*domain.Scenario, error)
	CreateScenario(ctx context.Context, s *domain.Scenario) error
	SaveScenario(ctx context.Context, s *domain.Scenario) error
	ScenarioSuppliers(ctx context.Context, scenarioID uint) ([]*domain.ScenarioSupplier, error)
	CreateScenarioSupplier(ctx context.Context, ss *domain.ScenarioSupplier) error
}

// VerificationStore appends verification records.
type VerificationStore interface {
	CreateVerification(ctx context.Context, v *domain.VerificationRecord) error
	VerificationByTransactionHash(ctx context.Context, txHash string) (*domain.VerificationRecord, error)
}
