// Package gormstore implements the store interfaces on a relational
// database through GORM, mirroring the SaaS persistence layer the engine
// runs against in production.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/carbonlens/scope3-engine/internal/domain"
	"github.com/carbonlens/scope3-engine/internal/store"
)

// Store wraps a gorm.DB with the engine's store interfaces.
type Store struct {
	db *gorm.DB
}

// Open connects to MySQL with the given DSN and runs migrations.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := New(db)
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// New wraps an existing gorm.DB without migrating.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the engine's tables.
func (s *Store) Migrate() error {
	err := s.db.AutoMigrate(
		&domain.Supplier{},
		&domain.EmissionEntry{},
		&domain.IoTDevice{},
		&domain.IoTReading{},
		&domain.MLModel{},
		&domain.MLPrediction{},
		&domain.SpendBasedEstimate{},
		&domain.Scenario{},
		&domain.ScenarioSupplier{},
		&domain.VerificationRecord{},
	)
	if err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}

// Supplier returns the supplier with the given ID.
func (s *Store) Supplier(ctx context.Context, id uint) (*domain.Supplier, error) {
	var sup domain.Supplier
	if err := s.db.WithContext(ctx).First(&sup, id).Error; err != nil {
		return nil, translate(err)
	}
	return &sup, nil
}

// Suppliers returns every supplier ordered by ID.
func (s *Store) Suppliers(ctx context.Context) ([]*domain.Supplier, error) {
	var out []*domain.Supplier
	if err := s.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// SuppliersByTenant returns one tenant's suppliers ordered by ID.
func (s *Store) SuppliersByTenant(ctx context.Context, tenantID uint) ([]*domain.Supplier, error) {
	var out []*domain.Supplier
	if err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// SaveSupplier inserts or updates a supplier.
func (s *Store) SaveSupplier(ctx context.Context, sup *domain.Supplier) error {
	return s.db.WithContext(ctx).Save(sup).Error
}

// EntriesBySupplier returns a supplier's entries, most recent first.
func (s *Store) EntriesBySupplier(ctx context.Context, supplierID uint) ([]*domain.EmissionEntry, error) {
	var out []*domain.EmissionEntry
	err := s.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("date_reported DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EntriesInPeriod returns entries for the given suppliers with reported
// dates inside [from, to], compared on the calendar date only.
func (s *Store) EntriesInPeriod(ctx context.Context, supplierIDs []uint, from, to *time.Time) ([]*domain.EmissionEntry, error) {
	if len(supplierIDs) == 0 {
		return nil, nil
	}
	q := s.db.WithContext(ctx).Where("supplier_id IN ?", supplierIDs)
	if from != nil {
		q = q.Where("DATE(date_reported) >= DATE(?)", *from)
	}
	if to != nil {
		q = q.Where("DATE(date_reported) <= DATE(?)", *to)
	}
	var out []*domain.EmissionEntry
	if err := q.Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CreateEntry inserts a new emission entry.
func (s *Store) CreateEntry(ctx context.Context, e *domain.EmissionEntry) error {
	return s.db.WithContext(ctx).Create(e).Error
}

// SaveEntry updates an existing emission entry.
func (s *Store) SaveEntry(ctx context.Context, e *domain.EmissionEntry) error {
	return s.db.WithContext(ctx).Save(e).Error
}

// Device returns the device with the given ID.
func (s *Store) Device(ctx context.Context, id uint) (*domain.IoTDevice, error) {
	var d domain.IoTDevice
	if err := s.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

// DeviceByDeviceID returns the device with the given external identifier.
func (s *Store) DeviceByDeviceID(ctx context.Context, deviceID string) (*domain.IoTDevice, error) {
	var d domain.IoTDevice
	if err := s.db.WithContext(ctx).Where("device_id = ?", deviceID).First(&d).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

// ActiveDevices returns all active devices, ordered by ID.
func (s *Store) ActiveDevices(ctx context.Context) ([]*domain.IoTDevice, error) {
	var out []*domain.IoTDevice
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveDevice inserts or updates a device.
func (s *Store) SaveDevice(ctx context.Context, d *domain.IoTDevice) error {
	return s.db.WithContext(ctx).Save(d).Error
}

// ReadingsForDeviceBetween returns readings in [start, end), oldest first.
func (s *Store) ReadingsForDeviceBetween(ctx context.Context, deviceID uint, start, end time.Time) ([]*domain.IoTReading, error) {
	var out []*domain.IoTReading
	err := s.db.WithContext(ctx).
		Where("device_id = ? AND timestamp >= ? AND timestamp < ?", deviceID, start, end).
		Order("timestamp").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateReading inserts a new reading.
func (s *Store) CreateReading(ctx context.Context, r *domain.IoTReading) error {
	return s.db.WithContext(ctx).Create(r).Error
}

// SaveReading updates an existing reading.
func (s *Store) SaveReading(ctx context.Context, r *domain.IoTReading) error {
	return s.db.WithContext(ctx).Save(r).Error
}

// EnsureModel returns the active model of the given type, creating it if
// absent.
func (s *Store) EnsureModel(ctx context.Context, modelType, name, version string) (*domain.MLModel, error) {
	var m domain.MLModel
	err := s.db.WithContext(ctx).
		Where(domain.MLModel{Type: modelType, Active: true}).
		Attrs(domain.MLModel{Name: name, Version: version}).
		FirstOrCreate(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveModel updates a model registry row.
func (s *Store) SaveModel(ctx context.Context, m *domain.MLModel) error {
	return s.db.WithContext(ctx).Save(m).Error
}

// CreatePrediction appends a prediction row.
func (s *Store) CreatePrediction(ctx context.Context, p *domain.MLPrediction) error {
	return s.db.WithContext(ctx).Create(p).Error
}

// PredictionsBySupplier returns the supplier's prediction log, most recent
// first.
func (s *Store) PredictionsBySupplier(ctx context.Context, supplierID uint) ([]*domain.MLPrediction, error) {
	var out []*domain.MLPrediction
	err := s.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("predicted_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateEstimate appends a spend-based estimate row.
func (s *Store) CreateEstimate(ctx context.Context, e *domain.SpendBasedEstimate) error {
	return s.db.WithContext(ctx).Create(e).Error
}

// Scenario returns the scenario with the given ID.
func (s *Store) Scenario(ctx context.Context, id uint) (*domain.Scenario, error) {
	var sc domain.Scenario
	if err := s.db.WithContext(ctx).First(&sc, id).Error; err != nil {
		return nil, translate(err)
	}
	return &sc, nil
}

// CreateScenario inserts a new scenario.
func (s *Store) CreateScenario(ctx context.Context, sc *domain.Scenario) error {
	return s.db.WithContext(ctx).Create(sc).Error
}

// SaveScenario overwrites a scenario's stored fields.
func (s *Store) SaveScenario(ctx context.Context, sc *domain.Scenario) error {
	return s.db.WithContext(ctx).Save(sc).Error
}

// ScenarioSuppliers returns a scenario's per-supplier rows ordered by ID.
func (s *Store) ScenarioSuppliers(ctx context.Context, scenarioID uint) ([]*domain.ScenarioSupplier, error) {
	var out []*domain.ScenarioSupplier
	if err := s.db.WithContext(ctx).Where("scenario_id = ?", scenarioID).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CreateScenarioSupplier inserts a per-supplier scenario row.
func (s *Store) CreateScenarioSupplier(ctx context.Context, ss *domain.ScenarioSupplier) error {
	return s.db.WithContext(ctx).Create(ss).Error
}

// CreateVerification appends a verification record.
func (s *Store) CreateVerification(ctx context.Context, v *domain.VerificationRecord) error {
	return s.db.WithContext(ctx).Create(v).Error
}

// VerificationByTransactionHash looks up a verification record by its
// transaction hash.
func (s *Store) VerificationByTransactionHash(ctx context.Context, txHash string) (*domain.VerificationRecord, error) {
	var v domain.VerificationRecord
	if err := s.db.WithContext(ctx).Where("transaction_hash = ?", txHash).First(&v).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}
