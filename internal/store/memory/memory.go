// Package memory provides an in-memory implementation of the store
// interfaces, used by tests and local tooling.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/carbonlens/scope3-engine/internal/domain"
	"github.com/carbonlens/scope3-engine/internal/store"
)

// Store holds every entity in process memory behind one mutex.
type Store struct {
	mu sync.RWMutex

	suppliers     map[uint]*domain.Supplier
	entries       map[uint]*domain.EmissionEntry
	devices       map[uint]*domain.IoTDevice
	readings      map[uint]*domain.IoTReading
	models        map[uint]*domain.MLModel
	predictions   map[uint]*domain.MLPrediction
	estimates     map[uint]*domain.SpendBasedEstimate
	scenarios     map[uint]*domain.Scenario
	scenarioRows  map[uint]*domain.ScenarioSupplier
	verifications map[uint]*domain.VerificationRecord

	nextID map[string]uint
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		suppliers:     make(map[uint]*domain.Supplier),
		entries:       make(map[uint]*domain.EmissionEntry),
		devices:       make(map[uint]*domain.IoTDevice),
		readings:      make(map[uint]*domain.IoTReading),
		models:        make(map[uint]*domain.MLModel),
		predictions:   make(map[uint]*domain.MLPrediction),
		estimates:     make(map[uint]*domain.SpendBasedEstimate),
		scenarios:     make(map[uint]*domain.Scenario),
		scenarioRows:  make(map[uint]*domain.ScenarioSupplier),
		verifications: make(map[uint]*domain.VerificationRecord),
		nextID:        make(map[string]uint),
	}
}

func (s *Store) allocID(kind string) uint {
	s.nextID[kind]++
	return s.nextID[kind]
}

// Supplier returns the supplier with the given ID.
func (s *Store) Supplier(_ context.Context, id uint) (*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sup, ok := s.suppliers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *sup
	return &cp, nil
}

// Suppliers returns every supplier ordered by ID.
func (s *Store) Suppliers(_ context.Context) ([]*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Supplier, 0, len(s.suppliers))
	for _, sup := range s.suppliers {
		cp := *sup
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SuppliersByTenant returns suppliers belonging to one tenant, ordered by ID.
func (s *Store) SuppliersByTenant(_ context.Context, tenantID uint) ([]*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Supplier
	for _, sup := range s.suppliers {
		if sup.TenantID == tenantID {
			cp := *sup
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveSupplier inserts or updates a supplier.
func (s *Store) SaveSupplier(_ context.Context, sup *domain.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sup.ID == 0 {
		sup.ID = s.allocID("supplier")
		if sup.AddedOn.IsZero() {
			sup.AddedOn = time.Now()
		}
	}
	cp := *sup
	s.suppliers[sup.ID] = &cp
	return nil
}

// EntriesBySupplier returns all entries for a supplier, most recent first.
func (s *Store) EntriesBySupplier(_ context.Context, supplierID uint) ([]*domain.EmissionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.EmissionEntry
	for _, e := range s.entries {
		if e.SupplierID == supplierID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateReported.After(out[j].DateReported) })
	return out, nil
}

// EntriesInPeriod returns entries for the given suppliers with reported dates
// inside [from, to], compared on the calendar date only.
func (s *Store) EntriesInPeriod(_ context.Context, supplierIDs []uint, from, to *time.Time) ([]*domain.EmissionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[uint]bool, len(supplierIDs))
	for _, id := range supplierIDs {
		wanted[id] = true
	}
	var out []*domain.EmissionEntry
	for _, e := range s.entries {
		if !wanted[e.SupplierID] {
			continue
		}
		day := dateOf(e.DateReported)
		if from != nil && day.Before(dateOf(*from)) {
			continue
		}
		if to != nil && day.After(dateOf(*to)) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateEntry inserts a new emission entry.
func (s *Store) CreateEntry(_ context.Context, e *domain.EmissionEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.allocID("entry")
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	cp := *e
	s.entries[e.ID] = &cp
	return nil
}

// SaveEntry updates an existing emission entry.
func (s *Store) SaveEntry(_ context.Context, e *domain.EmissionEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[e.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *e
	s.entries[e.ID] = &cp
	return nil
}

// Device returns the device with the given ID.
func (s *Store) Device(_ context.Context, id uint) (*domain.IoTDevice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.devices[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

// DeviceByDeviceID returns the device with the given external identifier.
func (s *Store) DeviceByDeviceID(_ context.Context, deviceID string) (*domain.IoTDevice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.devices {
		if d.DeviceID == deviceID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

// ActiveDevices returns all active devices, ordered by ID.
func (s *Store) ActiveDevices(_ context.Context) ([]*domain.IoTDevice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.IoTDevice
	for _, d := range s.devices {
		if d.Active {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveDevice inserts or updates a device.
func (s *Store) SaveDevice(_ context.Context, d *domain.IoTDevice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == 0 {
		d.ID = s.allocID("device")
		if d.InstalledAt.IsZero() {
			d.InstalledAt = time.Now()
		}
	}
	cp := *d
	s.devices[d.ID] = &cp
	return nil
}

// ReadingsForDeviceBetween returns readings with timestamps in [start, end),
// oldest first.
func (s *Store) ReadingsForDeviceBetween(_ context.Context, deviceID uint, start, end time.Time) ([]*domain.IoTReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.IoTReading
	for _, r := range s.readings {
		if r.DeviceID != deviceID {
			continue
		}
		if r.Timestamp.Before(start) || !r.Timestamp.Before(end) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// CreateReading inserts a new reading.
func (s *Store) CreateReading(_ context.Context, r *domain.IoTReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.allocID("reading")
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	cp := *r
	s.readings[r.ID] = &cp
	return nil
}

// SaveReading updates an existing reading.
func (s *Store) SaveReading(_ context.Context, r *domain.IoTReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.readings[r.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *r
	s.readings[r.ID] = &cp
	return nil
}

// EnsureModel returns the active model of the given type, creating it if
// absent.
func (s *Store) EnsureModel(_ context.Context, modelType, name, version string) (*domain.MLModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.models {
		if m.Type == modelType && m.Active {
			cp := *m
			return &cp, nil
		}
	}
	m := &domain.MLModel{
		ID:        s.allocID("model"),
		Name:      name,
		Type:      modelType,
		Version:   version,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.models[m.ID] = m
	cp := *m
	return &cp, nil
}

// SaveModel updates a model registry row.
func (s *Store) SaveModel(_ context.Context, m *domain.MLModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == 0 {
		m.ID = s.allocID("model")
	}
	m.UpdatedAt = time.Now()
	cp := *m
	s.models[m.ID] = &cp
	return nil
}

// CreatePrediction appends a prediction row.
func (s *Store) CreatePrediction(_ context.Context, p *domain.MLPrediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.allocID("prediction")
	if p.PredictedAt.IsZero() {
		p.PredictedAt = time.Now()
	}
	cp := *p
	s.predictions[p.ID] = &cp
	return nil
}

// PredictionsBySupplier returns the supplier's prediction log, most recent
// first.
func (s *Store) PredictionsBySupplier(_ context.Context, supplierID uint) ([]*domain.MLPrediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.MLPrediction
	for _, p := range s.predictions {
		if p.SupplierID == supplierID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PredictedAt.After(out[j].PredictedAt) })
	return out, nil
}

// CreateEstimate appends a spend-based estimate row.
func (s *Store) CreateEstimate(_ context.Context, e *domain.SpendBasedEstimate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.allocID("estimate")
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	cp := *e
	s.estimates[e.ID] = &cp
	return nil
}

// Scenario returns the scenario with the given ID.
func (s *Store) Scenario(_ context.Context, id uint) (*domain.Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.scenarios[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *sc
	return &cp, nil
}

// CreateScenario inserts a new scenario.
func (s *Store) CreateScenario(_ context.Context, sc *domain.Scenario) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc.ID = s.allocID("scenario")
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = time.Now()
	}
	cp := *sc
	s.scenarios[sc.ID] = &cp
	return nil
}

// SaveScenario overwrites a scenario's stored fields.
func (s *Store) SaveScenario(_ context.Context, sc *domain.Scenario) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scenarios[sc.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *sc
	s.scenarios[sc.ID] = &cp
	return nil
}

// ScenarioSuppliers returns the per-supplier rows of a scenario, ordered by ID.
func (s *Store) ScenarioSuppliers(_ context.Context, scenarioID uint) ([]*domain.ScenarioSupplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.ScenarioSupplier
	for _, row := range s.scenarioRows {
		if row.ScenarioID == scenarioID {
			cp := *row
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateScenarioSupplier inserts a per-supplier scenario row.
func (s *Store) CreateScenarioSupplier(_ context.Context, ss *domain.ScenarioSupplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss.ID = s.allocID("scenario_supplier")
	cp := *ss
	s.scenarioRows[ss.ID] = &cp
	return nil
}

// CreateVerification appends a verification record.
func (s *Store) CreateVerification(_ context.Context, v *domain.VerificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = s.allocID("verification")
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	cp := *v
	s.verifications[v.ID] = &cp
	return nil
}

// VerificationByTransactionHash looks up a verification record by its
// transaction hash.
func (s *Store) VerificationByTransactionHash(_ context.Context, txHash string) (*domain.VerificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.verifications {
		if v.TransactionHash == txHash {
			cp := *v
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
