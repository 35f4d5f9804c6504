package carbon

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/carbonlens/scope3-engine/internal/domain"
	"github.com/carbonlens/scope3-engine/internal/logging"
	"github.com/carbonlens/scope3-engine/internal/store"
)

var oneThousand = decimal.NewFromInt(1000)

// DailyAggregate is the rollup of one device's readings over one day.
type DailyAggregate struct {
	TotalEnergyKWh     decimal.Decimal `json:"total_energy_kwh"`
	TotalEmissionsTons decimal.Decimal `json:"total_emissions_tons"`
	ReadingCount       int             `json:"reading_count"`
}

// ReadingProcessor converts IoT sensor readings into emissions figures and
// materializes daily aggregates as emission entries.
type ReadingProcessor struct {
	devices   store.DeviceStore
	suppliers store.SupplierStore
	readings  store.ReadingStore
	entries   store.EntryStore
	logger    zerolog.Logger
}

// NewReadingProcessor creates a reading processor over the given stores.
func NewReadingProcessor(devices store.DeviceStore, suppliers store.SupplierStore, readings store.ReadingStore, entries store.EntryStore, logger zerolog.Logger) *ReadingProcessor {
	return &ReadingProcessor{
		devices:   devices,
		suppliers: suppliers,
		readings:  readings,
		entries:   entries,
		logger:    logger,
	}
}

// ProcessReading computes the emissions for one sensor reading using the
// supplier's regional grid factor, persists the derived kg figure back onto
// the reading, and returns the emissions in metric tons CO2e.
//
// emissions_kg = energy_kwh × grid_factor(region); tons = kg / 1000.
func (p *ReadingProcessor) ProcessReading(ctx context.Context, reading *domain.IoTReading) (decimal.Decimal, error) {
	start := time.Now()

	device, err := p.devices.Device(ctx, reading.DeviceID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("loading device %d: %w", reading.DeviceID, err)
	}
	supplier, err := p.suppliers.Supplier(ctx, device.SupplierID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("loading supplier %d: %w", device.SupplierID, err)
	}

	factor := GridFactor(supplier.Region)
	emissionsKg := reading.EnergyKWh.Mul(factor)
	emissionsTons := emissionsKg.Div(oneThousand)

	reading.EstimatedEmissionsKg = &emissionsKg
	if err := p.readings.SaveReading(ctx, reading); err != nil {
		return decimal.Zero, fmt.Errorf("saving reading %d: %w", reading.ID, err)
	}

	p.logger.Info().
		Str("trace_id", logging.TraceID(ctx)).
		Str("operation", "ProcessReading").
		Str("device_id", device.DeviceID).
		Str("region", supplier.Region).
		Str("energy_kwh", reading.EnergyKWh.String()).
		Str("emissions_kg", emissionsKg.String()).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("reading processed")

	return emissionsTons, nil
}

// AggregateDaily sums a device's readings whose timestamps fall within
// [day 00:00, day+1 00:00) in the day's location. A day with no readings
// yields zero totals and a zero count, not an error.
func (p *ReadingProcessor) AggregateDaily(ctx context.Context, device *domain.IoTDevice, day time.Time) (DailyAggregate, error) {
	dayStart := startOfDay(day)
	dayEnd := dayStart.AddDate(0, 0, 1)

	readings, err := p.readings.ReadingsForDeviceBetween(ctx, device.ID, dayStart, dayEnd)
	if err != nil {
		return DailyAggregate{}, fmt.Errorf("loading readings for device %d: %w", device.ID, err)
	}

	agg := DailyAggregate{ReadingCount: len(readings)}
	totalKg := decimal.Zero
	for _, r := range readings {
		agg.TotalEnergyKWh = agg.TotalEnergyKWh.Add(r.EnergyKWh)
		if r.EstimatedEmissionsKg != nil {
			totalKg = totalKg.Add(*r.EstimatedEmissionsKg)
		}
	}
	agg.TotalEmissionsTons = totalKg.Div(oneThousand)

	return agg, nil
}

// MaterializeEntry creates an emission entry from a daily aggregate, tagged
// as IoT-sourced and timestamped at the aggregation day's start.
func (p *ReadingProcessor) MaterializeEntry(ctx context.Context, device *domain.IoTDevice, day time.Time, agg DailyAggregate) (*domain.EmissionEntry, error) {
	entry := &domain.EmissionEntry{
		SupplierID:      device.SupplierID,
		DateReported:    startOfDay(day),
		Scope3Emissions: agg.TotalEmissionsTons,
		DataSource:      domain.SourceIoT,
		Notes:           fmt.Sprintf("Auto-generated from IoT device %s (%s)", device.Name, device.DeviceID),
	}
	if err := p.entries.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("creating emission entry: %w", err)
	}

	p.logger.Info().
		Str("trace_id", logging.TraceID(ctx)).
		Str("operation", "MaterializeEntry").
		Str("device_id", device.DeviceID).
		Uint("entry_id", entry.ID).
		Str("emissions_tons", agg.TotalEmissionsTons.String()).
		Int("reading_count", agg.ReadingCount).
		Msg("emission entry created from IoT aggregate")

	return entry, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
