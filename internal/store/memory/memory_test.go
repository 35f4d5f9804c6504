package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonlens/scope3-engine/internal/domain"
	"github.com/carbonlens/scope3-engine/internal/store"
)

func TestStore_SupplierNotFound(t *testing.T) {
	db := New()
	_, err := db.Supplier(context.Background(), 99)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_SaveSupplierAssignsID(t *testing.T) {
	ctx := context.Background()
	db := New()

	sup := &domain.Supplier{Name: "Acme"}
	require.NoError(t, db.SaveSupplier(ctx, sup))
	assert.NotZero(t, sup.ID)

	got, err := db.Supplier(ctx, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)

	// Returned rows are copies; mutating them must not leak into the store.
	got.Name = "Mutated"
	again, err := db.Supplier(ctx, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", again.Name)
}

func TestStore_SuppliersByTenant(t *testing.T) {
	ctx := context.Background()
	db := New()
	require.NoError(t, db.SaveSupplier(ctx, &domain.Supplier{Name: "A", TenantID: 1}))
	require.NoError(t, db.SaveSupplier(ctx, &domain.Supplier{Name: "B", TenantID: 2}))
	require.NoError(t, db.SaveSupplier(ctx, &domain.Supplier{Name: "C", TenantID: 1}))

	got, err := db.SuppliersByTenant(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, "C", got[1].Name)
}

func TestStore_EntriesBySupplierMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	db := New()
	sup := &domain.Supplier{Name: "Acme"}
	require.NoError(t, db.SaveSupplier(ctx, sup))

	dates := []time.Time{
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		require.NoError(t, db.CreateEntry(ctx, &domain.EmissionEntry{
			SupplierID:      sup.ID,
			DateReported:    d,
			Scope3Emissions: decimal.NewFromInt(1),
		}))
	}

	got, err := db.EntriesBySupplier(ctx, sup.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got[0].DateReported)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got[2].DateReported)
}

func TestStore_EntriesInPeriodComparesCalendarDates(t *testing.T) {
	ctx := context.Background()
	db := New()
	sup := &domain.Supplier{Name: "Acme"}
	require.NoError(t, db.SaveSupplier(ctx, sup))

	// Entry reported late in the evening of Jan 15.
	require.NoError(t, db.CreateEntry(ctx, &domain.EmissionEntry{
		SupplierID:      sup.ID,
		DateReported:    time.Date(2024, 1, 15, 22, 30, 0, 0, time.UTC),
		Scope3Emissions: decimal.NewFromInt(5),
	}))

	// A bound at midnight of the same date still includes it.
	from := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	got, err := db.EntriesInPeriod(ctx, []uint{sup.ID}, &from, &to)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// Nil bounds are unbounded.
	got, err = db.EntriesInPeriod(ctx, []uint{sup.ID}, nil, nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// A range ending the day before excludes it.
	to = time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)
	got, err = db.EntriesInPeriod(ctx, []uint{sup.ID}, nil, &to)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_EntriesInPeriodFiltersSuppliers(t *testing.T) {
	ctx := context.Background()
	db := New()
	a := &domain.Supplier{Name: "A"}
	b := &domain.Supplier{Name: "B"}
	require.NoError(t, db.SaveSupplier(ctx, a))
	require.NoError(t, db.SaveSupplier(ctx, b))
	for _, sup := range []*domain.Supplier{a, b} {
		require.NoError(t, db.CreateEntry(ctx, &domain.EmissionEntry{
			SupplierID:      sup.ID,
			DateReported:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Scope3Emissions: decimal.NewFromInt(1),
		}))
	}

	got, err := db.EntriesInPeriod(ctx, []uint{a.ID}, nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].SupplierID)
}

func TestStore_EnsureModelIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := New()

	first, err := db.EnsureModel(ctx, "hotspot", "Hotspot Model", "1.0")
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	second, err := db.EnsureModel(ctx, "hotspot", "ignored on reuse", "9.9")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Hotspot Model", second.Name)
}

func TestStore_ReadingsForDeviceBetweenHalfOpen(t *testing.T) {
	ctx := context.Background()
	db := New()
	device := &domain.IoTDevice{DeviceID: "sensor-1"}
	require.NoError(t, db.SaveDevice(ctx, device))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	for _, ts := range []time.Time{start, start.Add(12 * time.Hour), end} {
		require.NoError(t, db.CreateReading(ctx, &domain.IoTReading{
			DeviceID:  device.ID,
			Timestamp: ts,
			EnergyKWh: decimal.NewFromInt(10),
		}))
	}

	got, err := db.ReadingsForDeviceBetween(ctx, device.ID, start, end)
	require.NoError(t, err)
	require.Len(t, got, 2, "the end bound is exclusive")
	assert.True(t, got[0].Timestamp.Before(got[1].Timestamp), "oldest first")
}

func TestStore_DeviceByDeviceID(t *testing.T) {
	ctx := context.Background()
	db := New()
	device := &domain.IoTDevice{DeviceID: "sensor-9"}
	require.NoError(t, db.SaveDevice(ctx, device))

	got, err := db.DeviceByDeviceID(ctx, "sensor-9")
	require.NoError(t, err)
	assert.Equal(t, device.ID, got.ID)

	_, err = db.DeviceByDeviceID(ctx, "absent")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
