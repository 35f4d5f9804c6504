package scenario

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/carbonlens/scope3-engine/internal/domain"
	"github.com/carbonlens/scope3-engine/internal/store/memory"
)

func newEngineFixture() (*Engine, *memory.Store) {
	db := memory.New()
	return NewEngine(db, db, db, zerolog.Nop()), db
}

func addSupplier(t *testing.T, db *memory.Store, name string, tenantID uint, emissions ...string) *domain.Supplier {
	t.Helper()
	ctx := context.Background()
	supplier := &domain.Supplier{Name: name, TenantID: tenantID}
	require.NoError(t, db.SaveSupplier(ctx, supplier))
	for i, e := range emissions {
		entry := &domain.EmissionEntry{
			SupplierID:      supplier.ID,
			DateReported:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0),
			Scope3Emissions: decimal.RequireFromString(e),
			DataSource:      domain.SourceManual,
		}
		require.NoError(t, db.CreateEntry(ctx, entry))
	}
	return supplier
}

func TestEngine_BaselineSumsEntries(t *testing.T) {
	ctx := context.Background()
	engine, db := newEngineFixture()
	a := addSupplier(t, db, "A", 1, "10.5", "20")
	b := addSupplier(t, db, "B", 1, "30")
	addSupplier(t, db, "Other", 1, "999")

	got, err := engine.Baseline(ctx, []*domain.Supplier{a, b}, nil, nil)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("60.5")), "got %s", got)
}

func TestEngine_BaselineNoSuppliers(t *testing.T) {
	engine, _ := newEngineFixture()
	got, err := engine.Baseline(context.Background(), nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestEngine_BaselinePeriodBoundsInclusive(t *testing.T) {
	ctx := context.Background()
	engine, db := newEngineFixture()
	// Entries on Jan 15, Feb 15, Mar 15.
	sup := addSupplier(t, db, "A", 1, "1", "2", "4")

	// Bounds landing exactly on the first and last reported dates keep both.
	from := time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	got, err := engine.Baseline(ctx, []*domain.Supplier{sup}, &from, &to)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("7")), "got %s", got)

	// Narrowing to February keeps only the middle entry.
	from = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to = time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)
	got, err = engine.Baseline(ctx, []*domain.Supplier{sup}, &from, &to)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("2")), "got %s", got)
}

func TestEngine_BaselineInvertedRangeIsEmpty(t *testing.T) {
	ctx := context.Background()
	engine, db := newEngineFixture()
	sup := addSupplier(t, db, "A", 1, "10")

	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := engine.Baseline(ctx, []*domain.Supplier{sup}, &from, &to)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestEngine_ProjectedByScenarioType(t *testing.T) {
	engine, _ := newEngineFixture()
	baseline := decimal.RequireFromString("100")

	tests := []struct {
		name         string
		scenarioType domain.ScenarioType
		want         string
	}{
		{"renewable energy", domain.ScenarioRenewableEnergy, "65"},
		{"efficiency", domain.ScenarioEfficiency, "80"},
		{"supplier switch", domain.ScenarioSupplierSwitch, "70"},
		{"transport optimization", domain.ScenarioTransportOptimization, "85"},
		{"custom keeps baseline", domain.ScenarioCustom, "100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := &domain.Scenario{Type: tt.scenarioType}
			got, err := engine.Projected(sc, baseline)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestEngine_ProjectedReductionPercentageOverride(t *testing.T) {
	engine, _ := newEngineFixture()
	baseline := decimal.RequireFromString("100")

	sc := &domain.Scenario{
		Type:       domain.ScenarioRenewableEnergy,
		Parameters: datatypes.JSON(`{"reduction_percentage": 40}`),
	}
	got, err := engine.Projected(sc, baseline)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("60")), "override beats the type factor, got %s", got)
}

func TestEngine_ProjectedStringPercentageParameter(t *testing.T) {
	engine, _ := newEngineFixture()
	sc := &domain.Scenario{
		Type:       domain.ScenarioCustom,
		Parameters: datatypes.JSON(`{"reduction_percentage": "25"}`),
	}
	got, err := engine.Projected(sc, decimal.RequireFromString("200"))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("150")), "got %s", got)
}

func TestEngine_ProjectedBadParameters(t *testing.T) {
	engine, _ := newEngineFixture()

	sc := &domain.Scenario{Type: domain.ScenarioCustom, Parameters: datatypes.JSON(`{not json`)}
	_, err := engine.Projected(sc, decimal.NewFromInt(100))
	assert.Error(t, err)

	sc = &domain.Scenario{Type: domain.ScenarioCustom, Parameters: datatypes.JSON(`{"reduction_percentage": true}`)}
	_, err = engine.Projected(sc, decimal.NewFromInt(100))
	assert.Error(t, err)
}

func TestEngine_RunOverwritesScenarioFigures(t *testing.T) {
	ctx := context.Background()
	engine, db := newEngineFixture()
	tenantID := uint(1)
	addSupplier(t, db, "A", tenantID, "60")
	addSupplier(t, db, "B", tenantID, "40")

	sc := &domain.Scenario{Name: "Go renewable", Type: domain.ScenarioRenewableEnergy, TenantID: &tenantID}
	require.NoError(t, db.CreateScenario(ctx, sc))

	result, err := engine.Run(ctx, sc)
	require.NoError(t, err)

	assert.True(t, result.BaselineEmissions.Equal(decimal.RequireFromString("100")))
	assert.True(t, result.ProjectedEmissions.Equal(decimal.RequireFromString("65")))
	assert.True(t, result.ReductionAmount.Equal(decimal.RequireFromString("35")))
	assert.True(t, result.ReductionPercentage.Equal(decimal.RequireFromString("35")))

	stored, err := db.Scenario(ctx, sc.ID)
	require.NoError(t, err)
	assert.True(t, stored.BaselineEmissions.Equal(decimal.RequireFromString("100")))
	assert.True(t, stored.ProjectedEmissions.Equal(decimal.RequireFromString("65")))
}

func TestEngine_RunZeroBaseline(t *testing.T) {
	ctx := context.Background()
	engine, db := newEngineFixture()
	tenantID := uint(7)
	addSupplier(t, db, "No History", tenantID)

	sc := &domain.Scenario{Name: "Empty", Type: domain.ScenarioEfficiency, TenantID: &tenantID}
	require.NoError(t, db.CreateScenario(ctx, sc))

	result, err := engine.Run(ctx, sc)
	require.NoError(t, err)
	assert.True(t, result.BaselineEmissions.IsZero())
	assert.True(t, result.ProjectedEmissions.IsZero())
	assert.True(t, result.ReductionPercentage.IsZero(), "zero baseline must not divide")
}

func TestEngine_RunPrefersExplicitSupplierLinks(t *testing.T) {
	ctx := context.Background()
	engine, db := newEngineFixture()
	tenantID := uint(1)
	linked := addSupplier(t, db, "Linked", tenantID, "10")
	addSupplier(t, db, "Unlinked", tenantID, "90")

	sc := &domain.Scenario{Name: "Scoped", Type: domain.ScenarioCustom, TenantID: &tenantID}
	require.NoError(t, db.CreateScenario(ctx, sc))
	require.NoError(t, db.CreateScenarioSupplier(ctx, &domain.ScenarioSupplier{
		ScenarioID: sc.ID,
		SupplierID: linked.ID,
	}))

	result, err := engine.Run(ctx, sc)
	require.NoError(t, err)
	assert.True(t, result.BaselineEmissions.Equal(decimal.RequireFromString("10")),
		"explicit links win over the tenant set, got %s", result.BaselineEmissions)
}

func TestEngine_CreateWithSupplierBreakdown(t *testing.T) {
	ctx := context.Background()
	engine, db := newEngineFixture()
	a := addSupplier(t, db, "A", 1, "75")
	b := addSupplier(t, db, "B", 1, "25")

	sc, err := engine.Create(ctx, "Switch plan", domain.ScenarioSupplierSwitch, nil,
		[]*domain.Supplier{a, b}, nil)
	require.NoError(t, err)

	assert.NotZero(t, sc.ID)
	assert.True(t, sc.Active)
	assert.True(t, sc.BaselineEmissions.Equal(decimal.RequireFromString("100")))
	assert.True(t, sc.ProjectedEmissions.Equal(decimal.RequireFromString("70")))
	assert.True(t, sc.ReductionPercentage.Equal(decimal.RequireFromString("30")))

	rows, err := db.ScenarioSuppliers(ctx, sc.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := map[uint]*domain.ScenarioSupplier{}
	for _, row := range rows {
		byID[row.SupplierID] = row
	}
	require.Contains(t, byID, a.ID)
	require.Contains(t, byID, b.ID)

	// Each supplier keeps its own baseline, scaled by the aggregate ratio.
	assert.True(t, byID[a.ID].BaselineEmissions.Equal(decimal.RequireFromString("75")))
	assert.True(t, byID[a.ID].ProjectedEmissions.Equal(decimal.RequireFromString("52.5")), "got %s", byID[a.ID].ProjectedEmissions)
	assert.True(t, byID[b.ID].BaselineEmissions.Equal(decimal.RequireFromString("25")))
	assert.True(t, byID[b.ID].ProjectedEmissions.Equal(decimal.RequireFromString("17.5")), "got %s", byID[b.ID].ProjectedEmissions)
	assert.True(t, byID[a.ID].ReductionPercentage.Equal(decimal.RequireFromString("30")))
}

func TestEngine_CreateZeroBaselineScalesByOne(t *testing.T) {
	ctx := context.Background()
	engine, db := newEngineFixture()
	sup := addSupplier(t, db, "No History", 1)

	sc, err := engine.Create(ctx, "Nothing yet", domain.ScenarioRenewableEnergy, nil,
		[]*domain.Supplier{sup}, nil)
	require.NoError(t, err)

	rows, err := db.ScenarioSuppliers(ctx, sc.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].BaselineEmissions.IsZero())
	assert.True(t, rows[0].ProjectedEmissions.IsZero())
}

func TestEngine_CreateWithoutSuppliers(t *testing.T) {
	ctx := context.Background()
	engine, db := newEngineFixture()

	sc, err := engine.Create(ctx, "Shell", domain.ScenarioCustom, nil, nil,
		map[string]any{"reduction_percentage": 10})
	require.NoError(t, err)

	assert.NotZero(t, sc.ID)
	assert.True(t, sc.BaselineEmissions.IsZero())

	rows, err := db.ScenarioSuppliers(ctx, sc.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
