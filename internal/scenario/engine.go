// Package scenario computes baseline and projected emissions for "what-if"
// reduction strategies over a supplier set.
package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/carbonlens/scope3-engine/internal/domain"
	"github.com/carbonlens/scope3-engine/internal/logging"
	"github.com/carbonlens/scope3-engine/internal/store"
)

// reductionFactors maps each strategy to its fixed emissions multiplier.
// Custom and unrecognized types keep the factor at 1.0 (no change) unless a
// reduction_percentage parameter overrides it. Adding a strategy is an edit
// here, not new control flow.
var reductionFactors = map[domain.ScenarioType]decimal.Decimal{
	domain.ScenarioRenewableEnergy:       decimal.RequireFromString("0.65"),
	domain.ScenarioEfficiency:            decimal.RequireFromString("0.80"),
	domain.ScenarioSupplierSwitch:        decimal.RequireFromString("0.70"),
	domain.ScenarioTransportOptimization: decimal.RequireFromString("0.85"),
}

// reductionPercentageKey in scenario parameters overrides the type-based
// factor: factor = 1 - percentage/100.
const reductionPercentageKey = "reduction_percentage"

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Result is the outcome of one scenario run.
type Result struct {
	BaselineEmissions   decimal.Decimal `json:"baseline_emissions"`
	ProjectedEmissions  decimal.Decimal `json:"projected_emissions"`
	ReductionAmount     decimal.Decimal `json:"reduction_amount"`
	ReductionPercentage decimal.Decimal `json:"reduction_percentage"`
}

// Engine computes and persists scenario projections. Runs are idempotent in
// effect but always overwrite the scenario's stored figures.
type Engine struct {
	suppliers store.SupplierStore
	entries   store.EntryStore
	scenarios store.ScenarioStore
	logger    zerolog.Logger
}

// NewEngine creates a scenario engine over the given stores.
func NewEngine(suppliers store.SupplierStore, entries store.EntryStore, scenarios store.ScenarioStore, logger zerolog.Logger) *Engine {
	return &Engine{
		suppliers: suppliers,
		entries:   entries,
		scenarios: scenarios,
		logger:    logger,
	}
}

// Baseline sums scope-3 emissions over all entries belonging to the given
// suppliers. Bounds are optional and inclusive, compared on the entry's
// reported date only. An inverted range yields an empty range, not a fault.
func (e *Engine) Baseline(ctx context.Context, suppliers []*domain.Supplier, from, to *time.Time) (decimal.Decimal, error) {
	if len(suppliers) == 0 {
		return decimal.Zero, nil
	}
	ids := make([]uint, len(suppliers))
	for i, s := range suppliers {
		ids[i] = s.ID
	}
	entries, err := e.entries.EntriesInPeriod(ctx, ids, from, to)
	if err != nil {
		return decimal.Zero, fmt.Errorf("loading baseline entries: %w", err)
	}
	total := decimal.Zero
	for _, entry := range entries {
		total = total.Add(entry.Scope3Emissions)
	}
	return total, nil
}

// Projected applies the scenario's reduction factor to the baseline.
func (e *Engine) Projected(scenario *domain.Scenario, baseline decimal.Decimal) (decimal.Decimal, error) {
	factor, err := reductionFactor(scenario)
	if err != nil {
		return decimal.Zero, err
	}
	return baseline.Mul(factor), nil
}

// reductionFactor resolves the factor for a scenario: the type table value,
// overridden by an explicit reduction_percentage parameter when present.
func reductionFactor(scenario *domain.Scenario) (decimal.Decimal, error) {
	factor := one
	if f, ok := reductionFactors[scenario.Type]; ok {
		factor = f
	}

	if len(scenario.Parameters) == 0 {
		return factor, nil
	}
	var params map[string]any
	if err := json.Unmarshal(scenario.Parameters, &params); err != nil {
		return decimal.Zero, fmt.Errorf("decoding scenario parameters: %w", err)
	}
	raw, ok := params[reductionPercentageKey]
	if !ok {
		return factor, nil
	}

	percentage, err := decimalFromParameter(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s parameter: %w", reductionPercentageKey, err)
	}
	return one.Sub(percentage.Div(hundred)), nil
}

func decimalFromParameter(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		return decimal.NewFromString(v)
	case json.Number:
		return decimal.NewFromString(v.String())
	default:
		return decimal.Zero, fmt.Errorf("unsupported value type %T", raw)
	}
}

// Run resolves the scenario's supplier set, recomputes baseline and
// projected emissions, and overwrites the scenario's stored figures.
// The supplier set is the scenario's explicit per-supplier links when any
// exist, otherwise all suppliers of the scenario's tenant.
func (e *Engine) Run(ctx context.Context, scenario *domain.Scenario) (Result, error) {
	start := time.Now()

	suppliers, err := e.resolveSuppliers(ctx, scenario)
	if err != nil {
		return Result{}, err
	}

	baseline, err := e.Baseline(ctx, suppliers, nil, nil)
	if err != nil {
		return Result{}, err
	}
	projected, err := e.Projected(scenario, baseline)
	if err != nil {
		return Result{}, err
	}

	scenario.BaselineEmissions = baseline
	scenario.ProjectedEmissions = projected
	scenario.CalculateReduction()
	if err := e.scenarios.SaveScenario(ctx, scenario); err != nil {
		return Result{}, fmt.Errorf("saving scenario %d: %w", scenario.ID, err)
	}

	e.logger.Info().
		Str("trace_id", logging.TraceID(ctx)).
		Str("operation", "RunScenario").
		Uint("scenario_id", scenario.ID).
		Str("scenario_type", string(scenario.Type)).
		Int("supplier_count", len(suppliers)).
		Str("baseline", baseline.String()).
		Str("projected", projected.String()).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("scenario calculated")

	return Result{
		BaselineEmissions:   baseline,
		ProjectedEmissions:  projected,
		ReductionAmount:     scenario.ReductionAmount,
		ReductionPercentage: scenario.ReductionPercentage,
	}, nil
}

func (e *Engine) resolveSuppliers(ctx context.Context, scenario *domain.Scenario) ([]*domain.Supplier, error) {
	rows, err := e.scenarios.ScenarioSuppliers(ctx, scenario.ID)
	if err != nil {
		return nil, fmt.Errorf("loading scenario suppliers: %w", err)
	}
	if len(rows) > 0 {
		suppliers := make([]*domain.Supplier, 0, len(rows))
		for _, row := range rows {
			s, err := e.suppliers.Supplier(ctx, row.SupplierID)
			if err != nil {
				return nil, fmt.Errorf("loading supplier %d: %w", row.SupplierID, err)
			}
			suppliers = append(suppliers, s)
		}
		return suppliers, nil
	}
	if scenario.TenantID != nil {
		return e.suppliers.SuppliersByTenant(ctx, *scenario.TenantID)
	}
	return nil, nil
}

// Create persists a new scenario and, when a supplier set is given, computes
// the aggregate figures and one per-supplier breakdown row each. Per-supplier
// projections are proportionally derived from the aggregate outcome by
// scaling each supplier's own baseline with the aggregate projected/baseline
// ratio; a zero aggregate baseline scales by 1 (no reduction) instead of
// dividing by zero.
func (e *Engine) Create(ctx context.Context, name string, scenarioType domain.ScenarioType, tenantID *uint, suppliers []*domain.Supplier, parameters map[string]any) (*domain.Scenario, error) {
	if parameters == nil {
		parameters = map[string]any{}
	}
	encoded, err := json.Marshal(parameters)
	if err != nil {
		return nil, fmt.Errorf("encoding scenario parameters: %w", err)
	}

	scenario := &domain.Scenario{
		Name:       name,
		Type:       scenarioType,
		TenantID:   tenantID,
		Parameters: datatypes.JSON(encoded),
		Active:     true,
	}
	if err := e.scenarios.CreateScenario(ctx, scenario); err != nil {
		return nil, fmt.Errorf("creating scenario: %w", err)
	}

	if len(suppliers) == 0 {
		return scenario, nil
	}

	baseline, err := e.Baseline(ctx, suppliers, nil, nil)
	if err != nil {
		return nil, err
	}
	projected, err := e.Projected(scenario, baseline)
	if err != nil {
		return nil, err
	}

	scenario.BaselineEmissions = baseline
	scenario.ProjectedEmissions = projected
	scenario.CalculateReduction()

	ratio := one
	if !baseline.IsZero() {
		ratio = projected.Div(baseline)
	}

	for _, supplier := range suppliers {
		supplierBaseline, err := e.Baseline(ctx, []*domain.Supplier{supplier}, nil, nil)
		if err != nil {
			return nil, err
		}
		row := &domain.ScenarioSupplier{
			ScenarioID:          scenario.ID,
			SupplierID:          supplier.ID,
			BaselineEmissions:   supplierBaseline,
			ProjectedEmissions:  supplierBaseline.Mul(ratio),
			ReductionPercentage: scenario.ReductionPercentage,
		}
		if err := e.scenarios.CreateScenarioSupplier(ctx, row); err != nil {
			return nil, fmt.Errorf("creating scenario supplier row: %w", err)
		}
	}

	if err := e.scenarios.SaveScenario(ctx, scenario); err != nil {
		return nil, fmt.Errorf("saving scenario %d: %w", scenario.ID, err)
	}

	e.logger.Info().
		Str("trace_id", logging.TraceID(ctx)).
		Str("operation", "CreateScenario").
		Uint("scenario_id", scenario.ID).
		Str("scenario_type", string(scenarioType)).
		Int("supplier_count", len(suppliers)).
		Msg("scenario created")

	return scenario, nil
}
