package carbon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/carbonlens/scope3-engine/internal/domain"
	"github.com/carbonlens/scope3-engine/internal/logging"
	"github.com/carbonlens/scope3-engine/internal/store"
)

// ErrMissingSpend is returned when an estimate is requested without a spend
// amount. It is a validation fault: nothing is written.
var ErrMissingSpend = errors.New("carbon: spend amount is required")

// SpendEstimator converts declared spend into estimated emissions using the
// industry factor table, with a per-supplier override.
type SpendEstimator struct {
	estimates store.EstimateStore
	logger    zerolog.Logger
}

// NewSpendEstimator creates a spend-based estimator writing to the given
// estimate store.
func NewSpendEstimator(estimates store.EstimateStore, logger zerolog.Logger) *SpendEstimator {
	return &SpendEstimator{estimates: estimates, logger: logger}
}

// Estimate converts a spend amount into estimated emissions for the supplier
// and persists a new estimate row. Repeated calls append rows; estimates are
// an audit log, not an upsert target.
//
//	estimated (tCO2e) = spend / 1000 × factor
//
// The factor is the supplier's own emission factor when set, otherwise the
// industry table value (lowercased industry, "default" when blank). The
// period bounds are recorded as given; ordering is the caller's
// responsibility and an inverted range is stored as-is.
func (e *SpendEstimator) Estimate(ctx context.Context, supplier *domain.Supplier, spend *decimal.Decimal, periodStart, periodEnd time.Time) (*domain.SpendBasedEstimate, error) {
	if spend == nil {
		return nil, ErrMissingSpend
	}

	industry := NormalizeIndustry(supplier.Industry)
	factor := IndustryFactor(supplier.Industry)
	if supplier.EmissionFactor != nil {
		factor = *supplier.EmissionFactor
	}

	estimated := spend.Div(oneThousand).Mul(factor)

	estimate := &domain.SpendBasedEstimate{
		SupplierID:         supplier.ID,
		PeriodStart:        periodStart,
		PeriodEnd:          periodEnd,
		SpendAmount:        *spend,
		EmissionFactor:     factor,
		EstimatedEmissions: estimated,
		IndustryCategory:   industry,
	}
	if err := e.estimates.CreateEstimate(ctx, estimate); err != nil {
		return nil, fmt.Errorf("creating spend estimate: %w", err)
	}

	e.logger.Info().
		Str("trace_id", logging.TraceID(ctx)).
		Str("operation", "EstimateFromSpend").
		Uint("supplier_id", supplier.ID).
		Str("industry", industry).
		Str("spend_amount", spend.String()).
		Str("emission_factor", factor.String()).
		Str("estimated_emissions", estimated.String()).
		Msg("spend-based estimate created")

	return estimate, nil
}
