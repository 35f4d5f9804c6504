package hotspot

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/carbonlens/scope3-engine/internal/domain"
	"github.com/carbonlens/scope3-engine/internal/logging"
	"github.com/carbonlens/scope3-engine/internal/store"
)

const (
	modelType    = "hotspot"
	modelName    = "Hotspot Model"
	modelVersion = "1.0"

	// defaultPeriodDays is the forward-looking window a prediction covers
	// when the caller supplies no period.
	defaultPeriodDays = 365

	hotspotReason = "High emission intensity detected"
)

// Service wraps the predictor and materializes each scoring call as an
// MLPrediction row. Rows accumulate per invocation; there is no overwrite.
type Service struct {
	predictor   *Predictor
	entries     store.EntryStore
	models      store.ModelStore
	predictions store.PredictionStore
	logger      zerolog.Logger
}

// NewService creates the prediction service around an initialized predictor.
func NewService(predictor *Predictor, entries store.EntryStore, models store.ModelStore, predictions store.PredictionStore, logger zerolog.Logger) *Service {
	return &Service{
		predictor:   predictor,
		entries:     entries,
		models:      models,
		predictions: predictions,
		logger:      logger,
	}
}

// PredictHotspot scores the supplier and persists a new prediction row.
// The predicted emissions level is the mean of the supplier's historical
// entries; the period defaults to one year starting today.
func (s *Service) PredictHotspot(ctx context.Context, supplier *domain.Supplier, periodStart, periodEnd *time.Time) (*domain.MLPrediction, error) {
	start := time.Now()

	pStart := start
	if periodStart != nil {
		pStart = *periodStart
	}
	pEnd := pStart.AddDate(0, 0, defaultPeriodDays)
	if periodEnd != nil {
		pEnd = *periodEnd
	}

	model, err := s.models.EnsureModel(ctx, modelType, modelName, modelVersion)
	if err != nil {
		return nil, fmt.Errorf("resolving hotspot model row: %w", err)
	}

	outcome, err := s.predictor.Predict(ctx, supplier)
	if err != nil {
		return nil, err
	}

	history, err := s.entries.EntriesBySupplier(ctx, supplier.ID)
	if err != nil {
		return nil, fmt.Errorf("loading entries for supplier %d: %w", supplier.ID, err)
	}
	avg := decimal.Zero
	if len(history) > 0 {
		total := decimal.Zero
		for _, e := range history {
			total = total.Add(e.Scope3Emissions)
		}
		avg = total.Div(decimal.NewFromInt(int64(len(history))))
	}

	snapshot, err := json.Marshal(featureSnapshot(supplier))
	if err != nil {
		return nil, fmt.Errorf("encoding feature snapshot: %w", err)
	}

	reason := ""
	if outcome.IsHotspot {
		reason = hotspotReason
	}

	prediction := &domain.MLPrediction{
		SupplierID:         supplier.ID,
		ModelID:            model.ID,
		PredictedEmissions: avg,
		Confidence:         decimal.NewFromFloat(outcome.Confidence).Round(4),
		IsHotspot:          outcome.IsHotspot,
		HotspotReason:      reason,
		PeriodStart:        pStart,
		PeriodEnd:          pEnd,
		InputFeatures:      snapshot,
	}
	if err := s.predictions.CreatePrediction(ctx, prediction); err != nil {
		return nil, fmt.Errorf("creating prediction: %w", err)
	}

	s.logger.Info().
		Str("trace_id", logging.TraceID(ctx)).
		Str("operation", "PredictHotspot").
		Uint("supplier_id", supplier.ID).
		Bool("is_hotspot", outcome.IsHotspot).
		Float64("confidence", outcome.Confidence).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("hotspot prediction created")

	return prediction, nil
}

// featureSnapshot records the declared supplier attributes that fed the
// prediction, for audit alongside the row.
func featureSnapshot(supplier *domain.Supplier) map[string]any {
	spend := 0.0
	if supplier.AnnualSpend != nil {
		spend = supplier.AnnualSpend.InexactFloat64()
	}
	factor := 0.0
	if supplier.EmissionFactor != nil {
		factor = supplier.EmissionFactor.InexactFloat64()
	}
	return map[string]any{
		"annual_spend":    spend,
		"emission_factor": factor,
		"region":          supplier.Region,
	}
}
