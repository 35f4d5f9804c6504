package hotspot

import (
	"context"
	"fmt"

	"github.com/carbonlens/scope3-engine/internal/domain"
	"github.com/carbonlens/scope3-engine/internal/store"
)

// FeatureCount is the dimensionality of the supplier feature vector.
const FeatureCount = 7

// recentWindow is how many of the newest entries feed the recency feature.
const recentWindow = 3

// SupplierFeatures pairs a supplier with its feature vector.
type SupplierFeatures struct {
	Supplier *domain.Supplier
	Vector   []float64
}

// PrepareFeatures builds a feature vector per supplier from emission history
// and declared attributes. Suppliers with no emission entries are skipped
// entirely; they carry no signal for outlier detection.
//
// Vector layout: [mean emissions, total emissions, entry count,
// mean of the 3 most recent entries, annual spend, emission factor,
// has-region flag].
func PrepareFeatures(ctx context.Context, entries store.EntryStore, suppliers []*domain.Supplier) ([]SupplierFeatures, error) {
	features := make([]SupplierFeatures, 0, len(suppliers))

	for _, supplier := range suppliers {
		history, err := entries.EntriesBySupplier(ctx, supplier.ID)
		if err != nil {
			return nil, fmt.Errorf("loading entries for supplier %d: %w", supplier.ID, err)
		}
		if len(history) == 0 {
			continue
		}

		total := 0.0
		for _, e := range history {
			total += e.Scope3Emissions.InexactFloat64()
		}
		count := len(history)

		// History is ordered most recent first.
		recent := history
		if len(recent) > recentWindow {
			recent = recent[:recentWindow]
		}
		recentTotal := 0.0
		for _, e := range recent {
			recentTotal += e.Scope3Emissions.InexactFloat64()
		}

		spend := 0.0
		if supplier.AnnualSpend != nil {
			spend = supplier.AnnualSpend.InexactFloat64()
		}
		factor := 0.0
		if supplier.EmissionFactor != nil {
			factor = supplier.EmissionFactor.InexactFloat64()
		}
		hasRegion := 0.0
		if supplier.Region != "" {
			hasRegion = 1.0
		}

		features = append(features, SupplierFeatures{
			Supplier: supplier,
			Vector: []float64{
				total / float64(count),
				total,
				float64(count),
				recentTotal / float64(len(recent)),
				spend,
				factor,
				hasRegion,
			},
		})
	}

	return features, nil
}
