// Package hotspot flags suppliers whose emission history is statistically
// unusual relative to the whole supplier population. Unsupervised outlier
// detection is used because labeled hotspot ground truth does not exist.
package hotspot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"

	"github.com/rs/zerolog"

	"github.com/carbonlens/scope3-engine/internal/domain"
	"github.com/carbonlens/scope3-engine/internal/store"
)

const (
	// minTrainingSuppliers is the smallest supplier population a real model
	// is fitted on. Below this, an unfitted default detector is substituted
	// and predictions fall back to neutral.
	minTrainingSuppliers = 10

	trainedContamination = 0.15
	defaultContamination = 0.10

	// confidenceScale rescales |anomaly score| into [0,1]. This is a fixed
	// linear rescaling, not a calibrated probability.
	confidenceScale = 10.0

	neutralConfidence = 0.5
)

// Outcome is one hotspot scoring result.
type Outcome struct {
	IsHotspot  bool
	Confidence float64

	// Features is the vector the decision was made on; nil when the
	// supplier had no emission history and the neutral fallback applied.
	Features []float64
}

// Predictor owns the outlier-detection model lifecycle: construct once,
// Init to load-or-train, reuse across predictions, Train again on an
// explicit retrain trigger.
type Predictor struct {
	suppliers store.SupplierStore
	entries   store.EntryStore
	blobs     BlobStore
	modelPath string
	logger    zerolog.Logger

	forest *IsolationForest
}

// NewPredictor creates a hotspot predictor. Call Init before Predict.
func NewPredictor(suppliers store.SupplierStore, entries store.EntryStore, blobs BlobStore, modelPath string, logger zerolog.Logger) *Predictor {
	return &Predictor{
		suppliers: suppliers,
		entries:   entries,
		blobs:     blobs,
		modelPath: modelPath,
		logger:    logger,
	}
}

// Init loads the persisted model if one exists, otherwise trains fresh.
func (p *Predictor) Init(ctx context.Context) error {
	data, err := p.blobs.Load(p.modelPath)
	switch {
	case err == nil:
		forest := &IsolationForest{}
		if err := forest.UnmarshalBinary(data); err != nil {
			p.logger.Error().Err(err).Str("model_path", p.modelPath).Msg("persisted model unreadable, retraining")
			return p.Train(ctx)
		}
		p.forest = forest
		p.logger.Info().Str("model_path", p.modelPath).Msg("hotspot model loaded")
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return p.Train(ctx)
	default:
		return fmt.Errorf("loading hotspot model: %w", err)
	}
}

// Train fits the outlier model on every supplier with at least one emission
// entry. With fewer than minTrainingSuppliers eligible suppliers an unfitted
// default detector is substituted and nothing is persisted; this is the
// documented insufficient-data fallback, not an error.
func (p *Predictor) Train(ctx context.Context) error {
	suppliers, err := p.suppliers.Suppliers(ctx)
	if err != nil {
		return fmt.Errorf("loading suppliers: %w", err)
	}

	features, err := PrepareFeatures(ctx, p.entries, suppliers)
	if err != nil {
		return fmt.Errorf("preparing features: %w", err)
	}

	if len(features) < minTrainingSuppliers {
		p.logger.Warn().
			Int("eligible_suppliers", len(features)).
			Int("required", minTrainingSuppliers).
			Msg("insufficient data for training, using default detector")
		p.forest = NewIsolationForest(defaultContamination)
		return nil
	}

	x := make([][]float64, len(features))
	for i, f := range features {
		x[i] = f.Vector
	}

	forest := NewIsolationForest(trainedContamination)
	forest.Fit(x)
	p.forest = forest

	data, err := forest.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encoding hotspot model: %w", err)
	}
	if err := p.blobs.Save(p.modelPath, data); err != nil {
		return fmt.Errorf("persisting hotspot model: %w", err)
	}

	p.logger.Info().
		Int("training_size", len(features)).
		Str("model_path", p.modelPath).
		Msg("hotspot model trained")
	return nil
}

// TrainingSize returns the number of suppliers the current model was fitted
// on, or 0 for the unfitted default detector.
func (p *Predictor) TrainingSize() int {
	if p.forest == nil || !p.forest.Fitted {
		return 0
	}
	return p.forest.TrainingSize
}

// Predict scores one supplier. A supplier with no emission history — or a
// model that fell back to the unfitted default detector — yields the neutral
// (false, 0.5) outcome rather than an error.
func (p *Predictor) Predict(ctx context.Context, supplier *domain.Supplier) (Outcome, error) {
	features, err := PrepareFeatures(ctx, p.entries, []*domain.Supplier{supplier})
	if err != nil {
		return Outcome{}, err
	}
	if len(features) == 0 {
		return Outcome{IsHotspot: false, Confidence: neutralConfidence}, nil
	}
	vector := features[0].Vector

	if p.forest == nil || !p.forest.Fitted {
		return Outcome{IsHotspot: false, Confidence: neutralConfidence, Features: vector}, nil
	}

	isOutlier, score, err := p.forest.IsOutlier(vector)
	if err != nil {
		return Outcome{}, fmt.Errorf("scoring supplier %d: %w", supplier.ID, err)
	}

	confidence := math.Abs(score) / confidenceScale
	confidence = math.Min(math.Max(confidence, 0), 1)

	return Outcome{IsHotspot: isOutlier, Confidence: confidence, Features: vector}, nil
}
