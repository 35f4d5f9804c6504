// Command hotspot-train fits the hotspot outlier model from stored emission
// history and persists the artifact. It is the on-demand retraining job; the
// engine itself never retrains implicitly.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/carbonlens/scope3-engine/internal/config"
	"github.com/carbonlens/scope3-engine/internal/hotspot"
	"github.com/carbonlens/scope3-engine/internal/logging"
	"github.com/carbonlens/scope3-engine/internal/store/gormstore"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to a YAML config file")
		dsn        = flag.String("dsn", "", "MySQL DSN (overrides config)")
		modelDir   = flag.String("models", "", "Model artifact directory (overrides config)")
	)
	flag.Parse()

	logger := logging.New("hotspot-train")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("loading configuration failed")
	}
	if *dsn != "" {
		cfg.DatabaseDSN = *dsn
	}
	if *modelDir != "" {
		cfg.ModelDir = *modelDir
	}
	if cfg.DatabaseDSN == "" {
		logger.Fatal().Msg("no database DSN configured; set -dsn or database_dsn in the config file")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Warn().Msg("received shutdown signal")
		cancel()
	}()

	jobID := uuid.New().String()
	ctx = logging.WithTraceID(ctx, jobID)
	logger = logger.With().Str("job_id", jobID).Logger()

	db, err := gormstore.Open(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("opening store failed")
	}

	predictor := hotspot.NewPredictor(db, db, hotspot.NewFileBlobStore(), cfg.HotspotModelPath(), logger)
	if err := predictor.Train(ctx); err != nil {
		logger.Fatal().Err(err).Msg("training failed")
	}

	logger.Info().
		Int("training_size", predictor.TrainingSize()).
		Str("model_path", cfg.HotspotModelPath()).
		Msg("training complete")
}
