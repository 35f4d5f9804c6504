// Command iot-aggregate rolls up one day of IoT sensor readings per device
// and materializes the totals as emission entries. It is meant to run once a
// day, after midnight, for the previous day.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/carbonlens/scope3-engine/internal/carbon"
	"github.com/carbonlens/scope3-engine/internal/config"
	"github.com/carbonlens/scope3-engine/internal/logging"
	"github.com/carbonlens/scope3-engine/internal/store/gormstore"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to a YAML config file")
		dsn        = flag.String("dsn", "", "MySQL DSN (overrides config)")
		dateFlag   = flag.String("date", "", "Day to aggregate as YYYY-MM-DD (default: yesterday)")
	)
	flag.Parse()

	logger := logging.New("iot-aggregate")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("loading configuration failed")
	}
	if *dsn != "" {
		cfg.DatabaseDSN = *dsn
	}
	if cfg.DatabaseDSN == "" {
		logger.Fatal().Msg("no database DSN configured; set -dsn or database_dsn in the config file")
	}

	day := time.Now().AddDate(0, 0, -1)
	if *dateFlag != "" {
		day, err = time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			logger.Fatal().Err(err).Str("date", *dateFlag).Msg("invalid -date, expected YYYY-MM-DD")
		}
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

	processor := carbon.NewReadingProcessor(db, db, db, db, logger)

	devices, err := db.ActiveDevices(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("listing devices failed")
	}

	var materialized, skipped, failed int
	for _, device := range devices {
		if ctx.Err() != nil {
			logger.Warn().Msg("aggregation interrupted")
			break
		}

		agg, err := processor.AggregateDaily(ctx, device, day)
		if err != nil {
			logger.Error().Err(err).Str("device_id", device.DeviceID).Msg("aggregation failed")
			failed++
			continue
		}
		if agg.ReadingCount == 0 {
			skipped++
			continue
		}
		if _, err := processor.MaterializeEntry(ctx, device, day, agg); err != nil {
			logger.Error().Err(err).Str("device_id", device.DeviceID).Msg("materializing entry failed")
			failed++
			continue
		}
		materialized++
	}

	logger.Info().
		Str("day", day.Format("2006-01-02")).
		Int("devices", len(devices)).
		Int("materialized", materialized).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("daily aggregation complete")

	if failed > 0 {
		os.Exit(1)
	}
}
