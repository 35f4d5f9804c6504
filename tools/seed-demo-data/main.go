// Command seed-demo-data populates a database with synthetic suppliers,
// emission history, and IoT devices for local development and model testing.
//
// The generated data is deterministic for a given -seed, so repeated runs
// against a fresh schema produce the same rows.
//
// Usage:
//
//	go run ./tools/seed-demo-data -dsn "user:pass@tcp(localhost:3306)/carbon" [-suppliers N] [-months N] [-seed N]
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carbonlens/scope3-engine/internal/domain"
	"github.com/carbonlens/scope3-engine/internal/logging"
	"github.com/carbonlens/scope3-engine/internal/store/gormstore"
)

var regions = []string{"zimbabwe", "south_africa", "kenya", "botswana"}

var industries = []string{
	"manufacturing", "transport", "energy", "construction",
	"agriculture", "technology", "retail",
}

func main() {
	var (
		dsn       = flag.String("dsn", "", "MySQL DSN")
		suppliers = flag.Int("suppliers", 20, "Number of suppliers to generate")
		months    = flag.Int("months", 12, "Months of emission history per supplier")
		seed      = flag.Int64("seed", 1, "Random seed for deterministic output")
	)
	flag.Parse()

	logger := logging.New("seed-demo-data")
	if *dsn == "" {
		logger.Fatal().Msg("no database DSN given; set -dsn")
	}

	db, err := gormstore.Open(*dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("opening store failed")
	}

	ctx := context.Background()
	rng := rand.New(rand.NewSource(*seed))
	start := time.Now().AddDate(0, -*months, 0)

	var entryCount, deviceCount int
	for i := 0; i < *suppliers; i++ {
		spend := decimal.NewFromInt(int64(1000 + rng.Intn(50000)))
		supplier := &domain.Supplier{
			TenantID:    1,
			Code:        fmt.Sprintf("SUP-%03d", i+1),
			Name:        fmt.Sprintf("Demo Supplier %d", i+1),
			Region:      regions[rng.Intn(len(regions))],
			Industry:    industries[rng.Intn(len(industries))],
			AnnualSpend: &spend,
			Active:      true,
		}
		if err := db.SaveSupplier(ctx, supplier); err != nil {
			logger.Fatal().Err(err).Str("code", supplier.Code).Msg("creating supplier failed")
		}

		// A stable per-supplier emissions level with monthly jitter. One
		// supplier in twenty runs an order of magnitude hotter, so outlier
		// detection has something to find.
		level := 5 + rng.Float64()*20
		if rng.Intn(20) == 0 {
			level *= 10
		}
		for m := 0; m < *months; m++ {
			emissions := level * (0.8 + rng.Float64()*0.4)
			entry := &domain.EmissionEntry{
				SupplierID:      supplier.ID,
				DateReported:    start.AddDate(0, m, rng.Intn(28)),
				Scope3Emissions: decimal.NewFromFloat(emissions).Round(2),
				DataSource:      domain.SourceManual,
				Notes:           "seeded demo entry",
			}
			if err := db.CreateEntry(ctx, entry); err != nil {
				logger.Fatal().Err(err).Str("code", supplier.Code).Msg("creating entry failed")
			}
			entryCount++
		}

		// Every third supplier gets an energy sensor.
		if i%3 == 0 {
			device := &domain.IoTDevice{
				DeviceID:   fmt.Sprintf("sensor-%03d", i+1),
				SupplierID: supplier.ID,
				Name:       fmt.Sprintf("Main Meter %d", i+1),
				Type:       "energy_meter",
				Active:     true,
				APIKey:     fmt.Sprintf("demo-key-%03d", i+1),
			}
			if err := db.SaveDevice(ctx, device); err != nil {
				logger.Fatal().Err(err).Str("device_id", device.DeviceID).Msg("creating device failed")
			}
			deviceCount++
		}
	}

	logger.Info().
		Int("suppliers", *suppliers).
		Int("entries", entryCount).
		Int("devices", deviceCount).
		Msg("demo data seeded")
}
