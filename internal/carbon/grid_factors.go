package carbon

import (
	"strings"

	"github.com/shopspring/decimal"
)

// GridEmissionFactors maps normalized supplier regions to grid carbon
// intensity. Values are in kg CO2e per kWh.
//
// Region keys are lowercase with spaces replaced by underscores; use
// GridFactor for lookups so normalization is applied consistently.
var GridEmissionFactors = map[string]decimal.Decimal{
	"zimbabwe":     decimal.RequireFromString("0.85"),
	"south_africa": decimal.RequireFromString("0.95"),
	"kenya":        decimal.RequireFromString("0.35"),
}

// DefaultGridFactor is used when a supplier's region is absent or has no
// specific factor (kg CO2e per kWh).
var DefaultGridFactor = decimal.RequireFromString("0.50")

// GridFactor returns the grid carbon emission factor for the given region in
// kg CO2e per kWh. The region is normalized to lowercase with spaces replaced
// by underscores before lookup. An empty or unknown region returns
// DefaultGridFactor; there is no error path.
func GridFactor(region string) decimal.Decimal {
	if region == "" {
		return DefaultGridFactor
	}
	key := strings.ReplaceAll(strings.ToLower(region), " ", "_")
	if factor, ok := GridEmissionFactors[key]; ok {
		return factor
	}
	return DefaultGridFactor
}
