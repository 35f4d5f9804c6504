package carbon

import (
	"strings"

	"github.com/shopspring/decimal"
)

// IndustryEmissionFactors maps industry categories to spend intensity.
// Values are in tCO2e per $1000 USD spend.
//
// Source: EEIO-style sector averages used for spend-based Scope 3 (category 1)
// screening when direct measurement is unavailable.
var IndustryEmissionFactors = map[string]decimal.Decimal{
	"manufacturing": decimal.RequireFromString("0.45"),
	"transport":     decimal.RequireFromString("0.65"),
	"energy":        decimal.RequireFromString("0.85"),
	"construction":  decimal.RequireFromString("0.35"),
	"agriculture":   decimal.RequireFromString("0.25"),
	"technology":    decimal.RequireFromString("0.15"),
	"retail":        decimal.RequireFromString("0.20"),
	"default":       decimal.RequireFromString("0.30"),
}

// DefaultIndustryCategory is the lookup key used when a supplier declares no
// industry.
const DefaultIndustryCategory = "default"

// IndustryFactor returns the spend emission factor for the given industry in
// tCO2e per $1000 spend. The industry is lowercased before lookup; an empty
// or unknown industry falls back to the default factor.
func IndustryFactor(industry string) decimal.Decimal {
	key := NormalizeIndustry(industry)
	if factor, ok := IndustryEmissionFactors[key]; ok {
		return factor
	}
	return IndustryEmissionFactors[DefaultIndustryCategory]
}

// NormalizeIndustry lowercases an industry category, substituting the default
// category for empty input.
func NormalizeIndustry(industry string) string {
	if industry == "" {
		return DefaultIndustryCategory
	}
	return strings.ToLower(industry)
}
