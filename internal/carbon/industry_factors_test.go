package carbon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndustryFactor(t *testing.T) {
	tests := []struct {
		industry string
		want     string
	}{
		{"manufacturing", "0.45"},
		{"Transport", "0.65"},
		{"ENERGY", "0.85"},
		{"construction", "0.35"},
		{"agriculture", "0.25"},
		{"technology", "0.15"},
		{"retail", "0.20"},
		{"", "0.30"},
		{"floristry", "0.30"},
	}

	for _, tt := range tests {
		name := tt.industry
		if name == "" {
			name = "empty"
		}
		t.Run(name, func(t *testing.T) {
			got := IndustryFactor(tt.industry)
			assert.True(t, got.Equal(decimalFromString(t, tt.want)),
				"IndustryFactor(%q) = %s, want %s", tt.industry, got, tt.want)
		})
	}
}

func TestNormalizeIndustry(t *testing.T) {
	assert.Equal(t, "default", NormalizeIndustry(""))
	assert.Equal(t, "manufacturing", NormalizeIndustry("Manufacturing"))
}
