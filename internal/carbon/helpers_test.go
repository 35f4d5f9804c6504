package carbon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func decimalPtr(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d := decimalFromString(t, s)
	return &d
}
