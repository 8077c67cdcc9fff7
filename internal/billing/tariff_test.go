package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestTariffMinimumCharge(t *testing.T) {
	tariff := DefaultTariff()

	for _, consumption := range []float64{0, 1, 5, 10} {
		amount := tariff.AmountFor(consumption)
		require.True(t, amount.Equal(decimal.NewFromInt(150)),
			"consumption %.1f should cost the minimum, got %s", consumption, amount)
	}
}

func TestTariffBlockRates(t *testing.T) {
	tariff := DefaultTariff()

	tests := []struct {
		consumption float64
		want        string
	}{
		// 150 + 5 * 16.50
		{15, "232.50"},
		// 150 + 10 * 16.50
		{20, "315.00"},
		// 150 + 10 * 16.50 + 5 * 18.00
		{25, "405.00"},
		// 150 + 10 * 16.50 + 10 * 18.00 + 10 * 20.50 + 2 * 23.00
		{42, "746.00"},
	}
	for _, tt := range tests {
		amount := tariff.AmountFor(tt.consumption)
		require.Equal(t, tt.want, amount.StringFixed(2), "consumption %.1f", tt.consumption)
	}
}

func TestTariffNegativeConsumptionIsMinimum(t *testing.T) {
	amount := DefaultTariff().AmountFor(-7)
	require.Equal(t, "150.00", amount.StringFixed(2))
}
