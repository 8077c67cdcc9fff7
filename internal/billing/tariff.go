package billing

import "github.com/shopspring/decimal"

// tariffBlock prices consumption from Above (exclusive) up to UpTo (inclusive).
type tariffBlock struct {
	Above  float64
	UpTo   float64
	PerCum decimal.Decimal
}

// Tariff is the block-rate schedule used for residential connections. The
// minimum charge covers everything up to MinimumCubicMeters regardless of use.
type Tariff struct {
	MinimumCharge      decimal.Decimal
	MinimumCubicMeters float64
	Blocks             []tariffBlock
}

// DefaultTariff mirrors the schedule posted at the waterworks office.
func DefaultTariff() Tariff {
	return Tariff{
		MinimumCharge:      decimal.NewFromInt(150),
		MinimumCubicMeters: 10,
		Blocks: []tariffBlock{
			{Above: 10, UpTo: 20, PerCum: decimal.RequireFromString("16.50")},
			{Above: 20, UpTo: 30, PerCum: decimal.RequireFromString("18.00")},
			{Above: 30, UpTo: 40, PerCum: decimal.RequireFromString("20.50")},
			{Above: 40, UpTo: 0, PerCum: decimal.RequireFromString("23.00")},
		},
	}
}

// AmountFor prices the given consumption in cubic meters. Consumption at or
// below the minimum block costs the minimum charge; each block above it is
// charged at its per-m3 rate for the volume falling inside the block.
func (t Tariff) AmountFor(consumption float64) decimal.Decimal {
	if consumption < 0 {
		consumption = 0
	}

	amount := t.MinimumCharge
	if consumption <= t.MinimumCubicMeters {
		return amount.Round(2)
	}

	for _, block := range t.Blocks {
		if consumption <= block.Above {
			break
		}
		upper := block.UpTo
		if upper == 0 || consumption < upper {
			upper = consumption
		}
		volume := decimal.NewFromFloat(upper - block.Above)
		amount = amount.Add(block.PerCum.Mul(volume))
	}
	return amount.Round(2)
}
