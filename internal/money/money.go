// Package money holds the rounding rules shared by sales and cash reconciliation.
// Every aggregation step rounds to cents, half away from zero.
package money

import "github.com/shopspring/decimal"

var cien = decimal.NewFromInt(100)

// Round2 rounds d to 2 decimal places (half away from zero, so 0.005 → 0.01).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Sum adds values rounding after every step.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = Round2(total.Add(v))
	}
	return total
}

// Clamp limits d to [lo, hi].
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}

// Pct returns part/whole*100 rounded to 2 places, or zero when whole is zero.
func Pct(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(cien).Round(2)
}
