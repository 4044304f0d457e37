package risk

import "github.com/shopspring/decimal"

// lotStep is the smallest tradable lot increment (a micro lot).
const lotStep = 2

// MaxLot returns the largest lot, rounded down to a micro lot, whose stop
// loss would risk at most riskPct percent of capital. ok is false when the
// stop distance is zero or capital is not positive.
func MaxLot(capital, entry, stop decimal.Decimal, riskPct float64) (lot decimal.Decimal, ok bool) {
	stopPips := entry.Sub(stop).Abs().Mul(pipsPerPrice)
	if stopPips.IsZero() || !capital.IsPositive() || riskPct <= 0 {
		return decimal.Zero, false
	}

	riskAmt := capital.Mul(decimal.NewFromFloat(riskPct)).Div(hundred)
	perLot := stopPips.Mul(pipValuePerLot)

	return riskAmt.Div(perLot).Truncate(lotStep), true
}
