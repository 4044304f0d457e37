package risk

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned for missing, malformed or out-of-domain trade inputs.
var ErrInvalidInput = errors.New("invalid format")

// Quotes are assumed to have 4 decimals (1 pip = 0.0001) and a standard
// lot moves 10 units of account currency per pip. 2-decimal (JPY style)
// quotes are not handled.
var (
	pipsPerPrice   = decimal.NewFromInt(10000)
	pipValuePerLot = decimal.NewFromInt(10)
	hundred        = decimal.NewFromInt(100)
)

type Inputs struct {
	Capital decimal.Decimal
	Entry   decimal.Decimal
	SL      decimal.Decimal
	TP      decimal.Decimal
	Lot     decimal.Decimal
}

type Metrics struct {
	RiskPips     float64
	RewardPips   float64
	RiskAmount   float64
	RewardAmount float64
	RiskPercent  float64
	RRRatio      float64
}

// Compute derives the risk metrics of a position. Capital must be positive
// and lot must not be negative.
func Compute(in Inputs) (Metrics, error) {
	if !in.Capital.IsPositive() {
		return Metrics{}, fmt.Errorf("%w: capital must be positive", ErrInvalidInput)
	}
	if in.Lot.IsNegative() {
		return Metrics{}, fmt.Errorf("%w: lot must not be negative", ErrInvalidInput)
	}

	pipValue := pipValuePerLot.Mul(in.Lot)
	riskPips := in.Entry.Sub(in.SL).Abs().Mul(pipsPerPrice)
	rewardPips := in.TP.Sub(in.Entry).Abs().Mul(pipsPerPrice)

	riskAmt := riskPips.Mul(pipValue)
	rewardAmt := rewardPips.Mul(pipValue)

	return Metrics{
		RiskPips:     f(riskPips),
		RewardPips:   f(rewardPips),
		RiskAmount:   f(riskAmt),
		RewardAmount: f(rewardAmt),
		RiskPercent:  f(riskAmt.Div(in.Capital).Mul(hundred)),
		RRRatio:      RR(riskAmt, rewardAmt),
	}, nil
}

// RR is the reward amount over the risk amount. Nothing at risk (entry ==
// stop, or a zero lot) yields 0.
func RR(riskAmt, rewardAmt decimal.Decimal) float64 {
	if riskAmt.IsZero() {
		return 0
	}
	return f(rewardAmt.Div(riskAmt))
}

func f(d decimal.Decimal) float64 {
	v, _ := d.Float64()
	return v
}
