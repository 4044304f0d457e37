package risk

import "fmt"

const (
	CodeRiskTooHigh = "RISK_TOO_HIGH"
	CodeRRTooLow    = "RR_TOO_LOW"
)

type Warning struct {
	Code string
	Msg  string
}

// Check returns the advisory warnings for m. Each rule is evaluated on its
// own, so none, either or both may fire.
func Check(p Policy, m Metrics) []Warning {
	var out []Warning

	if m.RiskPercent > p.MaxRiskPct {
		out = append(out, Warning{
			Code: CodeRiskTooHigh,
			Msg:  fmt.Sprintf("Risk exceeds %s%% of capital.", trim(p.MaxRiskPct)),
		})
	}
	if m.RRRatio < p.MinRR {
		out = append(out, Warning{
			Code: CodeRRTooLow,
			Msg:  fmt.Sprintf("RR ratio is below %s, consider skipping.", trim(p.MinRR)),
		})
	}
	return out
}

func trim(x float64) string {
	return fmt.Sprintf("%g", x)
}
