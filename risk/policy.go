package risk

// Policy holds the advisory thresholds. Percentages are in percent units
// (2.0 means 2%).
type Policy struct {
	MaxRiskPct float64 // 2.0
	MinRR      float64 // 1.5
}

func DefaultPolicy() Policy {
	return Policy{
		MaxRiskPct: 2.0,
		MinRR:      1.5,
	}
}
