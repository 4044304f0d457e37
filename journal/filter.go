package journal

import "strings"

// Filter narrows List results. The zero Filter matches everything.
type Filter struct {
	Symbol     string
	DatePrefix string
}

func BySymbol(symbol string) Filter {
	return Filter{Symbol: strings.ToUpper(strings.TrimSpace(symbol))}
}

func ByDatePrefix(prefix string) Filter {
	return Filter{DatePrefix: strings.TrimSpace(prefix)}
}

// ParseFilter reads "symbol EURUSD" or "date 2024-01". Anything else is no
// filter.
func ParseFilter(args []string) Filter {
	if len(args) < 2 {
		return Filter{}
	}
	switch strings.ToLower(args[0]) {
	case "symbol":
		return BySymbol(args[1])
	case "date":
		return ByDatePrefix(args[1])
	}
	return Filter{}
}

func (f Filter) IsZero() bool {
	return f.Symbol == "" && f.DatePrefix == ""
}

func (f Filter) Match(t Trade) bool {
	if f.Symbol != "" && !strings.EqualFold(t.Symbol, f.Symbol) {
		return false
	}
	if f.DatePrefix != "" && !strings.HasPrefix(t.DateString(), f.DatePrefix) {
		return false
	}
	return true
}

func (f Filter) apply(trades []Trade) []Trade {
	out := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}
