package risk

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultSymbol is used when a trade description carries no symbol.
const DefaultSymbol = "UNKNOWN"

var requiredFields = []string{"capital", "entry", "sl", "tp", "lot"}

// ParseTrade reads "key:value" tokens (capital, entry, sl, tp, lot) and an
// optional bare symbol token such as "EURUSD". All five numeric fields must
// be present and numeric.
func ParseTrade(args []string) (string, Inputs, error) {
	symbol := ""
	values := make(map[string]decimal.Decimal, len(requiredFields))

	for _, arg := range args {
		key, val, ok := strings.Cut(arg, ":")
		if !ok {
			if symbol == "" && strings.TrimSpace(arg) != "" {
				symbol = strings.ToUpper(strings.TrimSpace(arg))
			}
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return "", Inputs{}, fmt.Errorf("%w: %s is not a number", ErrInvalidInput, key)
		}
		values[key] = d
	}

	for _, k := range requiredFields {
		if _, ok := values[k]; !ok {
			return "", Inputs{}, fmt.Errorf("%w: missing %s", ErrInvalidInput, k)
		}
	}

	if symbol == "" {
		symbol = DefaultSymbol
	}
	return symbol, Inputs{
		Capital: values["capital"],
		Entry:   values["entry"],
		SL:      values["sl"],
		TP:      values["tp"],
		Lot:     values["lot"],
	}, nil
}
