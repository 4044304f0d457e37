package journal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Editable field names. Matching is case-insensitive on every backend.
const (
	FieldSymbol  = "symbol"
	FieldEntry   = "entry"
	FieldSL      = "sl"
	FieldTP      = "tp"
	FieldLot     = "lot"
	FieldCapital = "capital"
	FieldDate    = "date"
)

var editable = map[string]bool{
	FieldSymbol:  true,
	FieldEntry:   true,
	FieldSL:      true,
	FieldTP:      true,
	FieldLot:     true,
	FieldCapital: true,
	FieldDate:    true,
}

// Edits maps lowercase field names to their new raw values.
type Edits map[string]string

// dateLayouts are the accepted forms of a date edit. Date-only values
// mean midnight.
var dateLayouts = []string{DateLayout, "2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02"}

// ParseEdits reads "field:value" tokens. Unknown fields, including the
// derived amounts, are returned in ignored and left out of the edits. A
// clock token right after a date edit ("date:2024-01-02 03:04:05" split on
// whitespace) is joined back onto the date.
func ParseEdits(args []string) (edits Edits, ignored []string) {
	edits = Edits{}
	for i := 0; i < len(args); i++ {
		key, val, ok := strings.Cut(args[i], ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if !editable[key] {
			ignored = append(ignored, key)
			continue
		}
		val = strings.TrimSpace(val)
		if key == FieldDate && i+1 < len(args) && isClock(args[i+1]) {
			val += " " + strings.TrimSpace(args[i+1])
			i++
		}
		edits[key] = val
	}
	return edits, ignored
}

func isClock(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func parseDate(raw string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var d time.Time
		if d, err = time.ParseInLocation(layout, raw, time.Local); err == nil {
			return d, nil
		}
	}
	return time.Time{}, err
}

// Fields returns the edited field names in sorted order.
func (e Edits) Fields() []string {
	out := make([]string, 0, len(e))
	for k := range e {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Apply returns t with the edits applied. t itself is never modified, and
// nothing is applied if any value fails to parse.
func (e Edits) Apply(t Trade, recompute bool) (Trade, error) {
	out := t
	touchedInputs := false

	for _, field := range e.Fields() {
		raw := e[field]
		name := strings.ToLower(field)
		switch name {
		case FieldSymbol:
			if raw == "" {
				return t, fmt.Errorf("%w: empty symbol", ErrInvalidInput)
			}
			out.Symbol = strings.ToUpper(raw)
		case FieldDate:
			d, err := parseDate(raw)
			if err != nil {
				return t, fmt.Errorf("%w: date must look like %s or 2006-01-02", ErrInvalidInput, DateLayout)
			}
			out.Date = d
		case FieldEntry, FieldSL, FieldTP, FieldLot, FieldCapital:
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return t, fmt.Errorf("%w: %s is not a number", ErrInvalidInput, name)
			}
			setNumeric(&out, name, d)
			touchedInputs = true
		}
	}

	if recompute && touchedInputs {
		if err := out.Recompute(); err != nil {
			return t, fmt.Errorf("recompute: %w", err)
		}
	}
	return out, nil
}

func setNumeric(t *Trade, field string, d decimal.Decimal) {
	switch field {
	case FieldEntry:
		t.Entry = d
	case FieldSL:
		t.SL = d
	case FieldTP:
		t.TP = d
	case FieldLot:
		t.Lot = d
	case FieldCapital:
		t.Capital = d
	}
}
