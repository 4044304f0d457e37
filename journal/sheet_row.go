package journal

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Spreadsheet columns, in the order trades are written.
const (
	ColSymbol  = "Symbol"
	ColEntry   = "Entry"
	ColSL      = "SL"
	ColTP      = "TP"
	ColLot     = "Lot"
	ColRisk    = "Risk"
	ColReward  = "Reward"
	ColRR      = "RR Ratio"
	ColRiskPct = "Risk %"
	ColDate    = "Date"
)

var SheetHeader = []string{ColSymbol, ColEntry, ColSL, ColTP, ColLot, ColRisk, ColReward, ColRR, ColRiskPct, ColDate}

func headerRow() []any {
	row := make([]any, len(SheetHeader))
	for i, h := range SheetHeader {
		row[i] = h
	}
	return row
}

// columns maps canonical column names to their index in a sheet. Header
// cells are matched case-insensitively; columns the header does not name
// fall back to the canonical position.
type columns map[string]int

func columnsFor(header []any) columns {
	found := make(map[string]int, len(header))
	for i, cell := range header {
		found[strings.ToLower(strings.TrimSpace(cellString(cell)))] = i
	}

	cols := make(columns, len(SheetHeader))
	for i, name := range SheetHeader {
		if at, ok := found[strings.ToLower(name)]; ok {
			cols[name] = at
		} else {
			cols[name] = i
		}
	}
	return cols
}

func (c columns) width() int {
	w := 0
	for _, i := range c {
		if i+1 > w {
			w = i + 1
		}
	}
	return w
}

func (c columns) get(row []any, name string) any {
	i := c[name]
	if i >= len(row) {
		return ""
	}
	return row[i]
}

// cells renders t as column -> cell value.
func cells(t Trade) map[string]any {
	return map[string]any{
		ColSymbol:  t.Symbol,
		ColEntry:   f64(t.Entry),
		ColSL:      f64(t.SL),
		ColTP:      f64(t.TP),
		ColLot:     f64(t.Lot),
		ColRisk:    t.RiskAmount,
		ColReward:  t.RewardAmount,
		ColRR:      t.RRString(),
		ColRiskPct: t.RiskPercent,
		ColDate:    t.DateString(),
	}
}

// encodeRow lays t out in the canonical column order.
func encodeRow(t Trade) []any {
	c := cells(t)
	row := make([]any, len(SheetHeader))
	for i, name := range SheetHeader {
		row[i] = c[name]
	}
	return row
}

// rewriteRow returns raw with only the cells that differ between before and
// after replaced, so untouched cells go back exactly as they were read.
func rewriteRow(cols columns, raw []any, before, after Trade) []any {
	width := cols.width()
	if len(raw) > width {
		width = len(raw)
	}
	out := make([]any, width)
	for i := range out {
		out[i] = ""
		if i < len(raw) {
			out[i] = raw[i]
		}
	}

	old, next := cells(before), cells(after)
	for name, i := range cols {
		if fmt.Sprint(old[name]) != fmt.Sprint(next[name]) {
			out[i] = next[name]
		}
	}
	return out
}

// decodeRow reads a trade back from a sheet row. Cells that do not parse
// come back as zero values. Capital has no column and is recovered from
// risk and risk percent when both are known.
func decodeRow(cols columns, row []any) Trade {
	t := Trade{
		Symbol:       strings.ToUpper(strings.TrimSpace(cellString(cols.get(row, ColSymbol)))),
		Entry:        cellDecimal(cols.get(row, ColEntry)),
		SL:           cellDecimal(cols.get(row, ColSL)),
		TP:           cellDecimal(cols.get(row, ColTP)),
		Lot:          cellDecimal(cols.get(row, ColLot)),
		RiskAmount:   cellFloat(cols.get(row, ColRisk)),
		RewardAmount: cellFloat(cols.get(row, ColReward)),
		RRRatio:      cellFloat(strings.TrimPrefix(strings.TrimSpace(cellString(cols.get(row, ColRR))), "1:")),
		RiskPercent:  cellFloat(cols.get(row, ColRiskPct)),
	}

	if d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(cellString(cols.get(row, ColDate))), time.Local); err == nil {
		t.Date = d
	}
	if t.RiskPercent > 0 {
		t.Capital = decimal.NewFromFloat(t.RiskAmount).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromFloat(t.RiskPercent)).
			Round(2)
	}
	return t
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func cellDecimal(v any) decimal.Decimal {
	if x, ok := v.(float64); ok {
		return decimal.NewFromFloat(x)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(cellString(v)))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func cellFloat(v any) float64 {
	if x, ok := v.(float64); ok {
		return x
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(cellString(v)), 64)
	if err != nil {
		return 0
	}
	return x
}

func f64(d decimal.Decimal) float64 {
	v, _ := d.Float64()
	return v
}
