package journal

import (
	"fmt"
	"strings"
)

// FormatTrade renders one journal line, numbered with its 1-based index.
func FormatTrade(n int, t Trade) string {
	return fmt.Sprintf("%d. %s | Entry: %s | SL: %s | TP: %s | RR: %s | %s",
		n, t.Symbol, t.Entry, t.SL, t.TP, t.RRString(), t.DateString())
}

// FormatTrades renders trades one per line, numbered from 1.
func FormatTrades(trades []Trade) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatTrade(i+1, t))
	}
	return b.String()
}
