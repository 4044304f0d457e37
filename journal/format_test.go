package journal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTrade(t *testing.T) {
	t.Parallel()

	tr := testTrade(t, "EURUSD", "1.1000", "1.0950", "1.1100", "1", day1)
	assert.Equal(t,
		"3. EURUSD | Entry: 1.1 | SL: 1.095 | TP: 1.11 | RR: 1:2.00 | 2024-03-15 10:30:00",
		FormatTrade(3, tr))
}

func TestFormatTrades(t *testing.T) {
	t.Parallel()

	assert.Empty(t, FormatTrades(nil))

	out := FormatTrades([]Trade{
		testTrade(t, "EURUSD", "1.1000", "1.0950", "1.1100", "1", day1),
		testTrade(t, "GBPUSD", "1.2500", "1.2550", "1.2400", "0.5", day2),
	})
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "1. EURUSD"))
	assert.True(t, strings.HasPrefix(lines[1], "2. GBPUSD"))
}
