package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/lockin/risk"
	"github.com/rustyeddy/lockin/sheets"
	"github.com/shopspring/decimal"
)

// DateLayout is how trade dates are rendered, stored in spreadsheets and
// matched by date-prefix filters.
const DateLayout = "2006-01-02 15:04:05"

var (
	ErrInvalidInput       = risk.ErrInvalidInput
	ErrOutOfRange         = errors.New("trade index out of range")
	ErrBackendUnavailable = errors.New("journal backend unavailable")
	ErrUnauthorized       = sheets.ErrUnauthorized
)

// Trade is one journal entry. The derived amounts are computed when the
// trade is created; edits only recompute them when the store is configured
// with Options.RecomputeOnEdit.
type Trade struct {
	ID      string
	Symbol  string
	Entry   decimal.Decimal
	SL      decimal.Decimal
	TP      decimal.Decimal
	Lot     decimal.Decimal
	Capital decimal.Decimal

	RiskAmount   float64
	RewardAmount float64
	RiskPercent  float64
	RRRatio      float64

	Date time.Time
}

// NewTrade builds a trade from validated inputs and their metrics.
func NewTrade(symbol string, in risk.Inputs, m risk.Metrics, now time.Time) Trade {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		symbol = risk.DefaultSymbol
	}
	return Trade{
		Symbol:       symbol,
		Entry:        in.Entry,
		SL:           in.SL,
		TP:           in.TP,
		Lot:          in.Lot,
		Capital:      in.Capital,
		RiskAmount:   m.RiskAmount,
		RewardAmount: m.RewardAmount,
		RiskPercent:  m.RiskPercent,
		RRRatio:      m.RRRatio,
		Date:         now.Truncate(time.Second),
	}
}

func (t Trade) Inputs() risk.Inputs {
	return risk.Inputs{
		Capital: t.Capital,
		Entry:   t.Entry,
		SL:      t.SL,
		TP:      t.TP,
		Lot:     t.Lot,
	}
}

// Recompute refreshes the derived amounts from the stored inputs.
func (t *Trade) Recompute() error {
	m, err := risk.Compute(t.Inputs())
	if err != nil {
		return err
	}
	t.RiskAmount = m.RiskAmount
	t.RewardAmount = m.RewardAmount
	t.RiskPercent = m.RiskPercent
	t.RRRatio = m.RRRatio
	return nil
}

func (t Trade) DateString() string {
	if t.Date.IsZero() {
		return ""
	}
	return t.Date.Format(DateLayout)
}

// RRString renders the ratio as "1:X.XX".
func (t Trade) RRString() string {
	return fmt.Sprintf("1:%.2f", t.RRRatio)
}

// Store is the trade journal. owner selects the journal: a user ID for the
// local backends, a spreadsheet ID for Sheet. Indexes are 1-based.
type Store interface {
	Append(ctx context.Context, owner string, t Trade) (Trade, error)
	List(ctx context.Context, owner string, f Filter) ([]Trade, error)
	Update(ctx context.Context, owner string, index int, edits Edits) (Trade, error)
	Delete(ctx context.Context, owner string, index int) (Trade, error)
}

type Options struct {
	// RecomputeOnEdit refreshes the derived amounts when an edit touches
	// entry, sl, tp, lot or capital.
	RecomputeOnEdit bool

	// Timeout bounds each remote call. Zero means no extra bound.
	Timeout time.Duration
}

// position converts a 1-based index into a slice offset.
func position(index, n int) (int, error) {
	if index < 1 || index > n {
		return 0, fmt.Errorf("%w: %d (journal has %d trades)", ErrOutOfRange, index, n)
	}
	return index - 1, nil
}
