package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type storedTrade struct {
	seq   int64
	trade Trade
}

// listTrades returns an owner's trades in insertion order.
func listTrades(ctx context.Context, q queryer, owner string) ([]storedTrade, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT seq, trade_id, symbol, entry, sl, tp, lot, capital, risk, reward, risk_pct, rr_ratio, date
		FROM trades
		WHERE owner = ?
		ORDER BY seq ASC`, owner)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var out []storedTrade
	for rows.Next() {
		var (
			st   storedTrade
			date string
		)
		t := &st.trade
		if err := rows.Scan(
			&st.seq,
			&t.ID,
			&t.Symbol,
			&t.Entry,
			&t.SL,
			&t.TP,
			&t.Lot,
			&t.Capital,
			&t.RiskAmount,
			&t.RewardAmount,
			&t.RiskPercent,
			&t.RRRatio,
			&date,
		); err != nil {
			return nil, err
		}
		if t.Date, err = parseStoredDate(date); err != nil {
			return nil, fmt.Errorf("trade %s: %w", t.ID, err)
		}
		out = append(out, st)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Stored dates keep their zone offset so they read back as the same instant
// and render the same DateString.
func formatStoredDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func parseStoredDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
