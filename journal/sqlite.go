package journal

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rustyeddy/lockin/pkg/id"
)

// MemoryDSN keeps the SQLite journal in process memory.
const MemoryDSN = ":memory:"

// SQLite is a local journal backed by SQLite. Every mutation runs in one
// transaction on a single connection, which also keeps ":memory:" databases
// shared across calls.
type SQLite struct {
	db   *sql.DB
	opts Options
}

var _ Store = (*SQLite)(nil)

func NewSQLite(path string, opts Options) (*SQLite, error) {
	if path == "" {
		path = MemoryDSN
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db, opts: opts}, nil
}

func (j *SQLite) Append(ctx context.Context, owner string, t Trade) (Trade, error) {
	if t.ID == "" {
		t.ID = id.At(t.Date)
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO trades
		(trade_id, owner, symbol, entry, sl, tp, lot, capital, risk, reward, risk_pct, rr_ratio, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, owner, t.Symbol,
		t.Entry.String(), t.SL.String(), t.TP.String(), t.Lot.String(), t.Capital.String(),
		t.RiskAmount, t.RewardAmount, t.RiskPercent, t.RRRatio,
		formatStoredDate(t.Date),
	)
	if err != nil {
		return Trade{}, fmt.Errorf("insert trade: %w", err)
	}
	return t, nil
}

func (j *SQLite) List(ctx context.Context, owner string, f Filter) ([]Trade, error) {
	rows, err := listTrades(ctx, j.db, owner)
	if err != nil {
		return nil, err
	}

	out := make([]Trade, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.trade)
	}
	return f.apply(out), nil
}

func (j *SQLite) Update(ctx context.Context, owner string, index int, edits Edits) (Trade, error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return Trade{}, err
	}
	defer tx.Rollback()

	rows, err := listTrades(ctx, tx, owner)
	if err != nil {
		return Trade{}, err
	}
	i, err := position(index, len(rows))
	if err != nil {
		return Trade{}, err
	}

	updated, err := edits.Apply(rows[i].trade, j.opts.RecomputeOnEdit)
	if err != nil {
		return Trade{}, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE trades SET
		symbol = ?, entry = ?, sl = ?, tp = ?, lot = ?, capital = ?,
		risk = ?, reward = ?, risk_pct = ?, rr_ratio = ?, date = ?
		WHERE seq = ?`,
		updated.Symbol,
		updated.Entry.String(), updated.SL.String(), updated.TP.String(), updated.Lot.String(), updated.Capital.String(),
		updated.RiskAmount, updated.RewardAmount, updated.RiskPercent, updated.RRRatio,
		formatStoredDate(updated.Date),
		rows[i].seq,
	)
	if err != nil {
		return Trade{}, fmt.Errorf("update trade: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Trade{}, err
	}
	return updated, nil
}

func (j *SQLite) Delete(ctx context.Context, owner string, index int) (Trade, error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return Trade{}, err
	}
	defer tx.Rollback()

	rows, err := listTrades(ctx, tx, owner)
	if err != nil {
		return Trade{}, err
	}
	i, err := position(index, len(rows))
	if err != nil {
		return Trade{}, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM trades WHERE seq = ?`, rows[i].seq); err != nil {
		return Trade{}, fmt.Errorf("delete trade: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Trade{}, err
	}
	return rows[i].trade, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
