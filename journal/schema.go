package journal

// Schema is the local SQLite journal. seq keeps insertion order per owner;
// prices are stored as decimal text.
const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	trade_id TEXT NOT NULL UNIQUE,
	owner TEXT NOT NULL,
	symbol TEXT NOT NULL,
	entry TEXT NOT NULL,
	sl TEXT NOT NULL,
	tp TEXT NOT NULL,
	lot TEXT NOT NULL,
	capital TEXT NOT NULL,
	risk REAL NOT NULL,
	reward REAL NOT NULL,
	risk_pct REAL NOT NULL,
	rr_ratio REAL NOT NULL,
	date TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_owner ON trades(owner, seq);
`
