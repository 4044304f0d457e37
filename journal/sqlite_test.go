package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := NewSQLite(path, Options{})
	require.NoError(t, err)

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='trades'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "trades", name)
}

func TestSQLiteReopen(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	want := seed(t, j, "alice")
	require.NoError(t, j.Close())

	j, err := NewSQLite(path, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	got, err := j.List(context.Background(), "alice", Filter{})
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assertSameTrade(t, want[i], got[i])
	}
}

func TestSQLiteStoresExactDecimals(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	tr := testTrade(t, "EURUSD", "1.10005", "1.09955", "1.11005", "0.01", day1)
	stored, err := j.Append(context.Background(), "alice", tr)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var entry, lot, tradeID string
	err = db.QueryRow(`SELECT trade_id, entry, lot FROM trades WHERE owner = ?`, "alice").Scan(&tradeID, &entry, &lot)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, tradeID)
	assert.Equal(t, "1.10005", entry)
	assert.Equal(t, "0.01", lot)
}
