package sheets_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/rustyeddy/lockin/sheets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientOpen(t *testing.T) {
	f := newFakeGoogle(t)
	f.addSheet("abc")
	c := f.client()
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, "abc"))
	require.NoError(t, c.Open(ctx, "abc"))
	assert.Equal(t, 1, f.count("GET meta"), "worksheet metadata is cached")
	assert.Equal(t, 1, f.tokens, "access token is cached")
}

func TestClientOpenErrors(t *testing.T) {
	f := newFakeGoogle(t)
	f.addSheet("private")
	f.forbidden["private"] = true
	c := f.client()
	ctx := context.Background()

	err := c.Open(ctx, "private")
	require.Error(t, err)
	assert.ErrorIs(t, err, sheets.ErrUnauthorized)

	var apiErr *sheets.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Contains(t, apiErr.Message, "does not have permission")

	err = c.Open(ctx, "missing")
	assert.ErrorIs(t, err, sheets.ErrNotFound)
}

func TestClientValuesAndAppend(t *testing.T) {
	f := newFakeGoogle(t)
	f.addSheet("abc")
	c := f.client()
	ctx := context.Background()

	rows, err := c.Values(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, c.AppendRow(ctx, "abc", []any{"Symbol", "Entry"}))
	require.NoError(t, c.AppendRow(ctx, "abc", []any{"EURUSD", 1.1}))

	rows, err = c.Values(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []any{"Symbol", "Entry"}, rows[0])
	assert.Equal(t, []any{"EURUSD", 1.1}, rows[1])
}

func TestClientReplaceAndDeleteRow(t *testing.T) {
	f := newFakeGoogle(t)
	f.addSheet("abc",
		[]any{"h"},
		[]any{"a"},
		[]any{"b"},
		[]any{"c"},
	)
	c := f.client()
	ctx := context.Background()

	require.NoError(t, c.ReplaceRow(ctx, "abc", 3, []any{"B", 1.5, ""}))
	assert.Equal(t, [][]any{{"h"}, {"a"}, {"B", 1.5, ""}, {"c"}}, f.rows("abc"))
	assert.Equal(t, 1, f.count("POST batchUpdate"))

	require.NoError(t, c.DeleteRow(ctx, "abc", 3))
	assert.Equal(t, [][]any{{"h"}, {"a"}, {"c"}}, f.rows("abc"))

	assert.Error(t, c.ReplaceRow(ctx, "abc", 0, []any{"x"}))
	assert.Error(t, c.DeleteRow(ctx, "abc", 0))
}

func TestClientReplaceRowFailureLeavesSheet(t *testing.T) {
	f := newFakeGoogle(t)
	f.addSheet("abc", []any{"h"}, []any{"a"}, []any{"b"})
	c := f.client()
	ctx := context.Background()

	f.failNext("POST batchUpdate", 3)
	err := c.ReplaceRow(ctx, "abc", 2, []any{"A"})
	require.Error(t, err)
	assert.Equal(t, [][]any{{"h"}, {"a"}, {"b"}}, f.rows("abc"))

	err = c.ReplaceRow(ctx, "abc", 9, []any{"A"})
	require.Error(t, err)
	assert.Equal(t, [][]any{{"h"}, {"a"}, {"b"}}, f.rows("abc"))
}

func TestClientRetriesUnavailable(t *testing.T) {
	f := newFakeGoogle(t)
	f.addSheet("abc", []any{"h"})
	c := f.client()
	ctx := context.Background()

	f.failNext("GET values", 2)
	rows, err := c.Values(ctx, "abc")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 3, f.count("GET values"))

	f.failNext("POST append", 1)
	require.NoError(t, c.AppendRow(ctx, "abc", []any{"row"}))
	assert.Len(t, f.rows("abc"), 2, "a rejected append is not applied twice")
}

func TestClientGivesUpAfterRetries(t *testing.T) {
	f := newFakeGoogle(t)
	f.addSheet("abc")
	c := f.client()

	f.failNext("GET values", 10)
	_, err := c.Values(context.Background(), "abc")
	require.Error(t, err)

	var apiErr *sheets.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, 3, f.count("GET values"))
}
