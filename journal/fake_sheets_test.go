package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rustyeddy/lockin/sheets"
)

var errFakeDown = errors.New("fake spreadsheet service down")

// fakeSheets keeps spreadsheets as rows of cells, the way the API returns
// them with UNFORMATTED_VALUE: numbers as float64, text as string.
type fakeSheets struct {
	mu      sync.Mutex
	rows    map[string][][]any
	denied  map[string]bool
	down    bool
	block   bool
	appends int

	// failReplace makes ReplaceRow fail without touching the rows.
	failReplace bool
}

var _ Spreadsheets = (*fakeSheets)(nil)

func newFakeSheets() *fakeSheets {
	return &fakeSheets{
		rows:   make(map[string][][]any),
		denied: make(map[string]bool),
	}
}

func (f *fakeSheets) check(ctx context.Context, sheetID string) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.down {
		return errFakeDown
	}
	if f.denied[sheetID] {
		return fmt.Errorf("open %s: %w", sheetID, sheets.ErrUnauthorized)
	}
	return nil
}

func (f *fakeSheets) Open(ctx context.Context, sheetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.check(ctx, sheetID)
}

func (f *fakeSheets) Values(ctx context.Context, sheetID string) ([][]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(ctx, sheetID); err != nil {
		return nil, err
	}
	out := make([][]any, len(f.rows[sheetID]))
	for i, r := range f.rows[sheetID] {
		out[i] = append([]any(nil), r...)
	}
	return out, nil
}

func (f *fakeSheets) AppendRow(ctx context.Context, sheetID string, row []any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(ctx, sheetID); err != nil {
		return err
	}
	f.appends++
	f.rows[sheetID] = append(f.rows[sheetID], append([]any(nil), row...))
	return nil
}

func (f *fakeSheets) ReplaceRow(ctx context.Context, sheetID string, pos int, row []any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(ctx, sheetID); err != nil {
		return err
	}
	if f.failReplace {
		return errFakeDown
	}
	rows := f.rows[sheetID]
	if pos < 1 || pos > len(rows) {
		return fmt.Errorf("replace row %d of %d", pos, len(rows))
	}
	rows[pos-1] = append([]any(nil), row...)
	return nil
}

func (f *fakeSheets) DeleteRow(ctx context.Context, sheetID string, pos int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(ctx, sheetID); err != nil {
		return err
	}
	rows := f.rows[sheetID]
	if pos < 1 || pos > len(rows) {
		return fmt.Errorf("delete row %d of %d", pos, len(rows))
	}
	f.rows[sheetID] = append(rows[:pos-1], rows[pos:]...)
	return nil
}

func (f *fakeSheets) snapshot(sheetID string) [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]any(nil), f.rows[sheetID]...)
}
