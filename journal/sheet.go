package journal

import (
	"context"
	"fmt"
	"sync"
)

// Spreadsheets is the remote keyed-row store behind Sheet. Row positions
// are 1-based sheet rows; row 1 holds the header.
type Spreadsheets interface {
	Open(ctx context.Context, sheetID string) error
	Values(ctx context.Context, sheetID string) ([][]any, error)
	AppendRow(ctx context.Context, sheetID string, row []any) error
	// ReplaceRow swaps row pos for row atomically.
	ReplaceRow(ctx context.Context, sheetID string, pos int, row []any) error
	DeleteRow(ctx context.Context, sheetID string, pos int) error
}

// headerRows is the number of sheet rows above the first trade.
const headerRows = 1

// Sheet stores each journal in a spreadsheet; owner is the spreadsheet ID.
// Trade i (1-based) lives on sheet row i+1.
type Sheet struct {
	svc  Spreadsheets
	opts Options

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ Store = (*Sheet)(nil)

func NewSheet(svc Spreadsheets, opts Options) *Sheet {
	return &Sheet{
		svc:   svc,
		opts:  opts,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *Sheet) lock(sheetID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sheetID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sheetID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *Sheet) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout > 0 {
		return context.WithTimeout(ctx, s.opts.Timeout)
	}
	return context.WithCancel(ctx)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrBackendUnavailable, op, err)
}

// Open checks that the spreadsheet exists and is shared with us.
func (s *Sheet) Open(ctx context.Context, sheetID string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.svc.Open(ctx, sheetID); err != nil {
		return unavailable("open sheet", err)
	}
	return nil
}

// Append writes the header into an empty sheet, then the trade row. A
// retry after a failed row write finds the header already there.
func (s *Sheet) Append(ctx context.Context, sheetID string, t Trade) (Trade, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	defer s.lock(sheetID)()

	rows, err := s.svc.Values(ctx, sheetID)
	if err != nil {
		return Trade{}, unavailable("read sheet", err)
	}
	if len(rows) == 0 {
		if err := s.svc.AppendRow(ctx, sheetID, headerRow()); err != nil {
			return Trade{}, unavailable("write header", err)
		}
	}
	if err := s.svc.AppendRow(ctx, sheetID, encodeRow(t)); err != nil {
		return Trade{}, unavailable("append trade", err)
	}
	return t, nil
}

func (s *Sheet) List(ctx context.Context, sheetID string, f Filter) ([]Trade, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	cols, records, err := s.read(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	out := make([]Trade, 0, len(records))
	for _, r := range records {
		out = append(out, decodeRow(cols, r))
	}
	return f.apply(out), nil
}

// Update rewrites trade index in place at the same sheet position. The
// replace is a single remote call, so a failure leaves the old row.
func (s *Sheet) Update(ctx context.Context, sheetID string, index int, edits Edits) (Trade, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	defer s.lock(sheetID)()

	cols, records, err := s.read(ctx, sheetID)
	if err != nil {
		return Trade{}, err
	}
	i, err := position(index, len(records))
	if err != nil {
		return Trade{}, err
	}

	before := decodeRow(cols, records[i])
	after, err := edits.Apply(before, s.opts.RecomputeOnEdit)
	if err != nil {
		return Trade{}, err
	}

	pos := i + 1 + headerRows
	row := rewriteRow(cols, records[i], before, after)
	if err := s.svc.ReplaceRow(ctx, sheetID, pos, row); err != nil {
		return Trade{}, unavailable("replace row", err)
	}
	return after, nil
}

func (s *Sheet) Delete(ctx context.Context, sheetID string, index int) (Trade, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	defer s.lock(sheetID)()

	cols, records, err := s.read(ctx, sheetID)
	if err != nil {
		return Trade{}, err
	}
	i, err := position(index, len(records))
	if err != nil {
		return Trade{}, err
	}

	deleted := decodeRow(cols, records[i])
	if err := s.svc.DeleteRow(ctx, sheetID, i+1+headerRows); err != nil {
		return Trade{}, unavailable("delete row", err)
	}
	return deleted, nil
}

// read splits the sheet into its header columns and trade rows.
func (s *Sheet) read(ctx context.Context, sheetID string) (columns, [][]any, error) {
	rows, err := s.svc.Values(ctx, sheetID)
	if err != nil {
		return nil, nil, unavailable("read sheet", err)
	}
	if len(rows) <= headerRows {
		return columnsFor(nil), nil, nil
	}
	return columnsFor(rows[0]), rows[headerRows:], nil
}
