package journal

import (
	"context"
	"sync"

	"github.com/rustyeddy/lockin/pkg/id"
)

// Memory keeps one journal per owner in process memory. Each owner's
// journal has its own lock, so edits from one user never shift another
// user's indexes.
type Memory struct {
	opts Options

	mu     sync.Mutex
	owners map[string]*memJournal
}

type memJournal struct {
	mu     sync.Mutex
	trades []Trade
}

var _ Store = (*Memory)(nil)

func NewMemory(opts Options) *Memory {
	return &Memory{
		opts:   opts,
		owners: make(map[string]*memJournal),
	}
}

func (m *Memory) journal(owner string) *memJournal {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.owners[owner]
	if !ok {
		j = &memJournal{}
		m.owners[owner] = j
	}
	return j
}

func (m *Memory) Append(ctx context.Context, owner string, t Trade) (Trade, error) {
	if t.ID == "" {
		t.ID = id.At(t.Date)
	}

	j := m.journal(owner)
	j.mu.Lock()
	defer j.mu.Unlock()

	j.trades = append(j.trades, t)
	return t, nil
}

func (m *Memory) List(ctx context.Context, owner string, f Filter) ([]Trade, error) {
	j := m.journal(owner)
	j.mu.Lock()
	defer j.mu.Unlock()

	return f.apply(j.trades), nil
}

func (m *Memory) Update(ctx context.Context, owner string, index int, edits Edits) (Trade, error) {
	j := m.journal(owner)
	j.mu.Lock()
	defer j.mu.Unlock()

	i, err := position(index, len(j.trades))
	if err != nil {
		return Trade{}, err
	}

	updated, err := edits.Apply(j.trades[i], m.opts.RecomputeOnEdit)
	if err != nil {
		return Trade{}, err
	}
	j.trades[i] = updated
	return updated, nil
}

func (m *Memory) Delete(ctx context.Context, owner string, index int) (Trade, error) {
	j := m.journal(owner)
	j.mu.Lock()
	defer j.mu.Unlock()

	i, err := position(index, len(j.trades))
	if err != nil {
		return Trade{}, err
	}

	deleted := j.trades[i]
	j.trades = append(j.trades[:i:i], j.trades[i+1:]...)
	return deleted, nil
}
