// Package journalobs logs and traces every journal operation.
package journalobs

import (
	"context"

	"github.com/rustyeddy/lockin/internal/logger"
	"github.com/rustyeddy/lockin/journal"
)

type observableStore struct {
	store journal.Store
}

var _ journal.Store = (*observableStore)(nil)

func Wrap(s journal.Store) journal.Store {
	return &observableStore{store: s}
}

func (o *observableStore) Append(ctx context.Context, owner string, t journal.Trade) (journal.Trade, error) {
	op := logger.StartOperation(ctx, "journal.Append", "owner", owner, "symbol", t.Symbol)

	out, err := o.store.Append(op.Context(), owner, t)
	if err != nil {
		op.EndWithError(err)
		return out, err
	}
	op.End("rr", out.RRRatio)
	logger.Info(op.Context(), "trade logged",
		"owner", owner,
		"symbol", out.Symbol,
		"risk_pct", out.RiskPercent,
		"rr", out.RRRatio,
	)
	return out, nil
}

func (o *observableStore) List(ctx context.Context, owner string, f journal.Filter) ([]journal.Trade, error) {
	op := logger.StartOperation(ctx, "journal.List", "owner", owner, "symbol", f.Symbol, "date", f.DatePrefix)

	out, err := o.store.List(op.Context(), owner, f)
	if err != nil {
		op.EndWithError(err)
		return out, err
	}
	op.End("trades", len(out))
	return out, nil
}

func (o *observableStore) Update(ctx context.Context, owner string, index int, edits journal.Edits) (journal.Trade, error) {
	op := logger.StartOperation(ctx, "journal.Update", "owner", owner, "index", index)

	out, err := o.store.Update(op.Context(), owner, index, edits)
	if err != nil {
		op.EndWithError(err, "fields", edits.Fields())
		return out, err
	}
	op.End()
	logger.Info(op.Context(), "trade edited", "owner", owner, "index", index, "fields", edits.Fields())
	return out, nil
}

func (o *observableStore) Delete(ctx context.Context, owner string, index int) (journal.Trade, error) {
	op := logger.StartOperation(ctx, "journal.Delete", "owner", owner, "index", index)

	out, err := o.store.Delete(op.Context(), owner, index)
	if err != nil {
		op.EndWithError(err)
		return out, err
	}
	op.End()
	logger.Info(op.Context(), "trade deleted", "owner", owner, "index", index, "symbol", out.Symbol)
	return out, nil
}
