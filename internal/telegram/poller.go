package telegram

import (
	"context"
	"time"

	"github.com/rustyeddy/lockin/internal/logger"
)

// Updater is the long-polling half of the Bot API.
type Updater interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
}

type Poller struct {
	updates Updater
	d       *Dispatcher
	timeout time.Duration
	backoff time.Duration
}

func NewPoller(u Updater, d *Dispatcher, timeout time.Duration) *Poller {
	return &Poller{updates: u, d: d, timeout: timeout, backoff: 3 * time.Second}
}

// Run polls until ctx is cancelled, then waits for in-flight updates.
func (p *Poller) Run(ctx context.Context) error {
	defer p.d.Wait()

	var offset int64
	for ctx.Err() == nil {
		updates, err := p.updates.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Warn(ctx, "getUpdates failed", "error", err, "retry_in", p.backoff.String())
			select {
			case <-ctx.Done():
			case <-time.After(p.backoff):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			p.d.Dispatch(u)
		}
	}
	return nil
}
