package telegram

import (
	"context"
	"time"

	"github.com/rustyeddy/lockin/internal/bot"
	"github.com/rustyeddy/lockin/internal/logger"
	"golang.org/x/sync/errgroup"
)

// Handler answers bot requests; *bot.Bot implements it.
type Handler interface {
	Handle(ctx context.Context, req bot.Request) bot.Reply
}

// Sender delivers replies; *Client implements it.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, markdown bool) error
	SendDocument(ctx context.Context, chatID int64, name string, data []byte) error
}

// replyTimeout bounds handling plus delivery of one update.
const replyTimeout = 2 * time.Minute

// Dispatcher handles updates on at most workers goroutines. Dispatch blocks
// while all workers are busy.
type Dispatcher struct {
	ctx     context.Context
	handler Handler
	sender  Sender
	g       errgroup.Group
}

// NewDispatcher builds a Dispatcher. ctx bounds every handled update, and is
// not tied to any single HTTP request.
func NewDispatcher(ctx context.Context, h Handler, s Sender, workers int) *Dispatcher {
	d := &Dispatcher{ctx: ctx, handler: h, sender: s}
	if workers <= 0 {
		workers = 1
	}
	d.g.SetLimit(workers)
	return d
}

func (d *Dispatcher) Dispatch(u Update) {
	req, ok := requestFor(u.Message)
	if !ok {
		return
	}
	d.g.Go(func() error {
		d.handle(req)
		return nil
	})
}

func (d *Dispatcher) handle(req bot.Request) {
	ctx, cancel := context.WithTimeout(d.ctx, replyTimeout)
	defer cancel()

	reply := d.handler.Handle(ctx, req)

	if reply.Document != nil {
		if err := d.sender.SendDocument(ctx, req.ChatID, reply.Document.Name, reply.Document.Data); err != nil {
			logger.ErrorWithErr(ctx, "send document failed", err, "user", req.UserID, "command", req.Command)
		}
	}
	if reply.Text != "" {
		if err := d.sender.SendMessage(ctx, req.ChatID, reply.Text, reply.Markdown); err != nil {
			logger.ErrorWithErr(ctx, "send message failed", err, "user", req.UserID, "command", req.Command)
		}
	}
}

// Wait blocks until every dispatched update is handled.
func (d *Dispatcher) Wait() {
	_ = d.g.Wait()
}
