// Package bot implements the chat commands of the trade journal bot,
// independent of the chat transport.
package bot

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rustyeddy/lockin/internal/logger"
	"github.com/rustyeddy/lockin/journal"
	"github.com/rustyeddy/lockin/remind"
	"github.com/rustyeddy/lockin/risk"
)

// Request is one command from a chat user.
type Request struct {
	UserID   string
	ChatID   int64
	Username string
	Command  string   // without the leading slash
	Args     []string // whitespace-separated arguments
	Text     string   // everything after the command
}

type Document struct {
	Name string
	Data []byte
}

// Reply is what the transport sends back to the chat. Markdown marks
// static texts that use Telegram's Markdown.
type Reply struct {
	Text     string
	Markdown bool
	Document *Document
}

// Notifier sends messages outside of a reply, e.g. fired reminders and
// feedback forwarded to the admin.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// Linker binds users to their spreadsheets.
type Linker interface {
	Link(ctx context.Context, userID, sheetID string) error
	Unlink(userID string) bool
	Backend(userID string) string
}

type Options struct {
	Policy risk.Policy

	// AdminChatID receives /feedback. Zero turns feedback off.
	AdminChatID int64

	// ServiceAccount is the email users share their sheet with.
	ServiceAccount string

	Now func() time.Time
}

type handler func(ctx context.Context, req Request) (Reply, error)

type Bot struct {
	store     journal.Store
	links     Linker
	reminders *remind.Scheduler
	notify    Notifier
	opts      Options

	commands map[string]handler
}

func New(store journal.Store, links Linker, reminders *remind.Scheduler, notify Notifier, opts Options) *Bot {
	if opts.Policy == (risk.Policy{}) {
		opts.Policy = risk.DefaultPolicy()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	b := &Bot{
		store:     store,
		links:     links,
		reminders: reminders,
		notify:    notify,
		opts:      opts,
	}
	b.commands = map[string]handler{
		"start":       b.start,
		"help":        b.help,
		"riskcalc":    b.riskcalc,
		"journal":     b.journal,
		"export":      b.export,
		"edittrade":   b.editTrade,
		"deletetrade": b.deleteTrade,
		"linksheet":   b.linkSheet,
		"unlinksheet": b.unlinkSheet,
		"sheethelp":   b.sheetHelp,
		"remind":      b.remind,
		"feedback":    b.feedback,
		"privacy":     b.privacy,
	}
	return b
}

// Commands lists the command names the bot answers to.
func (b *Bot) Commands() []string {
	out := make([]string, 0, len(b.commands))
	for name := range b.commands {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Handle runs one command. Every failure becomes a user-facing reply; none
// is fatal.
func (b *Bot) Handle(ctx context.Context, req Request) Reply {
	req.Command = strings.ToLower(req.Command)

	h, ok := b.commands[req.Command]
	if !ok {
		return Reply{Text: "🤔 Unknown command. Try /help."}
	}

	op := logger.StartOperation(ctx, "bot."+req.Command, "user", req.UserID)
	reply, err := h(op.Context(), req)
	if err != nil {
		op.EndWithError(err)
		return b.replyForError(req.Command, err)
	}
	op.End()
	return reply
}

func (b *Bot) replyForError(cmd string, err error) Reply {
	switch {
	case errors.Is(err, remind.ErrInvalidFormat):
		return Reply{Text: "❌ Invalid format. Try:\n" + usage[cmd]}
	case errors.Is(err, journal.ErrInvalidInput):
		return Reply{Text: "❌ Invalid format. Use:\n" + usage[cmd]}
	case errors.Is(err, journal.ErrOutOfRange):
		return Reply{Text: "❌ Trade index out of range."}
	case errors.Is(err, journal.ErrUnauthorized):
		msg := "❌ Failed to access sheet: the bot has no access to it."
		if b.opts.ServiceAccount != "" {
			msg += "\nShare it with " + b.opts.ServiceAccount + " and try again."
		}
		return Reply{Text: msg}
	case errors.Is(err, journal.ErrBackendUnavailable):
		return Reply{Text: "⚠️ Could not reach your Google Sheet: " + reason(err)}
	}

	logger.ErrorWithErr(context.Background(), "command failed", err, "command", cmd)
	return Reply{Text: "⚠️ Something went wrong, please try again."}
}

// reason strips the sentinel prefix from a backend error.
func reason(err error) string {
	msg := err.Error()
	prefix := journal.ErrBackendUnavailable.Error() + ": "
	return strings.TrimPrefix(msg, prefix)
}

var usage = map[string]string{
	"riskcalc":    "/riskcalc [SYMBOL] capital:1000 entry:1.0920 sl:1.0900 tp:1.0980 lot:0.5",
	"journal":     "/journal [symbol EURUSD | date 2024-05]",
	"export":      "/export [symbol EURUSD | date 2024-05]",
	"edittrade":   "/edittrade [index] field:value ...\nFields: symbol, entry, sl, tp, lot, capital, date (YYYY-MM-DD [HH:MM:SS])",
	"deletetrade": "/deletetrade [index]",
	"linksheet":   "/linksheet SHEET_ID",
	"remind":      "/remind me in 2h to check GBPUSD",
	"feedback":    "/feedback your message",
}
