package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rustyeddy/lockin/internal/logger"
	"github.com/rustyeddy/lockin/journal"
	"github.com/rustyeddy/lockin/remind"
	"github.com/rustyeddy/lockin/risk"
)

func (b *Bot) start(ctx context.Context, req Request) (Reply, error) {
	return Reply{Text: welcomeText, Markdown: true}, nil
}

func (b *Bot) help(ctx context.Context, req Request) (Reply, error) {
	var sb strings.Builder
	sb.WriteString("📖 Commands:\n")
	for _, name := range b.Commands() {
		if u, ok := usage[name]; ok {
			sb.WriteString("\n" + strings.SplitN(u, "\n", 2)[0])
			continue
		}
		sb.WriteString("\n/" + name)
	}
	return Reply{Text: sb.String()}, nil
}

func (b *Bot) inSheet(userID string) bool {
	return b.links.Backend(userID) != journal.LocalBackend
}

func (b *Bot) riskcalc(ctx context.Context, req Request) (Reply, error) {
	symbol, in, err := risk.ParseTrade(req.Args)
	if err != nil {
		return Reply{}, err
	}
	m, err := risk.Compute(in)
	if err != nil {
		return Reply{}, err
	}

	warnings := risk.Check(b.opts.Policy, m)
	maxLot, ok := risk.MaxLot(in.Capital, in.Entry, in.SL, b.opts.Policy.MaxRiskPct)

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 *Trade Risk Summary* (%s):\n", symbol)
	fmt.Fprintf(&sb, "Capital: $%s\nEntry: %s\nStop Loss: %s\nTake Profit: %s\nLot Size: %s\n\n",
		in.Capital, in.Entry, in.SL, in.TP, in.Lot)
	fmt.Fprintf(&sb, "📉 *Risk*: $%.2f (%.2f%%)\n", m.RiskAmount, m.RiskPercent)
	fmt.Fprintf(&sb, "📈 *Reward*: $%.2f\n", m.RewardAmount)
	fmt.Fprintf(&sb, "⚖️ *RR Ratio*: 1:%.2f\n", m.RRRatio)
	if ok {
		fmt.Fprintf(&sb, "📐 *Max lot at %g%% risk*: %s\n", b.opts.Policy.MaxRiskPct, maxLot.StringFixed(2))
	}
	sb.WriteString("\n")
	if len(warnings) == 0 {
		sb.WriteString("✅ Risk & RR look solid!\n")
	}
	for _, w := range warnings {
		sb.WriteString("⚠️ " + w.Msg + "\n")
	}

	trade := journal.NewTrade(symbol, in, m, b.opts.Now())
	if _, err := b.store.Append(ctx, req.UserID, trade); err != nil {
		logger.Warn(ctx, "trade not saved", "user", req.UserID, "error", err)
		sb.WriteString("\n⚠️ Could not save the trade: " + reason(err))
	} else if b.inSheet(req.UserID) {
		sb.WriteString("\n📄 Trade saved to your Google Sheet.")
	} else {
		sb.WriteString("\n📝 Trade logged in local journal. Use /linksheet to link Google Sheets.")
	}
	return Reply{Text: sb.String(), Markdown: true}, nil
}

// journal lists trades numbered by their position in the whole journal, so
// the numbers stay valid for /edittrade and /deletetrade under a filter.
func (b *Bot) journal(ctx context.Context, req Request) (Reply, error) {
	all, err := b.store.List(ctx, req.UserID, journal.Filter{})
	if err != nil {
		return Reply{}, err
	}

	f := journal.ParseFilter(req.Args)
	lines := make([]string, 0, len(all))
	for i, t := range all {
		if f.Match(t) {
			lines = append(lines, journal.FormatTrade(i+1, t))
		}
	}
	if len(lines) == 0 {
		return Reply{Text: "📭 No matching trades found."}, nil
	}

	title := "📓 Trade Journal:\n\n"
	if !f.IsZero() {
		title = "📓 Filtered Trade Journal:\n\n"
	}
	return Reply{Text: title + strings.Join(lines, "\n")}, nil
}

func (b *Bot) export(ctx context.Context, req Request) (Reply, error) {
	trades, err := b.store.List(ctx, req.UserID, journal.ParseFilter(req.Args))
	if err != nil {
		return Reply{}, err
	}
	if len(trades) == 0 {
		return Reply{Text: "📭 No matching trades to export."}, nil
	}

	data, err := journal.ExportCSV(trades)
	if err != nil {
		return Reply{}, fmt.Errorf("export csv: %w", err)
	}
	return Reply{Document: &Document{Name: journal.ExportFilename, Data: data}}, nil
}

func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid index %q", journal.ErrInvalidInput, arg)
	}
	return n, nil
}

func (b *Bot) where(userID string) string {
	if b.inSheet(userID) {
		return "your Google Sheet"
	}
	return "local journal"
}

func (b *Bot) editTrade(ctx context.Context, req Request) (Reply, error) {
	if len(req.Args) < 2 {
		return Reply{}, fmt.Errorf("%w: missing arguments", journal.ErrInvalidInput)
	}
	index, err := parseIndex(req.Args[0])
	if err != nil {
		return Reply{}, err
	}

	edits, ignored := journal.ParseEdits(req.Args[1:])
	if len(edits) == 0 {
		return Reply{}, fmt.Errorf("%w: no editable fields", journal.ErrInvalidInput)
	}

	t, err := b.store.Update(ctx, req.UserID, index, edits)
	if err != nil {
		return Reply{}, err
	}

	msg := fmt.Sprintf("✅ Trade %d updated in %s.\n%s", index, b.where(req.UserID), journal.FormatTrade(index, t))
	if len(ignored) > 0 {
		msg += "\nIgnored fields: " + strings.Join(ignored, ", ")
	}
	return Reply{Text: msg}, nil
}

func (b *Bot) deleteTrade(ctx context.Context, req Request) (Reply, error) {
	if len(req.Args) == 0 {
		return Reply{}, fmt.Errorf("%w: missing index", journal.ErrInvalidInput)
	}
	index, err := parseIndex(req.Args[0])
	if err != nil {
		return Reply{}, err
	}

	t, err := b.store.Delete(ctx, req.UserID, index)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf("🗑️ Deleted trade from %s: %s @ %s", b.where(req.UserID), t.Symbol, t.DateString())}, nil
}

func (b *Bot) linkSheet(ctx context.Context, req Request) (Reply, error) {
	if len(req.Args) == 0 {
		return Reply{Text: "❌ Provide your Google Sheet ID:\n" + usage["linksheet"] + "\nSee /sheethelp."}, nil
	}
	if err := b.links.Link(ctx, req.UserID, req.Args[0]); err != nil {
		return Reply{}, err
	}
	return Reply{Text: "✅ Google Sheet linked successfully!"}, nil
}

func (b *Bot) unlinkSheet(ctx context.Context, req Request) (Reply, error) {
	if !b.links.Unlink(req.UserID) {
		return Reply{Text: "No Google Sheet is linked."}, nil
	}
	return Reply{Text: "🔌 Google Sheet unlinked. New trades go to the local journal."}, nil
}

func (b *Bot) sheetHelp(ctx context.Context, req Request) (Reply, error) {
	email := b.opts.ServiceAccount
	if email == "" {
		email = "the bot's service account"
	}
	return Reply{Text: fmt.Sprintf(sheetHelpText, email), Markdown: true}, nil
}

func (b *Bot) remind(ctx context.Context, req Request) (Reply, error) {
	r, err := remind.Parse(req.Text)
	if err != nil {
		return Reply{}, err
	}

	chatID, user := req.ChatID, req.UserID
	h := b.reminders.Schedule(r, func(ctx context.Context, r remind.Reminder) {
		if err := b.notify.Notify(ctx, chatID, "📌 Reminder: "+r.Reason); err != nil {
			logger.Warn(ctx, "reminder not delivered", "user", user, "error", err)
		}
	})
	logger.Info(ctx, "reminder scheduled", "user", user, "id", h.ID.String(), "in", r.In())

	return Reply{Text: fmt.Sprintf("⏰ Reminder set! I'll remind you in %s to %s.", r.In(), r.Reason)}, nil
}

func (b *Bot) feedback(ctx context.Context, req Request) (Reply, error) {
	msg := strings.TrimSpace(req.Text)
	if msg == "" {
		return Reply{Text: "✍️ Use /feedback followed by your message."}, nil
	}
	if b.opts.AdminChatID == 0 {
		return Reply{Text: "Feedback is not available right now."}, nil
	}

	from := req.Username
	if from == "" {
		from = req.UserID
	}
	if err := b.notify.Notify(ctx, b.opts.AdminChatID, fmt.Sprintf("📩 Feedback from %s:\n%s", from, msg)); err != nil {
		return Reply{}, fmt.Errorf("forward feedback: %w", err)
	}
	return Reply{Text: "✅ Thanks! We've received your feedback."}, nil
}

func (b *Bot) privacy(ctx context.Context, req Request) (Reply, error) {
	return Reply{Text: privacyText, Markdown: true}, nil
}
