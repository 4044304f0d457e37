package telegram

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/rustyeddy/lockin/internal/bot"
)

// ParseCommand splits "/name@botname args..." into the command name, its
// whitespace-separated args and the raw text after the command. ok is false
// for messages that are not commands.
func ParseCommand(text string) (name string, args []string, rest string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", nil, "", false
	}

	head := text
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		head, rest = text[:i], text[i:]
	}
	name, _, _ = strings.Cut(strings.TrimPrefix(head, "/"), "@")
	if name == "" {
		return "", nil, "", false
	}

	rest = strings.TrimSpace(rest)
	return strings.ToLower(name), strings.Fields(rest), rest, true
}

// requestFor turns a message into a bot request.
func requestFor(m *Message) (bot.Request, bool) {
	if m == nil || m.From == nil {
		return bot.Request{}, false
	}
	name, args, rest, ok := ParseCommand(m.Text)
	if !ok {
		return bot.Request{}, false
	}
	return bot.Request{
		UserID:   strconv.FormatInt(m.From.ID, 10),
		ChatID:   m.Chat.ID,
		Username: m.From.Username,
		Command:  name,
		Args:     args,
		Text:     rest,
	}, true
}
