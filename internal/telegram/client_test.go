package telegram

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUpdates(t *testing.T) {
	f := newFakeAPI(t)
	f.updates = []Update{
		{UpdateID: 10, Message: &Message{Text: "/start", From: &User{ID: 1}, Chat: Chat{ID: 1}}},
		{UpdateID: 11, Message: &Message{Text: "/help", From: &User{ID: 2}, Chat: Chat{ID: 2}}},
	}
	c := f.client()

	got, err := c.GetUpdates(context.Background(), 0, time.Second)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "/start", got[0].Message.Text)

	got, err = c.GetUpdates(context.Background(), 11, time.Second)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(11), got[0].UpdateID)
}

func TestSendMessage(t *testing.T) {
	f := newFakeAPI(t)
	c := f.client()
	ctx := context.Background()

	require.NoError(t, c.SendMessage(ctx, 7, "*hi*", true))
	require.NoError(t, c.Notify(ctx, 8, "plain"))

	sent := f.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, sentMessage{ChatID: 7, Text: "*hi*", ParseMode: "Markdown"}, sent[0])
	assert.Equal(t, sentMessage{ChatID: 8, Text: "plain"}, sent[1])
}

func TestSendMessageFallsBackToPlain(t *testing.T) {
	f := newFakeAPI(t)
	f.rejectMD = true
	c := f.client()

	require.NoError(t, c.SendMessage(context.Background(), 7, "bad_markdown", true))
	sent := f.sent()
	require.Len(t, sent, 1)
	assert.Empty(t, sent[0].ParseMode)
}

func TestSendDocument(t *testing.T) {
	f := newFakeAPI(t)
	c := f.client()

	require.NoError(t, c.SendDocument(context.Background(), 7, "export.csv", []byte("a,b\n")))
	require.Len(t, f.documents, 1)
	assert.Equal(t, sentDocument{ChatID: "7", Name: "export.csv", Data: "a,b\n"}, f.documents[0])
}

func TestWebhookRegistration(t *testing.T) {
	f := newFakeAPI(t)
	c := f.client()
	ctx := context.Background()

	require.NoError(t, c.SetWebhook(ctx, "https://bot.example.com/telegram/s3cret"))
	assert.Equal(t, "https://bot.example.com/telegram/s3cret", f.webhookURL)
	require.NoError(t, c.DeleteWebhook(ctx))
	assert.Empty(t, f.webhookURL)
}

func TestAPIError(t *testing.T) {
	f := newFakeAPI(t)
	c := NewClient(f.srv.URL, "wrong")

	err := c.SendMessage(context.Background(), 1, "x", false)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Code)
	assert.Equal(t, "Unauthorized", apiErr.Description)
}
