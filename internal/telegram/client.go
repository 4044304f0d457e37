// Package telegram connects the bot to the Telegram Bot API by long
// polling or webhook.
package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultAPIURL = "https://api.telegram.org"

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
}

type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

type apiResponse[T any] struct {
	OK          bool   `json:"ok"`
	Result      T      `json:"result"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// APIError is an {"ok": false} answer from the Bot API.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error %d: %s", e.Code, e.Description)
}

// Client is a minimal Bot API client.
type Client struct {
	http *resty.Client
}

func NewClient(apiURL, token string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	hc := resty.New().
		SetBaseURL(strings.TrimRight(apiURL, "/")+"/bot"+token).
		SetTimeout(90*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(5*time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return r != nil && (r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500)
		})
	return &Client{http: hc}
}

func call[T any](ctx context.Context, req *resty.Request, method string) (T, error) {
	var out apiResponse[T]
	resp, err := req.SetContext(ctx).SetResult(&out).SetError(&out).Post("/" + method)
	if err != nil {
		return out.Result, fmt.Errorf("%s: %w", method, err)
	}
	if !out.OK {
		code := out.ErrorCode
		if code == 0 {
			code = resp.StatusCode()
		}
		return out.Result, &APIError{Code: code, Description: out.Description}
	}
	return out.Result, nil
}

// GetUpdates long-polls for updates with IDs >= offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	req := c.http.R().SetBody(map[string]any{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message"},
	})
	return call[[]Update](ctx, req, "getUpdates")
}

// SendMessage sends text. Markdown that Telegram refuses to parse is sent
// again as plain text.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markdown bool) error {
	body := map[string]any{"chat_id": chatID, "text": text}
	if markdown {
		body["parse_mode"] = "Markdown"
	}

	_, err := call[Message](ctx, c.http.R().SetBody(body), "sendMessage")
	var apiErr *APIError
	if markdown && errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest {
		delete(body, "parse_mode")
		_, err = call[Message](ctx, c.http.R().SetBody(body), "sendMessage")
	}
	return err
}

// Notify implements bot.Notifier.
func (c *Client) Notify(ctx context.Context, chatID int64, text string) error {
	return c.SendMessage(ctx, chatID, text, false)
}

// SendDocument uploads data as a file attachment straight from memory.
func (c *Client) SendDocument(ctx context.Context, chatID int64, name string, data []byte) error {
	req := c.http.R().
		SetFormData(map[string]string{"chat_id": strconv.FormatInt(chatID, 10)}).
		SetFileReader("document", name, bytes.NewReader(data))
	_, err := call[Message](ctx, req, "sendDocument")
	return err
}

// SetWebhook points Telegram at url for pushed updates.
func (c *Client) SetWebhook(ctx context.Context, url string) error {
	req := c.http.R().SetBody(map[string]any{
		"url":             url,
		"allowed_updates": []string{"message"},
	})
	_, err := call[bool](ctx, req, "setWebhook")
	return err
}

// DeleteWebhook switches the bot back to getUpdates.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	_, err := call[bool](ctx, c.http.R().SetBody(map[string]any{}), "deleteWebhook")
	return err
}
