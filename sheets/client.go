package sheets

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the Google Sheets API host.
const DefaultBaseURL = "https://sheets.googleapis.com"

type Config struct {
	BaseURL      string
	Timeout      time.Duration // per HTTP attempt
	MaxRetries   int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL:      DefaultBaseURL,
		Timeout:      10 * time.Second,
		MaxRetries:   3,
		RetryWait:    500 * time.Millisecond,
		RetryMaxWait: 5 * time.Second,
	}
}

// Client talks to the Sheets v4 REST API with a service account. It works
// on the first worksheet of each spreadsheet.
type Client struct {
	baseURL string
	http    *resty.Client
	tokens  *tokenSource

	mu     sync.Mutex
	sheets map[string]worksheet
}

type worksheet struct {
	ID    int64
	Title string
}

// NewClient builds a Client. Idempotent reads are retried with backoff on
// transport errors and 5xx; every call is retried on 429 and 503, which the
// API returns before applying a write.
func NewClient(sa *ServiceAccount, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	hc := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryMaxWait).
		AddRetryCondition(shouldRetry).
		SetHeader("Accept", "application/json")

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		tokens:  &tokenSource{sa: sa, http: hc, now: time.Now},
		sheets:  make(map[string]worksheet),
	}
}

func shouldRetry(resp *resty.Response, err error) bool {
	if resp == nil {
		return false
	}
	status := resp.StatusCode()
	if status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable {
		return true
	}
	if resp.Request == nil || resp.Request.Method != http.MethodGet {
		return false
	}
	return err != nil || status >= 500
}

func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("authorize: %w", err)
	}
	return c.http.R().SetContext(ctx).SetAuthToken(tok), nil
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError(resp)
	}
	return nil
}

type spreadsheetMeta struct {
	Sheets []struct {
		Properties struct {
			SheetID int64  `json:"sheetId"`
			Title   string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

// Open resolves the spreadsheet's first worksheet. It fails with
// ErrUnauthorized when the sheet is not shared with the service account.
func (c *Client) Open(ctx context.Context, sheetID string) error {
	_, err := c.worksheet(ctx, sheetID)
	return err
}

func (c *Client) worksheet(ctx context.Context, sheetID string) (worksheet, error) {
	c.mu.Lock()
	ws, ok := c.sheets[sheetID]
	c.mu.Unlock()
	if ok {
		return ws, nil
	}

	req, err := c.request(ctx)
	if err != nil {
		return worksheet{}, err
	}
	var meta spreadsheetMeta
	resp, err := req.
		SetQueryParam("fields", "sheets.properties(sheetId,title)").
		SetResult(&meta).
		Get(c.spreadsheetURL(sheetID))
	if err := check(resp, err); err != nil {
		return worksheet{}, fmt.Errorf("open %s: %w", sheetID, err)
	}
	if len(meta.Sheets) == 0 {
		return worksheet{}, fmt.Errorf("open %s: spreadsheet has no worksheets", sheetID)
	}

	ws = worksheet{ID: meta.Sheets[0].Properties.SheetID, Title: meta.Sheets[0].Properties.Title}
	c.mu.Lock()
	c.sheets[sheetID] = ws
	c.mu.Unlock()
	return ws, nil
}

type valueRange struct {
	Values [][]any `json:"values"`
}

// Values returns every row of the first worksheet. Numbers come back as
// float64 and text as string.
func (c *Client) Values(ctx context.Context, sheetID string) ([][]any, error) {
	ws, err := c.worksheet(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var vr valueRange
	resp, err := req.
		SetQueryParam("valueRenderOption", "UNFORMATTED_VALUE").
		SetQueryParam("majorDimension", "ROWS").
		SetResult(&vr).
		Get(c.valuesURL(sheetID, quoteTitle(ws.Title)))
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("read %s: %w", sheetID, err)
	}
	return vr.Values, nil
}

// AppendRow adds row after the last non-empty row.
func (c *Client) AppendRow(ctx context.Context, sheetID string, row []any) error {
	ws, err := c.worksheet(ctx, sheetID)
	if err != nil {
		return err
	}
	req, err := c.request(ctx)
	if err != nil {
		return err
	}

	resp, err := req.
		SetQueryParam("valueInputOption", "RAW").
		SetQueryParam("insertDataOption", "INSERT_ROWS").
		SetBody(valueRange{Values: [][]any{row}}).
		Post(c.valuesURL(sheetID, quoteTitle(ws.Title)) + ":append")
	if err := check(resp, err); err != nil {
		return fmt.Errorf("append %s: %w", sheetID, err)
	}
	return nil
}

// ReplaceRow swaps row pos (1-based) for row in a single batchUpdate, which
// the API applies atomically: the old row is deleted, an empty one inserted
// in its place and its cells written. A failure leaves the sheet as it was.
func (c *Client) ReplaceRow(ctx context.Context, sheetID string, pos int, row []any) error {
	if pos < 1 {
		return fmt.Errorf("replace %s: row %d out of range", sheetID, pos)
	}
	ws, err := c.worksheet(ctx, sheetID)
	if err != nil {
		return err
	}

	del := map[string]any{
		"deleteDimension": map[string]any{
			"range": dimensionRange(ws.ID, pos),
		},
	}
	insert := map[string]any{
		"insertDimension": map[string]any{
			"range":             dimensionRange(ws.ID, pos),
			"inheritFromBefore": pos > 1,
		},
	}
	write := map[string]any{
		"updateCells": map[string]any{
			"start": map[string]any{
				"sheetId":     ws.ID,
				"rowIndex":    pos - 1,
				"columnIndex": 0,
			},
			"rows":   []any{map[string]any{"values": cellData(row)}},
			"fields": "userEnteredValue",
		},
	}
	if err := c.batchUpdate(ctx, sheetID, del, insert, write); err != nil {
		return fmt.Errorf("replace %s row %d: %w", sheetID, pos, err)
	}
	return nil
}

// cellData renders row as CellData the way a RAW values write would store
// it: numbers stay numbers, everything else is text.
func cellData(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		var ev map[string]any
		switch x := v.(type) {
		case nil:
			ev = map[string]any{}
		case string:
			ev = map[string]any{"stringValue": x}
		case bool:
			ev = map[string]any{"boolValue": x}
		case float64:
			ev = map[string]any{"numberValue": x}
		case float32:
			ev = map[string]any{"numberValue": float64(x)}
		case int:
			ev = map[string]any{"numberValue": float64(x)}
		case int64:
			ev = map[string]any{"numberValue": float64(x)}
		default:
			ev = map[string]any{"stringValue": fmt.Sprint(x)}
		}
		out[i] = map[string]any{"userEnteredValue": ev}
	}
	return out
}

// DeleteRow removes row pos (1-based), shifting later rows up.
func (c *Client) DeleteRow(ctx context.Context, sheetID string, pos int) error {
	if pos < 1 {
		return fmt.Errorf("delete %s: row %d out of range", sheetID, pos)
	}
	ws, err := c.worksheet(ctx, sheetID)
	if err != nil {
		return err
	}

	del := map[string]any{
		"deleteDimension": map[string]any{
			"range": dimensionRange(ws.ID, pos),
		},
	}
	if err := c.batchUpdate(ctx, sheetID, del); err != nil {
		return fmt.Errorf("delete %s row %d: %w", sheetID, pos, err)
	}
	return nil
}

func (c *Client) batchUpdate(ctx context.Context, sheetID string, requests ...map[string]any) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}
	resp, err := req.
		SetBody(map[string]any{"requests": requests}).
		Post(c.spreadsheetURL(sheetID) + ":batchUpdate")
	return check(resp, err)
}

func dimensionRange(sheetID int64, pos int) map[string]any {
	return map[string]any{
		"sheetId":    sheetID,
		"dimension":  "ROWS",
		"startIndex": pos - 1,
		"endIndex":   pos,
	}
}

func (c *Client) spreadsheetURL(sheetID string) string {
	return fmt.Sprintf("%s/v4/spreadsheets/%s", c.baseURL, url.PathEscape(sheetID))
}

func (c *Client) valuesURL(sheetID, rng string) string {
	return fmt.Sprintf("%s/values/%s", c.spreadsheetURL(sheetID), url.PathEscape(rng))
}

// quoteTitle quotes a worksheet title for A1 notation.
func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
