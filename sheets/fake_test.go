package sheets_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rustyeddy/lockin/sheets"
	"github.com/stretchr/testify/require"
)

const testToken = "test-access-token"

// fakeGoogle serves the token endpoint and the Sheets v4 calls the client
// makes, backed by in-memory worksheets.
type fakeGoogle struct {
	t   *testing.T
	key *rsa.PrivateKey
	srv *httptest.Server

	mu        sync.Mutex
	sheets    map[string][][]any
	forbidden map[string]bool
	failures  map[string]int // method+" "+kind -> remaining 503s
	calls     map[string]int // method+" "+kind
	tokens    int
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	f := &fakeGoogle{
		t:         t,
		key:       key,
		sheets:    make(map[string][][]any),
		forbidden: make(map[string]bool),
		failures:  make(map[string]int),
		calls:     make(map[string]int),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeGoogle) credentials() []byte {
	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(f.key),
	})
	data, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"client_email": "journal@test.iam.gserviceaccount.com",
		"private_key":  string(keyPEM),
		"token_uri":    f.srv.URL + "/token",
	})
	require.NoError(f.t, err)
	return data
}

func (f *fakeGoogle) client() *sheets.Client {
	sa, err := sheets.ParseCredentials(f.credentials())
	require.NoError(f.t, err)
	return sheets.NewClient(sa, sheets.Config{
		BaseURL:      f.srv.URL,
		Timeout:      2 * time.Second,
		MaxRetries:   2,
		RetryWait:    time.Millisecond,
		RetryMaxWait: 5 * time.Millisecond,
	})
}

func (f *fakeGoogle) addSheet(id string, rows ...[]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sheets[id] = rows
}

func (f *fakeGoogle) rows(id string) [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]any(nil), f.sheets[id]...)
}

func (f *fakeGoogle) failNext(call string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[call] = n
}

func (f *fakeGoogle) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[call]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func googleError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"code": status, "message": msg},
	})
}

func (f *fakeGoogle) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/token" {
		f.serveToken(w, r)
		return
	}

	if r.Header.Get("Authorization") != "Bearer "+testToken {
		googleError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	rest, ok := strings.CutPrefix(r.URL.Path, "/v4/spreadsheets/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	var id, kind, rng string
	switch {
	case strings.HasSuffix(rest, ":batchUpdate"):
		id, kind = strings.TrimSuffix(rest, ":batchUpdate"), "batchUpdate"
	case strings.Contains(rest, "/values/"):
		id, rng, _ = strings.Cut(rest, "/values/")
		kind = "values"
		if strings.HasSuffix(rng, ":append") {
			rng, kind = strings.TrimSuffix(rng, ":append"), "append"
		}
	default:
		id, kind = rest, "meta"
	}

	call := r.Method + " " + kind

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[call]++
	if f.failures[call] > 0 {
		f.failures[call]--
		googleError(w, http.StatusServiceUnavailable, "backend busy")
		return
	}
	if f.forbidden[id] {
		googleError(w, http.StatusForbidden, "The caller does not have permission")
		return
	}
	rows, exists := f.sheets[id]
	if !exists {
		googleError(w, http.StatusNotFound, "Requested entity was not found.")
		return
	}

	switch call {
	case "GET meta":
		writeJSON(w, http.StatusOK, map[string]any{
			"sheets": []any{map[string]any{
				"properties": map[string]any{"sheetId": 0, "title": "Sheet1"},
			}},
		})

	case "GET values":
		if got := r.URL.Query().Get("valueRenderOption"); got != "UNFORMATTED_VALUE" {
			googleError(w, http.StatusBadRequest, "unexpected valueRenderOption "+got)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"range": rng, "values": rows})

	case "POST append":
		var body struct{ Values [][]any }
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			googleError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.sheets[id] = append(rows, body.Values...)
		writeJSON(w, http.StatusOK, map[string]any{})

	case "POST batchUpdate":
		f.batchUpdate(w, r, id, rows)

	default:
		googleError(w, http.StatusMethodNotAllowed, call)
	}
}

type dimension struct {
	Range struct {
		StartIndex int `json:"startIndex"`
		EndIndex   int `json:"endIndex"`
	} `json:"range"`
}

type updateCells struct {
	Start struct {
		RowIndex int `json:"rowIndex"`
	} `json:"start"`
	Rows []struct {
		Values []struct {
			UserEnteredValue map[string]any `json:"userEnteredValue"`
		} `json:"values"`
	} `json:"rows"`
	Fields string `json:"fields"`
}

// batchUpdate applies every request to a copy and commits only when all of
// them succeed, like the real API.
func (f *fakeGoogle) batchUpdate(w http.ResponseWriter, r *http.Request, id string, rows [][]any) {
	var body struct {
		Requests []struct {
			InsertDimension *dimension   `json:"insertDimension"`
			DeleteDimension *dimension   `json:"deleteDimension"`
			UpdateCells     *updateCells `json:"updateCells"`
		} `json:"requests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		googleError(w, http.StatusBadRequest, err.Error())
		return
	}

	next := make([][]any, len(rows))
	copy(next, rows)
	for _, req := range body.Requests {
		switch {
		case req.InsertDimension != nil:
			at := req.InsertDimension.Range.StartIndex
			if at > len(next) {
				googleError(w, http.StatusBadRequest, "row out of range")
				return
			}
			next = append(next[:at], append([][]any{{}}, next[at:]...)...)
		case req.DeleteDimension != nil:
			at := req.DeleteDimension.Range.StartIndex
			if at >= len(next) {
				googleError(w, http.StatusBadRequest, "row out of range")
				return
			}
			next = append(next[:at], next[at+1:]...)
		case req.UpdateCells != nil:
			u := req.UpdateCells
			if u.Fields != "userEnteredValue" {
				googleError(w, http.StatusBadRequest, "unexpected fields "+u.Fields)
				return
			}
			for i, row := range u.Rows {
				at := u.Start.RowIndex + i
				if at >= len(next) {
					googleError(w, http.StatusBadRequest, "row out of range")
					return
				}
				cells := make([]any, 0, len(row.Values))
				for _, v := range row.Values {
					cells = append(cells, cellValue(v.UserEnteredValue))
				}
				next[at] = cells
			}
		}
	}
	f.sheets[id] = next
	writeJSON(w, http.StatusOK, map[string]any{})
}

func cellValue(ev map[string]any) any {
	for _, key := range []string{"stringValue", "numberValue", "boolValue"} {
		if v, ok := ev[key]; ok {
			return v
		}
	}
	return ""
}

func (f *fakeGoogle) serveToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		googleError(w, http.StatusBadRequest, err.Error())
		return
	}
	if r.PostForm.Get("grant_type") != "urn:ietf:params:oauth:grant-type:jwt-bearer" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unsupported_grant_type"})
		return
	}

	_, err := jwt.Parse(r.PostForm.Get("assertion"), func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return &f.key.PublicKey, nil
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":             "invalid_grant",
			"error_description": err.Error(),
		})
		return
	}

	f.mu.Lock()
	f.tokens++
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": testToken,
		"token_type":   "Bearer",
		"expires_in":   3600,
	})
}
