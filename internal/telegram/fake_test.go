package telegram

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const testToken = "123:abc"

type sentMessage struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sentDocument struct {
	ChatID string
	Name   string
	Data   string
}

// fakeAPI is an in-memory Bot API.
type fakeAPI struct {
	srv *httptest.Server

	mu         sync.Mutex
	updates    []Update
	messages   []sentMessage
	documents  []sentDocument
	rejectMD   bool
	failPolls  int
	webhookURL string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) client() *Client {
	return NewClient(f.srv.URL, testToken)
}

func ok(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result})
}

func fail(w http.ResponseWriter, code int, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error_code": code, "description": desc})
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	method, found := strings.CutPrefix(r.URL.Path, "/bot"+testToken+"/")
	if !found {
		fail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch method {
	case "getUpdates":
		if f.failPolls > 0 {
			f.failPolls--
			fail(w, http.StatusConflict, "Conflict: terminated by other getUpdates request")
			return
		}
		var body struct {
			Offset int64 `json:"offset"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		out := []Update{}
		for _, u := range f.updates {
			if u.UpdateID >= body.Offset {
				out = append(out, u)
			}
		}
		ok(w, out)

	case "sendMessage":
		var m sentMessage
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			fail(w, http.StatusBadRequest, err.Error())
			return
		}
		if m.ParseMode != "" && f.rejectMD {
			fail(w, http.StatusBadRequest, "Bad Request: can't parse entities")
			return
		}
		f.messages = append(f.messages, m)
		ok(w, Message{MessageID: int64(len(f.messages)), Chat: Chat{ID: m.ChatID}, Text: m.Text})

	case "sendDocument":
		file, hdr, err := r.FormFile("document")
		if err != nil {
			fail(w, http.StatusBadRequest, err.Error())
			return
		}
		data, _ := io.ReadAll(file)
		f.documents = append(f.documents, sentDocument{ChatID: r.FormValue("chat_id"), Name: hdr.Filename, Data: string(data)})
		ok(w, Message{MessageID: 1})

	case "setWebhook":
		var body struct {
			URL string `json:"url"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.webhookURL = body.URL
		ok(w, true)

	case "deleteWebhook":
		f.webhookURL = ""
		ok(w, true)

	default:
		fail(w, http.StatusNotFound, "Not Found")
	}
}

func (f *fakeAPI) sent() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.messages...)
}
