package telegram

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rustyeddy/lockin/internal/logger"
)

// Webhook receives updates pushed by Telegram at /telegram/{secret}.
type Webhook struct {
	secret string
	d      *Dispatcher
}

func NewWebhook(secret string, d *Dispatcher) *Webhook {
	return &Webhook{secret: secret, d: d}
}

func (w *Webhook) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/telegram/{secret}", w.handleUpdate).Methods(http.MethodPost)
	router.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
}

// Handler returns the routes wrapped with panic recovery and access logs.
// Access logs carry the route template, never the secret.
func (w *Webhook) Handler() http.Handler {
	router := mux.NewRouter()
	w.RegisterRoutes(router)

	logged := handlers.CustomLoggingHandler(io.Discard, router, accessLog)
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(logged)
}

func accessLog(_ io.Writer, p handlers.LogFormatterParams) {
	path := p.URL.Path
	if strings.HasPrefix(path, "/telegram/") {
		path = "/telegram/{secret}"
	}
	logger.Info(p.Request.Context(), "http request",
		"method", p.Request.Method,
		"path", path,
		"status", p.StatusCode,
		"size", p.Size,
	)
}

func (w *Webhook) handleUpdate(rw http.ResponseWriter, r *http.Request) {
	got := mux.Vars(r)["secret"]
	if subtle.ConstantTimeCompare([]byte(got), []byte(w.secret)) != 1 {
		http.NotFound(rw, r)
		return
	}

	var u Update
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&u); err != nil {
		http.Error(rw, "bad update", http.StatusBadRequest)
		return
	}

	w.d.Dispatch(u)
	rw.WriteHeader(http.StatusOK)
}

func handleHealth(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	_, _ = rw.Write([]byte(`{"status":"ok"}`))
}
