package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// LocalBackend is what Backend reports for users without a linked sheet.
const LocalBackend = "local"

var errSheetsDisabled = errors.New("spreadsheet linking is not configured")

// Router picks the journal for each user: their linked spreadsheet if they
// have one, otherwise the local store. Unlinked users always fall back to
// the local store; that is policy, not an error.
type Router struct {
	local  Store
	sheets *Sheet

	mu       sync.RWMutex
	bindings map[string]string
}

var _ Store = (*Router)(nil)

// NewRouter builds a Router. sheets may be nil when spreadsheet linking is
// turned off.
func NewRouter(local Store, sheets *Sheet) *Router {
	return &Router{
		local:    local,
		sheets:   sheets,
		bindings: make(map[string]string),
	}
}

// Link binds userID to sheetID after checking the sheet can be opened. A
// failed open leaves any existing binding untouched.
func (r *Router) Link(ctx context.Context, userID, sheetID string) error {
	sheetID = strings.TrimSpace(sheetID)
	if sheetID == "" {
		return fmt.Errorf("%w: missing sheet id", ErrInvalidInput)
	}
	if r.sheets == nil {
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, errSheetsDisabled)
	}
	if err := r.sheets.Open(ctx, sheetID); err != nil {
		return err
	}

	r.mu.Lock()
	r.bindings[userID] = sheetID
	r.mu.Unlock()
	return nil
}

// Unlink drops the user's binding and reports whether there was one.
func (r *Router) Unlink(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.bindings[userID]
	delete(r.bindings, userID)
	return ok
}

// Backend returns the user's sheet ID, or LocalBackend.
func (r *Router) Backend(userID string) string {
	if id, ok := r.sheetFor(userID); ok {
		return id
	}
	return LocalBackend
}

func (r *Router) sheetFor(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bindings[userID]
	return id, ok && r.sheets != nil
}

func (r *Router) resolve(userID string) (Store, string) {
	if id, ok := r.sheetFor(userID); ok {
		return r.sheets, id
	}
	return r.local, userID
}

func (r *Router) Append(ctx context.Context, userID string, t Trade) (Trade, error) {
	s, owner := r.resolve(userID)
	return s.Append(ctx, owner, t)
}

func (r *Router) List(ctx context.Context, userID string, f Filter) ([]Trade, error) {
	s, owner := r.resolve(userID)
	return s.List(ctx, owner, f)
}

func (r *Router) Update(ctx context.Context, userID string, index int, edits Edits) (Trade, error) {
	s, owner := r.resolve(userID)
	return s.Update(ctx, owner, index, edits)
}

func (r *Router) Delete(ctx context.Context, userID string, index int) (Trade, error) {
	s, owner := r.resolve(userID)
	return s.Delete(ctx, owner, index)
}
