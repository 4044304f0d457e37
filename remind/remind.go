// Package remind parses and schedules one-shot trade reminders.
package remind

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidFormat = errors.New("invalid reminder format")

var pattern = regexp.MustCompile(`(?i)in (\d+)([hm]) to (.+)`)

type Reminder struct {
	Amount int
	Unit   string // "h" or "m"
	Delay  time.Duration
	Reason string
}

// MaxDelay is the furthest ahead a reminder can be set.
const MaxDelay = 365 * 24 * time.Hour

// Parse finds "in <N><h|m> to <reason>" anywhere in text, so
// "me in 2h to check GBPUSD" works.
func Parse(text string) (Reminder, error) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return Reminder{}, ErrInvalidFormat
	}

	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return Reminder{}, fmt.Errorf("%w: bad amount %q", ErrInvalidFormat, m[1])
	}
	reason := strings.TrimSpace(m[3])
	if reason == "" {
		return Reminder{}, ErrInvalidFormat
	}

	r := Reminder{Amount: n, Unit: strings.ToLower(m[2]), Reason: reason}
	unit := time.Minute
	if r.Unit == "h" {
		unit = time.Hour
	}
	if time.Duration(n) > MaxDelay/unit {
		return Reminder{}, fmt.Errorf("%w: more than %s ahead", ErrInvalidFormat, MaxDelay)
	}
	r.Delay = time.Duration(n) * unit
	return r, nil
}

// In renders the delay the way it was asked for, e.g. "2h".
func (r Reminder) In() string {
	return strconv.Itoa(r.Amount) + r.Unit
}

// Scheduler fires reminders on timers. Nothing is persisted; pending
// reminders are lost on restart.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending map[uuid.UUID]*time.Timer
	stopped bool
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[uuid.UUID]*time.Timer),
	}
}

type Handle struct {
	ID uuid.UUID
	s  *Scheduler
}

// Schedule runs fire once after r.Delay on its own goroutine. The context
// passed to fire is cancelled by Stop. After Stop, Schedule returns a
// handle that never fires.
func (s *Scheduler) Schedule(r Reminder, fire func(ctx context.Context, r Reminder)) *Handle {
	h := &Handle{ID: uuid.New(), s: s}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return h
	}

	s.pending[h.ID] = time.AfterFunc(r.Delay, func() {
		if !s.take(h.ID) {
			return
		}
		fire(s.ctx, r)
	})
	return h
}

// take removes id from the pending set and reports whether it was there.
func (s *Scheduler) take(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[id]; !ok {
		return false
	}
	delete(s.pending, id)
	return true
}

// Cancel stops the reminder. It reports false if it already fired or was
// cancelled.
func (h *Handle) Cancel() bool {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	t, ok := h.s.pending[h.ID]
	if !ok {
		return false
	}
	t.Stop()
	delete(h.s.pending, h.ID)
	return true
}

func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels every pending reminder.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for id, t := range s.pending {
		t.Stop()
		delete(s.pending, id)
	}
	s.cancel()
}
