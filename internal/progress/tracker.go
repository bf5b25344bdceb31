// Package progress keeps the durable count of completed focus sessions.
//
// Counters live in a storage.KV under the keys totalSessions, todaySessions
// and lastResetDate. Every operation is one KV update, so the date rollover
// check and any increment commit together. Storage failures never reach the
// caller: the tracker logs them and carries on from an in-memory copy,
// trying the durable store again every RetryInterval and replaying what it
// counted in the meantime.
package progress

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sandeepkv93/focusnest/internal/clock"
	"github.com/sandeepkv93/focusnest/internal/model"
	"github.com/sandeepkv93/focusnest/internal/storage"
)

// RetryInterval is how long a degraded tracker waits before trying the
// durable store again.
const RetryInterval = 15 * time.Second

// Journal receives one entry per completed focus session.
type Journal interface {
	AppendCompletion(ctx context.Context, in storage.Completion) error
}

type Option func(*Tracker)

func WithClock(c clock.Clock) Option {
	return func(t *Tracker) {
		if c != nil {
			t.clock = c
		}
	}
}

// WithLocation sets the time zone that decides where one day ends.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.loc = loc
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

func WithJournal(j Journal) Option {
	return func(t *Tracker) { t.journal = j }
}

type Tracker struct {
	mu       sync.Mutex
	kv       storage.KV
	fallback *storage.MemoryKV
	degraded bool
	retryAt  time.Time
	last     model.Counters

	// Work done in memory while degraded, replayed on recovery.
	pending      map[string]int
	pendingReset bool

	clock   clock.Clock
	loc     *time.Location
	logger  *slog.Logger
	journal Journal
}

func NewTracker(kv storage.KV, opts ...Option) *Tracker {
	t := &Tracker{
		kv:     kv,
		clock:  clock.Real{},
		loc:    time.Local,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.kv == nil {
		t.fallback = storage.NewMemoryKV()
		t.degraded = true
		t.pending = make(map[string]int)
	}
	return t
}

// RecordCompletion counts one finished focus session of focusMinutes length.
func (t *Tracker) RecordCompletion(ctx context.Context, focusMinutes int) model.Counters {
	out := t.apply(ctx, opRecord, func(c model.Counters, today string) (model.Counters, bool) {
		c, _ = c.Rollover(today)
		c.Total++
		c.Today++
		return c, true
	})
	t.appendJournal(ctx, focusMinutes)
	return out
}

// Read returns the current counters, persisting a date rollover if one is due.
func (t *Tracker) Read(ctx context.Context) model.Counters {
	return t.apply(ctx, opRead, func(c model.Counters, today string) (model.Counters, bool) {
		return c.Rollover(today)
	})
}

// Reset zeroes both counters and stamps today's date.
func (t *Tracker) Reset(ctx context.Context) model.Counters {
	return t.apply(ctx, opReset, func(_ model.Counters, today string) (model.Counters, bool) {
		return model.Counters{LastResetDate: today}, true
	})
}

// Degraded reports whether the tracker is currently counting in memory.
func (t *Tracker) Degraded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.degraded
}

type op string

const (
	opRead   op = "read"
	opRecord op = "record completion"
	opReset  op = "reset"
)

type mutation func(c model.Counters, today string) (model.Counters, bool)

func (t *Tracker) apply(ctx context.Context, kind op, mutate mutation) model.Counters {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.degraded && t.kv != nil && !t.clock.Now().Before(t.retryAt) {
		out, err := t.run(ctx, t.kv, t.replay(mutate))
		if err == nil {
			t.logger.Info("progress storage recovered", "op", kind, "replayed", t.pendingCount())
			t.recoverLocked()
			t.last = out
			return out
		}
		if ctx.Err() != nil {
			t.logger.Debug("progress update abandoned", "op", kind, "err", err)
			return t.lastKnown()
		}
		t.retryAt = t.clock.Now().Add(RetryInterval)
		t.logger.Debug("progress storage still unavailable", "op", kind, "err", err)
	}

	if !t.degraded {
		out, err := t.run(ctx, t.kv, mutate)
		if err == nil {
			t.last = out
			return out
		}
		if ctx.Err() != nil {
			t.logger.Debug("progress update abandoned", "op", kind, "err", err)
			return t.lastKnown()
		}
		t.logger.Warn("progress storage unavailable, continuing in memory", "op", kind, "err", err)
		t.degradeLocked(ctx)
	}

	out, err := t.run(ctx, t.fallback, mutate)
	if err != nil {
		t.logger.Error("in-memory progress update failed", "op", kind, "err", err)
		return t.lastKnown()
	}
	t.last = out
	switch kind {
	case opRecord:
		t.pending[out.LastResetDate]++
	case opReset:
		t.pending = make(map[string]int)
		t.pendingReset = true
	}
	return out
}

// run applies mutate in one transaction on kv. The date is read inside the
// transaction, after any wait for the store's lock.
func (t *Tracker) run(ctx context.Context, kv storage.KV, mutate mutation) (model.Counters, error) {
	var out model.Counters
	err := kv.Update(ctx, func(tx storage.Tx) error {
		current, err := readCounters(tx)
		if err != nil {
			return err
		}
		next, dirty := mutate(current, t.today())
		if dirty {
			if err := writeCounters(tx, next); err != nil {
				return err
			}
		}
		out = next
		return nil
	})
	return out, err
}

// replay wraps mutate so the durable store first receives the reset and
// increments made while degraded.
func (t *Tracker) replay(mutate mutation) mutation {
	reset, pending := t.pendingReset, t.pending
	return func(c model.Counters, today string) (model.Counters, bool) {
		if reset {
			c = model.Counters{LastResetDate: today}
		}
		c, _ = c.Rollover(today)
		for date, n := range pending {
			c.Total += n
			if date == today {
				c.Today += n
			}
		}
		next, _ := mutate(c, today)
		return next, true
	}
}

func (t *Tracker) today() string {
	return model.DateKey(t.clock.Now(), t.loc)
}

func (t *Tracker) lastKnown() model.Counters {
	last, _ := t.last.Rollover(t.today())
	return last
}

func (t *Tracker) pendingCount() int {
	n := 0
	for _, v := range t.pending {
		n += v
	}
	return n
}

func (t *Tracker) degradeLocked(ctx context.Context) {
	t.fallback = storage.NewMemoryKV()
	t.degraded = true
	t.retryAt = t.clock.Now().Add(RetryInterval)
	t.pending = make(map[string]int)
	t.pendingReset = false
	seed := t.last
	if seed == (model.Counters{}) {
		return
	}
	_ = t.fallback.Update(ctx, func(tx storage.Tx) error {
		return writeCounters(tx, seed)
	})
}

func (t *Tracker) recoverLocked() {
	t.fallback = nil
	t.degraded = false
	t.pending = nil
	t.pendingReset = false
}

func (t *Tracker) appendJournal(ctx context.Context, focusMinutes int) {
	if t.journal == nil {
		return
	}
	entry := storage.Completion{
		ID:           uuid.NewString(),
		FocusMinutes: focusMinutes,
		CompletedAt:  t.clock.Now().UTC(),
	}
	if err := t.journal.AppendCompletion(ctx, entry); err != nil {
		t.logger.Warn("append completion journal failed", "id", entry.ID, "err", err)
	}
}

func readCounters(tx storage.Tx) (model.Counters, error) {
	total, _, err := tx.Get(storage.KeyTotalSessions)
	if err != nil {
		return model.Counters{}, err
	}
	today, _, err := tx.Get(storage.KeyTodaySessions)
	if err != nil {
		return model.Counters{}, err
	}
	date, _, err := tx.Get(storage.KeyLastResetDate)
	if err != nil {
		return model.Counters{}, err
	}
	return model.Counters{
		Total:         parseCount(total),
		Today:         parseCount(today),
		LastResetDate: parseDate(date),
	}, nil
}

func writeCounters(tx storage.Tx, c model.Counters) error {
	if err := tx.Set(storage.KeyTotalSessions, strconv.Itoa(c.Total)); err != nil {
		return err
	}
	if err := tx.Set(storage.KeyTodaySessions, strconv.Itoa(c.Today)); err != nil {
		return err
	}
	return tx.Set(storage.KeyLastResetDate, c.LastResetDate)
}

// parseCount reads a stored counter; anything that is not a finite
// non-negative number counts as zero.
func parseCount(raw string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

func parseDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if _, err := time.Parse(model.DateLayout, trimmed); err != nil {
		return ""
	}
	return trimmed
}
