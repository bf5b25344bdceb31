// Package session implements the pomodoro timer: one countdown per phase,
// phase transitions on expiry, and exactly one recorded completion per
// focus phase that runs out.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sandeepkv93/focusnest/internal/model"
)

// Recorder persists completed focus sessions.
type Recorder interface {
	RecordCompletion(ctx context.Context, focusMinutes int) model.Counters
}

type Snapshot struct {
	Phase              model.Phase
	SecondsRemaining   int
	Running            bool
	FocusMinutes       int
	BreakMinutes       int
	SessionCompletions int
}

// TotalSeconds is the configured length of the active phase.
func (s Snapshot) TotalSeconds() int {
	return model.Durations{FocusMinutes: s.FocusMinutes, BreakMinutes: s.BreakMinutes}.Seconds(s.Phase)
}

// Progress is the elapsed fraction of the active phase in [0, 1].
func (s Snapshot) Progress() float64 {
	total := s.TotalSeconds()
	if total <= 0 {
		return 0
	}
	p := float64(total-s.SecondsRemaining) / float64(total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Event describes the outcome of one Tick.
type Event struct {
	Snapshot Snapshot
	// Ticked is false when the tick arrived while paused.
	Ticked       bool
	Expired      bool
	ExpiredPhase model.Phase
	Recorded     bool
	Counters     model.Counters
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

type Engine struct {
	mu          sync.Mutex
	durations   model.Durations
	phase       model.Phase
	remaining   int
	running     bool
	completions int
	recorder    Recorder
	logger      *slog.Logger
}

func NewEngine(d model.Durations, recorder Recorder, opts ...Option) *Engine {
	e := &Engine{
		durations: d.Clamp(),
		phase:     model.PhaseFocus,
		recorder:  recorder,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.remaining = e.durations.Seconds(e.phase)
	return e
}

// Configure clamps and applies new durations. It has no effect while the
// timer is running; the second return value reports whether it applied.
func (e *Engine) Configure(focusMinutes, breakMinutes int) (Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return e.snapshotLocked(), false
	}
	e.durations = model.Durations{FocusMinutes: focusMinutes, BreakMinutes: breakMinutes}.Clamp()
	e.remaining = e.durations.Seconds(e.phase)
	return e.snapshotLocked(), true
}

func (e *Engine) Start() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startLocked()
	return e.snapshotLocked()
}

func (e *Engine) startLocked() {
	if e.remaining <= 0 {
		e.remaining = e.durations.Seconds(e.phase)
	}
	e.running = true
}

func (e *Engine) Pause() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	return e.snapshotLocked()
}

// Toggle starts a paused timer or pauses a running one.
func (e *Engine) Toggle() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		e.running = false
	} else {
		e.startLocked()
	}
	return e.snapshotLocked()
}

func (e *Engine) Reset() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	e.remaining = e.durations.Seconds(e.phase)
	return e.snapshotLocked()
}

// SwitchPhase stops the timer and moves to the other phase without
// recording a completion.
func (e *Engine) SwitchPhase() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	e.phase = e.phase.Next()
	e.remaining = e.durations.Seconds(e.phase)
	return e.snapshotLocked()
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Tick advances a running timer by one second. When the countdown reaches
// zero the expiry transition completes before Tick returns.
func (e *Engine) Tick(ctx context.Context) Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return Event{Snapshot: e.snapshotLocked()}
	}
	if e.remaining > 0 {
		e.remaining--
	}
	ev := Event{Ticked: true}
	if e.remaining == 0 {
		ev = e.expireLocked(ctx)
		ev.Ticked = true
	}
	ev.Snapshot = e.snapshotLocked()
	return ev
}

func (e *Engine) expireLocked(ctx context.Context) Event {
	expired := e.phase
	ev := Event{Expired: true, ExpiredPhase: expired}
	e.running = false

	if expired == model.PhaseFocus {
		e.completions++
		if e.recorder != nil {
			ev.Counters = e.recorder.RecordCompletion(ctx, e.durations.FocusMinutes)
			ev.Recorded = true
		}
		e.logger.Info("focus session complete", "focus_minutes", e.durations.FocusMinutes, "today", ev.Counters.Today, "total", ev.Counters.Total)
	} else {
		e.logger.Info("break complete", "break_minutes", e.durations.BreakMinutes)
	}

	e.phase = expired.Next()
	e.remaining = e.durations.Seconds(e.phase)
	e.running = true
	return ev
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		Phase:              e.phase,
		SecondsRemaining:   e.remaining,
		Running:            e.running,
		FocusMinutes:       e.durations.FocusMinutes,
		BreakMinutes:       e.durations.BreakMinutes,
		SessionCompletions: e.completions,
	}
}
