package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandeepkv93/focusnest/internal/clock"
	"github.com/sandeepkv93/focusnest/internal/model"
	"github.com/sandeepkv93/focusnest/internal/session"
)

type countingRecorder struct {
	calls atomic.Int64
}

func (r *countingRecorder) RecordCompletion(context.Context, int) model.Counters {
	n := int(r.calls.Add(1))
	return model.Counters{Total: n, Today: n}
}

func newFixture(t *testing.T) (*session.Engine, *countingRecorder, *clock.Fake, *Driver) {
	t.Helper()
	rec := &countingRecorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := session.NewEngine(model.Durations{FocusMinutes: 1, BreakMinutes: 1}, rec, session.WithLogger(logger))
	clk := clock.NewFake(time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC))
	driver, err := NewDriver(engine, clk, time.Second, 8)
	if err != nil {
		t.Fatalf("new driver: %v", err)
	}
	return engine, rec, clk, driver
}

func TestDriverTicksRunningEngine(t *testing.T) {
	engine, _, clk, driver := newFixture(t)
	driver.Start()
	defer driver.Stop()

	engine.Start()
	clk.Advance(time.Second)
	ev := waitEvent(t, driver.C(), time.Second)
	if !ev.Ticked || ev.Snapshot.SecondsRemaining != 59 {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestDriverDeliversExpiry(t *testing.T) {
	engine, rec, clk, driver := newFixture(t)
	driver.Start()
	defer driver.Stop()

	engine.Start()
	var last session.Event
	for i := 0; i < 60; i++ {
		clk.Advance(time.Second)
		last = waitEvent(t, driver.C(), time.Second)
	}
	if !last.Expired || last.ExpiredPhase != model.PhaseFocus {
		t.Fatalf("expected focus expiry on 60th tick, got %+v", last)
	}
	if rec.calls.Load() != 1 {
		t.Fatalf("expected one completion, got %d", rec.calls.Load())
	}
}

func TestDriverSkipsPausedTicks(t *testing.T) {
	engine, _, clk, driver := newFixture(t)
	driver.Start()
	defer driver.Stop()

	engine.Pause()
	clk.Advance(time.Second)
	select {
	case ev := <-driver.C():
		t.Fatalf("unexpected event while paused: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
	if got := engine.Snapshot().SecondsRemaining; got != 60 {
		t.Fatalf("paused engine changed: %d", got)
	}
}

func TestDriverResyncDelaysFirstTickByFullInterval(t *testing.T) {
	engine, _, clk, driver := newFixture(t)
	driver.Start()
	defer driver.Stop()

	clk.Advance(700 * time.Millisecond)
	engine.Start()
	driver.Resync()

	clk.Advance(700 * time.Millisecond)
	select {
	case ev := <-driver.C():
		t.Fatalf("tick arrived before a full interval after resync: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}

	clk.Advance(300 * time.Millisecond)
	ev := waitEvent(t, driver.C(), time.Second)
	if ev.Snapshot.SecondsRemaining != 59 {
		t.Fatalf("expected first decrement one interval after resync, got %+v", ev)
	}
}

func TestDriverResyncOutsideRunIsNoop(t *testing.T) {
	_, _, _, driver := newFixture(t)
	driver.Resync()
	driver.Start()
	driver.Stop()
	driver.Resync()
}

func TestDriverStopReleasesTickerAndClosesChannel(t *testing.T) {
	_, _, clk, driver := newFixture(t)
	driver.Start()
	if clk.Active() != 1 {
		t.Fatalf("expected one active ticker, got %d", clk.Active())
	}

	driver.Stop()
	driver.Stop()
	if clk.Active() != 0 {
		t.Fatalf("expected ticker released, got %d active", clk.Active())
	}
	if _, ok := <-driver.C(); ok {
		t.Fatal("expected closed event channel")
	}

	driver.Start()
	if clk.Active() != 0 {
		t.Fatal("expected start after stop to be a no-op")
	}
}

func TestDriverStopWithoutStartClosesChannel(t *testing.T) {
	_, _, _, driver := newFixture(t)
	driver.Stop()
	if _, ok := <-driver.C(); ok {
		t.Fatal("expected closed event channel")
	}
}

func TestNewDriverValidatesInterval(t *testing.T) {
	if _, err := NewDriver(nil, nil, 0, 1); err != ErrInvalidInterval {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
}

func waitEvent(t *testing.T, ch <-chan session.Event, timeout time.Duration) session.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
		return session.Event{}
	}
}
