package update

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/focusnest/internal/clock"
	"github.com/sandeepkv93/focusnest/internal/model"
	"github.com/sandeepkv93/focusnest/internal/progress"
	"github.com/sandeepkv93/focusnest/internal/session"
	"github.com/sandeepkv93/focusnest/internal/storage"
)

type fakeTicks struct {
	ch      chan session.Event
	resyncs int
	stopped bool
}

func newFakeTicks() *fakeTicks { return &fakeTicks{ch: make(chan session.Event, 4)} }

func (f *fakeTicks) C() <-chan session.Event { return f.ch }
func (f *fakeTicks) Resync()                 { f.resyncs++ }
func (f *fakeTicks) Stop() {
	if !f.stopped {
		f.stopped = true
		close(f.ch)
	}
}

type recordingNotifier struct {
	sent []Notification
}

func (r *recordingNotifier) Send(n Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

type fixture struct {
	kv       *storage.MemoryKV
	tracker  *progress.Tracker
	ticks    *fakeTicks
	notifier *recordingNotifier
	now      time.Time
}

func newFixture(t *testing.T) (*fixture, Model) {
	t.Helper()
	f := &fixture{
		kv:       storage.NewMemoryKV(),
		ticks:    newFakeTicks(),
		notifier: &recordingNotifier{},
		now:      time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.tracker = progress.NewTracker(f.kv,
		progress.WithClock(clock.NewFake(f.now)),
		progress.WithLocation(time.UTC),
		progress.WithJournal(f.kv),
		progress.WithLogger(logger),
	)
	engine := session.NewEngine(model.DefaultDurations(), f.tracker, session.WithLogger(logger))
	m := NewModel(Deps{
		Engine:               engine,
		Ticks:                f.ticks,
		Counters:             f.tracker,
		Journal:              f.kv,
		Notifier:             f.notifier,
		DesktopNotifications: true,
		Now:                  func() time.Time { return f.now },
		Logger:               logger,
	})
	return f, m
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, c := m.Update(msg)
		m = updated.(Model)
		cmd = c
	}
	return m, cmd
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestNewModelDefaults(t *testing.T) {
	_, m := newFixture(t)
	if m.CurrentView != ViewTimer {
		t.Fatalf("expected default view %q, got %q", ViewTimer, m.CurrentView)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
	if m.Timer.Phase != model.PhaseFocus || m.Timer.SecondsRemaining != 1500 || m.Timer.Running {
		t.Fatalf("unexpected timer: %+v", m.Timer)
	}
	if m.Counters.LastResetDate != "2026-02-09" || m.Counters.Total != 0 {
		t.Fatalf("unexpected counters: %+v", m.Counters)
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	_, m := newFixture(t)
	next, cmd := press(t, m, "2")
	if next.CurrentView != ViewForest || cmd == nil {
		t.Fatalf("expected forest view with poll command, got %q cmd=%v", next.CurrentView, cmd != nil)
	}
	next, cmd = press(t, next, "3")
	if next.CurrentView != ViewHistory || cmd == nil {
		t.Fatalf("expected history view with load command, got %q", next.CurrentView)
	}
	next, _ = press(t, next, "1")
	if next.CurrentView != ViewTimer {
		t.Fatalf("expected timer view, got %q", next.CurrentView)
	}

	next, _ = send(next, SwitchViewMsg{View: View("Unknown")})
	if next.CurrentView != ViewTimer {
		t.Fatalf("expected view unchanged for unknown view, got %q", next.CurrentView)
	}
}

func TestSpaceTogglesTimerAndResyncsTicks(t *testing.T) {
	f, m := newFixture(t)
	next, cmd := press(t, m, " ")
	if !next.Timer.Running || cmd == nil {
		t.Fatalf("expected running timer with spinner command, got %+v", next.Timer)
	}
	if f.ticks.resyncs != 1 {
		t.Fatalf("expected one resync, got %d", f.ticks.resyncs)
	}
	next, _ = press(t, next, " ")
	if next.Timer.Running {
		t.Fatal("expected paused timer")
	}
	if f.ticks.resyncs != 1 {
		t.Fatalf("pause must not resync, got %d", f.ticks.resyncs)
	}
}

func TestDurationKeysOnlyApplyWhilePaused(t *testing.T) {
	_, m := newFixture(t)
	next, _ := press(t, m, "+", "+", "[")
	if next.Timer.FocusMinutes != 27 || next.Timer.BreakMinutes != 4 {
		t.Fatalf("unexpected durations: %+v", next.Timer)
	}
	if next.Timer.SecondsRemaining != 27*60 {
		t.Fatalf("expected remaining recomputed, got %d", next.Timer.SecondsRemaining)
	}

	next, _ = press(t, next, " ", "-")
	if next.Timer.FocusMinutes != 27 {
		t.Fatalf("configure applied while running: %+v", next.Timer)
	}
	if !next.Status.IsError {
		t.Fatalf("expected error status, got %+v", next.Status)
	}
}

func TestResetAndSwitchKeys(t *testing.T) {
	_, m := newFixture(t)
	next, _ := press(t, m, "s")
	if next.Timer.Phase != model.PhaseBreak || next.Timer.SecondsRemaining != 300 {
		t.Fatalf("unexpected switch result: %+v", next.Timer)
	}
	next, _ = press(t, next, " ", "r")
	if next.Timer.Running || next.Timer.SecondsRemaining != 300 {
		t.Fatalf("unexpected reset result: %+v", next.Timer)
	}
}

func TestTimerEventRecordsCompletionAndNotifies(t *testing.T) {
	f, m := newFixture(t)
	counters := f.tracker.RecordCompletion(context.Background(), 25)

	ev := session.Event{
		Snapshot:     session.Snapshot{Phase: model.PhaseBreak, SecondsRemaining: 300, Running: true, FocusMinutes: 25, BreakMinutes: 5, SessionCompletions: 1},
		Ticked:       true,
		Expired:      true,
		ExpiredPhase: model.PhaseFocus,
		Recorded:     true,
		Counters:     counters,
	}
	next, cmd := send(m, TimerEventMsg{Event: ev})
	if cmd == nil {
		t.Fatal("expected follow-up commands")
	}
	if next.Counters.Total != 1 || next.Counters.Today != 1 {
		t.Fatalf("unexpected counters: %+v", next.Counters)
	}
	if next.Growth == nil || next.Growth.Index != 0 {
		t.Fatalf("expected growth animation for the new tree, got %+v", next.Growth)
	}
	if !strings.Contains(next.Status.Text, "focus complete") {
		t.Fatalf("unexpected status: %+v", next.Status)
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0].Title != "Focus complete" {
		t.Fatalf("expected desktop notification, got %+v", f.notifier.sent)
	}
}

func TestGrowthFrameEndsAnimation(t *testing.T) {
	f, m := newFixture(t)
	m.Growth = nil
	_ = m.setCounters(model.Counters{Total: 2, Today: 2, LastResetDate: "2026-02-09"})
	if m.Growth == nil {
		t.Fatal("expected growth to start")
	}

	f.now = f.now.Add(400 * time.Millisecond)
	next, cmd := send(m, GrowthFrameMsg{Seq: m.growthSeq})
	if next.Growth == nil || cmd == nil {
		t.Fatal("expected animation to continue")
	}

	f.now = f.now.Add(time.Second)
	next, cmd = send(next, GrowthFrameMsg{Seq: next.growthSeq})
	if next.Growth != nil || cmd != nil {
		t.Fatalf("expected animation finished, growth=%+v", next.Growth)
	}
}

func TestResetProgressRequiresConfirmation(t *testing.T) {
	f, m := newFixture(t)
	f.tracker.RecordCompletion(context.Background(), 25)
	f.tracker.RecordCompletion(context.Background(), 25)
	m.refreshCounters()

	next, _ := press(t, m, "X")
	if next.Confirm.Action != ConfirmResetProgress {
		t.Fatalf("expected pending confirmation, got %+v", next.Confirm)
	}
	next, _ = press(t, next, "n")
	if next.Confirm.Action != ConfirmNone || next.Counters.Total != 2 {
		t.Fatalf("expected cancelled reset, got %+v %+v", next.Confirm, next.Counters)
	}

	next, _ = press(t, next, "X", "y")
	if next.Counters.Total != 0 || next.Counters.Today != 0 || next.Counters.LastResetDate != "2026-02-09" {
		t.Fatalf("expected cleared counters, got %+v", next.Counters)
	}
	if got := f.tracker.Read(context.Background()); got.Total != 0 {
		t.Fatalf("expected reset persisted, got %+v", got)
	}
}

func TestPaletteConfiguresDurations(t *testing.T) {
	_, m := newFixture(t)
	next, _ := press(t, m, "/")
	if !next.Palette.Active {
		t.Fatal("expected palette active")
	}
	next, _ = press(t, next, "focus 45", "enter")
	if next.Palette.Active {
		t.Fatal("expected palette closed after enter")
	}
	if next.Timer.FocusMinutes != 45 || next.Timer.SecondsRemaining != 45*60 {
		t.Fatalf("unexpected timer after palette: %+v", next.Timer)
	}

	next, _ = press(t, next, "/", "break 999", "enter")
	if next.Timer.BreakMinutes != 60 {
		t.Fatalf("expected clamped break, got %+v", next.Timer)
	}
}

func TestPaletteUnknownCommandSetsError(t *testing.T) {
	_, m := newFixture(t)
	next, _ := press(t, m, "/", "plant tree", "enter")
	if !next.Status.IsError || !strings.Contains(next.Status.Text, "unknown_command") {
		t.Fatalf("expected unknown command error, got %+v", next.Status)
	}
}

func TestPaletteResetProgressAsksConfirmation(t *testing.T) {
	_, m := newFixture(t)
	next, _ := press(t, m, "/", "reset-progress", "enter")
	if next.Confirm.Action != ConfirmResetProgress {
		t.Fatalf("expected confirmation prompt, got %+v", next.Confirm)
	}
}

func TestForestPollPicksUpExternalCompletions(t *testing.T) {
	f, m := newFixture(t)
	next, _ := press(t, m, "2")
	seq := next.pollSeq

	f.tracker.RecordCompletion(context.Background(), 25)
	next, cmd := send(next, ForestPollMsg{Seq: seq})
	if next.Counters.Total != 1 || cmd == nil {
		t.Fatalf("expected poll to refresh counters, got %+v", next.Counters)
	}

	f.tracker.RecordCompletion(context.Background(), 25)
	stale, cmd := send(next, ForestPollMsg{Seq: seq - 1})
	if stale.Counters.Total != 1 || cmd != nil {
		t.Fatalf("stale poll must be ignored, got %+v", stale.Counters)
	}

	away, _ := press(t, next, "3")
	away, cmd = send(away, ForestPollMsg{Seq: away.pollSeq})
	if cmd != nil || away.Counters.Total != 1 {
		t.Fatalf("poll must stop in the history view, got %+v", away.Counters)
	}
}

func TestTimerViewPollsCompactForest(t *testing.T) {
	f, m := newFixture(t)
	if m.Init() == nil {
		t.Fatal("expected init to start the tick wait and forest poll")
	}
	seq := m.pollSeq

	f.tracker.RecordCompletion(context.Background(), 25)
	next, cmd := send(m, ForestPollMsg{Seq: seq})
	if next.Counters.Total != 1 || cmd == nil {
		t.Fatalf("expected timer view poll to refresh counters, got %+v", next.Counters)
	}
	if next.Growth == nil {
		t.Fatal("expected growth animation for a tree planted elsewhere")
	}

	back, _ := press(t, next, "3")
	back, cmd = press(t, back, "1")
	if cmd == nil || back.pollSeq == seq {
		t.Fatalf("expected returning to the timer to restart the poll, seq=%d", back.pollSeq)
	}
}

func TestHistoryLoadsJournal(t *testing.T) {
	f, m := newFixture(t)
	f.tracker.RecordCompletion(context.Background(), 25)
	f.tracker.RecordCompletion(context.Background(), 50)

	next, cmd := press(t, m, "3")
	if cmd == nil {
		t.Fatal("expected history load command")
	}
	msg, ok := cmd().(HistoryLoadedMsg)
	if !ok {
		t.Fatalf("unexpected message %T", msg)
	}
	next, _ = send(next, msg)
	if len(next.History.Items) != 2 || !next.History.Loaded {
		t.Fatalf("unexpected history: %+v", next.History)
	}
	if rows := next.historyTable.Rows(); len(rows) != 2 {
		t.Fatalf("expected 2 table rows, got %d", len(rows))
	}

	next, _ = send(next, HistoryLoadedMsg{Err: errors.New("disk gone")})
	if !next.Status.IsError {
		t.Fatalf("expected error status, got %+v", next.Status)
	}
}

func TestQuitStopsTicks(t *testing.T) {
	f, m := newFixture(t)
	next, cmd := press(t, m, "q")
	if !next.Quitting || cmd == nil {
		t.Fatal("expected quit command")
	}
	if !f.ticks.stopped {
		t.Fatal("expected tick source stopped")
	}
	msg := waitForTickCmd(f.ticks.C())()
	if _, ok := msg.(TicksClosedMsg); !ok {
		t.Fatalf("expected TicksClosedMsg, got %T", msg)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	_, m := newFixture(t)
	next, _ := send(m, SetStatusMsg{Text: "ready"})
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	next, _ = send(next, AppErrorMsg{Err: errors.New("boom")})
	if next.LastError == nil || next.LastError.Error() != "boom" {
		t.Fatalf("expected last error boom, got: %v", next.LastError)
	}
	if !next.Status.IsError || next.Status.Text != "boom" {
		t.Fatalf("unexpected error status: %+v", next.Status)
	}

	next, _ = send(next, ClearStatusMsg{})
	if next.Status.Text != "" || next.Status.IsError {
		t.Fatalf("expected cleared status, got: %+v", next.Status)
	}
}

func TestViewContainsCoreState(t *testing.T) {
	_, m := newFixture(t)
	m.Status = StatusBar{Text: "all good"}
	out := m.View()
	for _, want := range []string{"view: Timer", "25:00", "status: all good", "your forest"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output: %q", want, out)
		}
	}

	m.HelpVisible = true
	if out := m.View(); !strings.Contains(out, "help (timer)") {
		t.Fatalf("expected help panel in output: %q", out)
	}
}
