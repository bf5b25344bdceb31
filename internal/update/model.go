package update

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/focusnest/internal/forest"
	"github.com/sandeepkv93/focusnest/internal/model"
	"github.com/sandeepkv93/focusnest/internal/session"
	"github.com/sandeepkv93/focusnest/internal/storage"
)

type View string

const (
	ViewTimer   View = "Timer"
	ViewForest  View = "Forest"
	ViewHistory View = "History"
)

// HistoryLimit caps the journal entries loaded into the history table.
const HistoryLimit = 50

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Timer   string
	Forest  string
	History string
	Help    string
	Quit    string
}

// Counters is the progress store as seen by the UI.
type Counters interface {
	Read(ctx context.Context) model.Counters
	Reset(ctx context.Context) model.Counters
	Degraded() bool
}

// TickSource delivers engine events to the UI.
type TickSource interface {
	C() <-chan session.Event
	Resync()
	Stop()
}

type Deps struct {
	Engine   *session.Engine
	Ticks    TickSource
	Counters Counters
	// Journal backs the history view. Nil hides history entries.
	Journal              storage.Journal
	Notifier             DesktopNotifier
	DesktopNotifications bool
	ForestMax            int
	Now                  func() time.Time
	Logger               *slog.Logger
}

type Model struct {
	CurrentView   View
	Timer         session.Snapshot
	Counters      model.Counters
	Degraded      bool
	Palette       CommandPaletteState
	Confirm       ConfirmState
	HelpVisible   bool
	Notifications []Notification
	History       HistoryState
	Growth        *forest.Growth
	Status        StatusBar
	Keys          GlobalKeyMap
	Quitting      bool
	LastError     error

	DesktopEnabled bool
	ForestMax      int

	ctx      context.Context
	engine   *session.Engine
	ticks    TickSource
	counters Counters
	journal  storage.Journal
	notifier DesktopNotifier
	now      func() time.Time
	logger   *slog.Logger
	// pollSeq and growthSeq discard timer messages from superseded loops.
	pollSeq   int
	growthSeq int

	commandInput   textinput.Model
	timerProgress  progress.Model
	runSpinner     spinner.Model
	helpModel      help.Model
	forestViewport viewport.Model
	historyTable   table.Model
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

// ConfirmState holds a destructive action waiting for "y".
type ConfirmState struct {
	Prompt string
	Action ConfirmAction
}

type ConfirmAction string

const (
	ConfirmNone          ConfirmAction = ""
	ConfirmResetProgress ConfirmAction = "reset-progress"
)

type HistoryState struct {
	Items  []storage.Completion
	Loaded bool
	Err    error
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// TimerEventMsg carries one event from the tick driver.
type TimerEventMsg struct {
	Event session.Event
}

// TicksClosedMsg reports that the tick driver stopped.
type TicksClosedMsg struct{}

type ForestPollMsg struct {
	Seq int
}

type GrowthFrameMsg struct {
	Seq int
}

type HistoryLoadedMsg struct {
	Items []storage.Completion
	Err   error
}

func NewModel(deps Deps) Model {
	m := Model{
		CurrentView:    ViewTimer,
		DesktopEnabled: deps.DesktopNotifications,
		ForestMax:      deps.ForestMax,
		Keys: GlobalKeyMap{
			Timer:   "1",
			Forest:  "2",
			History: "3",
			Help:    "?",
			Quit:    "q",
		},
		ctx:      context.Background(),
		engine:   deps.Engine,
		ticks:    deps.Ticks,
		counters: deps.Counters,
		journal:  deps.Journal,
		notifier: deps.Notifier,
		now:      deps.Now,
		logger:   deps.Logger,
	}
	if m.engine == nil {
		m.engine = session.NewEngine(model.DefaultDurations(), nil)
	}
	if m.notifier == nil {
		m.notifier = NoopDesktopNotifier{}
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.ForestMax <= 0 {
		m.ForestMax = forest.FullViewMax
	}
	m.Timer = m.engine.Snapshot()
	m.refreshCounters()
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

func (m *Model) refreshCounters() {
	if m.counters == nil {
		return
	}
	m.Counters = m.counters.Read(m.ctx)
	m.Degraded = m.counters.Degraded()
}
