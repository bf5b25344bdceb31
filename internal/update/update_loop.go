package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/focusnest/internal/model"
	"github.com/sandeepkv93/focusnest/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForTickCmd(m.tickChan())}
	if m.counters != nil && m.showsForest() {
		cmds = append(cmds, forestPollCmd(m.pollSeq))
	}
	if m.Timer.Running {
		cmds = append(cmds, m.runSpinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case spinner.TickMsg:
		if !m.Timer.Running {
			return m, nil
		}
		var cmd tea.Cmd
		m.runSpinner, cmd = m.runSpinner.Update(typed)
		return m, cmd
	case TimerEventMsg:
		return m.onTimerEvent(typed.Event)
	case TicksClosedMsg:
		m.logger.Debug("tick driver closed")
		return m, nil
	case ForestPollMsg:
		return m.onForestPoll(typed)
	case GrowthFrameMsg:
		return m.onGrowthFrame(typed)
	case HistoryLoadedMsg:
		return m.onHistoryLoaded(typed), nil
	case SwitchViewMsg:
		return m.switchView(typed.View)
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == "ctrl+c" {
		return m.quit()
	}
	if m.Confirm.Action != ConfirmNone {
		return m.handleConfirmKey(msg), nil
	}
	if m.Palette.Active {
		if keyStr == m.Keys.Help {
			m.HelpVisible = !m.HelpVisible
			return m, nil
		}
		return m.handlePaletteKey(msg)
	}

	switch keyStr {
	case "/":
		return m.openPalette(), nil
	case m.Keys.Timer:
		return m.switchView(ViewTimer)
	case m.Keys.Forest:
		return m.switchView(ViewForest)
	case m.Keys.History:
		return m.switchView(ViewHistory)
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		if m.HelpVisible {
			m.Status = StatusBar{Text: "help shown"}
		} else {
			m.Status = StatusBar{Text: "help hidden"}
		}
		return m, nil
	case "X":
		return m.askConfirm(ConfirmResetProgress, "reset all progress? press y to confirm"), nil
	case m.Keys.Quit:
		return m.quit()
	}

	if next, cmd, ok := m.handleTimerKey(keyStr); ok {
		return next, cmd
	}

	var cmd tea.Cmd
	switch m.CurrentView {
	case ViewForest:
		m.forestViewport, cmd = m.forestViewport.Update(msg)
	case ViewHistory:
		m.historyTable, cmd = m.historyTable.Update(msg)
	}
	return m, cmd
}

func (m Model) switchView(v View) (Model, tea.Cmd) {
	switch v {
	case ViewTimer:
		m.CurrentView = ViewTimer
		return m.startForestPoll()
	case ViewForest:
		return m.enterForest()
	case ViewHistory:
		return m.enterHistory()
	default:
		return m, nil
	}
}

func (m Model) quit() (Model, tea.Cmd) {
	m.Quitting = true
	if m.ticks != nil {
		m.ticks.Stop()
	}
	return m, tea.Quit
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	leftPane := ""
	rightPane := ""
	switch m.CurrentView {
	case ViewForest:
		leftPane = m.renderForestView()
	case ViewHistory:
		leftPane = m.renderHistoryView()
	default:
		leftPane = m.renderTimerView()
		rightPane = m.renderForestWidget()
	}
	overlay := strings.TrimSpace(strings.Join([]string{
		views.RenderCommandPalette(m.Palette.Active, m.commandInput.View()),
		views.RenderConfirm(m.Confirm.Prompt),
		m.renderHelpIfVisible(),
	}, "\n"))
	if overlay != "" {
		rightPane = strings.TrimSpace(rightPane + "\n\n" + overlay)
	}

	notificationView := ""
	if len(m.Notifications) > 0 {
		n := m.Notifications[len(m.Notifications)-1]
		notificationView = views.RenderNotification(n.Level, n.Body)
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("focusnest | view: %s | %s %s", m.CurrentView, m.Timer.Phase.Label(), formatDuration(m.Timer.SecondsRemaining)),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		Notification: notificationView,
		Footer:       fmt.Sprintf("keys: %s timer | %s forest | %s history | / cmd | %s help | %s quit", m.Keys.Timer, m.Keys.Forest, m.Keys.History, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderTimerView() string {
	return views.RenderTimerPanel(views.TimerPanelData{
		Phase:        m.Timer.Phase.Label(),
		IsBreak:      m.Timer.Phase == model.PhaseBreak,
		Timer:        formatDuration(m.Timer.SecondsRemaining),
		Running:      m.Timer.Running,
		SpinnerView:  m.runSpinner.View(),
		ProgressView: m.timerProgress.ViewAs(m.Timer.Progress()),
		FocusMinutes: m.Timer.FocusMinutes,
		BreakMinutes: m.Timer.BreakMinutes,
		Session:      m.Timer.SessionCompletions,
		Today:        m.Counters.Today,
		Total:        m.Counters.Total,
	})
}
