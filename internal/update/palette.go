package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/focusnest/internal/commands"
)

func (m Model) openPalette() Model {
	m.Palette.Active = true
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Focus()
	m.Status = StatusBar{Text: "command palette active"}
	return m
}

func (m Model) closePalette() Model {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
		return m, cmd
	}
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m = m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var follow tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Focus: func(a commands.MinutesArgs) (commands.Result, error) {
			return m.paletteConfigure(a.Minutes, m.Timer.BreakMinutes)
		},
		Break: func(a commands.MinutesArgs) (commands.Result, error) {
			return m.paletteConfigure(m.Timer.FocusMinutes, a.Minutes)
		},
		Start: func() (commands.Result, error) {
			if m.Timer.Running {
				return commands.Result{Message: "timer already running"}, nil
			}
			m.Timer = m.engine.Start()
			if m.ticks != nil {
				m.ticks.Resync()
			}
			follow = m.runSpinner.Tick
			return commands.Result{Message: fmt.Sprintf("%s running", m.Timer.Phase.Label())}, nil
		},
		Pause: func() (commands.Result, error) {
			m.Timer = m.engine.Pause()
			return commands.Result{Message: fmt.Sprintf("%s paused", m.Timer.Phase.Label())}, nil
		},
		Reset: func() (commands.Result, error) {
			m.Timer = m.engine.Reset()
			return commands.Result{Message: "timer reset"}, nil
		},
		Switch: func() (commands.Result, error) {
			m.Timer = m.engine.SwitchPhase()
			return commands.Result{Message: fmt.Sprintf("switched to %s", m.Timer.Phase.Label())}, nil
		},
		Stats: func() (commands.Result, error) {
			m.refreshCounters()
			return commands.Result{Message: fmt.Sprintf("today: %d | total: %d | this session: %d", m.Counters.Today, m.Counters.Total, m.Timer.SessionCompletions)}, nil
		},
		ResetProgress: func() (commands.Result, error) {
			m = m.askConfirm(ConfirmResetProgress, "reset all progress? press y to confirm")
			return commands.Result{Message: m.Confirm.Prompt}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	m.notify("Command", res.Message, "info")
	return m, follow
}

func (m *Model) paletteConfigure(focusMinutes, breakMinutes int) (commands.Result, error) {
	snap, ok := m.engine.Configure(focusMinutes, breakMinutes)
	m.Timer = snap
	if !ok {
		return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "pause the timer to change durations"}
	}
	return commands.Result{Message: fmt.Sprintf("focus %dm, break %dm", snap.FocusMinutes, snap.BreakMinutes)}, nil
}

func (m Model) askConfirm(action ConfirmAction, prompt string) Model {
	m.Confirm = ConfirmState{Action: action, Prompt: prompt}
	return m
}

// handleConfirmKey resolves a pending confirmation: "y" runs it, any other
// key cancels.
func (m Model) handleConfirmKey(msg tea.KeyMsg) Model {
	action := m.Confirm.Action
	m.Confirm = ConfirmState{}
	if msg.String() != "y" && msg.String() != "Y" {
		m.Status = StatusBar{Text: "cancelled"}
		return m
	}
	switch action {
	case ConfirmResetProgress:
		if m.counters == nil {
			m.Status = StatusBar{Text: "progress store not configured", IsError: true}
			return m
		}
		m.Counters = m.counters.Reset(m.ctx)
		m.Degraded = m.counters.Degraded()
		m.Growth = nil
		m.History = HistoryState{}
		m.Status = StatusBar{Text: "progress reset"}
		m.logger.Info("progress reset from tui")
	}
	return m
}
