package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/focusnest/internal/model"
	"github.com/sandeepkv93/focusnest/internal/session"
)

// handleTimerKey applies timer controls. It reports false when key is not
// a timer control.
func (m Model) handleTimerKey(key string) (Model, tea.Cmd, bool) {
	switch key {
	case " ":
		wasRunning := m.Timer.Running
		m.Timer = m.engine.Toggle()
		if m.Timer.Running && !wasRunning {
			if m.ticks != nil {
				m.ticks.Resync()
			}
			m.Status = StatusBar{Text: fmt.Sprintf("%s running", m.Timer.Phase.Label())}
			return m, m.runSpinner.Tick, true
		}
		m.Status = StatusBar{Text: fmt.Sprintf("%s paused", m.Timer.Phase.Label())}
		return m, nil, true
	case "r":
		m.Timer = m.engine.Reset()
		m.Status = StatusBar{Text: "timer reset"}
		return m, nil, true
	case "s":
		m.Timer = m.engine.SwitchPhase()
		m.Status = StatusBar{Text: fmt.Sprintf("switched to %s", m.Timer.Phase.Label())}
		return m, nil, true
	case "+", "=":
		return m.configure(m.Timer.FocusMinutes+1, m.Timer.BreakMinutes), nil, true
	case "-":
		return m.configure(m.Timer.FocusMinutes-1, m.Timer.BreakMinutes), nil, true
	case "]":
		return m.configure(m.Timer.FocusMinutes, m.Timer.BreakMinutes+1), nil, true
	case "[":
		return m.configure(m.Timer.FocusMinutes, m.Timer.BreakMinutes-1), nil, true
	}
	return m, nil, false
}

func (m Model) configure(focusMinutes, breakMinutes int) Model {
	snap, ok := m.engine.Configure(focusMinutes, breakMinutes)
	m.Timer = snap
	if !ok {
		m.Status = StatusBar{Text: "pause the timer to change durations", IsError: true}
		return m
	}
	m.Status = StatusBar{Text: fmt.Sprintf("focus %dm, break %dm", snap.FocusMinutes, snap.BreakMinutes)}
	return m
}

func (m Model) onTimerEvent(ev session.Event) (Model, tea.Cmd) {
	m.Timer = ev.Snapshot
	var cmds []tea.Cmd
	if ev.Expired {
		if ev.ExpiredPhase == model.PhaseFocus {
			m.Status = StatusBar{Text: fmt.Sprintf("focus complete, %d minute break started", ev.Snapshot.BreakMinutes)}
			m.alert("Focus complete", fmt.Sprintf("Time for a %d minute break.", ev.Snapshot.BreakMinutes))
		} else {
			m.Status = StatusBar{Text: fmt.Sprintf("break over, %d minute focus started", ev.Snapshot.FocusMinutes)}
			m.alert("Break over", fmt.Sprintf("Back to focus for %d minutes.", ev.Snapshot.FocusMinutes))
		}
	}
	if ev.Recorded {
		cmds = append(cmds, m.setCounters(ev.Counters))
		if m.counters != nil {
			m.Degraded = m.counters.Degraded()
		}
	}
	cmds = append(cmds, waitForTickCmd(m.tickChan()))
	return m, tea.Batch(cmds...)
}

func (m Model) tickChan() <-chan session.Event {
	if m.ticks == nil {
		return nil
	}
	return m.ticks.C()
}

func waitForTickCmd(ch <-chan session.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return TicksClosedMsg{}
		}
		return TimerEventMsg{Event: ev}
	}
}
