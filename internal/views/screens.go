package views

import (
	"fmt"
	"strings"
)

// TreesPerRow is the width of the forest grid.
const TreesPerRow = 12

type TimerPanelData struct {
	Phase        string
	IsBreak      bool
	Timer        string
	Running      bool
	SpinnerView  string
	ProgressView string
	FocusMinutes int
	BreakMinutes int
	Session      int
	Today        int
	Total        int
}

type ForestPanelData struct {
	Title    string
	Today    int
	Total    int
	Cells    []string
	Hidden   int
	GridView string
	Degraded bool
}

type HistoryPanelData struct {
	TableView string
	Count     int
	Err       string
}

type HelpPanelData struct {
	CurrentView string
	Markdown    string
	HelpView    string
}

func RenderTimerPanel(data TimerPanelData) string {
	var b strings.Builder
	label := focusStyle.Render(strings.ToUpper(data.Phase))
	if data.IsBreak {
		label = breakStyle.Render(strings.ToUpper(data.Phase))
	}
	state := "paused"
	if data.Running {
		state = strings.TrimSpace(data.SpinnerView + " running")
	}
	b.WriteString(fmt.Sprintf("timer: %s %s\n", label, mutedStyle.Render(state)))
	b.WriteString(timerStyle.Render(data.Timer) + "\n")
	b.WriteString(data.ProgressView + "\n")
	b.WriteString(fmt.Sprintf("focus: %dm | break: %dm\n", data.FocusMinutes, data.BreakMinutes))
	b.WriteString(fmt.Sprintf("this session: %d | today: %d | total: %d\n", data.Session, data.Today, data.Total))
	b.WriteString("actions: [space]start/pause [r]reset [s]switch [+/-]focus len [[/]]break len")
	return strings.TrimSpace(b.String())
}

// RenderForestGrid lays cells out in rows and appends the hidden count.
func RenderForestGrid(cells []string, hidden int) string {
	if len(cells) == 0 {
		return mutedStyle.Render("no trees yet: finish a focus session to plant one")
	}
	var b strings.Builder
	for i, c := range cells {
		if i > 0 {
			if i%TreesPerRow == 0 {
				b.WriteString("\n")
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString(c)
	}
	if hidden > 0 {
		b.WriteString(fmt.Sprintf("\n+%d more", hidden))
	}
	return b.String()
}

func RenderForestPanel(data ForestPanelData) string {
	var b strings.Builder
	title := data.Title
	if title == "" {
		title = "forest"
	}
	b.WriteString(title + ":\n")
	b.WriteString(fmt.Sprintf("today: %d | total: %d\n", data.Today, data.Total))
	if data.Degraded {
		b.WriteString(errorStyle.Render("storage unavailable: progress kept in memory only") + "\n")
	}
	grid := data.GridView
	if grid == "" {
		grid = RenderForestGrid(data.Cells, data.Hidden)
	}
	b.WriteString("\n" + grid)
	return strings.TrimSpace(b.String())
}

func RenderHistoryPanel(data HistoryPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("history: %d completed session(s)\n", data.Count))
	if data.Err != "" {
		b.WriteString("error: " + data.Err + "\n")
	}
	if data.Count == 0 && data.Err == "" {
		b.WriteString("(no completed sessions)\n")
		return strings.TrimSpace(b.String())
	}
	b.WriteString("actions: [j/k]move\n")
	b.WriteString(data.TableView)
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: %s", inputView)
}

func RenderConfirm(prompt string) string {
	if prompt == "" {
		return ""
	}
	return errorStyle.Render("confirm: " + prompt)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help (%s):\n%s\n\n%s",
		strings.ToLower(data.CurrentView),
		RenderMarkdown(data.Markdown),
		data.HelpView,
	)
}
