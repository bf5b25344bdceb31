package update

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
)

func (m *Model) initBubbleComponents() {
	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.Placeholder = "focus 50"
	m.commandInput.CharLimit = 64
	m.commandInput.Width = 48

	m.timerProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(54))

	m.runSpinner = spinner.New()
	m.runSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.forestViewport = viewport.New(54, 12)

	cols := []table.Column{
		{Title: "Completed", Width: 18},
		{Title: "Focus", Width: 7},
		{Title: "ID", Width: 10},
	}
	m.historyTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(12))
}

// syncBubbleData pushes model state into the widgets before rendering.
func (m *Model) syncBubbleData() {
	m.forestViewport.SetContent(m.forestGrid(m.ForestMax))

	rows := historyRows(m.History.Items)
	m.historyTable.SetRows(rows)
	if c := m.historyTable.Cursor(); len(rows) > 0 && c >= len(rows) {
		m.historyTable.SetCursor(len(rows) - 1)
	}

	m.commandInput.SetValue(m.Palette.Input)
	if m.Palette.Active {
		m.commandInput.Focus()
	} else {
		m.commandInput.Blur()
	}
}
