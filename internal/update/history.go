package update

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/focusnest/internal/storage"
	"github.com/sandeepkv93/focusnest/internal/views"
)

func (m Model) enterHistory() (Model, tea.Cmd) {
	m.CurrentView = ViewHistory
	return m, loadHistoryCmd(m.ctx, m.journal, HistoryLimit)
}

func loadHistoryCmd(ctx context.Context, journal storage.Journal, limit int) tea.Cmd {
	if journal == nil {
		return nil
	}
	return func() tea.Msg {
		items, err := journal.ListCompletions(ctx, storage.CompletionListFilter{Limit: limit})
		return HistoryLoadedMsg{Items: items, Err: err}
	}
}

func (m Model) onHistoryLoaded(msg HistoryLoadedMsg) Model {
	m.History = HistoryState{Items: msg.Items, Loaded: true, Err: msg.Err}
	if msg.Err != nil {
		m.Status = StatusBar{Text: fmt.Sprintf("load history: %v", msg.Err), IsError: true}
	}
	return m
}

func historyRows(items []storage.Completion) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, item := range items {
		id := item.ID
		if len(id) > 8 {
			id = id[:8]
		}
		rows = append(rows, table.Row{
			item.CompletedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%dm", item.FocusMinutes),
			id,
		})
	}
	return rows
}

func (m Model) renderHistoryView() string {
	errText := ""
	if m.History.Err != nil {
		errText = m.History.Err.Error()
	}
	if m.journal == nil {
		errText = "history is not kept by this storage backend"
	}
	return views.RenderHistoryPanel(views.HistoryPanelData{
		TableView: m.historyTable.View(),
		Count:     len(m.History.Items),
		Err:       errText,
	})
}
