package update

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/focusnest/internal/forest"
	"github.com/sandeepkv93/focusnest/internal/model"
	"github.com/sandeepkv93/focusnest/internal/views"
)

// ForestPollInterval is how often a view showing the forest re-reads the
// counters.
const ForestPollInterval = time.Second

// setCounters stores c and starts the growth animation when the forest
// gained a tree.
func (m *Model) setCounters(c model.Counters) tea.Cmd {
	grew := c.Total > m.Counters.Total
	m.Counters = c
	if !grew {
		return nil
	}
	m.Growth = forest.NewGrowth(c.Total, m.now())
	m.growthSeq++
	return growthFrameCmd(m.growthSeq, m.Growth.NextFrameIn(m.now()))
}

func (m Model) enterForest() (Model, tea.Cmd) {
	m.CurrentView = ViewForest
	return m.startForestPoll()
}

// startForestPoll reads the counters now and begins a new poll loop,
// superseding any loop already running.
func (m Model) startForestPoll() (Model, tea.Cmd) {
	if m.counters == nil {
		return m, nil
	}
	m.pollSeq++
	cmd := m.pollForest()
	return m, tea.Batch(cmd, forestPollCmd(m.pollSeq))
}

// showsForest reports whether the current view renders the forest, either
// the full grid or the compact widget beside the timer.
func (m Model) showsForest() bool {
	return m.CurrentView == ViewForest || m.CurrentView == ViewTimer
}

// pollForest reads the store so completions made by other processes show up.
func (m *Model) pollForest() tea.Cmd {
	if m.counters == nil {
		return nil
	}
	cmd := m.setCounters(m.counters.Read(m.ctx))
	m.Degraded = m.counters.Degraded()
	return cmd
}

func (m Model) onForestPoll(msg ForestPollMsg) (Model, tea.Cmd) {
	if msg.Seq != m.pollSeq || !m.showsForest() {
		return m, nil
	}
	cmd := m.pollForest()
	return m, tea.Batch(cmd, forestPollCmd(m.pollSeq))
}

func (m Model) onGrowthFrame(msg GrowthFrameMsg) (Model, tea.Cmd) {
	if msg.Seq != m.growthSeq || m.Growth == nil {
		return m, nil
	}
	next := m.Growth.NextFrameIn(m.now())
	if next <= 0 {
		m.Growth = nil
		return m, nil
	}
	return m, growthFrameCmd(m.growthSeq, next)
}

func forestPollCmd(seq int) tea.Cmd {
	return tea.Tick(ForestPollInterval, func(time.Time) tea.Msg { return ForestPollMsg{Seq: seq} })
}

func growthFrameCmd(seq int, after time.Duration) tea.Cmd {
	if after <= 0 {
		return func() tea.Msg { return GrowthFrameMsg{Seq: seq} }
	}
	return tea.Tick(after, func(time.Time) tea.Msg { return GrowthFrameMsg{Seq: seq} })
}

func (m Model) forestGrid(maxVisible int) string {
	plot := forest.Layout(m.Counters.Total, maxVisible)
	return views.RenderForestGrid(forest.Cells(plot, m.Growth, m.now()), plot.Hidden)
}

func (m Model) renderForestView() string {
	return views.RenderForestPanel(views.ForestPanelData{
		Title:    "forest",
		Today:    m.Counters.Today,
		Total:    m.Counters.Total,
		GridView: m.forestViewport.View(),
		Degraded: m.Degraded,
	})
}

// renderForestWidget is the compact forest shown beside the timer.
func (m Model) renderForestWidget() string {
	return views.RenderForestPanel(views.ForestPanelData{
		Title:    "your forest",
		Today:    m.Counters.Today,
		Total:    m.Counters.Total,
		GridView: m.forestGrid(forest.DashboardMax),
		Degraded: m.Degraded,
	})
}
