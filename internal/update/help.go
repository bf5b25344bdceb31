package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/focusnest/internal/commands"
	"github.com/sandeepkv93/focusnest/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	var md strings.Builder
	md.WriteString("| key | action |\n|---|---|\n")
	for _, kb := range append(m.globalBindings(), m.viewBindings()...) {
		md.WriteString(fmt.Sprintf("| `%s` | %s |\n", kb.Key, kb.Action))
	}
	md.WriteString("\nPalette commands: ")
	names := commands.Names()
	for i, n := range names {
		names[i] = "`" + n + "`"
	}
	md.WriteString(strings.Join(names, ", "))

	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Markdown:    md.String(),
		HelpView: m.helpModel.View(helpKeyMap{
			short: m.helpBindings(),
			full:  [][]key.Binding{m.helpBindings()},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Timer, Action: "switch to Timer"},
		{Key: m.Keys.Forest, Action: "switch to Forest"},
		{Key: m.Keys.History, Action: "switch to History"},
		{Key: "space", Action: "start/pause timer"},
		{Key: "r", Action: "reset timer"},
		{Key: "s", Action: "switch phase"},
		{Key: "+/-", Action: "focus length"},
		{Key: "]/[", Action: "break length"},
		{Key: "/", Action: "open command palette"},
		{Key: "X", Action: "reset progress"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewForest:
		return []KeyBinding{{Key: "up/down", Action: "scroll forest"}}
	case ViewHistory:
		return []KeyBinding{{Key: "j/k", Action: "move selection"}}
	default:
		return nil
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.viewBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.viewBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
