// Package inspect implements the `dsdelink inspect` TUI: a
// bubbletea program that browses a finished run's modules, then each
// module's relocations, with a detail pane for the selected relocation,
// built on the same
// charmbracelet/bubbles list component and lipgloss styling the
// teacher repo carries in its dependency stack.
package inspect

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zboralski/dsdelink/internal/report"
	"github.com/zboralski/dsdelink/internal/ui/colorize"
	"github.com/zboralski/dsdelink/internal/ui/tags"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFC800"))
	paneStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// moduleItem adapts one report.ModuleReport to list.Item.
type moduleItem struct {
	rep report.ModuleReport
}

func (m moduleItem) Title() string { return m.rep.Name }
func (m moduleItem) Description() string {
	return fmt.Sprintf("%d relocations, %d symbols", len(m.rep.Relocations), len(m.rep.Symbols))
}
func (m moduleItem) FilterValue() string { return m.rep.Name }

// relocItem adapts one report.RelocationEntry to list.Item.
type relocItem struct {
	entry report.RelocationEntry
}

func (r relocItem) Title() string {
	return fmt.Sprintf("%s %s -> %s", r.entry.Site, r.entry.Kind, r.entry.Destination)
}
func (r relocItem) Description() string { return r.entry.Target }
func (r relocItem) FilterValue() string { return r.entry.Destination }

// focus tracks which pane has input focus.
type focus int

const (
	focusModules focus = iota
	focusRelocations
)

// Model is the bubbletea model for the inspector.
type Model struct {
	modules     list.Model
	relocations list.Model
	detail      viewport.Model
	focus       focus
	reports     []report.ModuleReport
	width       int
	height      int
}

// New builds an inspector Model over a finished run's per-module
// reports.
func New(reports []report.ModuleReport) Model {
	items := make([]list.Item, len(reports))
	for i, rep := range reports {
		items[i] = moduleItem{rep: rep}
	}

	modules := list.New(items, list.NewDefaultDelegate(), 0, 0)
	modules.Title = "modules"

	relocations := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	relocations.Title = "relocations"

	m := Model{
		modules:     modules,
		relocations: relocations,
		detail:      viewport.New(0, 0),
		reports:     reports,
	}
	if len(reports) > 0 {
		m.loadRelocations(reports[0])
	}
	return m
}

func (m *Model) loadRelocations(rep report.ModuleReport) {
	items := make([]list.Item, len(rep.Relocations))
	for i, r := range rep.Relocations {
		items[i] = relocItem{entry: r}
	}
	m.relocations.SetItems(items)
}

// Init satisfies tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update satisfies tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		paneWidth := m.width / 3
		m.modules.SetSize(paneWidth, m.height-2)
		m.relocations.SetSize(paneWidth, m.height-2)
		m.detail.Width = m.width - 2*paneWidth - 4
		m.detail.Height = m.height - 2
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			if m.focus == focusModules {
				m.focus = focusRelocations
			} else {
				m.focus = focusModules
			}
			return m, nil
		case "enter":
			if m.focus == focusModules {
				if i, ok := m.modules.SelectedItem().(moduleItem); ok {
					m.loadRelocations(i.rep)
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.focus == focusModules {
		m.modules, cmd = m.modules.Update(msg)
	} else {
		m.relocations, cmd = m.relocations.Update(msg)
	}
	m.refreshDetail()
	return m, cmd
}

func (m *Model) refreshDetail() {
	item, ok := m.relocations.SelectedItem().(relocItem)
	if !ok {
		m.detail.SetContent("")
		return
	}
	kind := tags.Tag(item.entry.Kind)
	dest := tags.Tag(item.entry.Destination)
	doc := fmt.Sprintf("site: %s\ntarget: %s\nkind: %s\ndestination: %s\n",
		item.entry.Site, item.entry.Target, kind, dest)
	m.detail.SetContent(colorize.YAML(doc))
}

// View satisfies tea.Model.
func (m Model) View() string {
	left := paneStyle.Render(m.modules.View())
	mid := paneStyle.Render(m.relocations.View())
	right := paneStyle.Render(m.detail.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, mid, right)
}
