package inspect

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zboralski/dsdelink/internal/report"
)

func sampleReports() []report.ModuleReport {
	return []report.ModuleReport{
		{
			Name: "main",
			Relocations: []report.RelocationEntry{
				{Site: "0x02000010", Target: "0x02000100", Kind: "call", Destination: "ov3"},
			},
		},
		{Name: "ov3"},
	}
}

func TestNewModelLoadsFirstModuleRelocations(t *testing.T) {
	m := New(sampleReports())
	if len(m.relocations.Items()) != 1 {
		t.Fatalf("expected 1 relocation loaded for the first module, got %d", len(m.relocations.Items()))
	}
}

func TestTabSwitchesFocus(t *testing.T) {
	m := New(sampleReports())
	if m.focus != focusModules {
		t.Fatalf("expected initial focus on modules")
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	mm := updated.(Model)
	if mm.focus != focusRelocations {
		t.Fatalf("expected tab to switch focus to relocations")
	}
}

func TestQuitReturnsQuitCommand(t *testing.T) {
	m := New(sampleReports())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("expected a quit command")
	}
}
