package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/miseqtools/miseqinterop/internal/run"
)

func makeRunDir(t *testing.T, parent, name string, markers ...string) string {
	t.Helper()
	dir := filepath.Join(parent, name)
	if err := os.MkdirAll(filepath.Join(dir, run.InterOpDirName), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, run.SampleSheetName), []byte("[Header]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	for _, marker := range markers {
		if err := os.WriteFile(filepath.Join(dir, marker), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func loadedBrowser(t *testing.T, runsDir string) *Browser {
	t.Helper()
	b := NewBrowser(runsDir, nil)
	b.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	msg := b.loadRuns()
	loaded, ok := msg.(runsLoadedMsg)
	if !ok {
		t.Fatalf("loadRuns returned %T", msg)
	}
	if loaded.err != nil {
		t.Fatalf("loadRuns: %v", loaded.err)
	}
	b.Update(loaded)
	return b
}

func TestBrowserListsRuns(t *testing.T) {
	runsDir := t.TempDir()
	makeRunDir(t, runsDir, "160101_M01234_0001_A", run.NeedsProcessingMarker)
	makeRunDir(t, runsDir, "160102_M01234_0002_B")

	b := loadedBrowser(t, runsDir)
	if len(b.runs) != 2 {
		t.Fatalf("got %d runs", len(b.runs))
	}
	view := b.View()
	if !strings.Contains(view, "160101_M01234_0001_A") {
		t.Errorf("view missing run name:\n%s", view)
	}
	if !strings.Contains(view, "needs-processing") {
		t.Errorf("view missing marker status:\n%s", view)
	}
}

func TestBrowserEnterOpensDetail(t *testing.T) {
	runsDir := t.TempDir()
	makeRunDir(t, runsDir, "160101_M01234_0001_A")

	b := loadedBrowser(t, runsDir)
	_, cmd := b.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should load the detail view")
	}
	msg := cmd()
	detail, ok := msg.(detailLoadedMsg)
	if !ok {
		t.Fatalf("detail load returned %T", msg)
	}
	b.Update(detail)

	if b.state != stateRunDetail {
		t.Fatalf("state = %d", b.state)
	}
	view := b.View()
	if !strings.Contains(view, "RUN · 160101_M01234_0001_A") {
		t.Errorf("detail view missing header:\n%s", view)
	}
	// No metric files on disk: every summary source reports missing.
	if !strings.Contains(view, "TILE_METRICS: not found") {
		t.Errorf("detail view missing metric status:\n%s", view)
	}
}

func TestBrowserEscReturnsToList(t *testing.T) {
	runsDir := t.TempDir()
	makeRunDir(t, runsDir, "160101_M01234_0001_A")

	b := loadedBrowser(t, runsDir)
	b.state = stateRunDetail
	b.detail = &runDetail{run: b.runs[0]}

	b.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if b.state != stateRunList {
		t.Errorf("state = %d after esc", b.state)
	}
}

func TestBrowserQuitOnQ(t *testing.T) {
	runsDir := t.TempDir()
	makeRunDir(t, runsDir, "160101_M01234_0001_A")

	b := loadedBrowser(t, runsDir)
	_, cmd := b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should quit from the list view")
	}
	if msg := cmd(); msg != (tea.QuitMsg{}) {
		t.Errorf("cmd() = %#v, want tea.QuitMsg", msg)
	}
}

func TestBrowserQuitOnQFromDetail(t *testing.T) {
	runsDir := t.TempDir()
	makeRunDir(t, runsDir, "160101_M01234_0001_A")

	b := loadedBrowser(t, runsDir)
	b.state = stateRunDetail
	b.detail = &runDetail{run: b.runs[0]}

	_, cmd := b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should quit from the detail view")
	}
	if msg := cmd(); msg != (tea.QuitMsg{}) {
		t.Errorf("cmd() = %#v, want tea.QuitMsg", msg)
	}
	if !strings.Contains(b.footerHelp(), "q quit") {
		t.Errorf("footer = %q", b.footerHelp())
	}
}
