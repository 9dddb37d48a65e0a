// internal/tui/browser.go
//
// Terminal browser for sequencer run directories. Built on bubbletea,
// which follows The Elm Architecture: a model holds the state, Update
// reacts to messages, View renders the state to a string.

package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/miseqtools/miseqinterop/internal/interop"
	"github.com/miseqtools/miseqinterop/internal/run"
	"github.com/miseqtools/miseqinterop/internal/summary"
)

// browserState represents which screen we're on
type browserState int

const (
	stateRunList browserState = iota // list of discovered runs
	stateRunDetail                   // summary view for one run
)

// Browser is the application model holding all TUI state.
type Browser struct {
	state       browserState
	runsDir     string
	readLengths *summary.ReadLengths

	runList  list.Model
	runs     []*run.Run
	selected *run.Run
	detail   *runDetail
	errMsg   string

	width  int
	height int
}

// runItem implements list.Item for the run picker.
type runItem struct {
	name   string
	status string
}

func (i runItem) Title() string       { return i.name }
func (i runItem) Description() string { return i.status }
func (i runItem) FilterValue() string { return i.name }

// runDetail carries everything the detail screen shows.
type runDetail struct {
	run     *run.Run
	tiles   *summary.TileSummary
	quality *summary.QualitySummary
	errors  *summary.ErrorSummary
	missing []run.Metric
}

type runsLoadedMsg struct {
	runs []*run.Run
	err  error
}

type detailLoadedMsg struct {
	detail *runDetail
	err    error
}

// NewBrowser builds the browser over one runs directory.
func NewBrowser(runsDir string, readLengths *summary.ReadLengths) *Browser {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "⬡ MISEQ RUNS"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return &Browser{
		state:       stateRunList,
		runsDir:     runsDir,
		readLengths: readLengths,
		runList:     l,
	}
}

// Run starts the program and blocks until the user quits.
func (b *Browser) Run() error {
	p := tea.NewProgram(b, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func (b *Browser) Init() tea.Cmd {
	return b.loadRuns
}

func (b *Browser) loadRuns() tea.Msg {
	runs, err := run.Discover(b.runsDir, run.Filter{})
	return runsLoadedMsg{runs: runs, err: err}
}

func (b *Browser) loadDetail(r *run.Run) tea.Cmd {
	return func() tea.Msg {
		d := &runDetail{run: r}
		if records, err := readMetricRecords(r, run.MetricTile, interop.ReadTiles); err == nil {
			s := summary.SummarizeTiles(records)
			d.tiles = &s
		} else {
			d.missing = append(d.missing, run.MetricTile)
		}
		if records, err := readMetricRecords(r, run.MetricQuality, interop.ReadQuality); err == nil {
			s := summary.SummarizeQuality(records, b.readLengths)
			d.quality = &s
		} else {
			d.missing = append(d.missing, run.MetricQuality)
		}
		if records, err := readMetricRecords(r, run.MetricError, interop.ReadErrors); err == nil {
			s := summary.SummarizeErrors(records, b.readLengths)
			d.errors = &s
		} else {
			d.missing = append(d.missing, run.MetricError)
		}
		return detailLoadedMsg{detail: d}
	}
}

func readMetricRecords[T any](r *run.Run, metric run.Metric, read func(io.Reader) ([]T, error)) ([]T, error) {
	path, err := r.MetricPath(metric)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return read(f)
}

func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.runList.SetSize(msg.Width-4, msg.Height-6)
		return b, nil

	case runsLoadedMsg:
		if msg.err != nil {
			b.errMsg = msg.err.Error()
			return b, nil
		}
		b.errMsg = ""
		b.runs = msg.runs
		items := make([]list.Item, len(msg.runs))
		for i, r := range msg.runs {
			items[i] = runItem{name: r.Name, status: runStatus(r)}
		}
		return b, b.runList.SetItems(items)

	case detailLoadedMsg:
		if msg.err != nil {
			b.errMsg = msg.err.Error()
			return b, nil
		}
		b.errMsg = ""
		b.detail = msg.detail
		b.state = stateRunDetail
		return b, nil

	case tea.KeyMsg:
		return b.handleKey(msg)
	}

	var cmd tea.Cmd
	b.runList, cmd = b.runList.Update(msg)
	return b, cmd
}

func (b *Browser) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Don't steal keys while the list filter input is open.
	if b.state == stateRunList && b.runList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		b.runList, cmd = b.runList.Update(msg)
		return b, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return b, tea.Quit

	case "esc":
		if b.state == stateRunDetail {
			b.state = stateRunList
			return b, nil
		}

	case "r":
		if b.state == stateRunDetail && b.selected != nil {
			return b, b.loadDetail(b.selected)
		}
		return b, b.loadRuns

	case "enter":
		if b.state == stateRunList {
			item, ok := b.runList.SelectedItem().(runItem)
			if !ok {
				return b, nil
			}
			for _, r := range b.runs {
				if r.Name == item.name {
					b.selected = r
					return b, b.loadDetail(r)
				}
			}
		}
	}

	var cmd tea.Cmd
	b.runList, cmd = b.runList.Update(msg)
	return b, cmd
}

func (b *Browser) View() string {
	var content string
	switch b.state {
	case stateRunDetail:
		content = b.renderDetail()
	default:
		content = b.runList.View()
	}

	sections := []string{content}
	if b.errMsg != "" {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Render(fmt.Sprintf("⚠ %s", b.errMsg)))
	}
	sections = append(sections, lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(b.footerHelp()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (b *Browser) footerHelp() string {
	if b.state == stateRunDetail {
		return "r refresh · esc back · q quit"
	}
	return "enter open · r refresh · / filter · q quit"
}

func (b *Browser) renderDetail() string {
	d := b.detail
	if d == nil {
		return "Loading..."
	}

	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("RUN · %s", d.run.Name))

	var lines []string
	lines = append(lines, fmt.Sprintf("path: %s", d.run.Dir))
	lines = append(lines, fmt.Sprintf("status: %s", runStatus(d.run)))
	lines = append(lines, "")
	if t := d.tiles; t != nil {
		lines = append(lines,
			fmt.Sprintf("cluster density  %.1f K/mm2", t.ClusterDensity()),
			fmt.Sprintf("pass rate        %.2f%%", t.PassRate()*100))
	}
	if q := d.quality; q != nil {
		lines = append(lines,
			fmt.Sprintf("q30 forward      %.2f%%", q.Q30Forward()*100),
			fmt.Sprintf("q30 reverse      %.2f%%", q.Q30Reverse()*100))
	}
	if e := d.errors; e != nil {
		lines = append(lines,
			fmt.Sprintf("error fwd        %.4f", e.RateForward()),
			fmt.Sprintf("error rev        %.4f", e.RateReverse()))
	}
	for _, m := range d.missing {
		lines = append(lines, fmt.Sprintf("%s: not found", m))
	}

	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func runStatus(r *run.Run) string {
	var parts []string
	if r.NeedsProcessing {
		parts = append(parts, "needs-processing")
	}
	if r.QCUploaded {
		parts = append(parts, "qc-uploaded")
	}
	if len(parts) == 0 {
		return "no markers"
	}
	return strings.Join(parts, ", ")
}
