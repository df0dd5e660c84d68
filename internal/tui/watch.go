// Package tui implements the live results watcher, a Bubble Tea model that
// polls a results directory and renders the aggregate summary as it grows.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AbdelazizMoustafa10m/Heron/internal/backend"
	"github.com/AbdelazizMoustafa10m/Heron/internal/lifecycle"
)

// DefaultPollInterval is how often the results directory is re-read.
const DefaultPollInterval = time.Second

// WatchConfig holds configuration for the watch TUI.
type WatchConfig struct {
	// Dir is the results directory to watch.
	Dir string
	// Interval overrides DefaultPollInterval when positive.
	Interval time.Duration
}

// tickMsg triggers the next poll.
type tickMsg time.Time

// resultsMsg carries a freshly loaded summary (or the load error).
type resultsMsg struct {
	summary *backend.Summary
	err     error
}

// Watch is the Bubble Tea model for "heron watch". It implements tea.Model
// (Init, Update, View): a header with aggregate counts, a scrollable result
// list in a viewport, and a one-line help footer.
type Watch struct {
	config   WatchConfig
	viewport viewport.Model

	summary  *backend.Summary
	loadErr  error
	width    int
	height   int
	ready    bool // true after first WindowSizeMsg
	quitting bool
}

// NewWatch constructs a Watch model for the given configuration.
func NewWatch(cfg WatchConfig) Watch {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	return Watch{config: cfg}
}

// Init kicks off the first load and the poll loop.
func (w Watch) Init() tea.Cmd {
	return tea.Batch(w.load(), w.tick())
}

// load reads the results directory off the update loop.
func (w Watch) load() tea.Cmd {
	dir := w.config.Dir
	return func() tea.Msg {
		summary, err := backend.LoadSummary(context.Background(), dir)
		return resultsMsg{summary: summary, err: err}
	}
}

// tick schedules the next poll.
func (w Watch) tick() tea.Cmd {
	return tea.Tick(w.config.Interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update dispatches incoming messages and returns the updated model plus any
// follow-up command.
func (w Watch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = m.Width
		w.height = m.Height
		headerHeight := lipgloss.Height(w.headerView())
		if !w.ready {
			w.viewport = viewport.New(m.Width, m.Height-headerHeight-1)
			w.ready = true
		} else {
			w.viewport.Width = m.Width
			w.viewport.Height = m.Height - headerHeight - 1
		}
		w.viewport.SetContent(w.listView())
		return w, nil

	case tea.KeyMsg:
		switch m.String() {
		case "q", "esc", "ctrl+c":
			w.quitting = true
			return w, tea.Quit
		}

	case tickMsg:
		return w, tea.Batch(w.load(), w.tick())

	case resultsMsg:
		w.summary = m.summary
		w.loadErr = m.err
		if w.ready {
			atBottom := w.viewport.AtBottom()
			w.viewport.SetContent(w.listView())
			if atBottom {
				w.viewport.GotoBottom()
			}
		}
		return w, nil
	}

	// Scrolling and paging are handled by the viewport.
	var cmd tea.Cmd
	w.viewport, cmd = w.viewport.Update(msg)
	return w, cmd
}

// View renders the complete UI as a string.
func (w Watch) View() string {
	if w.quitting {
		return ""
	}
	if !w.ready {
		return "Initializing..."
	}
	return w.headerView() + "\n" + w.viewport.View() + "\n" + w.footerView()
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	passedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	brokenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // dark gray
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// headerView renders the title line and aggregate counts.
func (w Watch) headerView() string {
	title := titleStyle.Render(fmt.Sprintf("Watching %s", w.config.Dir))

	if w.loadErr != nil {
		return title + "\n" + errStyle.Render(w.loadErr.Error())
	}
	if w.summary == nil {
		return title + "\nLoading..."
	}

	s := w.summary
	counts := fmt.Sprintf("%d results: %s %s %s %s",
		s.Total,
		passedStyle.Render(fmt.Sprintf("%d passed", s.Count(lifecycle.StatusPassed))),
		failedStyle.Render(fmt.Sprintf("%d failed", s.Count(lifecycle.StatusFailed))),
		brokenStyle.Render(fmt.Sprintf("%d broken", s.Count(lifecycle.StatusBroken))),
		skippedStyle.Render(fmt.Sprintf("%d skipped", s.Count(lifecycle.StatusSkipped))),
	)
	return title + "\n" + counts
}

// listView renders one line per result for the viewport.
func (w Watch) listView() string {
	if w.summary == nil || w.summary.Total == 0 {
		return "No results yet."
	}

	var sb strings.Builder
	for _, e := range w.summary.Entries {
		name := e.Name
		if e.FullName != "" {
			name = e.FullName
		}
		sb.WriteString(fmt.Sprintf("%s  %s\n", statusCell(e.Status), name))
	}
	return sb.String()
}

// statusCell renders a fixed-width colored status column.
func statusCell(status lifecycle.Status) string {
	label := fmt.Sprintf("%-7s", status)
	switch status {
	case lifecycle.StatusPassed:
		return passedStyle.Render(label)
	case lifecycle.StatusFailed:
		return failedStyle.Render(label)
	case lifecycle.StatusBroken:
		return brokenStyle.Render(label)
	case lifecycle.StatusSkipped:
		return skippedStyle.Render(label)
	default:
		return label
	}
}

// footerView renders the help line.
func (w Watch) footerView() string {
	return helpStyle.Render("↑/↓ scroll  q quit")
}
