package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/Heron/internal/backend"
	"github.com/AbdelazizMoustafa10m/Heron/internal/lifecycle"
)

func sized(t *testing.T, w Watch) Watch {
	t.Helper()
	m, _ := w.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m.(Watch)
}

func TestNewWatch_DefaultsInterval(t *testing.T) {
	t.Parallel()

	w := NewWatch(WatchConfig{Dir: "out"})
	assert.Equal(t, DefaultPollInterval, w.config.Interval)

	w = NewWatch(WatchConfig{Dir: "out", Interval: 5 * time.Second})
	assert.Equal(t, 5*time.Second, w.config.Interval)
}

func TestWatch_NotReadyBeforeWindowSize(t *testing.T) {
	t.Parallel()

	w := NewWatch(WatchConfig{Dir: "out"})
	assert.Contains(t, w.View(), "Initializing")
}

func TestWatch_QuitKeys(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"q", "esc", "ctrl+c"} {
		w := sized(t, NewWatch(WatchConfig{Dir: "out"}))

		var msg tea.KeyMsg
		switch key {
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}

		m, cmd := w.Update(msg)
		require.NotNil(t, cmd, "key %q quits", key)
		assert.Empty(t, m.(Watch).View(), "quitting view is empty")
	}
}

func TestWatch_RendersSummary(t *testing.T) {
	t.Parallel()

	w := sized(t, NewWatch(WatchConfig{Dir: "out"}))
	m, _ := w.Update(resultsMsg{summary: &backend.Summary{
		Total: 2,
		ByStatus: map[lifecycle.Status]int{
			lifecycle.StatusPassed: 1,
			lifecycle.StatusFailed: 1,
		},
		Entries: []backend.SummaryEntry{
			{Name: "adds items", Status: lifecycle.StatusPassed},
			{FullName: "cart.remove", Status: lifecycle.StatusFailed},
		},
	}})
	w = m.(Watch)

	view := w.View()
	assert.Contains(t, view, "2 results")
	assert.Contains(t, view, "adds items")
	assert.Contains(t, view, "cart.remove", "full name preferred when present")
}

func TestWatch_RendersLoadError(t *testing.T) {
	t.Parallel()

	w := sized(t, NewWatch(WatchConfig{Dir: "out"}))
	m, _ := w.Update(resultsMsg{err: assert.AnError})
	view := m.(Watch).View()
	assert.Contains(t, view, assert.AnError.Error())
}

func TestWatch_TickSchedulesReload(t *testing.T) {
	t.Parallel()

	w := sized(t, NewWatch(WatchConfig{Dir: "out"}))
	_, cmd := w.Update(tickMsg(time.Now()))
	require.NotNil(t, cmd)
}

func TestWatch_EmptyDirectoryView(t *testing.T) {
	t.Parallel()

	w := sized(t, NewWatch(WatchConfig{Dir: "out"}))
	m, _ := w.Update(resultsMsg{summary: &backend.Summary{}})
	view := m.(Watch).View()
	assert.True(t, strings.Contains(view, "No results yet."), view)
}
