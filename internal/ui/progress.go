// Package ui renders live progress of a check run in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"typematch/internal/scenario"
)

type progressModel struct {
	title   string
	events  <-chan scenario.Event
	spinner spinner.Model
	prog    progress.Model
	suites  []*suiteItem
	index   map[string]int
	width   int
	done    bool
}

// suiteItem aggregates the cases of one scenario file.
type suiteItem struct {
	path     string
	total    int
	running  int
	finished int
	failed   int
}

func (s *suiteItem) status() string {
	switch {
	case s.finished == s.total && s.failed > 0:
		return "failed"
	case s.finished == s.total:
		return "done"
	case s.running > 0 || s.finished > 0:
		return fmt.Sprintf("%d/%d", s.finished, s.total)
	default:
		return "queued"
	}
}

type eventMsg scenario.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that tracks case events per
// scenario file. Suites are listed in the order of files; events for other
// paths add a row.
func NewProgressModel(title string, files []string, events <-chan scenario.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		index:   make(map[string]int, len(files)),
		width:   80,
	}
	for _, file := range files {
		m.suite(file)
	}
	return m
}

func (m *progressModel) suite(path string) *suiteItem {
	if i, ok := m.index[path]; ok {
		return m.suites[i]
	}
	m.index[path] = len(m.suites)
	item := &suiteItem{path: path}
	m.suites = append(m.suites, item)
	return item
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(scenario.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.suites) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s (%d/%d cases)", m.title, m.finished(), m.total())
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	const statusWidth = 8
	nameWidth := max(m.width-statusWidth-4, 20)
	for _, item := range m.suites {
		status := item.status()
		fmt.Fprintf(&b, "  %s %s\n", styleStatus(status).Render(fmt.Sprintf("%*s", statusWidth, status)),
			truncate(item.path, nameWidth))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev scenario.Event) tea.Cmd {
	item := m.suite(ev.Suite)
	switch ev.Status {
	case scenario.StatusQueued:
		item.total++
		return nil
	case scenario.StatusRunning:
		item.running++
		return nil
	case scenario.StatusPassed, scenario.StatusFailed:
		item.running = max(item.running-1, 0)
		item.finished++
		if ev.Status == scenario.StatusFailed {
			item.failed++
		}
	}
	total := m.total()
	if total == 0 {
		return nil
	}
	return m.prog.SetPercent(float64(m.finished()) / float64(total))
}

func (m *progressModel) total() int {
	n := 0
	for _, s := range m.suites {
		n += s.total
	}
	return n
}

func (m *progressModel) finished() int {
	n := 0
	for _, s := range m.suites {
		n += s.finished
	}
	return n
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "failed":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "queued":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	// the tail counts towards width
	return runewidth.Truncate(value, width, "...")
}
