package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"castor/internal/conv"
)

// maxVisibleRows caps the row list; the rest is summarized.
const maxVisibleRows = 24

type progressModel struct {
	title    string
	events   <-chan conv.BatchEvent
	spinner  spinner.Model
	prog     progress.Model
	rows     []rowItem
	perRow   int
	total    int
	finished int
	width    int
	done     bool
	aborted  bool
}

type rowItem struct {
	label     string
	started   int
	finished  int
	found     int
	ambiguous int
}

type eventMsg conv.BatchEvent
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders the progress of
// a conversion batch. Queries are grouped into rows of perRow consecutive
// indices, one per label.
func NewProgressModel(title string, labels []string, perRow int, events <-chan conv.BatchEvent) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	rows := make([]rowItem, len(labels))
	for i, l := range labels {
		rows[i].label = l
	}
	perRow = max(perRow, 1)
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		rows:    rows,
		perRow:  perRow,
		total:   len(labels) * perRow,
		width:   80,
	}
}

// Aborted reports whether the user quit before the batch finished.
func Aborted(m tea.Model) bool {
	pm, ok := m.(*progressModel)
	return ok && pm.aborted
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(conv.BatchEvent(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.aborted = true
			return m, tea.Quit
		}
		return m, nil
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
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s (%d/%d)", m.title, m.finished, m.total)
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := max(m.width-statusWidth-16, 20)
	for i, row := range m.rows {
		if i == maxVisibleRows {
			fmt.Fprintf(&b, "  ... %d more rows\n", len(m.rows)-maxVisibleRows)
			break
		}
		status := m.rowStatus(row)
		fmt.Fprintf(&b, "  %s %s %s\n",
			styleStatus(status).Render(fmt.Sprintf("%12s", status)),
			runewidth.FillRight(truncate(row.label, nameWidth), nameWidth),
			fmt.Sprintf("%d/%d convert", row.found, m.perRow))
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

func (m *progressModel) rowStatus(row rowItem) string {
	switch {
	case row.ambiguous > 0 && row.finished == m.perRow:
		return "ambiguous"
	case row.finished == m.perRow:
		return "done"
	case row.started > 0:
		return "classifying"
	default:
		return "queued"
	}
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

func (m *progressModel) applyEvent(ev conv.BatchEvent) tea.Cmd {
	r := ev.Index / m.perRow
	if ev.Index < 0 || r >= len(m.rows) {
		return nil
	}
	row := &m.rows[r]
	switch ev.Status {
	case conv.BatchStarted:
		row.started++
		return nil
	case conv.BatchDone:
		row.finished++
		m.finished++
		switch {
		case ev.Kind == conv.Ambiguous:
			row.ambiguous++
		case ev.Kind != conv.None && ev.Err == nil:
			row.found++
		}
	}
	if m.total == 0 {
		return nil
	}
	return m.prog.SetPercent(float64(m.finished) / float64(m.total))
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "ambiguous":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	case "classifying":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
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
	return runewidth.Truncate(value, width, "...")
}
