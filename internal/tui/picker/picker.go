// Package picker provides the interactive session picker: a list of
// sessions with a live preview of the highlighted session's output.
// It is a pure consumer of the registry and the runtime's read-only
// peek view; it can never write into a session buffer.
package picker

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/coordinatio/agentterm/internal/ids"
	"github.com/coordinatio/agentterm/internal/registry"
)

// Peeker is the runtime's read-only output view.
type Peeker interface {
	Peek(id ids.SessionID, lines int) ([]string, bool)
}

// Sessions is the registry surface the picker consumes.
type Sessions interface {
	List() []registry.Record
	ActiveID() ids.SessionID
	Delete(id ids.SessionID) bool
}

// Result is what the picker run produced.
type Result struct {
	// Selected is the session chosen with enter, or ids.None if the
	// picker was dismissed.
	Selected ids.SessionID
}

// item adapts a registry record to the bubbles list.
type item struct {
	rec    registry.Record
	active bool
}

func (i item) Title() string {
	if i.active {
		return i.rec.Name + " ●"
	}
	return i.rec.Name
}

func (i item) Description() string {
	return fmt.Sprintf("%s · created %s", i.rec.ID, i.rec.CreatedAt.Format("15:04:05"))
}

func (i item) FilterValue() string { return i.rec.Name }

// previewTickMsg drives the live preview refresh.
type previewTickMsg struct{}

func previewTick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(time.Time) tea.Msg {
		return previewTickMsg{}
	})
}

// Model is the bubbletea model for the picker.
type Model struct {
	sessions Sessions
	peeker   Peeker
	list     list.Model
	preview  []string
	width    int
	height   int
	result   Result
	done     bool
}

// New creates a picker over the given session and peek views.
func New(sessions Sessions, peeker Peeker) *Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Sessions"
	l.SetShowHelp(true)
	l.SetFilteringEnabled(true)

	m := &Model{
		sessions: sessions,
		peeker:   peeker,
		list:     l,
	}
	m.reload()
	return m
}

// Result returns the outcome after the program finishes.
func (m *Model) Result() Result { return m.result }

// reload refreshes the list items from the registry.
func (m *Model) reload() {
	recs := m.sessions.List()
	active := m.sessions.ActiveID()
	items := make([]list.Item, len(recs))
	for i, rec := range recs {
		items[i] = item{rec: rec, active: rec.ID == active}
	}
	m.list.SetItems(items)
	m.refreshPreview()
}

// refreshPreview pulls the tail of the highlighted session's output.
func (m *Model) refreshPreview() {
	m.preview = nil
	it, ok := m.list.SelectedItem().(item)
	if !ok {
		return
	}
	lines := m.previewHeight()
	if lines <= 0 {
		lines = 20
	}
	if tail, ok := m.peeker.Peek(it.rec.ID, lines); ok {
		m.preview = tail
	}
}

func (m *Model) previewHeight() int {
	return m.height - 4
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return previewTick()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width/2, msg.Height-2)
		m.refreshPreview()
		return m, nil

	case previewTickMsg:
		m.refreshPreview()
		return m, previewTick()

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if it, ok := m.list.SelectedItem().(item); ok {
				m.result.Selected = it.rec.ID
				m.done = true
				return m, tea.Quit
			}
		case "d":
			if it, ok := m.list.SelectedItem().(item); ok {
				m.sessions.Delete(it.rec.ID)
				m.reload()
			}
			return m, nil
		case "q", "esc", "ctrl+c":
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.refreshPreview()
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.done {
		return ""
	}
	left := m.list.View()
	right := m.renderPreview()
	return joinColumns(left, right)
}

func (m *Model) renderPreview() string {
	width := m.width - m.width/2 - 2
	if width < 10 {
		width = 10
	}
	var b strings.Builder
	b.WriteString(previewTitleStyle.Render("Preview"))
	b.WriteString("\n")
	if len(m.preview) == 0 {
		b.WriteString(previewEmptyStyle.Render("no output"))
		return previewPaneStyle.Width(width).Render(b.String())
	}
	for _, line := range m.preview {
		if len(line) > width {
			line = line[:width]
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return previewPaneStyle.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

// Run shows the picker and blocks until a choice or dismissal.
func Run(sessions Sessions, peeker Peeker) (Result, error) {
	m := New(sessions, peeker)
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return Result{}, fmt.Errorf("running picker: %w", err)
	}
	if fm, ok := final.(*Model); ok {
		return fm.Result(), nil
	}
	return m.Result(), nil
}
