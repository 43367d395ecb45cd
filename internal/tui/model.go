package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vito/progrock"
)

type status int

const (
	statusRunning status = iota
	statusCompleted
	statusCached
	statusFailed
)

// VertexState is the displayed state of one recorded vertex: a style unit or a chunk.
type VertexState struct {
	ID     string
	Name   string
	Status status
	Logs   []string
}

type styles struct {
	running   lipgloss.Style
	completed lipgloss.Style
	cached    lipgloss.Style
	failed    lipgloss.Style
	log       lipgloss.Style
}

// Model is the Bubble Tea model showing one line per vertex.
// The logs of failed vertices are shown below them.
type Model struct {
	tape     TapeSource
	vertices []*VertexState
	index    map[string]*VertexState
	width    int
	height   int
	done     bool
	spinner  spinner.Model
	styles   styles
}

// NewModel creates a new TUI model with the given tape source.
func NewModel(tape TapeSource) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	return &Model{
		tape:    tape,
		index:   make(map[string]*VertexState),
		spinner: s,
		styles: styles{
			running:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			completed: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),  // Green
			cached:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")), // Gray
			failed:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")), // Red
			log:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		},
	}
}

// Init initializes the model and starts reading from the tape.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		WaitForTape(m.tape),
		m.spinner.Tick,
	)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case MsgTapeUpdate:
		m.apply(msg.Update)
		return m, WaitForTape(m.tape)
	case MsgTapeEnded:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// apply folds a tape update into the vertex list.
func (m *Model) apply(update *progrock.StatusUpdate) {
	if update == nil {
		return
	}
	for _, v := range update.Vertexes {
		state := m.vertex(v.Id, v.Name)
		switch {
		case v.Completed == nil:
			state.Status = statusRunning
		case v.Error != nil:
			state.Status = statusFailed
			state.Logs = append(state.Logs, *v.Error)
		case v.Cached:
			state.Status = statusCached
		default:
			state.Status = statusCompleted
		}
	}
	for _, l := range update.Logs {
		state := m.vertex(l.Vertex, "")
		for _, line := range strings.Split(strings.TrimRight(string(l.Data), "\n"), "\n") {
			if line != "" {
				state.Logs = append(state.Logs, line)
			}
		}
	}
}

func (m *Model) vertex(id, name string) *VertexState {
	if state, ok := m.index[id]; ok {
		if name != "" {
			state.Name = name
		}
		return state
	}
	state := &VertexState{ID: id, Name: name}
	m.index[id] = state
	m.vertices = append(m.vertices, state)
	return state
}

// View renders the current state of the model as a string.
func (m *Model) View() string {
	var lines []string
	var compiled, cached, failed int
	for _, v := range m.vertices {
		if v.Name == "" {
			continue
		}
		var icon string
		var style lipgloss.Style
		switch v.Status {
		case statusRunning:
			icon, style = m.spinner.View(), m.styles.running
		case statusCompleted:
			icon, style = "✓", m.styles.completed
			compiled++
		case statusCached:
			icon, style = "✓", m.styles.cached
			cached++
		case statusFailed:
			icon, style = "✗", m.styles.failed
			failed++
		}
		lines = append(lines, fmt.Sprintf("%s %s", style.Render(icon), v.Name))
		if v.Status == statusFailed {
			for _, l := range v.Logs {
				lines = append(lines, "  "+m.styles.log.Render(l))
			}
		}
	}

	// Keep the newest lines when the terminal is too short.
	if m.height > 1 && len(lines) >= m.height {
		lines = lines[len(lines)-m.height+1:]
	}
	if m.done {
		lines = append(lines, fmt.Sprintf("%d compiled, %d cached, %d failed", compiled, cached, failed))
	}
	return strings.Join(lines, "\n") + "\n"
}
