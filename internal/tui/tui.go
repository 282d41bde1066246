// Package tui is the terminal presentation of a game: a bubbletea model
// rendering the log, scoreboard and board, and a Bridge that implements the
// engine's presentation port on top of it.
package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/StevePic95/skylardle/internal/board"
	"github.com/StevePic95/skylardle/internal/engine"
	"github.com/StevePic95/skylardle/internal/pause"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

type promptKind int

const (
	// promptLine collects a line of text submitted with enter.
	promptLine promptKind = iota
	// promptBuzz waits for space or enter.
	promptBuzz
	// promptContinue waits for enter.
	promptContinue
	// promptWait shows a status and accepts no input.
	promptWait
)

// prompt is one outstanding request for input. The model answers it at most
// once through reply.
type prompt struct {
	id          int
	kind        promptKind
	label       string
	placeholder string
	reply       chan string
	// draft mirrors the input while typing, for answers submitted on expiry.
	draft *draft
}

type draft struct {
	mu   sync.Mutex
	text string
}

func (d *draft) set(s string) {
	d.mu.Lock()
	d.text = s
	d.mu.Unlock()
}

func (d *draft) get() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

type logMsg struct{ lines []string }

type promptMsg struct{ p *prompt }

type clearPromptMsg struct{ id int }

type scoreboardMsg struct {
	round     board.Round
	remaining int
	players   []engine.Player
}

// boardMsg shows the selection grid; a nil req hides it.
type boardMsg struct{ req *engine.SelectionRequest }

type pausedMsg struct{ paused bool }

// QuitMsg asks the program to exit.
type QuitMsg struct{}

// Restarter receives the human's restart requests.
type Restarter interface {
	RequestRestart()
}

// Model is the bubbletea model of a game screen.
type Model struct {
	logger  *log.Logger
	sched   *pause.Scheduler
	control Restarter

	logViewport viewport.Model
	input       textinput.Model

	gameLog   []string
	prompt    *prompt
	players   []engine.Player
	round     board.Round
	remaining int
	selection *engine.SelectionRequest
	paused    bool
	quitting  bool

	width       int
	height      int
	initialized bool
}

// NewModel creates the game screen. Esc toggles pause on sched and ctrl+r
// asks control for a restart.
func NewModel(logger *log.Logger, sched *pause.Scheduler, control Restarter) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 120
	ti.Width = 80
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &Model{
		logger:      logger.WithPrefix("tui"),
		sched:       sched,
		control:     control,
		logViewport: vp,
		input:       ti,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case QuitMsg:
		m.quitting = true
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)
		return m, nil

	case logMsg:
		m.addLog(msg.lines...)
		return m, nil

	case promptMsg:
		m.prompt = msg.p
		m.input.SetValue("")
		m.input.Placeholder = msg.p.placeholder
		return m, nil

	case clearPromptMsg:
		if m.prompt != nil && m.prompt.id == msg.id {
			m.prompt = nil
			m.input.SetValue("")
			m.input.Placeholder = ""
		}
		return m, nil

	case scoreboardMsg:
		m.players = msg.players
		m.round = msg.round
		m.remaining = msg.remaining
		return m, nil

	case boardMsg:
		m.selection = msg.req
		return m, nil

	case pausedMsg:
		m.paused = msg.paused
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmds []tea.Cmd
	if m.prompt != nil && m.prompt.kind == promptLine {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
		if m.prompt.draft != nil {
			m.prompt.draft.set(m.input.Value())
		}
	}
	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return tea.Quit, true
	case "esc":
		m.paused = m.sched.Toggle()
		return nil, true
	case "ctrl+r":
		m.control.RequestRestart()
		return nil, true
	}

	// Input is frozen while paused.
	if m.paused {
		return nil, true
	}

	p := m.prompt
	if p == nil {
		return nil, false
	}
	switch p.kind {
	case promptBuzz:
		if s := msg.String(); s == " " || s == "enter" {
			m.answer("")
		}
		return nil, true
	case promptContinue:
		if msg.String() == "enter" {
			m.answer("")
		}
		return nil, true
	case promptWait:
		return nil, true
	case promptLine:
		if msg.String() == "enter" {
			m.answer(strings.TrimSpace(m.input.Value()))
			return nil, true
		}
	}
	return nil, false
}

// answer replies to the current prompt once. The bridge replaces or clears
// the prompt when it has consumed the reply.
func (m *Model) answer(text string) {
	select {
	case m.prompt.reply <- text:
	default:
	}
	m.input.SetValue("")
}

func (m *Model) addLog(lines ...string) {
	m.gameLog = append(m.gameLog, lines...)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Lines returns a copy of the game log.
func (m *Model) Lines() []string {
	out := make([]string, len(m.gameLog))
	copy(out, m.gameLog)
	return out
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	headerHeight := lipgloss.Height(header)

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(1, m.width-2)).
		Render(actionContent)

	sidebarContent := m.renderSidebar()
	sidebarWidth := max(28, lipgloss.Width(sidebarContent))
	paneHeight := max(1, m.height-headerHeight-actionHeight-4)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(1, m.width-sidebarWidth-4)
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}
	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(paneHeight).
		Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Left, header, topRow, actionPane)
}

func (m *Model) renderHeader() string {
	title := "SKYLARDLE"
	if m.round.Label() != "" {
		title += "  " + m.round.Label()
	}
	if m.paused {
		title += "  " + WarningStyle.Render("[PAUSED]")
	}
	return HeaderStyle.Width(max(1, m.width)).Render(title)
}

func (m *Model) renderSidebar() string {
	var b strings.Builder
	for _, p := range m.players {
		style := PlayerInfoStyle
		if p.Human {
			style = HumanInfoStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%-18s %8s", p.Name, FormatMoney(p.Score))))
		b.WriteString("\n")
	}
	if m.round != board.Final && len(m.players) > 0 {
		b.WriteString("\n")
		b.WriteString(InfoStyle.Render(fmt.Sprintf("Clues left: %d", m.remaining)))
	}
	return b.String()
}

func (m *Model) renderActionPane() string {
	var b strings.Builder
	if m.selection != nil && m.prompt != nil && m.prompt.kind == promptLine && m.prompt.label == pickLabel {
		b.WriteString(renderBoard(*m.selection))
		b.WriteString("\n")
	}

	help := "Esc pause • Ctrl+R restart • Ctrl+C quit"
	switch {
	case m.paused:
		b.WriteString(WarningStyle.Render("Paused. Press Esc to resume."))
	case m.prompt == nil:
		b.WriteString(InfoStyle.Render("..."))
	default:
		b.WriteString(ValueStyle.Render(m.prompt.label))
		switch m.prompt.kind {
		case promptLine:
			b.WriteString("\n")
			b.WriteString(m.input.View())
			help = "Enter submit • " + help
		case promptBuzz:
			help = "Space buzz • " + help
		case promptContinue:
			help = "Enter continue • " + help
		}
	}
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render(help))
	return b.String()
}

const cellWidth = 14

// renderBoard draws the selection grid. Consumed cells are blank.
func renderBoard(req engine.SelectionRequest) string {
	cols := make([]string, 0, len(req.Categories))
	for col, category := range req.Categories {
		cells := []string{CategoryStyle.Width(cellWidth).Render(truncate(fmt.Sprintf("%d %s", col+1, category), cellWidth))}
		for row, value := range req.Values {
			if req.Consumed.Has(board.Coord{Col: col, Row: row}) {
				cells = append(cells, UsedCellStyle.Width(cellWidth).Render(""))
				continue
			}
			cells = append(cells, CellStyle.Width(cellWidth).Render(FormatMoney(value)))
		}
		cols = append(cols, lipgloss.JoinVertical(lipgloss.Left, cells...), " ")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
