// Package tui provides the Bubble Tea game interface.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/mathcatch/internal/catalog"
	"github.com/verte-zerg/mathcatch/internal/progress"
	"github.com/verte-zerg/mathcatch/internal/session"
)

type screen int

const (
	screenMenu screen = iota
	screenGame
	screenResult
)

// hudRows is the number of terminal rows not given to the play area.
const hudRows = 2

const paddleStepCells = 3

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	hudStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	fieldStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

type frameMsg struct {
	id int
}

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Play  key.Binding
	Left  key.Binding
	Right key.Binding
	Back  key.Binding
	Menu  key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Play:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "play")),
	Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→ or mouse", "move")),
	Right: key.NewBinding(key.WithKeys("right", "l")),
	Back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop")),
	Menu:  key.NewBinding(key.WithKeys("m", "esc"), key.WithHelp("m", "menu")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// bindings adapts a binding list to help.KeyMap.
type bindings []key.Binding

func (b bindings) ShortHelp() []key.Binding  { return b }
func (b bindings) FullHelp() [][]key.Binding { return [][]key.Binding{b} }

// Options configures the game UI.
type Options struct {
	// Session configures the controller. Its Listener is replaced.
	Session    session.Options
	Tracker    *progress.Tracker
	FPS        int
	StartLevel int
}

// Model implements the Bubble Tea game UI.
type Model struct {
	ctrl    *session.Controller
	loop    *session.Loop
	notices *session.Notices
	catalog *catalog.Catalog
	tracker *progress.Tracker
	log     *slog.Logger

	canvas *Canvas
	menu   table.Model
	help   help.Model

	screen       screen
	width        int
	height       int
	pendingStart int
	tickID       int
	errMsg       string
}

// NewModel constructs the game UI.
func NewModel(opts Options) *Model {
	notices := &session.Notices{}
	sessOpts := opts.Session
	sessOpts.Listener = notices
	if sessOpts.Clock == nil {
		sessOpts.Clock = session.SystemClock{}
	}
	logger := sessOpts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctrl := session.NewController(sessOpts)

	menu := table.New(
		table.WithColumns([]table.Column{
			{Title: "Level", Width: 5},
			{Title: "Time", Width: 5},
			{Title: "Target", Width: 6},
			{Title: "Best", Width: 5},
			{Title: "Passed", Width: 6},
		}),
		table.WithFocused(true),
	)
	m := &Model{
		ctrl:         ctrl,
		loop:         session.NewLoop(ctrl, sessOpts.Clock, opts.FPS),
		notices:      notices,
		catalog:      sessOpts.Catalog,
		tracker:      opts.Tracker,
		log:          logger,
		canvas:       NewCanvas(0, 0),
		menu:         menu,
		help:         help.New(),
		pendingStart: opts.StartLevel,
	}
	m.refreshMenu()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m, m.resize(msg.Width, msg.Height)
	case frameMsg:
		return m, m.frame(msg)
	case tea.MouseMsg:
		if m.screen == screenGame && (msg.Action == tea.MouseActionMotion || msg.Action == tea.MouseActionPress) {
			m.ctrl.MovePaddle((float64(msg.X) + 0.5) * CellWidth)
		}
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.ctrl.Abort()
			return m, tea.Quit
		}
		switch m.screen {
		case screenGame:
			return m, m.updateGame(msg)
		case screenResult:
			return m, m.updateResult(msg)
		default:
			return m, m.updateMenu(msg)
		}
	default:
		return m, nil
	}
}

func (m *Model) resize(width, height int) tea.Cmd {
	m.width = width
	m.height = height
	if !m.ctrl.Running() {
		m.fitCanvas()
	}
	menuHeight := height - 6
	if menuHeight < 3 {
		menuHeight = 3
	}
	m.menu.SetHeight(menuHeight)
	m.help.Width = width
	if m.pendingStart > 0 {
		id := m.pendingStart
		m.pendingStart = 0
		return m.start(id)
	}
	return nil
}

// fitCanvas sizes the canvas to the window. A running world keeps the size it
// started with, so this only runs between sessions.
func (m *Model) fitCanvas() {
	rows := m.height - hudRows
	if rows < 1 {
		rows = 1
	}
	if cols, cur := m.canvas.Size(); cols == m.width && cur == rows {
		return
	}
	m.canvas.Resize(m.width, rows)
	m.ctrl.SetArea(m.canvas.WorldSize())
}

func (m *Model) updateMenu(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, keys.Play) {
		row := m.menu.SelectedRow()
		if row == nil {
			return nil
		}
		id, err := strconv.Atoi(row[0])
		if err != nil {
			return nil
		}
		return m.start(id)
	}
	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return cmd
}

func (m *Model) updateGame(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Back):
		m.ctrl.Abort()
		m.toMenu()
	case key.Matches(msg, keys.Left):
		m.nudgePaddle(-paddleStepCells * CellWidth)
	case key.Matches(msg, keys.Right):
		m.nudgePaddle(paddleStepCells * CellWidth)
	}
	return nil
}

func (m *Model) updateResult(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Play):
		if m.ctrl.Outcome() == session.OutcomeCompleted {
			return m.start(m.catalog.First().ID)
		}
		return m.start(m.ctrl.Level().ID)
	case key.Matches(msg, keys.Menu):
		m.toMenu()
	}
	return nil
}

func (m *Model) nudgePaddle(delta float64) {
	world := m.ctrl.World()
	if world == nil {
		return
	}
	p := world.Paddle()
	m.ctrl.MovePaddle(p.X + p.Width/2 + delta)
}

func (m *Model) start(levelID int) tea.Cmd {
	m.notices.Clear()
	m.errMsg = ""
	m.fitCanvas()
	width, height := m.canvas.WorldSize()
	if err := m.ctrl.Start(levelID, width, height); err != nil {
		m.log.Warn("failed to start level", "level", levelID, "err", err)
		m.errMsg = err.Error()
		m.toMenu()
		return nil
	}
	m.screen = screenGame
	m.tickID++
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	id := m.tickID
	return tea.Tick(m.loop.FrameInterval(), func(time.Time) tea.Msg {
		return frameMsg{id: id}
	})
}

func (m *Model) frame(msg frameMsg) tea.Cmd {
	if m.screen != screenGame || msg.id != m.tickID {
		return nil
	}
	m.loop.Advance(context.Background(), m.canvas)
	if m.ctrl.Running() {
		return m.tick()
	}
	m.screen = screenResult
	m.refreshMenu()
	return nil
}

func (m *Model) toMenu() {
	m.screen = screenMenu
	m.refreshMenu()
}

func (m *Model) refreshMenu() {
	if m.catalog == nil {
		return
	}
	records := map[int]struct {
		best   string
		passed string
	}{}
	if m.tracker != nil {
		for id, rec := range m.tracker.Load(context.Background()) {
			entry := records[id]
			entry.best = strconv.Itoa(rec.HighScore)
			if rec.Passed {
				entry.passed = "✓"
			}
			records[id] = entry
		}
	}
	levels := m.catalog.Levels()
	rows := make([]table.Row, 0, len(levels))
	for _, lvl := range levels {
		entry, ok := records[lvl.ID]
		best := "-"
		if ok {
			best = entry.best
		}
		rows = append(rows, table.Row{
			strconv.Itoa(lvl.ID),
			fmt.Sprintf("%ds", lvl.Time),
			strconv.Itoa(lvl.Target),
			best,
			entry.passed,
		})
	}
	m.menu.SetRows(rows)
}

// View implements tea.Model.
func (m *Model) View() string {
	switch m.screen {
	case screenGame:
		return m.viewGame()
	case screenResult:
		return m.viewResult()
	default:
		return m.viewMenu()
	}
}

func (m *Model) viewMenu() string {
	parts := []string{titleStyle.Render("Math Catcher"), "", m.menu.View()}
	if m.errMsg != "" {
		parts = append(parts, errorStyle.Render(m.errMsg))
	}
	parts = append(parts, m.help.View(bindings{keys.Up, keys.Down, keys.Play, keys.Quit}))
	content := strings.Join(parts, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) viewGame() string {
	return m.renderHUD() + "\n" + fieldStyle.Render(m.canvas.String()) + "\n" +
		m.help.View(bindings{keys.Left, keys.Back, keys.Quit})
}

func (m *Model) viewResult() string {
	lines := []string{bannerStyle.Render(m.notices.Banner)}
	if m.notices.Err != "" {
		lines = append(lines, errorStyle.Render(m.notices.Err))
	}
	playHelp := "retry"
	if m.ctrl.Outcome() == session.OutcomeCompleted {
		playHelp = "play again"
	}
	play := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", playHelp))
	lines = append(lines, "", m.help.View(bindings{play, keys.Menu, keys.Quit}))
	content := modalStyle.Render(strings.Join(lines, "\n"))
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderHUD() string {
	s := m.ctrl.Session()
	segments := []string{
		fmt.Sprintf("Level %d", s.LevelID),
		fmt.Sprintf("Score %d/%d", s.Score, m.ctrl.Level().Target),
		fmt.Sprintf("Time %ds", s.TimeLeft),
	}
	hud := hudStyle.Render(strings.Join(segments, "  "))
	if m.notices.Banner != "" {
		hud += "  " + bannerStyle.Render(m.notices.Banner)
	}
	if m.notices.Err != "" {
		hud += "  " + errorStyle.Render(m.notices.Err)
	}
	return hud
}
