package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/config"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/core"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/session"
)

// consoleRows is how many lines of demo output sit under the world view.
const consoleRows = 4

// Model is the Bubble Tea model for running one demo session.
type Model struct {
	sess       *session.Session
	screen     *core.Screen
	keys       *KeyMapper
	logger     *log.Logger
	interval   time.Duration
	inputFrame core.InputFrame
	width      int
	height     int
	lastErr    error
	standalone bool // quit the program when the demo exits
	quitting   bool
	finished   bool
}

// NewModel creates a model stepping sess at the configured tick rate.
func NewModel(sess *session.Session, opts session.Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	m := Model{
		sess:       sess,
		keys:       NewKeyMapper(opts.Settings.Bindings()),
		logger:     logger,
		interval:   opts.Runtime.TickInterval(),
		inputFrame: core.NewInputFrame(),
		width:      opts.Runtime.ScreenW,
		height:     opts.Runtime.ScreenH,
	}
	w, h := m.worldSize()
	m.screen = core.NewScreen(w, h)
	return m
}

// worldSize returns the screen area left for the world after the console
// panel and the status line.
func (m Model) worldSize() (int, int) {
	h := m.height - 1
	if m.height > 3*consoleRows {
		h -= consoleRows
	}
	return core.Max(m.width, 1), core.Max(h, 1)
}

func (m Model) showConsole() bool {
	return m.height > 3*consoleRows
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.interval)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	if m.keys.MapKeyToFrame(msg, &m.inputFrame) {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// handleResize processes window resize events. The world keeps running.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.screen.Resize(m.worldSize())
	return m, nil
}

// handleTick steps the session with the keys pressed since the last tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.finished {
		return m, nil
	}

	if err := m.sess.Step(m.interval, m.inputFrame); err != nil {
		// A failed tick is reported and the next one runs normally.
		m.lastErr = err
		m.logger.Error("tick failed", "error", err)
	} else {
		m.lastErr = nil
	}
	m.inputFrame.Clear()

	if m.sess.Done() {
		m.finished = true
		if m.standalone {
			return m, tea.Quit
		}
		return m, nil
	}

	return m, tickCmd(m.interval)
}

// saveScreenshot saves the current world view to a file.
func (m *Model) saveScreenshot() {
	m.sess.Render(m.screen)

	dir := filepath.Join(config.DataDir(), "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.txt", m.sess.Demo.ID(), timestamp)
	path := filepath.Join(dir, filename)

	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.logger.Warn("cannot save screenshot", "path", path, "error", err)
	}
}

// Finished reports whether the demo raised its exit signal.
func (m Model) Finished() bool {
	return m.finished
}

// IsQuitting reports whether the user asked to leave the frontend.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// View renders the world, the console tail and a status line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.sess.Render(m.screen)
	view := RenderScreen(m.screen)

	if m.showConsole() {
		view += "\n" + renderConsole(m.sess.Console().Tail(consoleRows), m.width, consoleRows)
	}
	return view + "\n" + m.statusLine()
}

func (m Model) statusLine() string {
	status := statusStyle.Render(fmt.Sprintf("%s · %s · tick %d", m.sess.Demo.Title(), m.sess.Mode(), m.sess.Ticks()))
	if m.lastErr != nil {
		return status + " " + errorStyle.Render(m.lastErr.Error())
	}
	return status + consoleStyle.Render("  esc: exit  ctrl+c: quit")
}

// Run starts a Bubble Tea program for one demo and closes the session when
// the program ends.
func Run(demoID string, opts session.Options) error {
	sess, err := session.New(demoID, opts)
	if err != nil {
		return err
	}

	model := NewModel(sess, opts)
	model.standalone = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, runErr := p.Run()
	if err := sess.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
