package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/core"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/session"
)

// AppModel manages the full flow: menu -> demo -> menu, with the run
// history reachable from the menu. It is the top-level model for the
// menu command and for SSH sessions.
type AppModel struct {
	opts     session.Options
	menu     MenuModel
	history  *HistoryModel
	demo     *Model
	live     *liveSession
	err      error // last demo that failed to start
	quitting bool
}

// liveSession is the running demo, shared by every copy of the model so an
// SSH disconnect can close it.
type liveSession struct {
	mu   sync.Mutex
	sess *session.Session
}

// NewAppModel creates the top-level model. opts.Runtime carries the
// initial window size.
func NewAppModel(opts session.Options) AppModel {
	return AppModel{
		opts: opts,
		menu: NewMenuModel(opts.Runtime.ScreenW, opts.Runtime.ScreenH),
		live: &liveSession{},
	}
}

// Init initializes the app.
func (m AppModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update routes messages to the active screen.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window resize globally
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.opts.Runtime.ScreenW = wsm.Width
		m.opts.Runtime.ScreenH = wsm.Height
	}

	switch {
	case m.demo != nil:
		return m.updateDemo(msg)
	case m.history != nil:
		return m.updateHistory(msg)
	}
	return m.updateMenu(msg)
}

// updateMenu handles updates while the picker is shown.
func (m AppModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.menu.WantsHistory() {
		h := NewHistoryModel(m.opts.Store, m.opts.Runtime.ScreenW, m.opts.Runtime.ScreenH)
		m.history = &h
		return m, h.Init()
	}

	if selected := m.menu.Selected(); selected != nil {
		sess, err := session.New(selected.ID, m.opts)
		if err != nil {
			m.err = err
			m.resetMenu()
			return m, nil
		}
		m.err = nil
		demo := NewModel(sess, m.opts)
		m.live.mu.Lock()
		m.live.sess = sess
		m.live.mu.Unlock()
		m.demo = &demo
		return m, demo.Init()
	}

	return m, cmd
}

// updateHistory handles updates while the run history is shown.
func (m AppModel) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.history.Update(msg)
	if h, ok := newModel.(HistoryModel); ok {
		m.history = &h
	}

	if m.history.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.history.IsGoingBack() {
		m.history = nil
		m.resetMenu()
		return m, nil
	}
	return m, cmd
}

// updateDemo handles updates while a demo runs.
func (m AppModel) updateDemo(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.live.mu.Lock()
	if m.live.sess == nil {
		// closed by a disconnect
		m.live.mu.Unlock()
		m.quitting = true
		return m, tea.Quit
	}
	newModel, cmd := m.demo.Update(msg)
	m.live.mu.Unlock()
	if demo, ok := newModel.(Model); ok {
		m.demo = &demo
	}

	if m.demo.IsQuitting() {
		m.closeSession()
		m.quitting = true
		return m, tea.Quit
	}

	// The demo exited on its own: back to the menu
	if m.demo.Finished() {
		m.closeSession()
		m.resetMenu()
		return m, nil
	}

	return m, cmd
}

func (m *AppModel) closeSession() {
	m.demo = nil
	if err := m.Close(); err != nil && m.opts.Logger != nil {
		m.opts.Logger.Warn("cannot close session", "error", err)
	}
}

func (m *AppModel) resetMenu() {
	cursor := m.menu.cursor
	m.menu = NewMenuModel(m.opts.Runtime.ScreenW, m.opts.Runtime.ScreenH)
	m.menu.cursor = core.Min(cursor, core.Max(len(m.menu.items)-1, 0))
}

// Close releases a session still running when the program ends abruptly.
func (m AppModel) Close() error {
	m.live.mu.Lock()
	defer m.live.mu.Unlock()
	if m.live.sess == nil {
		return nil
	}
	err := m.live.sess.Close()
	m.live.sess = nil
	return err
}

// View renders the active screen.
func (m AppModel) View() string {
	if m.quitting {
		return ""
	}

	switch {
	case m.demo != nil:
		return m.demo.View()
	case m.history != nil:
		return m.history.View()
	}

	view := m.menu.View()
	if m.err != nil {
		view += "\n" + errorStyle.Render(centerText(m.err.Error(), m.menu.width))
	}
	return view
}

// RunApp runs the menu flow in the local terminal.
func RunApp(opts session.Options) error {
	p := tea.NewProgram(
		NewAppModel(opts),
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if app, ok := final.(AppModel); ok {
		if closeErr := app.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}
