package tui

import (
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/config"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/core"
	_ "github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/demos/simple"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/mode"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/registry"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/schedule"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/session"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/storage"
)

func testOptions(t *testing.T) session.Options {
	t.Helper()
	return session.Options{
		Runtime:  core.DefaultConfig(),
		Settings: config.DefaultCrawlerConfig(),
		Logger:   log.New(io.Discard),
	}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	opts := testOptions(t)
	sess, err := session.New("simple", opts)
	if err != nil {
		t.Fatalf("session.New() failed: %v", err)
	}
	t.Cleanup(func() { sess.Close() })
	return NewModel(sess, opts)
}

func update(t *testing.T, m tea.Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	t.Helper()
	return m.Update(msg)
}

func TestModelTicksSession(t *testing.T) {
	m := newTestModel(t)

	next, cmd := update(t, m, TickMsg{})
	if cmd == nil {
		t.Error("A tick should schedule the next tick")
	}
	if got := next.(Model).sess.Ticks(); got != 1 {
		t.Errorf("Ticks() = %d, expected 1", got)
	}

	view := next.View()
	if !strings.Contains(view, "Hello Pedro!") {
		t.Error("View should show the console tail")
	}
	if !strings.Contains(view, mode.Loading.String()) {
		t.Error("View should show the current mode")
	}
}

// flakyDemo fails its first tick only.
type flakyDemo struct{}

func (flakyDemo) ID() string          { return "tui-flaky" }
func (flakyDemo) Title() string       { return "Flaky" }
func (flakyDemo) Description() string { return "fails the first tick" }

func (flakyDemo) Build(s *schedule.Scheduler, _ registry.Env) error {
	s.AddSystems("flaky", schedule.Named("first_tick", func(ctx *schedule.Context) error {
		if ctx.World.Tick() == 0 {
			return errFlaky
		}
		return nil
	}))
	return nil
}

var errFlaky = errors.New("flaky first tick")

func init() {
	registry.Register("tui-flaky", func() registry.Demo { return flakyDemo{} })
}

func TestModelClearsErrorAfterGoodTick(t *testing.T) {
	opts := testOptions(t)
	sess, err := session.New("tui-flaky", opts)
	if err != nil {
		t.Fatalf("session.New() failed: %v", err)
	}
	t.Cleanup(func() { sess.Close() })
	var m tea.Model = NewModel(sess, opts)

	m, _ = update(t, m, TickMsg{})
	if !errors.Is(m.(Model).lastErr, errFlaky) {
		t.Fatalf("lastErr = %v, expected the failed tick", m.(Model).lastErr)
	}
	if !strings.Contains(m.View(), errFlaky.Error()) {
		t.Error("Status line should show the tick error")
	}

	m, _ = update(t, m, TickMsg{})
	if m.(Model).lastErr != nil {
		t.Errorf("lastErr = %v, expected nil after a good tick", m.(Model).lastErr)
	}
	if strings.Contains(m.View(), errFlaky.Error()) {
		t.Error("Status line should drop the error after a good tick")
	}
}

func TestModelExitReturnsToCaller(t *testing.T) {
	m := newTestModel(t)

	next, _ := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	next, cmd := update(t, next, TickMsg{})
	dm := next.(Model)
	if !dm.Finished() {
		t.Fatal("Escape should finish the demo on the next tick")
	}
	if cmd != nil {
		t.Error("A finished demo should stop ticking")
	}
	if dm.IsQuitting() {
		t.Error("Exiting a demo is not quitting the frontend")
	}

	// late ticks are ignored
	next, _ = update(t, dm, TickMsg{})
	if got := next.(Model).sess.Ticks(); got != 1 {
		t.Errorf("Ticks() = %d after finish, expected 1", got)
	}
}

func TestModelInputIsEdgeTriggered(t *testing.T) {
	m := newTestModel(t)

	next, _ := update(t, m, runeKey("p"))
	if !next.(Model).inputFrame.JustPressed(core.ActionPause) {
		t.Fatal("Key should reach the next frame")
	}
	next, _ = update(t, next, TickMsg{})
	if !next.(Model).inputFrame.Empty() {
		t.Error("Frame should be cleared after each tick")
	}
}

func TestModelCtrlCQuits(t *testing.T) {
	m := newTestModel(t)
	next, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if !next.(Model).IsQuitting() || cmd == nil {
		t.Error("ctrl+c should quit the program")
	}
	if next.View() != "" {
		t.Error("A quitting model renders nothing")
	}
}

func TestModelResizeKeepsRoomForPanels(t *testing.T) {
	m := newTestModel(t)
	next, _ := update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	dm := next.(Model)
	if dm.screen.Width() != 100 || dm.screen.Height() != 40-1-consoleRows {
		t.Errorf("Screen = %dx%d, expected 100x%d", dm.screen.Width(), dm.screen.Height(), 40-1-consoleRows)
	}

	next, _ = update(t, dm, tea.WindowSizeMsg{Width: 30, Height: 8})
	dm = next.(Model)
	if dm.screen.Height() != 7 {
		t.Errorf("Small windows drop the console, got height %d", dm.screen.Height())
	}
}

func TestAppMenuToDemoAndBack(t *testing.T) {
	opts := testOptions(t)
	store, err := storage.Open(t.TempDir() + "/runs.db")
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	defer store.Close()
	opts.Store = store

	var m tea.Model = NewAppModel(opts)
	app := m.(AppModel)
	for i, item := range app.menu.items {
		if item.ID == "simple" {
			app.menu.cursor = i
		}
	}
	m = app

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.(AppModel).demo == nil || cmd == nil {
		t.Fatal("Enter should start the selected demo")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = update(t, m, TickMsg{})
	app = m.(AppModel)
	if app.demo != nil || app.quitting {
		t.Fatal("Exiting the demo should return to the menu")
	}
	if app.live.sess != nil {
		t.Error("Session should be closed after the demo exits")
	}

	runs, err := store.RecentRuns("simple", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || !runs[0].Finished() || runs[0].Ticks != 1 {
		t.Errorf("RecentRuns() = %+v, expected one finished run of 1 tick", runs)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	app = m.(AppModel)
	if app.history == nil || len(app.history.Runs()) != 1 {
		t.Fatal("Tab should open the history with the recorded run")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.(AppModel).history != nil {
		t.Error("Back should return to the menu")
	}

	_, cmd = update(t, m, runeKey("q"))
	if cmd == nil {
		t.Error("q in the menu should quit")
	}
}

func TestAppClosesSessionOnQuit(t *testing.T) {
	var m tea.Model = NewAppModel(testOptions(t))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.(AppModel).demo == nil {
		t.Fatal("Enter should start a demo")
	}
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	app := m.(AppModel)
	if !app.quitting || cmd == nil {
		t.Error("ctrl+c inside a demo should quit")
	}
	if app.live.sess != nil {
		t.Error("Quitting should close the running session")
	}
	if err := app.Close(); err != nil {
		t.Errorf("Close() after quit = %v", err)
	}
}

func TestRenderConsolePadsAndTruncates(t *testing.T) {
	got := renderConsole([]string{"abcdef"}, 4, 3)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[2], "abcd") || strings.Contains(lines[2], "abcde") {
		t.Errorf("Last line = %q, expected truncated output", lines[2])
	}
}
