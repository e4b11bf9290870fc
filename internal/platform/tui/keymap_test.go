package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/config"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/core"
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMapKeyDefaultBindings(t *testing.T) {
	settings := config.DefaultCrawlerConfig()
	km := NewKeyMapper(settings.Bindings())

	tests := []struct {
		name   string
		msg    tea.KeyMsg
		action core.Action
		quit   bool
	}{
		{"pause letter", runeKey("p"), core.ActionPause, false},
		{"pause space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, core.ActionPause, false},
		{"escape exits demo", tea.KeyMsg{Type: tea.KeyEsc}, core.ActionExit, false},
		{"arrow", tea.KeyMsg{Type: tea.KeyLeft}, core.ActionLeft, false},
		{"wasd", runeKey("d"), core.ActionRight, false},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit, true},
		{"unbound", runeKey("z"), core.ActionNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, quit := km.MapKey(tt.msg)
			if action != tt.action || quit != tt.quit {
				t.Errorf("MapKey(%q) = %v, %v; expected %v, %v", tt.msg.String(), action, quit, tt.action, tt.quit)
			}
		})
	}
}

func TestMapKeyToFrame(t *testing.T) {
	km := NewKeyMapper(map[core.Action][]string{core.ActionPause: {"tab"}})
	frame := core.NewInputFrame()

	if km.MapKeyToFrame(tea.KeyMsg{Type: tea.KeyTab}, &frame) {
		t.Error("tab should not quit")
	}
	if !frame.JustPressed(core.ActionPause) {
		t.Error("Custom binding should set pause")
	}
	if !km.MapKeyToFrame(tea.KeyMsg{Type: tea.KeyCtrlC}, &frame) {
		t.Error("ctrl+c should always quit")
	}
	if frame.JustPressed(core.ActionQuit) {
		t.Error("Quit is handled by the frontend and never reaches the demo")
	}
}

func TestMapKeyToMenuAction(t *testing.T) {
	km := NewKeyMapper(nil)

	tests := []struct {
		msg  tea.KeyMsg
		want MenuAction
	}{
		{runeKey("k"), MenuActionUp},
		{tea.KeyMsg{Type: tea.KeyDown}, MenuActionDown},
		{tea.KeyMsg{Type: tea.KeyEnter}, MenuActionSelect},
		{tea.KeyMsg{Type: tea.KeyTab}, MenuActionHistory},
		{runeKey("q"), MenuActionQuit},
		{runeKey("x"), MenuActionNone},
	}
	for _, tt := range tests {
		if got := km.MapKeyToMenuAction(tt.msg); got != tt.want {
			t.Errorf("MapKeyToMenuAction(%q) = %v, expected %v", tt.msg.String(), got, tt.want)
		}
	}
}
