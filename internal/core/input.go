package core

import (
	"fmt"
	"strings"
)

// Action represents a semantic input, abstracted from physical key presses.
// Demos react to actions, frontends decide which keys produce them.
type Action int

const (
	ActionNone    Action = iota
	ActionUp             // W, Up arrow
	ActionDown           // S, Down arrow
	ActionLeft           // A, Left arrow
	ActionRight          // D, Right arrow
	ActionConfirm        // Enter
	ActionPause          // P
	ActionExit           // Escape - asks the running demo to exit
	ActionQuit           // Q, Ctrl+C - leaves the frontend immediately
)

var actionNames = map[Action]string{
	ActionNone:    "None",
	ActionUp:      "Up",
	ActionDown:    "Down",
	ActionLeft:    "Left",
	ActionRight:   "Right",
	ActionConfirm: "Confirm",
	ActionPause:   "Pause",
	ActionExit:    "Exit",
	ActionQuit:    "Quit",
}

// String returns a human-readable name for the action.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "Unknown"
}

// ParseAction resolves an action by its case-insensitive name.
func ParseAction(s string) (Action, bool) {
	for a, name := range actionNames {
		if strings.EqualFold(name, s) {
			return a, true
		}
	}
	return ActionNone, false
}

// UnmarshalText lets configuration files name actions ("pause", "exit").
func (a *Action) UnmarshalText(text []byte) error {
	parsed, ok := ParseAction(string(text))
	if !ok {
		return &UnknownActionError{Name: string(text)}
	}
	*a = parsed
	return nil
}

// MarshalText writes the action name.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(a.String())), nil
}

// UnknownActionError is returned when a name does not match any action.
type UnknownActionError struct {
	Name string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("core: unknown action %q", e.Name)
}

// InputFrame is the set of actions newly pressed during one tick.
// It carries edge signals only: a held key shows up once, on the tick it went down.
type InputFrame struct {
	// Actions maps action types to whether they were pressed this frame.
	Actions map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// FrameOf builds an input frame with the given actions pressed.
func FrameOf(actions ...Action) InputFrame {
	f := NewInputFrame()
	for _, a := range actions {
		f.Set(a)
	}
	return f
}

// Set marks an action as pressed for this frame.
func (f *InputFrame) Set(a Action) {
	if a == ActionNone {
		return
	}
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// JustPressed returns true if the action was pressed this frame.
func (f InputFrame) JustPressed(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// Empty reports whether no action was pressed.
func (f InputFrame) Empty() bool {
	return len(f.Actions) == 0
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
}

// Clone creates a copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	clone := NewInputFrame()
	for k, v := range f.Actions {
		clone.Actions[k] = v
	}
	return clone
}
