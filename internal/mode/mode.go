// Package mode is the controller deciding which behavior groups run. A Store
// holds the current mode and at most one pending request; requests take
// effect when the scheduler commits them at the end of a tick.
package mode

import (
	"fmt"
	"strings"
)

// Mode is one of the discrete phases of a demo.
type Mode uint8

const (
	Loading Mode = iota // initial mode, entered once
	Running
	Paused

	numModes
)

var modeNames = [numModes]string{
	Loading: "loading",
	Running: "running",
	Paused:  "paused",
}

// String returns the lowercase mode name.
func (m Mode) String() string {
	if m < numModes {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m < numModes
}

// ParseMode parses a mode name, ignoring case.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return Mode(m), nil
		}
	}
	return 0, fmt.Errorf("mode: unknown mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("mode: invalid mode %d", uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. yaml.v3 and flag
// parsing both go through it.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// All returns every mode in declaration order.
func All() []Mode {
	return []Mode{Loading, Running, Paused}
}
