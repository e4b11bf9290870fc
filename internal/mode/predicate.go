package mode

import "strings"

// Predicate is the set of modes a behavior group may run in. The zero
// Predicate places no restriction and matches every mode.
type Predicate uint8

// Always matches every mode.
const Always Predicate = 0

// In builds a predicate matching exactly the given modes.
func In(modes ...Mode) Predicate {
	var p Predicate
	for _, m := range modes {
		if m.Valid() {
			p |= 1 << m
		}
	}
	return p
}

// Matches reports whether a group with this predicate may run in m.
func (p Predicate) Matches(m Mode) bool {
	if p == Always {
		return true
	}
	return m.Valid() && p&(1<<m) != 0
}

// String lists the matched modes, "always" for the zero predicate.
func (p Predicate) String() string {
	if p == Always {
		return "always"
	}
	var names []string
	for _, m := range All() {
		if p&(1<<m) != 0 {
			names = append(names, m.String())
		}
	}
	return strings.Join(names, "|")
}
