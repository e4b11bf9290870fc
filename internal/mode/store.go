package mode

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/engine"
)

var (
	// ErrReentrantTransition is returned when a transition is requested or
	// committed from inside a transition hook.
	ErrReentrantTransition = errors.New("mode: transition requested during commit")
	// ErrAlreadyEntered is returned by a second call to Enter.
	ErrAlreadyEntered = errors.New("mode: initial mode already entered")
	// ErrNotEntered is returned by Commit before Enter.
	ErrNotEntered = errors.New("mode: initial mode not entered")
)

// Hook is a transition binding body.
type Hook func(w *engine.World) error

// Observer is told about every committed transition.
type Observer func(from, to Mode)

type binding struct {
	name string
	hook Hook
}

// HookError reports a failed transition binding.
type HookError struct {
	Edge string // "enter" or "exit"
	Mode Mode
	Hook string
	Err  error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("mode: on-%s %s hook %q: %v", e.Edge, e.Mode, e.Hook, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// Store holds the current mode, the pending request and the transition
// bindings. It is owned by one scheduler and is not safe for concurrent use.
type Store struct {
	current    Mode
	pending    Mode
	hasPending bool

	committing bool
	entered    bool
	sealed     bool

	onEnter   [numModes][]binding
	onExit    [numModes][]binding
	observers []Observer

	transitions int
	logger      *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger transitions are reported to.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore creates a store in the Loading mode.
func NewStore(opts ...Option) *Store {
	s := &Store{
		current: Loading,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the active mode.
func (s *Store) Current() Mode {
	return s.current
}

// Pending returns the requested next mode, if any.
func (s *Store) Pending() (Mode, bool) {
	return s.pending, s.hasPending
}

// Transitions returns the number of committed transitions.
func (s *Store) Transitions() int {
	return s.transitions
}

// Eligible reports whether a group with predicate p may run this tick.
func (s *Store) Eligible(p Predicate) bool {
	return p.Matches(s.current)
}

// OnEnter binds a hook to entering m. Hooks for the same mode run in
// registration order.
func (s *Store) OnEnter(m Mode, name string, hook Hook) {
	s.bind(&s.onEnter, "enter", m, name, hook)
}

// OnExit binds a hook to leaving m.
func (s *Store) OnExit(m Mode, name string, hook Hook) {
	s.bind(&s.onExit, "exit", m, name, hook)
}

func (s *Store) bind(table *[numModes][]binding, edge string, m Mode, name string, hook Hook) {
	if s.sealed {
		panic(fmt.Sprintf("mode: on-%s %s hook %q registered after start", edge, m, name))
	}
	if !m.Valid() {
		panic(fmt.Sprintf("mode: on-%s hook %q bound to invalid mode %d", edge, name, uint8(m)))
	}
	if hook == nil {
		panic(fmt.Sprintf("mode: on-%s %s hook %q is nil", edge, m, name))
	}
	table[m] = append(table[m], binding{name: name, hook: hook})
}

// Observe registers fn to be called after every committed transition.
func (s *Store) Observe(fn Observer) {
	s.observers = append(s.observers, fn)
}

// Seal freezes the bindings. Registering afterwards panics.
func (s *Store) Seal() {
	s.sealed = true
}

// Request records to as the pending mode, replacing any earlier request
// from the same tick.
func (s *Store) Request(to Mode) error {
	if s.committing {
		return ErrReentrantTransition
	}
	if !to.Valid() {
		return fmt.Errorf("mode: cannot request invalid mode %d", uint8(to))
	}
	s.pending = to
	s.hasPending = true
	return nil
}

// Discard drops the pending request, if any. It reports whether one was
// pending.
func (s *Store) Discard() bool {
	had := s.hasPending
	s.hasPending = false
	return had
}

// Enter runs the on-enter bindings of the initial mode. It must be called
// once, before the first Commit.
func (s *Store) Enter(w *engine.World) error {
	if s.entered {
		return ErrAlreadyEntered
	}
	s.entered = true
	s.committing = true
	defer func() { s.committing = false }()

	s.logger.Debug("entering initial mode", "mode", s.current)
	return s.run(s.onEnter[s.current], "enter", s.current, w)
}

// Commit applies the pending request. On-exit bindings of the current mode
// run first, then the mode changes, then on-enter bindings of the new mode
// run. A request for the current mode is dropped without running hooks.
//
// If an on-exit hook fails, neither the mode nor the request changes. If an
// on-enter hook fails, the new mode stays active and the remaining on-enter
// hooks are skipped.
func (s *Store) Commit(w *engine.World) error {
	if s.committing {
		return ErrReentrantTransition
	}
	if !s.entered {
		return ErrNotEntered
	}
	if !s.hasPending {
		return nil
	}
	if s.pending == s.current {
		s.hasPending = false
		return nil
	}

	s.committing = true
	defer func() { s.committing = false }()

	from, to := s.current, s.pending
	if err := s.run(s.onExit[from], "exit", from, w); err != nil {
		return err
	}

	s.current = to
	s.hasPending = false
	s.transitions++
	s.logger.Debug("mode transition", "from", from, "to", to)
	for _, fn := range s.observers {
		fn(from, to)
	}

	return s.run(s.onEnter[to], "enter", to, w)
}

func (s *Store) run(bindings []binding, edge string, m Mode, w *engine.World) error {
	for _, b := range bindings {
		if err := b.hook(w); err != nil {
			return &HookError{Edge: edge, Mode: m, Hook: b.name, Err: err}
		}
	}
	return nil
}
