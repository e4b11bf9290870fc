// Package session runs one demo instance: it builds the demo on a fresh
// world, records the run in the history store and steps the scheduler for
// a frontend.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/config"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/core"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/engine"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/mode"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/registry"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/schedule"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/storage"
)

// Options configures a session.
type Options struct {
	Runtime  core.RuntimeConfig
	Settings config.CrawlerConfig
	Store    *storage.Store // nil disables run history
	User     string         // SSH user, empty for local runs
	Logger   *log.Logger
}

// Session is one running demo.
type Session struct {
	ID   string
	Demo registry.Demo

	sched    *schedule.Scheduler
	renderer *engine.Renderer
	store    *storage.Store
	logger   *log.Logger
	closed   bool
}

// New creates the demo, builds it and runs its startup systems.
func New(demoID string, opts Options) (*Session, error) {
	demo, err := registry.Create(demoID)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.With("demo", demoID)

	w := engine.NewWorld()
	sched := schedule.New(w, schedule.WithLogger(logger))
	env := registry.Env{Runtime: opts.Runtime, Settings: opts.Settings}
	if err := demo.Build(sched, env); err != nil {
		w.Close()
		return nil, fmt.Errorf("session: cannot build %s: %w", demoID, err)
	}

	s := &Session{
		ID:       uuid.NewString(),
		Demo:     demo,
		sched:    sched,
		renderer: engine.NewRenderer(w),
		store:    opts.Store,
		logger:   logger,
	}

	if s.store != nil {
		runID, err := s.store.BeginRun(demoID, opts.User)
		if err != nil {
			w.Close()
			return nil, err
		}
		s.ID = runID
		sched.Modes().Observe(s.recordTransition)
	}
	s.logger = logger.With("run", s.ID)

	if err := sched.Start(); err != nil {
		s.Close()
		return nil, fmt.Errorf("session: cannot start %s: %w", demoID, err)
	}
	s.logger.Info("session started")
	return s, nil
}

func (s *Session) recordTransition(from, to mode.Mode) {
	w := s.sched.World()
	if err := s.store.RecordTransition(s.ID, w.Tick(), from.String(), to.String()); err != nil {
		s.logger.Warn("cannot record transition", "from", from, "to", to, "error", err)
	}
}

// Step runs one tick with the actions pressed since the previous one.
func (s *Session) Step(dt time.Duration, in core.InputFrame) error {
	return s.sched.Tick(dt, in)
}

// WaitAssets blocks until every asset load started so far has finished.
// Demos without an asset server return at once.
func (s *Session) WaitAssets() {
	if server := s.sched.World().Assets(); server != nil {
		server.Wait()
	}
}

// Done reports whether the demo raised the exit signal.
func (s *Session) Done() bool {
	return s.sched.World().ExitRequested()
}

// Mode returns the current mode.
func (s *Session) Mode() mode.Mode {
	return s.sched.Modes().Current()
}

// Ticks returns the number of completed ticks.
func (s *Session) Ticks() int64 {
	return s.sched.World().Tick()
}

// Console returns the demo's text output.
func (s *Session) Console() *engine.Console {
	return s.sched.World().Console()
}

// Scheduler exposes the underlying scheduler.
func (s *Session) Scheduler() *schedule.Scheduler {
	return s.sched
}

// Render draws the world into dst.
func (s *Session) Render(dst *core.Screen) {
	s.renderer.Render(dst)
}

// Close records the end of the run and releases the world. It is safe to
// call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if s.store != nil {
		errs = append(errs, s.store.EndRun(s.ID, s.Ticks(), s.Mode().String()))
	}
	errs = append(errs, s.sched.World().Close())
	s.logger.Info("session closed", "ticks", s.Ticks(), "mode", s.Mode())
	return errors.Join(errs...)
}
