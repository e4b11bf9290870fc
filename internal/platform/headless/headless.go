// Package headless drives a demo session without a terminal: fixed tick
// length, scripted key presses and console output written to a stream.
package headless

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/core"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/mode"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/session"
)

// Press is an action delivered as newly pressed on a given tick.
// Tick 0 is the first tick after startup.
type Press struct {
	Tick   int64
	Action core.Action
}

// ParsePress parses "tick:action", e.g. "30:pause".
func ParsePress(s string) (Press, error) {
	tickStr, name, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Press{}, fmt.Errorf("headless: press %q is not tick:action", s)
	}
	tick, err := strconv.ParseInt(tickStr, 10, 64)
	if err != nil || tick < 0 {
		return Press{}, fmt.Errorf("headless: press %q has a bad tick", s)
	}
	action, ok := core.ParseAction(name)
	if !ok || action == core.ActionNone || action == core.ActionQuit {
		return Press{}, fmt.Errorf("headless: press %q has an unknown action", s)
	}
	return Press{Tick: tick, Action: action}, nil
}

// ParseScript parses every press and orders them by tick.
func ParseScript(specs []string) ([]Press, error) {
	presses := make([]Press, 0, len(specs))
	for _, s := range specs {
		p, err := ParsePress(s)
		if err != nil {
			return nil, err
		}
		presses = append(presses, p)
	}
	sort.SliceStable(presses, func(i, j int) bool {
		return presses[i].Tick < presses[j].Tick
	})
	return presses, nil
}

// Options configures a headless run.
type Options struct {
	Session session.Options
	Ticks   int64     // Stop after this many ticks, <= 0 stops one tick after the last press
	Presses []Press   // Scripted input
	Out     io.Writer // Console lines, nil discards them
}

// Result summarizes a finished run.
type Result struct {
	RunID  string
	Ticks  int64
	Mode   mode.Mode
	Exited bool // the demo raised its exit signal
}

// ErrUnbounded is returned for a run with neither a tick limit nor presses.
var ErrUnbounded = errors.New("headless: run needs a tick limit or scripted presses")

// tickLimit returns how many ticks a run may take at most.
func tickLimit(opts Options) (int64, error) {
	if opts.Ticks > 0 {
		return opts.Ticks, nil
	}
	if len(opts.Presses) == 0 {
		return 0, ErrUnbounded
	}
	var last int64
	for _, p := range opts.Presses {
		last = max(last, p.Tick)
	}
	return last + 1, nil
}

// Run builds the demo and ticks it. Asset loads are awaited before every
// tick so a script sees the same modes on every run. The first tick error
// aborts the run.
func Run(demoID string, opts Options) (Result, error) {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	limit, err := tickLimit(opts)
	if err != nil {
		return Result{}, err
	}

	sess, err := session.New(demoID, opts.Session)
	if err != nil {
		return Result{}, err
	}

	dt := opts.Session.Runtime.TickInterval()
	presses := opts.Presses
	runErr := func() error {
		if err := flush(out, sess); err != nil {
			return err
		}
		for tick := int64(0); tick < limit; tick++ {
			frame := core.NewInputFrame()
			for len(presses) > 0 && presses[0].Tick <= tick {
				frame.Set(presses[0].Action)
				presses = presses[1:]
			}

			sess.WaitAssets()
			stepErr := sess.Step(dt, frame)
			if err := flush(out, sess); err != nil {
				return err
			}
			if stepErr != nil {
				return stepErr
			}
			if sess.Done() {
				return nil
			}
		}
		return nil
	}()

	res := Result{
		RunID:  sess.ID,
		Ticks:  sess.Ticks(),
		Mode:   sess.Mode(),
		Exited: sess.Done(),
	}
	if err := sess.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return res, runErr
}

func flush(out io.Writer, sess *session.Session) error {
	for _, line := range sess.Console().Drain() {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}
