package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/platform/headless"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/platform/tui"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/registry"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/session"
)

var (
	flagHeadless bool
	flagTicks    int64
	flagPress    []string
)

var runCmd = &cobra.Command{
	Use:   "run <demo>",
	Short: "Run a demo",
	Long: `Start the specified demo.

Controls (default bindings, see --config):
  Arrows/WASD  - Move the camera
  P/Space      - Pause and resume
  Esc          - Exit the demo
  Ctrl+S       - Save a screenshot to ~/.crawler/screenshots
  Ctrl+C       - Quit

Headless mode runs without a terminal: every tick covers exactly 1/fps
seconds, console output goes to stdout and the first tick error aborts the
run. Key presses are scripted with --press tick:action.

Examples:
  crawler run crawler
  crawler run basic --headless --ticks 3
  crawler run crawler --headless --ticks 600 --press 120:pause --press 180:pause
  crawler run crawler --config ./my-crawler.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&flagHeadless, "headless", false, "Run without a terminal UI")
	runCmd.Flags().Int64Var(&flagTicks, "ticks", 600, "Headless: stop after this many ticks (0 = one tick after the last --press)")
	runCmd.Flags().StringArrayVar(&flagPress, "press", nil, "Headless: press an action on a tick, e.g. 30:pause")
}

func runRun(cmd *cobra.Command, args []string) {
	demoID := args[0]

	// Check if demo exists
	if !registry.Exists(demoID) {
		fail("unknown demo %q\nRun 'crawler list' to see available demos.", demoID)
	}

	if flagHeadless {
		runHeadless(demoID)
		return
	}

	logger, closeLog := fileLogger()
	defer closeLog()

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	opts := session.Options{
		Runtime:  runtimeConfig(),
		Settings: loadSettings(),
		Store:    store,
		Logger:   logger,
	}
	if err := tui.Run(demoID, opts); err != nil {
		logger.Error("demo failed", "demo", demoID, "error", err)
		if store != nil {
			store.Close()
		}
		closeLog()
		fail("running demo: %v", err)
	}
}

func runHeadless(demoID string) {
	presses, err := headless.ParseScript(flagPress)
	if err != nil {
		fail("%v", err)
	}

	logger := newLogger(os.Stderr, "crawler")
	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	res, err := headless.Run(demoID, headless.Options{
		Session: session.Options{
			Runtime:  runtimeConfig(),
			Settings: loadSettings(),
			Store:    store,
			Logger:   logger,
		},
		Ticks:   flagTicks,
		Presses: presses,
		Out:     os.Stdout,
	})
	logger.Info("run finished", "run", res.RunID, "ticks", res.Ticks, "mode", res.Mode, "exited", res.Exited)
	if err != nil {
		if store != nil {
			store.Close()
		}
		fail("%v", err)
	}
}
