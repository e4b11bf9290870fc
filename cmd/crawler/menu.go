package main

import (
	"github.com/spf13/cobra"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/platform/tui"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/session"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start crawler with a demo picker menu",
	Long: `Start crawler in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to run a demo.
When a demo exits (Esc by default), you return to the menu.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Run demo
  Tab          - Run history
  Q            - Quit

Examples:
  crawler menu
  crawler menu --fps 30
  crawler menu --db ./runs.db`,
	Run: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) {
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
	if err := tui.RunApp(opts); err != nil {
		logger.Error("menu failed", "error", err)
		if store != nil {
			store.Close()
		}
		closeLog()
		fail("%v", err)
	}
}
