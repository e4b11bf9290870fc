// crawler runs small ECS demos in the terminal, driven by a mode controller
// (loading, running, paused).
//
// Usage:
//
//	crawler list              - List available demos
//	crawler run <demo>        - Run a demo (add --headless for scripted runs)
//	crawler menu              - Pick demos interactively
//	crawler serve             - Start SSH server for remote sessions
//	crawler history [demo]    - Show recorded runs
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 60)
//	--seed <value>      - Set RNG seed for reproducible runs
//	--db <path>         - Set database path (default: ~/.crawler/runs.db)
//	--config <path>     - Use a custom settings file
//	--log-level <level> - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import demos to register them
	_ "github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/demos/basic"
	_ "github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/demos/crawler"
	_ "github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/demos/simple"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagConfig   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "crawler",
	Short: "Crawler - ECS demos with a mode controller in your terminal",
	Long: `Crawler runs small entity-component-system demos in the terminal.
The crawler demo loads its sprites in the background, then lets you move
the camera around and pause the world.

Available commands:
  list     - Show all available demos
  run      - Run a specific demo directly
  menu     - Interactive demo picker
  serve    - Start SSH server for remote sessions
  history  - View recorded runs

Examples:
  crawler list
  crawler run crawler
  crawler run basic --headless --ticks 3
  crawler menu
  crawler serve --ssh :2222
  crawler history crawler`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (ticks per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.crawler/runs.db", "Path to run history database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom settings YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
}
