package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/platform/tui"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/registry"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/storage"
)

var (
	flagInteractive bool
	flagLimit       int
	flagShowRun     string
	flagClear       bool
)

var historyCmd = &cobra.Command{
	Use:   "history [demo]",
	Short: "Show recorded runs",
	Long: `Display the most recent runs, optionally for one demo.

Each run records when it started, how many ticks it lasted, the mode it
ended in and how many mode transitions it committed.

Examples:
  crawler history
  crawler history crawler --limit 5
  crawler history --run <run id>
  crawler history --interactive
  crawler history crawler --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse runs in a table")
	historyCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of runs to show")
	historyCmd.Flags().StringVar(&flagShowRun, "run", "", "Show the transitions of one run")
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the recorded runs")
}

func runHistory(cmd *cobra.Command, args []string) {
	demoID := ""
	if len(args) == 1 {
		demoID = args[0]
		if !registry.Exists(demoID) {
			fail("unknown demo %q\nRun 'crawler list' to see available demos.", demoID)
		}
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail("opening run history: %v", err)
	}
	defer store.Close()

	switch {
	case flagClear:
		err = store.ClearRuns(demoID)
		if err == nil {
			fmt.Println("Run history cleared.")
		}
	case flagShowRun != "":
		err = printRun(store, flagShowRun)
	case flagInteractive:
		cfg := runtimeConfig()
		err = tui.RunHistory(store, cfg.ScreenW, cfg.ScreenH)
	default:
		err = printRuns(store, demoID)
	}
	if err != nil {
		store.Close()
		fail("%v", err)
	}
}

func printRuns(store *storage.Store, demoID string) error {
	runs, err := store.RecentRuns(demoID, flagLimit)
	if err != nil {
		return err
	}

	title := "Recent runs"
	if demoID != "" {
		title = fmt.Sprintf("Recent runs - %s", demoID)
	}
	fmt.Println(title)
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Run 'crawler run <id>' to record the first one!")
		return nil
	}

	fmt.Printf("  %-36s  %-8s  %-16s  %-8s  %6s  %-8s  %s\n", "Run", "Demo", "Started", "Time", "Ticks", "Mode", "Changes")
	fmt.Printf("  %-36s  %-8s  %-16s  %-8s  %6s  %-8s  %s\n", "---", "----", "-------", "----", "-----", "----", "-------")
	for _, r := range runs {
		duration := "active"
		if r.Finished() {
			duration = r.Duration().Round(time.Second).String()
		}
		fmt.Printf("  %-36s  %-8s  %-16s  %-8s  %6d  %-8s  %d\n",
			r.ID, r.DemoID, r.StartedAt.Local().Format("2006-01-02 15:04"), duration, r.Ticks, r.FinalMode, r.Transitions)
	}
	return nil
}

func printRun(store *storage.Store, runID string) error {
	run, err := store.Run(runID)
	if err != nil {
		return err
	}
	transitions, err := store.Transitions(runID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s (%s)\n", run.ID, run.DemoID)
	if run.User != "" {
		fmt.Printf("User: %s\n", run.User)
	}
	fmt.Printf("Started: %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if run.Finished() {
		fmt.Printf("Ended:   %s after %d ticks in %s\n", run.EndedAt.Local().Format("2006-01-02 15:04:05"), run.Ticks, run.FinalMode)
	}
	fmt.Println()

	if len(transitions) == 0 {
		fmt.Println("No mode transitions.")
		return nil
	}
	fmt.Printf("  %6s  %-8s  %s\n", "Tick", "From", "To")
	fmt.Printf("  %6s  %-8s  %s\n", "----", "----", "--")
	for _, tr := range transitions {
		fmt.Printf("  %6d  %-8s  %s\n", tr.Tick, tr.From, tr.To)
	}
	return nil
}
