package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/config"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/core"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/storage"
)

// fail prints an error the way every command reports it and exits.
func fail(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", a...)
	os.Exit(1)
}

// runtimeConfig builds the runtime config from the global flags and the
// terminal size.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     seed,
	}
}

// loadSettings loads the settings file from --config or the search path.
func loadSettings() config.CrawlerConfig {
	settings, err := config.LoadCrawler(flagConfig)
	if err != nil {
		fail("%v", err)
	}
	return settings
}

// newLogger creates a logger writing to w at the --log-level level.
func newLogger(w io.Writer, prefix string) *log.Logger {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		fail("invalid --log-level %q", flagLogLevel)
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	})
}

// fileLogger logs to ~/.crawler/crawler.log while the alternate screen owns
// the terminal. The returned function closes the file.
func fileLogger() (*log.Logger, func()) {
	path := filepath.Join(config.DataDir(), "crawler.log")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err == nil {
			return newLogger(f, "crawler"), func() { f.Close() }
		}
	}
	return newLogger(io.Discard, "crawler"), func() {}
}

// openStore opens the run history. Demos still run without it.
func openStore(logger *log.Logger) *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open run history", "error", err)
		fmt.Fprintf(os.Stderr, "Warning: could not open run history: %v\n", err)
		return nil
	}
	return store
}
