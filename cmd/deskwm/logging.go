package main

import (
	"log/slog"
	"os"

	console "github.com/phsym/console-slog"
	"golang.org/x/term"

	"github.com/1broseidon/deskwm/internal/config"
)

// newLogger builds the process logger and installs it as the slog default.
// Terminals get the colored console handler; anything else gets plain text.
func newLogger(level string, debug bool) (*slog.Logger, error) {
	lvl, err := config.ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	if debug {
		lvl = slog.LevelDebug
	}

	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = console.NewHandler(os.Stderr, &console.HandlerOptions{Level: lvl})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}
