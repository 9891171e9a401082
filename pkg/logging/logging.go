// Package logging configures structured logging for the service: colored
// tint output on a terminal, JSON otherwise.
//
// Usage:
//
//	logging.Setup()                          // level from LOG_LEVEL env
//	logging.SetupWithLevel(slog.LevelDebug)  // explicit level override
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Setup configures logging at the level specified by LOG_LEVEL env var
// (default: INFO).
func Setup() {
	SetupWithLevel(levelFromEnv())
}

// SetupWithLevel configures logging at the given level.
func SetupWithLevel(level slog.Level) {
	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})
	}
	slog.SetDefault(slog.New(handler))
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
