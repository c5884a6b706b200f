// Package log wraps zerolog with the level/pretty-print conventions used
// across both binaries in this repo.
package log

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds a root logger for the given level string ("trace", "debug",
// "info", "warn", "error"), optionally formatted for human consumption.
func New(level string, pretty bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var w = os.Stdout
	if pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
			Level(lvl).
			With().
			Timestamp().
			Logger()
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
