// Package logger builds the zerolog logger every command logs through.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New creates a logger writing to w, or stderr when w is nil. Format "text"
// writes human-readable lines; anything else writes JSON. Unknown levels
// fall back to info.
func New(level, format string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}

	output := w
	if format == "text" {
		output = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}
	}

	return zerolog.New(output).Level(logLevel).With().Timestamp().Logger()
}
