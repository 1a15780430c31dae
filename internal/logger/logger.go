// Package logger builds the JSON line loggers shared by the HTTP, database and tracing layers.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a zerolog logger writing one JSON object per line to w.
// Every entry carries a "ts" field rendered as RFC3339Nano in loc.
func New(w io.Writer, loc *time.Location) zerolog.Logger {
	if loc == nil {
		loc = time.UTC
	}
	return zerolog.New(w).Hook(zerolog.HookFunc(func(e *zerolog.Event, _ zerolog.Level, _ string) {
		e.Str("ts", time.Now().In(loc).Format(time.RFC3339Nano))
	}))
}

// Stdout is New bound to os.Stdout.
func Stdout(loc *time.Location) zerolog.Logger {
	return New(os.Stdout, loc)
}

// Component derives a logger tagged with the emitting component.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
