package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New constructs the service logger. Development runs get debug level and a
// human readable console writer; everything else logs JSON at info level.
func New(appEnv string) zerolog.Logger {
	return newWithOutput(appEnv, os.Stdout)
}

func newWithOutput(appEnv string, out io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "development" {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger()

	if appEnv == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}

	return logger
}

// OrDiscard returns l, or a logger that drops everything when l is nil.
func OrDiscard(l *zerolog.Logger) *zerolog.Logger {
	if l != nil {
		return l
	}
	discard := zerolog.New(io.Discard)
	return &discard
}
