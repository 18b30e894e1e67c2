package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the service logger. Development gets a human readable console
// writer, everything else JSON lines.
func New(level string, dev bool) zerolog.Logger {
	var out io.Writer = os.Stdout
	if dev {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(out, level)
}

// NewWithWriter builds a logger writing to w.
func NewWithWriter(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "patient-studies").Logger()
}
