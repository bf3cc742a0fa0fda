// Package logging builds the leveled console logger shared by the board and
// the backends.
package logging

import (
	"io"

	"github.com/charmbracelet/log"

	"notifier/internal/config"
)

// Prefix is printed before every log line.
const Prefix = "notifier"

// Options holds configuration for console logging.
type Options struct {
	Level           log.Level
	ReportTimestamp bool
	Prefix          string
}

// OptionsFor derives logger options from the common flags.
// --debug wins over --quiet.
func OptionsFor(cfg *config.Config) Options {
	opts := Options{
		Level:  log.InfoLevel,
		Prefix: Prefix,
	}
	if cfg == nil {
		return opts
	}
	switch {
	case cfg.Debug:
		opts.Level = log.DebugLevel
		opts.ReportTimestamp = true
	case cfg.Quiet:
		opts.Level = log.ErrorLevel
	}
	return opts
}

// New creates a text logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       log.TextFormatter,
		ReportTimestamp: opts.ReportTimestamp,
		Prefix:          opts.Prefix,
	})
}

// ForConfig is shorthand for New(w, OptionsFor(cfg)).
func ForConfig(w io.Writer, cfg *config.Config) *log.Logger {
	return New(w, OptionsFor(cfg))
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return New(io.Discard, Options{Level: log.FatalLevel})
}
