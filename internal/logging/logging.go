// Package logging configures the global zerolog logger and exposes the
// shared writer used by the HTTP request logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"miner-tycoon/internal/config"
)

var writer io.Writer = os.Stdout

// Init applies the log config to the global logger. A configured file
// path routes all output through a size-limited writer shared with
// Writer().
func Init(cfg config.LogConfig) {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level))); err == nil && cfg.Level != "" {
		level = parsed
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		if w, err := newSizeLimitedWriter(cfg.File, cfg.MaxMB); err == nil {
			out = w
		}
	}
	writer = out

	display := out
	if cfg.Pretty {
		display = zerolog.ConsoleWriter{Out: out}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(display).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer returns the sink Init selected, for collaborators that log
// outside zerolog (the HTTP request logger).
func Writer() io.Writer { return writer }
