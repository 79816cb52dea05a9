// Package logging holds the process-wide zerolog setup.
package logging

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var initOnce sync.Once

// Init configures the global logger. Repeated calls are no-ops, so builders
// that request logging can call it unconditionally.
func Init() {
	initOnce.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339
		lvl := parseLevel(os.Getenv("ASSEMBLD_LOG_LEVEL"))
		w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
		log.Logger = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	})
}

// Logger returns the configured global logger, initializing on first use.
func Logger() zerolog.Logger {
	Init()
	return log.Logger
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
