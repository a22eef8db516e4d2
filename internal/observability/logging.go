package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger creates a structured JSON logger on stderr.
// Stdout is reserved for the account snapshot.
// Production default: info. Set via PAYMENTS_LOG_LEVEL env var.
func NewLogger(component string) zerolog.Logger {
	return NewLoggerWithLevel(os.Stderr, component, ParseLogLevel(os.Getenv("PAYMENTS_LOG_LEVEL")))
}

// NewLoggerWithLevel creates a logger with an explicit writer and level.
func NewLoggerWithLevel(w io.Writer, component string, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

// ParseLogLevel maps a level name; unknown names fall back to info.
func ParseLogLevel(s string) zerolog.Level {
	switch s {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}
