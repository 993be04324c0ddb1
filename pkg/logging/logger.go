// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	// Set global log level
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	// Configure output
	var output io.Writer = cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: cfg.Output}
	}

	// Create logger with timestamp
	logger := zerolog.New(output).With().Timestamp().Logger()

	// Set as global logger
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Batch store operations (hit/miss, key, TTL)
//   - Page serving (offsets, slice bounds, served count)
//   - Batch generation and prefetch completions
//
// Info: Normal operation events
//   - Successful page requests
//   - Whole-owner cache invalidations
//   - Empty generations (no batch cached)
//   - Server startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Degraded recently-viewed lookups (generation continues without exclusions)
//   - Prefetch absence checks that failed
//   - Non-critical store errors
//
// Error: Error conditions requiring attention
//   - Foreground generation failures
//   - Background prefetch generation failures
//   - Store unavailability
//   - Configuration errors
//
// Context Fields:
//   - owner: Feed owner (user ID or "anon")
//   - scope: Feed surface (main, category)
//   - batch: Batch number within the logical feed
//   - within: Offset inside the batch
//   - served: Items returned in the page
//   - cache_hit: Boolean indicating batch cache hit
//   - has_next: Boolean lookahead result
//   - ttl: Batch TTL
//   - key: Full store key (prefetch path)
