package internal

import (
	"log/slog"
	"strconv"
	"sync/atomic"
)

// Output modes controlling log verbosity.
type modes struct {
	quiet   atomic.Bool // Only warnings and errors are logged.
	debug   atomic.Bool // Debug records are logged. Wins over quiet.
	verbose atomic.Bool // Records carry timestamps and source locations.
}

var (
	mode     modes
	logLevel slog.LevelVar // Level shared by every logger created by NewLogger.
)

// Seeds the output modes from linker flags.
//
// The rawQuiet, rawDebug, and rawVerbose variables are set via ldflags by
// release builds. Values that do not parse as booleans leave the mode off.
func init() {
	seed(&mode.quiet, rawQuiet)
	seed(&mode.debug, rawDebug)
	seed(&mode.verbose, rawVerbose)
}

func seed(b *atomic.Bool, raw string) {
	if v, err := strconv.ParseBool(raw); err == nil {
		b.Store(v)
	}
}

// Enables or disables quiet mode.
func SetQuiet(enabled bool) {
	mode.quiet.Store(enabled)
}

// Returns true if quiet mode is enabled.
func IsQuiet() bool {
	return mode.quiet.Load()
}

// Enables or disables debug mode.
func SetDebug(enabled bool) {
	mode.debug.Store(enabled)
}

// Returns true if debug mode is enabled.
func IsDebug() bool {
	return mode.debug.Load()
}

// Enables or disables verbose logging.
func SetVerbose(enabled bool) {
	mode.verbose.Store(enabled)
}

// Returns true if verbose logging is enabled.
func IsVerbose() bool {
	return mode.verbose.Load()
}

// Returns the log level derived from the quiet and debug modes.
func ModeLevel() slog.Level {
	if IsDebug() {
		return slog.LevelDebug
	}
	if IsQuiet() {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// Sets the minimum level of loggers created by [NewLogger].
func SetLogLevel(level slog.Level) {
	logLevel.Set(level)
}

// Returns the current minimum log level.
func LogLevel() slog.Level {
	return logLevel.Level()
}
