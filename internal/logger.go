package internal

import (
	"io"
	"log/slog"

	"github.com/gookit/color"
)

// Creates a text logger writing to w.
//
// Timestamps and source locations are only emitted in verbose mode. When
// colored is set, levels are highlighted for terminal output.
func NewLogger(w io.Writer, verbose, colored bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     &logLevel,
		AddSource: verbose,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				if !verbose {
					return slog.Attr{}
				}
			case slog.LevelKey:
				if colored {
					if level, ok := a.Value.Any().(slog.Level); ok {
						return slog.String(a.Key, levelColor(level).Sprint(level.String()))
					}
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func levelColor(level slog.Level) color.Color {
	switch {
	case level >= slog.LevelError:
		return color.FgRed
	case level >= slog.LevelWarn:
		return color.FgYellow
	case level >= slog.LevelInfo:
		return color.FgCyan
	default:
		return color.FgGray
	}
}
