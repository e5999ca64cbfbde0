// Package logging builds the slog logger shared by the commands.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Options selects handler format and minimum level.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

// New returns a logger writing to w. Unknown levels fall back to info and
// unknown formats to text.
func New(w io.Writer, opt Options) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: ParseLevel(opt.Level)}
	var h slog.Handler
	if strings.EqualFold(opt.Format, "json") {
		h = slog.NewJSONHandler(w, hopts)
	} else {
		h = slog.NewTextHandler(w, hopts)
	}
	return slog.New(h)
}

// ParseLevel maps a level name to its slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Component tags a logger with the subsystem it belongs to.
func Component(l *slog.Logger, name string) *slog.Logger {
	return l.With(slog.String("component", name))
}
