package logger

import (
	"fmt"
	"log/slog"

	"github.com/fatih/color"
)

// ColorizeLevel paints the level of a record by severity.
// It is meant for the ReplaceAttr of a text handler writing to a terminal.
func ColorizeLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.LevelKey {
		return a
	}

	lvl, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}

	var c *color.Color
	switch {
	case lvl >= LevelFatal:
		c = color.New(color.FgMagenta, color.Bold)
	case lvl >= slog.LevelError:
		c = color.New(color.FgRed)
	case lvl >= slog.LevelWarn:
		c = color.New(color.FgYellow)
	case lvl >= slog.LevelInfo:
		c = color.New(color.FgBlue)
	default:
		c = color.New(color.FgWhite)
	}

	name := lvl.String()
	if lvl >= LevelFatal {
		name = "FATAL"
	}

	return slog.String(a.Key, c.Sprint(name))
}

// TruncSourceAttr shortens the source of a record to its parent directory, file and line.
func TruncSourceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.SourceKey {
		return a
	}

	src, ok := a.Value.Any().(*slog.Source)
	if !ok {
		return a
	}

	return slog.String(a.Key, fmt.Sprintf(callerTmpl, immediateFilepath(src.File), src.Line))
}

// ChainReplaceAttr applies each fn in order.
func ChainReplaceAttr(fns ...func([]string, slog.Attr) slog.Attr) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		for _, fn := range fns {
			a = fn(groups, a)
		}

		return a
	}
}
