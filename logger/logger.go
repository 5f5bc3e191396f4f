package logger

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// knownFrames skips runtime.Callers, SlogLogger.log and the exported SlogLogger method.
const knownFrames = 3

// LevelFatal ranks above [log/slog.LevelError].
const LevelFatal = slog.Level(12)

// The Logger interface defines the levels a logging can occur at.
type Logger interface {
	Debug(msg string, ctx *LogContext)
	Error(msg string, ctx *LogContext)
	Fatal(msg string, ctx *LogContext)
	Info(msg string, ctx *LogContext)
	Warn(msg string, ctx *LogContext)

	LogLevel() slog.Level
}

// SlogLogger implements Logger using log/slog.
type SlogLogger struct {
	l    *slog.Logger
	skip int
}

// New constructs a SlogLogger emitting through l.
// A nil l uses [log/slog.Default].
func New(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}

	return &SlogLogger{l: l}
}

// AddSkip returns a copy of l scrolling back i more frames
// to find the call site of a message.
func (l *SlogLogger) AddSkip(i int) *SlogLogger {
	newl := *l
	newl.skip += i
	return &newl
}

// With returns a copy of l including args in every message.
func (l *SlogLogger) With(args ...any) *SlogLogger {
	newl := *l
	newl.l = l.l.With(args...)
	return &newl
}

// Debug writes a debug log.
func (l *SlogLogger) Debug(msg string, ctx *LogContext) { l.log(slog.LevelDebug, msg, ctx) }

// Error writes an error log.
func (l *SlogLogger) Error(msg string, ctx *LogContext) { l.log(slog.LevelError, msg, ctx) }

// Fatal writes a fatal log.
// It does not exit; that is left to the caller.
func (l *SlogLogger) Fatal(msg string, ctx *LogContext) { l.log(LevelFatal, msg, ctx) }

// Info writes an info log.
func (l *SlogLogger) Info(msg string, ctx *LogContext) { l.log(slog.LevelInfo, msg, ctx) }

// Warn writes a warning log.
func (l *SlogLogger) Warn(msg string, ctx *LogContext) { l.log(slog.LevelWarn, msg, ctx) }

// LogLevel returns the lowest level the underlying handler emits.
func (l *SlogLogger) LogLevel() slog.Level {
	for _, lvl := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l.l.Enabled(context.Background(), lvl) {
			return lvl
		}
	}

	return LevelFatal
}

func (l *SlogLogger) log(level slog.Level, msg string, ctx *LogContext) {
	bg := context.Background()
	if !l.l.Enabled(bg, level) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(knownFrames+l.skip, pcs[:])

	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	if ctx != nil {
		if ctx.Caller != "" {
			r.AddAttrs(slog.String("caller", ctx.Caller))
		}

		r.AddAttrs(slog.Any("log_context", ctx))
	}

	_ = l.l.Handler().Handle(bg, r)
}
