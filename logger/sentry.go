package logger

import (
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/xy-planning-network/switchback"
)

// A SentryLogger sends errors logged at warning level and above to Sentry.
type SentryLogger struct {
	l Logger
}

// NewSentryLogger initializes Sentry and wraps l with a SentryLogger.
// If Sentry cannot be initialized, the error is logged and l is returned.
func NewSentryLogger(env switchback.Environment, l Logger, dsn string) Logger {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:          dsn,
		Environment:  env.String(),
		IgnoreErrors: []string{"write: broken pipe", "stream aborted"},
	})
	if err != nil {
		l.Error(fmt.Sprintf("unable to init Sentry: %s", err), &LogContext{Error: err})
		return l
	}

	if sl, ok := l.(*SlogLogger); ok {
		l = sl.AddSkip(1)
	}

	return &SentryLogger{l: l}
}

// Debug writes a debug log.
func (sl *SentryLogger) Debug(msg string, ctx *LogContext) { sl.l.Debug(msg, ctx) }

// Error writes an error log and sends it to Sentry.
func (sl *SentryLogger) Error(msg string, ctx *LogContext) {
	sl.l.Error(msg, ctx)
	sl.send(slog.LevelError, sentry.LevelError, ctx)
}

// Fatal writes a fatal log and sends it to Sentry.
func (sl *SentryLogger) Fatal(msg string, ctx *LogContext) {
	sl.l.Fatal(msg, ctx)
	sl.send(LevelFatal, sentry.LevelFatal, ctx)
}

// Info writes an info log.
func (sl *SentryLogger) Info(msg string, ctx *LogContext) { sl.l.Info(msg, ctx) }

// Warn writes a warning log and sends it to Sentry.
func (sl *SentryLogger) Warn(msg string, ctx *LogContext) {
	sl.l.Warn(msg, ctx)
	sl.send(slog.LevelWarn, sentry.LevelWarning, ctx)
}

// LogLevel returns the level of the wrapped Logger.
func (sl *SentryLogger) LogLevel() slog.Level { return sl.l.LogLevel() }

// send ships the LogContext.Error to Sentry,
// including any additional data from LogContext.
func (sl *SentryLogger) send(lvl slog.Level, level sentry.Level, ctx *LogContext) {
	if ctx == nil || ctx.Error == nil || sl.l.LogLevel() > lvl {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		if ctx.Request != nil {
			scope.SetRequest(ctx.Request)
		}

		if ctx.Data != nil {
			scope.SetExtra("data", ctx.Data)
		}

		scope.SetLevel(level)
		sentry.CaptureException(ctx.Error)
	})
}
