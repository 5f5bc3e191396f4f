/*
Package logger provides logging functionality to a switchback app by defining the required behavior in [Logger]
and providing implementations of it with [SlogLogger] and [SentryLogger].

# Overview

The Logger interface outputs messages at certain levels of importance.
An implementation of Logger may be initialized at a certain [log/slog.Level]
and only emit messages at or above that level of importance.

# SlogLogger

The [SlogLogger] hands every message to a [*log/slog.Logger], so the handler configured there
decides how a log line looks. In development, [ColorizeLevel] and [TruncSourceAttr]
pair well with a [github.com/lmittmann/tint] handler:

	2024/04/28 15:55:21 DBG http/pipeline/controller.go:43 rendered log_context.data.pattern=/

A [*LogContext] carries whatever is inessential to the message proper
but provides a fuller picture of the application state at the time of logging:
the request being served, the error that instigated the log and any other data.

# SentryLogger

[SentryLogger] wraps another Logger and ships the error in a LogContext to Sentry
for messages at warning level or above.
*/
package logger
