package middleware

import (
	"fmt"
	"net/http"
	"os"

	"github.com/getsentry/sentry-go/http"
	"github.com/gorilla/handlers"
	"github.com/xy-planning-network/switchback"
)

// ReportPanic recovers panics raised while handling a request.
//
// In environments reporting errors, panics are sent to Sentry.
// Otherwise, the panic and its stack are printed to stderr.
// Either way, the client receives a 500 if nothing was written yet.
func ReportPanic(env switchback.Environment) Adapter {
	if !env.ReportsErrors() {
		return handlers.RecoveryHandler(
			handlers.RecoveryLogger(stderrLogger{}),
			handlers.PrintRecoveryStack(true),
		)
	}

	sh := sentryhttp.New(sentryhttp.Options{
		Repanic:         true,
		WaitForDelivery: true,
	})

	return func(h http.Handler) http.Handler {
		return handlers.RecoveryHandler()(sh.Handle(h))
	}
}

type stderrLogger struct{}

func (stderrLogger) Println(v ...any) {
	fmt.Fprintln(os.Stderr, v...)
}
