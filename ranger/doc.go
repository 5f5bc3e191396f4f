/*
Package ranger initializes and manages a switchback app with sane defaults.

# Ranger

The main entrypoint to package ranger is the [Ranger] type.
A [Ranger] ought to be constructed with [New], declaring routes through [RangerOption]s
or directly on the [Ranger] before calling [*Ranger.Guide].

[*Ranger.Guide] begins a switchback app's web server.
By default, [*Ranger.Guide] listens on port 3000 of every interface,
assuming either a reverse proxy proxies requests
or only a client application makes direct requests to the switchback web server.

Upon calling [*Ranger.Guide], all routes declared up to that point are frozen and active.
Stop that web server with [*Ranger.Shutdown],
cancel the context passed to [WithContext],
or send a signal [*Ranger.Guide] listens for.

# Defaults

Every request passes through, in order:
request ID and IP address injection, request logging, rate limiting, optional "Cache-Control",
and, where errors are reported, HTTPS redirection.
Before routing, the app serves the maintenance page if in maintenance mode,
metrics if [WithMetrics] was used, and files in the public directory.
Views are html/template files or templ components;
requests matching no route render the embedded 404 page.

# Configuration

A developer configures a switchback app through environment variables or [WithConfig].

Environment variables ought to be set in a file called ".env"
found at the same directory the application is executed from.

Here are the available environment variables.
  - APP_TITLE: a short title for the application; default: switchback
  - ASSET_MAX_AGE: how long clients may cache responses, as understood by [time.ParseDuration]; default: not cached
  - BASE_URL: the base URL the application runs on; default: built from HOST & PORT
  - ENVIRONMENT: the environment the application is running in; default: DEVELOPMENT; cf. [switchback.Environment]
  - HOST: the host the application is running on; default: localhost
  - LOG_JSON: log JSON in development too; default: false
  - LOG_LEVEL: the level at which to begin logging; default: INFO
  - MAINTENANCE_MODE: answer every request with a 503; default: false
  - METRICS_PATH: where metrics are served when enabled; default: /metrics
  - PORT: the port the application should listen on; default: 3000
  - PUBLIC_DIR: the directory served before routing; default: public
  - RATE_BURST: requests an IP address may burst to; default: 20
  - RATE_LIMIT: requests per second an IP address may make; default: 5
  - SENTRY_DSN: the DSN errors are reported to
  - SERVER_IDLE_TIMEOUT: the timeout for idling between requests when using keep-alives; default: 120s
  - SERVER_READ_TIMEOUT: the timeout for reading HTTP requests; default: 5s
  - SERVER_SHUTDOWN_TIMEOUT: how long shutting down waits for in-flight requests; default: 5s
  - SERVER_WRITE_TIMEOUT: the timeout for writing HTTP responses; default: 30s
  - TLS_CERT_FILE, TLS_KEY_FILE: serve HTTPS with this certificate and key
*/
package ranger
