package ranger

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/xy-planning-network/switchback"
)

// Config is everything about a switchback app read from environment variables.
//
// A ".env" file in the working directory is loaded into the environment first,
// never overriding variables already set.
type Config struct {
	Env      switchback.Environment `env:"ENVIRONMENT" envDefault:"DEVELOPMENT"`
	AppTitle string                 `env:"APP_TITLE" envDefault:"switchback"`

	// BaseURL defaults to the scheme, host and port the server listens on.
	BaseURL *url.URL `env:"BASE_URL"`
	Host    string   `env:"HOST" envDefault:"localhost"`
	Port    string   `env:"PORT" envDefault:"3000"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"INFO"`
	LogJSON   bool   `env:"LOG_JSON"`
	SentryDSN string `env:"SENTRY_DSN"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"5s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"5s"`

	// TLSCertFile and TLSKeyFile serve HTTPS when both are set.
	TLSCertFile string `env:"TLS_CERT_FILE"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"`

	// PublicDir is served before routing, if it exists.
	PublicDir   string        `env:"PUBLIC_DIR" envDefault:"public"`
	AssetMaxAge time.Duration `env:"ASSET_MAX_AGE"`

	Maintenance bool    `env:"MAINTENANCE_MODE"`
	MetricsPath string  `env:"METRICS_PATH" envDefault:"/metrics"`
	RateLimit   float64 `env:"RATE_LIMIT" envDefault:"5"`
	RateBurst   int     `env:"RATE_BURST" envDefault:"20"`
}

// NewConfig parses a Config from the environment.
//
// NewConfig returns an error wrapping [switchback.ErrBadConfig]
// if a variable cannot be parsed, the environment is unknown,
// or only one of TLS_CERT_FILE and TLS_KEY_FILE is set.
func NewConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", switchback.ErrBadConfig, err)
	}

	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Addr is the address the server listens on.
func (c Config) Addr() string { return ":" + strings.TrimPrefix(c.Port, ":") }

// TLS reports whether the server serves HTTPS.
func (c Config) TLS() bool { return c.TLSCertFile != "" && c.TLSKeyFile != "" }

// URL is the BaseURL, or one built from the Host and Port.
func (c Config) URL() *url.URL {
	if c.BaseURL != nil {
		return c.BaseURL
	}

	scheme := "http"
	if c.TLS() {
		scheme = "https"
	}

	return &url.URL{Scheme: scheme, Host: net.JoinHostPort(c.Host, strings.TrimPrefix(c.Port, ":"))}
}

// withDefaults fills zero fields of a Config built without NewConfig.
func (c Config) withDefaults() Config {
	if c.Env == "" {
		c.Env = switchback.Development
	}

	if c.AppTitle == "" {
		c.AppTitle = "switchback"
	}

	if c.Host == "" {
		c.Host = "localhost"
	}

	if c.Port == "" {
		c.Port = "3000"
	}

	for _, d := range []struct {
		val *time.Duration
		def time.Duration
	}{
		{&c.ReadTimeout, 5 * time.Second},
		{&c.IdleTimeout, 120 * time.Second},
		{&c.WriteTimeout, 30 * time.Second},
		{&c.ShutdownTimeout, 5 * time.Second},
	} {
		if *d.val <= 0 {
			*d.val = d.def
		}
	}

	if c.RateLimit <= 0 {
		c.RateLimit = 5
	}

	if c.RateBurst <= 0 {
		c.RateBurst = 20
	}

	return c
}

func (c Config) validate() error {
	if err := c.Env.Valid(); err != nil {
		return fmt.Errorf("%w: %w", switchback.ErrBadConfig, err)
	}

	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("%w: TLS_CERT_FILE and TLS_KEY_FILE must be set together", switchback.ErrBadConfig)
	}

	if c.MetricsPath != "" && !strings.HasPrefix(c.MetricsPath, "/") {
		return fmt.Errorf("%w: METRICS_PATH %q must begin with /", switchback.ErrBadConfig, c.MetricsPath)
	}

	return nil
}
