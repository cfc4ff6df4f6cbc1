// Package config loads the agent configuration from a yaml file and the
// environment. Every setting has a default, so the file is optional.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the environment's default log level when set.
	LogLevel string `env:"LOG_LEVEL" yaml:"logLevel"`

	// HTTP contains the local agent API settings
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:"127.0.0.1:8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout bounds every non-streaming request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"30s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MaxBodyBytes bounds request bodies, e.g. posted email HTML
		MaxBodyBytes int64 `env:"HTTP_MAX_BODY_BYTES" env-default:"4194304" yaml:"maxBodyBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// AllowedOrigins lists CORS origins; "*" allows any
		AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" env-default:"*" env-separator:"," yaml:"allowedOrigins"`
	} `yaml:"http"`

	// JWT configures bearer authentication of extension clients. Auth is
	// disabled when PublicKey is empty.
	JWT struct {
		// PublicKey is the PEM encoded RSA key tokens are verified with
		PublicKey string `env:"JWT_PUBLIC_KEY" yaml:"publicKey"`
		// PrivateKey is the PEM encoded RSA key the jwt command signs with
		PrivateKey string `env:"JWT_PRIVATE_KEY" yaml:"privateKey"`
	} `yaml:"jwt"`

	// Predictor configures the remote scoring service
	Predictor struct {
		// URL is the service root; requests go to URL/predict
		URL string `env:"PREDICTOR_URL" env-default:"http://127.0.0.1:5000" yaml:"url"`
		// Timeout bounds one prediction call
		Timeout time.Duration `env:"PREDICTOR_TIMEOUT" env-default:"10s" yaml:"timeout"`
		// RateLimit is the maximum number of calls per second; 0 disables limiting
		RateLimit float64 `env:"PREDICTOR_RATE_LIMIT" env-default:"0" yaml:"rateLimit"`
		// Burst is the number of calls allowed at once when limiting
		Burst int `env:"PREDICTOR_BURST" env-default:"10" yaml:"burst"`
	} `yaml:"predictor"`

	// Lists configures the allow and deny lists
	Lists struct {
		// WhitelistPath is a file with one trusted URL per line
		WhitelistPath string `env:"LISTS_WHITELIST_PATH" yaml:"whitelistPath"`
		// BlocklistPath is a domain list or hosts file of known phishing domains
		BlocklistPath string `env:"LISTS_BLOCKLIST_PATH" yaml:"blocklistPath"`
		// BlocklistFormat is "domainlist" or "hostfile"
		BlocklistFormat string `env:"LISTS_BLOCKLIST_FORMAT" env-default:"domainlist" yaml:"blocklistFormat"`
	} `yaml:"lists"`

	// Navigation decides which navigations are scanned
	Navigation struct {
		ExcludedPrefixes []string `env:"NAVIGATION_EXCLUDED_PREFIXES" env-default:"chrome://,chrome-extension://,https://www.google.com/search" env-separator:"," yaml:"excludedPrefixes"` //nolint: lll
		CompanionPrefix  string   `env:"NAVIGATION_COMPANION_PREFIX" env-default:"https://mail.google.com/mail/u/" yaml:"companionPrefix"`
		FragmentMarker   string   `env:"NAVIGATION_FRAGMENT_MARKER" env-default:"#" yaml:"fragmentMarker"`
	} `yaml:"navigation"`

	// Content configures email view scanning
	Content struct {
		// SettleDelay is how long a view gets to render after its location changes
		SettleDelay time.Duration `env:"CONTENT_SETTLE_DELAY" env-default:"1500ms" yaml:"settleDelay"`
		// Concurrency bounds in-flight classifications per email
		Concurrency int `env:"CONTENT_CONCURRENCY" env-default:"8" yaml:"concurrency"`
		// BodySelector picks the message body in posted HTML
		BodySelector string `env:"CONTENT_BODY_SELECTOR" env-default:"div.a3s" yaml:"bodySelector"`
		// IdleTimeout reclaims content views that stopped reporting
		IdleTimeout time.Duration `env:"CONTENT_IDLE_TIMEOUT" env-default:"10m" yaml:"idleTimeout"`
		// MaxSurfaces caps the content views tracked at once
		MaxSurfaces int `env:"CONTENT_MAX_SURFACES" env-default:"1024" yaml:"maxSurfaces"`
	} `yaml:"content"`

	// Notification configures popups
	Notification struct {
		NavigationTimeout time.Duration `env:"NOTIFICATION_NAVIGATION_TIMEOUT" env-default:"10s" yaml:"navigationTimeout"`
		ContentTimeout    time.Duration `env:"NOTIFICATION_CONTENT_TIMEOUT" env-default:"15s" yaml:"contentTimeout"`
		// BridgeBuffer is the number of undelivered cross-context messages kept
		BridgeBuffer int `env:"NOTIFICATION_BRIDGE_BUFFER" env-default:"64" yaml:"bridgeBuffer"`
	} `yaml:"notification"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config
// struct. A missing file is not an error: the environment and defaults are
// used instead.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("could not read config from environment: %w", err)
		}

		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}
