// Package config holds the periscope server configuration. Values resolve in
// three layers: built-in defaults, an optional YAML file, then environment
// variables prefixed with PERISCOPE_.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the server.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Browser BrowserConfig `yaml:"browser"`
	Relay   RelayConfig   `yaml:"relay"`
	Guard   GuardConfig   `yaml:"guard"`
}

// ServerConfig holds HTTP and WebSocket listener configuration.
type ServerConfig struct {
	Host      string `yaml:"host" envconfig:"HOST"`
	Port      string `yaml:"port" envconfig:"PORT"`
	StaticDir string `yaml:"static_dir" envconfig:"STATIC_DIR"`
}

// BrowserConfig holds browser session configuration.
type BrowserConfig struct {
	Headless       bool   `yaml:"headless" envconfig:"HEADLESS"`
	ViewportWidth  int    `yaml:"viewport_width" envconfig:"VIEWPORT_WIDTH"`
	ViewportHeight int    `yaml:"viewport_height" envconfig:"VIEWPORT_HEIGHT"`
	UserAgent      string `yaml:"user_agent" envconfig:"USER_AGENT"`

	// NavigationTimeoutMs bounds each navigation wait strategy, in
	// milliseconds (Playwright's native unit).
	NavigationTimeoutMs float64 `yaml:"navigation_timeout_ms" envconfig:"NAVIGATION_TIMEOUT_MS"`

	// ClickSettleMs and KeySettleMs are the pauses after input actions
	// before the next screenshot is captured.
	ClickSettleMs int `yaml:"click_settle_ms" envconfig:"CLICK_SETTLE_MS"`
	KeySettleMs   int `yaml:"key_settle_ms" envconfig:"KEY_SETTLE_MS"`

	// CookiesFile optionally points at a JSON file of cookies to preload
	// into the browser context before the first navigation.
	CookiesFile string `yaml:"cookies_file" envconfig:"COOKIES_FILE"`
}

// RelayConfig holds command relay configuration.
type RelayConfig struct {
	// QueueSize bounds the number of commands waiting for the session
	// worker. Submissions beyond it are rejected with a busy error.
	QueueSize int `yaml:"queue_size" envconfig:"QUEUE_SIZE"`

	// LowBandwidth re-encodes screenshots at reduced quality before they
	// go on the wire.
	LowBandwidth bool `yaml:"low_bandwidth" envconfig:"LOW_BANDWIDTH"`
}

// GuardConfig holds navigation URL filtering patterns.
type GuardConfig struct {
	// AllowedURLs is a list of glob patterns; empty means allow all.
	AllowedURLs []string `yaml:"allowed_urls" envconfig:"ALLOWED_URLS"`

	// DeniedURLs is a list of glob patterns; a match rejects the
	// navigation even if an allow pattern also matches.
	DeniedURLs []string `yaml:"denied_urls" envconfig:"DENIED_URLS"`
}

// Default returns the built-in configuration, matching the viewport and
// timing behavior the thin client expects.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      "9098",
			StaticDir: "public",
		},
		Browser: BrowserConfig{
			Headless:            true,
			ViewportWidth:       1280,
			ViewportHeight:      720,
			UserAgent:           "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			NavigationTimeoutMs: 30000,
			ClickSettleMs:       500,
			KeySettleMs:         300,
		},
		Relay: RelayConfig{
			QueueSize: 64,
		},
	}
}

// Load resolves the configuration: defaults, then the YAML file at path (if
// non-empty), then PERISCOPE_-prefixed environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("periscope", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is internally usable.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port must not be empty")
	}
	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		return fmt.Errorf("viewport dimensions must be positive, got %dx%d",
			c.Browser.ViewportWidth, c.Browser.ViewportHeight)
	}
	if c.Browser.NavigationTimeoutMs <= 0 {
		return fmt.Errorf("navigation timeout must be positive")
	}
	if c.Relay.QueueSize <= 0 {
		return fmt.Errorf("relay queue size must be positive")
	}
	return nil
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}
