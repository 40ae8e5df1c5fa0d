package evawiki

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	apierrors "github.com/vsevolodlukovsky/evawiki-mcp/internal/errors"
)

// Environment variables read by LoadConfig.
const (
	EnvAPIURL      = "EVAWIKI_API_URL"
	EnvAPIToken    = "EVAWIKI_API_TOKEN"
	EnvVerifySSL   = "EVAWIKI_VERIFY_SSL"
	EnvTimeout     = "EVAWIKI_TIMEOUT"
	EnvLogLevel    = "EVAWIKI_LOG_LEVEL"
	EnvMetricsAddr = "EVAWIKI_METRICS_ADDR"
	EnvConfigFile  = "EVAWIKI_CONFIG"
)

// DefaultTimeout for API requests
const DefaultTimeout = 30 * time.Second

// Config holds EVA connection settings. It is loaded once at startup and
// treated as read-only afterwards.
type Config struct {
	// BaseURL is the full JSON-RPC endpoint, e.g. https://eva.example.com/api/
	BaseURL string

	// Token is sent as a Bearer credential
	Token string

	// VerifySSL toggles TLS certificate verification
	VerifySSL bool

	// Timeout for a single API request
	Timeout time.Duration

	// LogLevel is one of debug, info, warn, error
	LogLevel string

	// MetricsAddr enables a Prometheus /metrics listener when non-empty
	MetricsAddr string
}

// fileConfig mirrors the optional config file, TOML or YAML.
type fileConfig struct {
	APIURL      string   `toml:"api_url" yaml:"api_url"`
	APIToken    string   `toml:"api_token" yaml:"api_token"`
	VerifySSL   *bool    `toml:"verify_ssl" yaml:"verify_ssl"`
	Timeout     *float64 `toml:"timeout" yaml:"timeout"`
	LogLevel    string   `toml:"log_level" yaml:"log_level"`
	MetricsAddr string   `toml:"metrics_addr" yaml:"metrics_addr"`
}

// LoadConfig loads configuration from the environment. If EVAWIKI_CONFIG names
// a config file (TOML, or YAML by .yaml/.yml extension) its values are used as a base and environment variables win.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		VerifySSL: true,
		Timeout:   DefaultTimeout,
		LogLevel:  "info",
	}

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvAPIToken); v != "" {
		cfg.Token = v
	}
	cfg.VerifySSL = envBool(EnvVerifySSL, cfg.VerifySSL)
	cfg.Timeout = envSeconds(EnvTimeout, cfg.Timeout)
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		cfg.MetricsAddr = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the required settings are present.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return &apierrors.ConfigError{Setting: EnvAPIURL, Message: "is not set"}
	}
	if c.Token == "" {
		return &apierrors.ConfigError{Setting: EnvAPIToken, Message: "is not set"}
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	fc, err := decodeFile(path)
	if err != nil {
		return &apierrors.ConfigError{
			Setting: EnvConfigFile,
			Message: fmt.Sprintf("cannot read %s: %v", path, err),
		}
	}

	c.BaseURL = fc.APIURL
	c.Token = fc.APIToken
	if fc.VerifySSL != nil {
		c.VerifySSL = *fc.VerifySSL
	}
	if fc.Timeout != nil && *fc.Timeout > 0 {
		c.Timeout = secondsToDuration(*fc.Timeout)
	}
	if fc.LogLevel != "" {
		c.LogLevel = strings.ToLower(fc.LogLevel)
	}
	c.MetricsAddr = fc.MetricsAddr
	return nil
}

func decodeFile(path string) (fileConfig, error) {
	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return fc, err
		}
		err = yaml.Unmarshal(data, &fc)
		return fc, err
	default:
		_, err := toml.DecodeFile(path, &fc)
		return fc, err
	}
}

// envBool treats 1/true/yes/y/on (any case) as true and anything else as false.
func envBool(name string, def bool) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// envSeconds parses a float number of seconds, keeping def on parse failure.
func envSeconds(name string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || secs <= 0 {
		return def
	}
	return secondsToDuration(secs)
}

func secondsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}
