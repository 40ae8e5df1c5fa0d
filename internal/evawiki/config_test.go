package evawiki

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apierrors "github.com/vsevolodlukovsky/evawiki-mcp/internal/errors"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvConfigFile, "")
	t.Setenv(EnvAPIURL, "https://eva.example.com/api/")
	t.Setenv(EnvAPIToken, "token")
}

// unsetEnv removes variables for the duration of the test.
func unsetEnv(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)
	unsetEnv(t, EnvVerifySSL, EnvTimeout, EnvLogLevel, EnvMetricsAddr)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.BaseURL != "https://eva.example.com/api/" || cfg.Token != "token" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if !cfg.VerifySSL {
		t.Error("VerifySSL should default to true")
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		token   string
		setting string
	}{
		{"missing url", "", "token", EnvAPIURL},
		{"missing token", "https://eva.example.com/api/", "", EnvAPIToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigFile, "")
			t.Setenv(EnvAPIURL, tt.url)
			t.Setenv(EnvAPIToken, tt.token)

			_, err := LoadConfig()
			if apierrors.KindOf(err) != apierrors.KindConfig {
				t.Fatalf("expected config error, got %v", err)
			}
			cfgErr := err.(*apierrors.ConfigError)
			if cfgErr.Setting != tt.setting {
				t.Errorf("setting = %q, want %q", cfgErr.Setting, tt.setting)
			}
		})
	}
}

func TestLoadConfig_VerifySSL(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"YES", true},
		{"y", true},
		{" on ", true},
		{"0", false},
		{"false", false},
		{"off", false},
		{"nope", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(EnvVerifySSL, tt.value)

			cfg, err := LoadConfig()
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}
			if cfg.VerifySSL != tt.want {
				t.Errorf("VerifySSL(%q) = %v, want %v", tt.value, cfg.VerifySSL, tt.want)
			}
		})
	}
}

func TestLoadConfig_Timeout(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"10", 10 * time.Second},
		{"2.5", 2500 * time.Millisecond},
		{"abc", DefaultTimeout},
		{"-1", DefaultTimeout},
		{"0", DefaultTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(EnvTimeout, tt.value)

			cfg, err := LoadConfig()
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}
			if cfg.Timeout != tt.want {
				t.Errorf("Timeout(%q) = %v, want %v", tt.value, cfg.Timeout, tt.want)
			}
		})
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evawiki.toml")
	content := `api_url = "https://file.example.com/api/"
api_token = "file-token"
verify_ssl = false
timeout = 12.5
log_level = "DEBUG"
metrics_addr = ":9464"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvConfigFile, path)
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvAPIToken, "env-token")
	unsetEnv(t, EnvVerifySSL, EnvTimeout, EnvLogLevel, EnvMetricsAddr)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.BaseURL != "https://file.example.com/api/" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Token != "env-token" {
		t.Errorf("Token = %q, environment should win", cfg.Token)
	}
	if cfg.VerifySSL {
		t.Error("VerifySSL should come from file")
	}
	if cfg.Timeout != 12500*time.Millisecond {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.MetricsAddr != ":9464" {
		t.Errorf("MetricsAddr = %q", cfg.MetricsAddr)
	}
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evawiki.yaml")
	content := `api_url: https://yaml.example.com/api/
api_token: yaml-token
verify_ssl: false
timeout: 3
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvConfigFile, path)
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvAPIToken, "")
	unsetEnv(t, EnvVerifySSL, EnvTimeout, EnvLogLevel, EnvMetricsAddr)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.BaseURL != "https://yaml.example.com/api/" || cfg.Token != "yaml-token" {
		t.Errorf("BaseURL/Token = %q/%q", cfg.BaseURL, cfg.Token)
	}
	if cfg.VerifySSL {
		t.Error("VerifySSL should come from file")
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want default", cfg.LogLevel)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evawiki.yml")
	if err := os.WriteFile(path, []byte("api_url: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	setRequiredEnv(t)
	t.Setenv(EnvConfigFile, path)

	_, err := LoadConfig()
	if apierrors.KindOf(err) != apierrors.KindConfig {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestLoadConfig_FileMissing(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "absent.toml"))

	_, err := LoadConfig()
	if apierrors.KindOf(err) != apierrors.KindConfig {
		t.Errorf("expected config error, got %v", err)
	}
}
