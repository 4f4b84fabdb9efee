// Package config provides configuration loading and management for listonic-sync.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/listonic-sync/internal/telemetry"
)

// EnvPrefix is the prefix of every environment variable read by listonic-sync
const EnvPrefix = "LISTONIC_SYNC"

const (
	// DefaultAPIURL is the Listonic API root
	DefaultAPIURL = "https://api.listonic.com/api"

	// DefaultTokenURL is the password and refresh grant endpoint
	DefaultTokenURL = "https://api.listonic.com/api/loginextended?provider=password&autoMerge=1&autoDestruct=1"

	// DefaultRedirectURL is sent with every token request
	DefaultRedirectURL = "https://app.listonic.com"

	// DefaultInterval is used when neither the account nor the root sync policy set one
	DefaultInterval = 30 * time.Second

	// MinInterval is the shortest accepted polling interval
	MinInterval = 10 * time.Second

	// DefaultRemoteTimeout bounds each remote HTTP attempt
	DefaultRemoteTimeout = 30 * time.Second

	appName = "listonic-sync"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	Remote     RemoteConfig      `yaml:"remote"`
	SyncPolicy *SyncPolicyConfig `yaml:"syncPolicy,omitempty"`
	Accounts   []AccountConfig   `yaml:"accounts"`

	// DataDir holds status files and the instance lock.
	// Defaults to $XDG_STATE_HOME/listonic-sync.
	DataDir string `yaml:"dataDir,omitempty"`

	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// RemoteConfig describes the Listonic endpoints and OAuth2 client
type RemoteConfig struct {
	APIURL   string `yaml:"apiURL,omitempty"`
	TokenURL string `yaml:"tokenURL,omitempty"`
	ClientID string `yaml:"clientID"`

	// ClientSecret may be given inline or through ClientSecretFile
	ClientSecret     string `yaml:"clientSecret,omitempty"`
	ClientSecretFile string `yaml:"clientSecretFile,omitempty"`

	RedirectURL string `yaml:"redirectURL,omitempty"`

	// Timeout bounds each HTTP attempt (e.g., "30s")
	Timeout string `yaml:"timeout,omitempty"`
}

// SyncPolicyConfig defines synchronization settings
type SyncPolicyConfig struct {
	Interval string `yaml:"interval"`
}

// AccountConfig is one configured Listonic account
type AccountConfig struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`

	// PasswordFile is the path to a file containing the account password
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Keyring reads the password from the OS keyring, keyed by email
	Keyring bool `yaml:"keyring,omitempty"`

	SyncPolicy *SyncPolicyConfig `yaml:"syncPolicy,omitempty"`
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates YAML configuration. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	var config Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	var errs []error

	if c.Remote.ClientID == "" {
		errs = append(errs, fmt.Errorf("remote.clientID is required"))
	}
	if c.Remote.ClientSecret != "" && c.Remote.ClientSecretFile != "" {
		errs = append(errs, fmt.Errorf("remote: only one of clientSecret or clientSecretFile may be specified"))
	}
	if c.Remote.Timeout != "" {
		if d, err := time.ParseDuration(c.Remote.Timeout); err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("remote.timeout must be a positive duration, got %q", c.Remote.Timeout))
		}
	}
	if c.SyncPolicy != nil {
		if err := validateSyncPolicy(c.SyncPolicy, "syncPolicy"); err != nil {
			errs = append(errs, err)
		}
	}

	if len(c.Accounts) == 0 {
		errs = append(errs, fmt.Errorf("at least one account must be configured"))
	}

	names := make(map[string]bool)
	for i, acc := range c.Accounts {
		if acc.Name == "" {
			errs = append(errs, fmt.Errorf("accounts[%d]: name is required", i))
			continue
		}
		if names[acc.Name] {
			errs = append(errs, fmt.Errorf("accounts[%d]: duplicate account name '%s'", i, acc.Name))
			continue
		}
		names[acc.Name] = true

		if err := acc.validate(fmt.Sprintf("accounts[%d] (%s)", i, acc.Name)); err != nil {
			errs = append(errs, err)
		}
	}

	if c.Telemetry != nil {
		if err := c.Telemetry.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("telemetry: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (a *AccountConfig) validate(prefix string) error {
	if a.Email == "" {
		return fmt.Errorf("%s: email is required", prefix)
	}
	if a.PasswordFile != "" && a.Keyring {
		return fmt.Errorf("%s: only one of passwordFile or keyring may be specified", prefix)
	}
	if a.SyncPolicy != nil {
		return validateSyncPolicy(a.SyncPolicy, prefix+": syncPolicy")
	}
	return nil
}

// validateSyncPolicy validates the sync policy configuration
func validateSyncPolicy(policy *SyncPolicyConfig, prefix string) error {
	if policy.Interval == "" {
		return fmt.Errorf("%s.interval is required", prefix)
	}

	d, err := time.ParseDuration(policy.Interval)
	if err != nil {
		return fmt.Errorf("%s.interval must be a valid duration (e.g., '30s', '5m'): %w", prefix, err)
	}
	if d < MinInterval {
		return fmt.Errorf("%s.interval must be at least %s, got %s", prefix, MinInterval, d)
	}

	return nil
}

// Account returns the account with the given name
func (c *Config) Account(name string) (AccountConfig, bool) {
	for _, acc := range c.Accounts {
		if acc.Name == name {
			return acc, true
		}
	}
	return AccountConfig{}, false
}

// Interval returns the polling interval of an account, falling back to the
// root sync policy and then DefaultInterval
func (c *Config) Interval(acc AccountConfig) time.Duration {
	if acc.SyncPolicy != nil {
		if d, err := time.ParseDuration(acc.SyncPolicy.Interval); err == nil {
			return d
		}
	}
	if c.SyncPolicy != nil {
		if d, err := time.ParseDuration(c.SyncPolicy.Interval); err == nil {
			return d
		}
	}
	return DefaultInterval
}

// GetDataDir returns the data directory, defaulting to the XDG state home
func (c *Config) GetDataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return filepath.Join(xdg.StateHome, appName)
}

// AccountEntry returns the diagnostics projection of an account's configuration.
// The password itself is never part of the entry.
func (c *Config) AccountEntry(name string) (map[string]any, bool) {
	acc, ok := c.Account(name)
	if !ok {
		return nil, false
	}

	entry := map[string]any{
		"name":     acc.Name,
		"email":    acc.Email,
		"password": "",
		"interval": c.Interval(acc).String(),
		"keyring":  acc.Keyring,
	}
	if acc.PasswordFile != "" {
		entry["passwordFile"] = acc.PasswordFile
	}
	return entry, true
}

// GetAPIURL returns the API root
func (r *RemoteConfig) GetAPIURL() string {
	if r.APIURL == "" {
		return DefaultAPIURL
	}
	return r.APIURL
}

// GetTokenURL returns the token endpoint
func (r *RemoteConfig) GetTokenURL() string {
	if r.TokenURL == "" {
		return DefaultTokenURL
	}
	return r.TokenURL
}

// GetRedirectURL returns the redirect URL sent with token requests
func (r *RemoteConfig) GetRedirectURL() string {
	if r.RedirectURL == "" {
		return DefaultRedirectURL
	}
	return r.RedirectURL
}

// GetTimeout returns the per-attempt remote timeout
func (r *RemoteConfig) GetTimeout() time.Duration {
	if r.Timeout == "" {
		return DefaultRemoteTimeout
	}
	d, err := time.ParseDuration(r.Timeout)
	if err != nil || d <= 0 {
		return DefaultRemoteTimeout
	}
	return d
}

// GetClientSecret returns the OAuth2 client secret, reading ClientSecretFile when set
func (r *RemoteConfig) GetClientSecret() (string, error) {
	if r.ClientSecretFile == "" {
		return r.ClientSecret, nil
	}

	data, err := os.ReadFile(filepath.Clean(r.ClientSecretFile))
	if err != nil {
		return "", fmt.Errorf("failed to read client secret from file %s: %w", r.ClientSecretFile, err)
	}
	return strings.TrimSpace(string(data)), nil
}
