// Package config loads the user-editable zdx configuration file and
// implements the env > config-file > default precedence fold used
// everywhere a provider setting (API key, base URL, model) needs to be
// resolved from multiple possible sources.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ProviderConfig holds the per-provider overrides a user can set in
// config.toml.
type ProviderConfig struct {
	APIKey  string   `toml:"api_key"`
	BaseURL string   `toml:"base_url"`
	Models  []string `toml:"models"`
}

// Config is the parsed contents of config.toml.
type Config struct {
	Model         string                     `toml:"model"`
	ThinkingLevel string                     `toml:"thinking_level"`
	TitleModel    string                     `toml:"title_model"`
	HandoffModel  string                     `toml:"handoff_model"`
	Providers     map[string]ProviderConfig  `toml:"providers"`
}

// DefaultPath returns config.toml under the zdx config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolving config dir: %w", err)
	}
	return filepath.Join(dir, "zdx", "config.toml"), nil
}

// Load reads and parses the config file at path. A missing file yields
// a zero-value Config rather than an error, since zdx is usable with no
// config file at all (env vars and defaults carry it).
func Load(path string) (*Config, error) {
	cfg := &Config{Providers: map[string]ProviderConfig{}}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.Providers == nil {
		cfg.Providers = map[string]ProviderConfig{}
	}
	return cfg, nil
}

// Resolve folds an environment value, a config-file value, and a
// built-in default into the single value that wins, in that priority
// order. Empty strings are treated as "not set" at every level.
func Resolve(envValue, configValue, defaultValue string) string {
	if envValue != "" {
		return envValue
	}
	if configValue != "" {
		return configValue
	}
	return defaultValue
}

// ProviderAPIKey resolves the API key for provider given the conventional
// environment variable name, folding env > config > "".
func (c *Config) ProviderAPIKey(provider, envVarName string) string {
	return Resolve(os.Getenv(envVarName), c.Providers[provider].APIKey, "")
}

// ProviderBaseURL resolves the base URL for provider, folding
// env > config > the provider's compiled-in default.
func (c *Config) ProviderBaseURL(provider, envVarName, defaultURL string) string {
	return Resolve(os.Getenv(envVarName), c.Providers[provider].BaseURL, defaultURL)
}
