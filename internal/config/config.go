// Package config loads the profile-based client configuration from
// ~/.tidechat/config.json (or $TIDECHAT_HOME/config.json).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Profile is one gateway account. Token may be stored inline or pulled
// from the environment variable named by TokenEnv; the env var wins
// when both are set.
type Profile struct {
	GatewayURL string `json:"gateway_url"`
	Token      string `json:"token,omitempty"`
	TokenEnv   string `json:"token_env,omitempty"`
}

// Config is the full on-disk configuration.
type Config struct {
	Profiles       map[string]Profile `json:"profiles"`
	ActiveProfile  string             `json:"active_profile"`
	currentProfile *Profile
}

// LoadConfig reads the config file, creating a default one on first run.
func LoadConfig() (*Config, error) {
	configPath, err := Path()
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.setCurrentProfile(); err != nil {
		return nil, fmt.Errorf("select profile: %w", err)
	}

	return cfg, nil
}

// IsValid reports whether the active profile can talk to a gateway.
func (c *Config) IsValid() bool {
	return c.currentProfile != nil && c.currentProfile.GatewayURL != ""
}

// GatewayURL returns the active profile's gateway base URL.
func (c *Config) GatewayURL() string {
	if c.currentProfile == nil {
		return ""
	}
	return c.currentProfile.GatewayURL
}

// AccessToken resolves the active profile's bearer token.
func (c *Config) AccessToken() string {
	if c.currentProfile == nil {
		return ""
	}
	if c.currentProfile.TokenEnv != "" {
		if v := os.Getenv(c.currentProfile.TokenEnv); v != "" {
			return v
		}
	}
	return c.currentProfile.Token
}

// Path returns the config file location, honoring TIDECHAT_HOME.
func Path() (string, error) {
	var configDir string
	if home := os.Getenv("TIDECHAT_HOME"); home != "" {
		configDir = home
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(homeDir, ".tidechat")
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LogPath returns the log file location next to the config file.
func LogPath() (string, error) {
	configPath, err := Path()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(configPath), "tidechat.log"), nil
}

func loadConfigFile(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func createDefaultConfig(configPath string) (*Config, error) {
	cfg := &Config{
		Profiles: map[string]Profile{
			"default": {
				GatewayURL: "",
				TokenEnv:   "TIDECHAT_TOKEN",
			},
		},
		ActiveProfile: "default",
	}

	if err := saveConfig(cfg, configPath); err != nil {
		return nil, err
	}
	return cfg, nil
}

func saveConfig(cfg *Config, configPath string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0o600)
}

// Save writes the configuration back to disk.
func (c *Config) Save() error {
	configPath, err := Path()
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	return saveConfig(c, configPath)
}

func (c *Config) setCurrentProfile() error {
	if c.Profiles == nil {
		return fmt.Errorf("no profiles defined")
	}

	profile, exists := c.Profiles[c.ActiveProfile]
	if !exists {
		for name, p := range c.Profiles {
			c.ActiveProfile = name
			profile = p
			exists = true
			break
		}
	}
	if !exists {
		return fmt.Errorf("no valid profiles found")
	}

	c.currentProfile = &profile
	return nil
}
