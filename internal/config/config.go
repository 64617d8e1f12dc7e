// Package config handles TOML-based configuration loading and validation.
// Secrets like the Apify token come from the environment, never from the
// config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"tubetap/internal/provider"
)

// Config holds all application configuration.
type Config struct {
	Listen        string   `toml:"listen"`
	APIBase       string   `toml:"api_base"`
	Actors        []string `toml:"actors"`
	MaxAttempts   int      `toml:"max_attempts"`
	Format        string   `toml:"format"`
	PollIntervalS float64  `toml:"poll_interval_seconds"`
	MaxWaitS      float64  `toml:"max_wait_seconds"`
	ProxyCountry  string   `toml:"proxy_country"`
	RateLimitRPM  int      `toml:"rate_limit_rpm"`
	HistoryPath   string   `toml:"history_path"`
	DownloadDir   string   `toml:"download_dir"`
	Debug         bool     `toml:"debug"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Listen:        ":8080",
		APIBase:       "https://api.apify.com",
		Actors:        append([]string(nil), provider.DefaultActors...),
		MaxAttempts:   0,
		Format:        "mp3",
		PollIntervalS: 5,
		MaxWaitS:      300,
		ProxyCountry:  "US",
		RateLimitRPM:  30,
		HistoryPath:   "",
		DownloadDir:   "~/Music/tubetap",
		Debug:         false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tubetap"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "tubetap"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	return LoadFrom(path)
}

// LoadFrom reads a specific config file path and merges with defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if c.APIBase == "" {
		return fmt.Errorf("api_base cannot be empty")
	}
	if len(c.Actors) == 0 {
		return fmt.Errorf("at least one actor is required")
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts cannot be negative")
	}
	if c.Format == "" {
		return fmt.Errorf("format cannot be empty")
	}
	if c.PollIntervalS <= 0 {
		return fmt.Errorf("poll_interval_seconds must be positive")
	}
	if c.MaxWaitS <= 0 {
		return fmt.Errorf("max_wait_seconds must be positive")
	}
	if c.MaxWaitS < c.PollIntervalS {
		return fmt.Errorf("max_wait_seconds must be at least poll_interval_seconds")
	}
	if c.RateLimitRPM < 0 {
		return fmt.Errorf("rate_limit_rpm cannot be negative")
	}
	return nil
}

// Token returns the Apify API token from the environment.
func Token() string {
	return os.Getenv("APIFY_TOKEN")
}

// PollInterval returns the configured poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalS * float64(time.Second))
}

// MaxWait returns the configured run wait budget as a duration.
func (c *Config) MaxWait() time.Duration {
	return time.Duration(c.MaxWaitS * float64(time.Second))
}

// Policy builds the actor attempt policy from the configured actor list.
func (c *Config) Policy() provider.AttemptPolicy {
	return provider.AttemptPolicy{
		Actors:      append([]string(nil), c.Actors...),
		MaxAttempts: c.MaxAttempts,
	}
}

// ResolvedHistoryPath returns the history database path, defaulting to the
// XDG data directory.
func (c *Config) ResolvedHistoryPath() (string, error) {
	if c.HistoryPath != "" {
		return expandHome(c.HistoryPath)
	}
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "tubetap", "history.db"), nil
}

// ExpandDownloadDir resolves ~ in the download directory path.
func (c *Config) ExpandDownloadDir() (string, error) {
	return expandHome(c.DownloadDir)
}

func expandHome(path string) (string, error) {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(path)
}
