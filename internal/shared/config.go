package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Zoom     ZoomConfig     `toml:"zoom"`
	Rclone   RcloneConfig   `toml:"rclone"`
	Slack    SlackConfig    `toml:"slack"`
	Transfer TransferConfig `toml:"transfer"`
}

// ZoomConfig contains Zoom server-to-server OAuth credentials and endpoints.
type ZoomConfig struct {
	AccountID    string `toml:"account_id"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	BaseURL      string `toml:"base_url"`
	TokenURL     string `toml:"token_url"`
}

// RcloneConfig identifies the rclone remote recordings are copied to.
type RcloneConfig struct {
	RemoteName string `toml:"remote_name"`
	BasePath   string `toml:"base_path"`
}

// SlackConfig contains the incoming webhook used for upload notifications.
type SlackConfig struct {
	WebhookURL string `toml:"webhook_url"`
}

// TransferConfig contains local download and filtering settings.
type TransferConfig struct {
	DownloadDir        string `toml:"download_dir"`
	Timezone           string `toml:"timezone"`
	MinDurationMinutes int    `toml:"min_duration_minutes"`
	DryRun             bool   `toml:"dry_run"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the settings required for a transfer run are present.
func (c *Config) Validate() error {
	if c.Zoom.AccountID == "" || c.Zoom.ClientID == "" || c.Zoom.ClientSecret == "" {
		return fmt.Errorf("%w: zoom account_id, client_id and client_secret are required", ErrMissingCredentials)
	}
	if c.Rclone.RemoteName == "" {
		return fmt.Errorf("%w: rclone remote_name is required", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidConfig, c.Transfer.Timezone)
	}
	return nil
}

// Location resolves the configured timezone used for date partitioning.
func (c *Config) Location() (*time.Location, error) {
	if c.Transfer.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Transfer.Timezone)
}
