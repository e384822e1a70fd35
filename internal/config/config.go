package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/chaesoohoon/youtubeuploader/internal/models"
)

const (
	// DefaultConfigDir is the default configuration directory
	DefaultConfigDir = ".config/youtube-uploader"
	// ConfigFileName is the name of the configuration file
	ConfigFileName = "config.json"

	lockFileName = "config.json.lock"
)

// Environment variables that override the stored Gemini key
var apiKeyEnvVars = []string{"GEMINI_API_KEY", "API_KEY"}

// YouTubeConfig holds the OAuth client and upload defaults
type YouTubeConfig struct {
	ClientID        string `json:"client_id,omitempty"`
	ClientSecret    string `json:"client_secret,omitempty"`
	DefaultCategory string `json:"default_category,omitempty"`
	ChannelName     string `json:"channel_name,omitempty"` // Cached channel name
}

// GeminiConfig holds the metadata generation settings
type GeminiConfig struct {
	APIKey         string `json:"api_key,omitempty"`
	Model          string `json:"model,omitempty"`
	BaseURL        string `json:"base_url,omitempty"`
	Language       string `json:"language,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// Config holds the application configuration
type Config struct {
	YouTube   YouTubeConfig `json:"youtube"`
	Gemini    GeminiConfig  `json:"gemini"`
	LogLevel  string        `json:"log_level,omitempty"`
	LogFormat string        `json:"log_format,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		YouTube: YouTubeConfig{
			DefaultCategory: models.DefaultCategoryID,
		},
		Gemini: GeminiConfig{
			Model:          "gemini-3-pro-preview",
			Language:       "Korean",
			TimeoutSeconds: 60,
		},
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfigDir
	}
	return filepath.Join(home, DefaultConfigDir)
}

// Path returns the config file path inside dir
func Path(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}

// Load loads the configuration from the default directory
func Load() (*Config, error) {
	return LoadFrom(GetConfigDir())
}

// LoadFrom loads the configuration from dir. A missing file yields the
// defaults; fields absent from the file keep their default values.
func LoadFrom(dir string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", Path(dir), err)
	}
	return &cfg, nil
}

// Save saves the configuration to the default directory
func Save(cfg *Config) error {
	return SaveTo(GetConfigDir(), cfg)
}

// SaveTo writes the configuration to dir. Writers are serialized with a
// file lock and the file is replaced atomically.
func SaveTo(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	lock := flock.New(filepath.Join(dir, lockFileName))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock config: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ConfigFileName+".*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	// The file holds OAuth and API secrets.
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), Path(dir))
}

// GeminiAPIKey returns the Gemini key, preferring the environment
func (c *Config) GeminiAPIKey() string {
	for _, name := range apiKeyEnvVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return strings.TrimSpace(c.Gemini.APIKey)
}

// NeedsSetup returns true when no OAuth client ID has been configured
func (c *Config) NeedsSetup() bool {
	return strings.TrimSpace(c.YouTube.ClientID) == ""
}

// HasGemini reports whether metadata generation can be attempted
func (c *Config) HasGemini() bool {
	return c.GeminiAPIKey() != ""
}

// DefaultCategory returns the configured category or the built-in default
func (c *Config) DefaultCategory() string {
	if c.YouTube.DefaultCategory != "" {
		return c.YouTube.DefaultCategory
	}
	return models.DefaultCategoryID
}
