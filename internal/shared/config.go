package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	DefaultTimeout       = 15 * time.Second
	DefaultSessionPrefix = "sp-lib-builder"
	DefaultAudioQuality  = "192K"
)

// Config represents the application configuration loaded from a TOML file,
// a .env file and the process environment, in that order.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Library     LibraryConfig     `toml:"library"`
	Network     NetworkConfig     `toml:"network"`
	Encoder     EncoderConfig     `toml:"encoder"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	YouTube YouTubeConfig `toml:"youtube"`
}

// SpotifyConfig contains Spotify client-credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id" env:"SPOTIFY_CLIENT_ID"`
	ClientSecret string `toml:"client_secret" env:"SPOTIFY_CLIENT_SECRET"`
}

// YouTubeConfig contains the YouTube Data API key.
type YouTubeConfig struct {
	APIKey string `toml:"api_key" env:"YOUTUBE_API_KEY"`
}

// LibraryConfig controls where session directories are created.
type LibraryConfig struct {
	OutputDir     string `toml:"output_dir" env:"SPLIB_OUTPUT_DIR"`
	SessionPrefix string `toml:"session_prefix"`
}

// NetworkConfig contains request timeouts and the search rate.
type NetworkConfig struct {
	TimeoutSeconds int     `toml:"timeout_seconds" env:"SPLIB_TIMEOUT_SECONDS"`
	SearchRate     float64 `toml:"search_rate" env:"SPLIB_SEARCH_RATE"`
}

// EncoderConfig contains yt-dlp and ffmpeg settings.
type EncoderConfig struct {
	FFmpegLocation string `toml:"ffmpeg_location" env:"SPLIB_FFMPEG_LOCATION"`
	YtDlpPath      string `toml:"ytdlp_path" env:"SPLIB_YTDLP_PATH"`
	AudioQuality   string `toml:"audio_quality"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// LoadEnvironment builds the effective configuration.
//
// The embedded defaults are overlaid with the TOML file at path (skipped when
// it does not exist), then the dotenv files, then the process environment.
func LoadEnvironment(path string, dotenv ...string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	if err := LoadDotEnv(dotenv...); err != nil {
		return nil, err
	}

	if err := ApplyEnv(config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadDotEnv loads the given dotenv files (".env" when none are given) into the
// process environment. Missing files are ignored and existing variables are never overwritten.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("%w: failed to load %s: %v", ErrInvalidConfig, f, err)
		}
	}
	return nil
}

// ApplyEnv overlays environment variables onto config. Unset variables leave
// the current values in place.
func ApplyEnv(config *Config) error {
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Validate reports every missing credential in a single error.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Credentials.Spotify.ClientID) == "" {
		missing = append(missing, "SPOTIFY_CLIENT_ID")
	}
	if strings.TrimSpace(c.Credentials.Spotify.ClientSecret) == "" {
		missing = append(missing, "SPOTIFY_CLIENT_SECRET")
	}
	if strings.TrimSpace(c.Credentials.YouTube.APIKey) == "" {
		missing = append(missing, "YOUTUBE_API_KEY")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// Timeout returns the per-request network timeout.
func (c *Config) Timeout() time.Duration {
	if c.Network.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.Network.TimeoutSeconds) * time.Second
}

// OutputRoot resolves the directory that session directories are created in.
//
// Defaults to ~/Downloads. A leading "~/" is expanded.
func (c *Config) OutputRoot() (string, error) {
	dir := strings.TrimSpace(c.Library.OutputDir)
	home, err := os.UserHomeDir()

	switch {
	case dir == "":
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, "Downloads"), nil
	case dir == "~" || strings.HasPrefix(dir, "~/"):
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(dir, "~")), nil
	default:
		return dir, nil
	}
}

// SessionPrefix returns the prefix of session directory names.
func (c *Config) SessionPrefix() string {
	if c.Library.SessionPrefix == "" {
		return DefaultSessionPrefix
	}
	return c.Library.SessionPrefix
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
