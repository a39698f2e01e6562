package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Network.TimeoutSeconds != 15 {
			t.Errorf("expected timeout 15, got %d", config.Network.TimeoutSeconds)
		}

		if config.Library.SessionPrefix != "sp-lib-builder" {
			t.Errorf("expected session prefix sp-lib-builder, got %s", config.Library.SessionPrefix)
		}

		if config.Encoder.AudioQuality != "192K" {
			t.Errorf("expected audio quality 192K, got %s", config.Encoder.AudioQuality)
		}

		if config.Credentials.Spotify.ClientID != "" {
			t.Errorf("expected empty spotify client_id, got %s", config.Credentials.Spotify.ClientID)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Network.SearchRate != defaultConfig.Network.SearchRate {
			t.Errorf("created config search rate doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"

[credentials.youtube]
api_key = "test_api_key"

[library]
output_dir = "/srv/music"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Library.OutputDir != "/srv/music" {
			t.Errorf("expected output dir /srv/music, got %s", config.Library.OutputDir)
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Network.TimeoutSeconds != 15 {
			t.Errorf("missing keys should keep defaults, got timeout %d", config.Network.TimeoutSeconds)
		}
	})

	t.Run("LoadConfig rejects malformed TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[library\noutput_dir ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestLoadEnvironment(t *testing.T) {
	t.Run("environment overrides file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")
		testConfig := `[credentials.spotify]
client_id = "from_file"
client_secret = "file_secret"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		t.Setenv("SPOTIFY_CLIENT_ID", "from_env")
		t.Setenv("SPLIB_TIMEOUT_SECONDS", "30")

		config, err := LoadEnvironment(configPath, filepath.Join(tmpDir, "missing.env"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "from_env" {
			t.Errorf("expected client_id from_env, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Credentials.Spotify.ClientSecret != "file_secret" {
			t.Errorf("unset variables should keep file values, got %s", config.Credentials.Spotify.ClientSecret)
		}

		if config.Timeout() != 30*time.Second {
			t.Errorf("expected 30s timeout, got %v", config.Timeout())
		}
	})

	t.Run("dotenv file is loaded", func(t *testing.T) {
		tmpDir := t.TempDir()
		envPath := filepath.Join(tmpDir, ".env")
		if err := os.WriteFile(envPath, []byte("YOUTUBE_API_KEY=dotenv_key\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}

		// registers cleanup so the variable loaded from the file is removed
		t.Setenv("YOUTUBE_API_KEY", "")
		os.Unsetenv("YOUTUBE_API_KEY")

		config, err := LoadEnvironment("", envPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.Credentials.YouTube.APIKey != "dotenv_key" {
			t.Errorf("expected api key dotenv_key, got %s", config.Credentials.YouTube.APIKey)
		}
	})

	t.Run("invalid numeric variable", func(t *testing.T) {
		t.Setenv("SPLIB_TIMEOUT_SECONDS", "soon")

		_, err := LoadEnvironment("", filepath.Join(t.TempDir(), "missing.env"))
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("lists every missing credential", func(t *testing.T) {
		config := DefaultConfig()
		config.Credentials.Spotify.ClientID = "id"

		err := config.Validate()
		if !errors.Is(err, ErrMissingCredentials) {
			t.Fatalf("expected ErrMissingCredentials, got %v", err)
		}

		msg := err.Error()
		for _, name := range []string{"SPOTIFY_CLIENT_SECRET", "YOUTUBE_API_KEY"} {
			if !strings.Contains(msg, name) {
				t.Errorf("expected %q in %q", name, msg)
			}
		}

		if strings.Contains(msg, "SPOTIFY_CLIENT_ID") {
			t.Errorf("configured credential should not be listed: %q", msg)
		}
	})

	t.Run("complete credentials", func(t *testing.T) {
		config := DefaultConfig()
		config.Credentials.Spotify.ClientID = "id"
		config.Credentials.Spotify.ClientSecret = "secret"
		config.Credentials.YouTube.APIKey = "key"

		if err := config.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestConfigOutputRoot(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tc := []struct {
		name string
		dir  string
		want string
	}{
		{name: "default", dir: "", want: filepath.Join(home, "Downloads")},
		{name: "tilde", dir: "~/Music", want: filepath.Join(home, "Music")},
		{name: "absolute", dir: "/srv/music", want: "/srv/music"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.Library.OutputDir = tt.dir

			got, err := config.OutputRoot()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("OutputRoot() = %v, want %v", got, tt.want)
			}
		})
	}
}
