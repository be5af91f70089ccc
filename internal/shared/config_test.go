package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./ymx.db" {
			t.Errorf("expected database path ./ymx.db, got %s", config.Database.Path)
		}

		if config.API.BaseURL != "https://api.music.yandex.net" {
			t.Errorf("expected default base URL, got %s", config.API.BaseURL)
		}

		if config.Player.TickInterval() != 100*time.Millisecond {
			t.Errorf("expected 100ms tick, got %v", config.Player.TickInterval())
		}

		if config.Player.VolumeStep != 0.05 || config.Player.SpeedStep != 0.5 {
			t.Errorf("unexpected steps: volume %v speed %v", config.Player.VolumeStep, config.Player.SpeedStep)
		}

		if config.API.DetailAttempts != 2 {
			t.Errorf("expected 2 detail attempts, got %d", config.API.DetailAttempts)
		}

		if !config.History.Enabled {
			t.Error("expected history to be enabled by default")
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
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[credentials]
token = "secret"

[api]
base_url = "http://localhost:9090"
rate_limit = 5.0

[player]
tick_ms = 250

[database]
path = "/custom/path.db"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Credentials.Token != "secret" {
			t.Errorf("expected token secret, got %s", config.Credentials.Token)
		}

		if config.API.RateLimit != 5 {
			t.Errorf("expected rate limit 5, got %v", config.API.RateLimit)
		}

		if config.Player.TickInterval() != 250*time.Millisecond {
			t.Errorf("expected 250ms tick, got %v", config.Player.TickInterval())
		}

		if config.Player.VolumeStep != 0.05 {
			t.Errorf("expected default volume step to survive partial config, got %v", config.Player.VolumeStep)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}
