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
	Credentials CredentialsConfig `toml:"credentials"`
	API         APIConfig         `toml:"api"`
	Player      PlayerConfig      `toml:"player"`
	Database    DatabaseConfig    `toml:"database"`
	History     HistoryConfig     `toml:"history"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains the music service token.
type CredentialsConfig struct {
	Token string `toml:"token"`
}

// APIConfig contains settings for the metadata and resolution HTTP client.
type APIConfig struct {
	BaseURL        string  `toml:"base_url"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RateLimit      float64 `toml:"rate_limit"`
	DetailAttempts int     `toml:"detail_attempts"`
	UserAgent      string  `toml:"user_agent"`
}

// Timeout returns the request timeout, zero meaning none.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PlayerConfig contains playback engine settings.
type PlayerConfig struct {
	TickMS        int     `toml:"tick_ms"`
	VolumeStep    float64 `toml:"volume_step"`
	SpeedStep     float64 `toml:"speed_step"`
	InitialVolume float64 `toml:"initial_volume"`
	InitialSpeed  float64 `toml:"initial_speed"`
	Shuffle       bool    `toml:"shuffle"`
}

// TickInterval returns the control loop period, defaulting to 100ms.
func (c PlayerConfig) TickInterval() time.Duration {
	if c.TickMS <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(c.TickMS) * time.Millisecond
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// HistoryConfig toggles play history recording.
type HistoryConfig struct {
	Enabled bool `toml:"enabled"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
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
