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
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Shuffle     ShuffleConfig     `toml:"shuffle"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains the Spotify application registration.
//
// No client secret: the app authenticates as a public PKCE client.
type SpotifyConfig struct {
	ClientID    string `toml:"client_id"`
	RedirectURI string `toml:"redirect_uri"`
}

// DatabaseConfig contains local cache database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains loopback OAuth callback server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ShuffleConfig tunes the shuffle-and-queue engine.
type ShuffleConfig struct {
	MaxQueueLength    int  `toml:"max_queue_length"`
	PageSize          int  `toml:"page_size"`
	WindowSize        int  `toml:"window_size"`
	WindowDelayMS     int  `toml:"window_delay_ms"`
	QueueDelayMS      int  `toml:"queue_delay_ms"`
	DeviceSettleMS    int  `toml:"device_settle_ms"`
	CacheTTLMinutes   int  `toml:"cache_ttl_minutes"`
	QueueCheckEnabled bool `toml:"queue_check_enabled"`
}

// WindowDelay returns the pause inserted between bulk-fetch request windows.
func (s ShuffleConfig) WindowDelay() time.Duration {
	return time.Duration(s.WindowDelayMS) * time.Millisecond
}

// QueueDelay returns the baseline pause between queue submissions.
func (s ShuffleConfig) QueueDelay() time.Duration {
	return time.Duration(s.QueueDelayMS) * time.Millisecond
}

// DeviceSettle returns how long to wait after a device hand-off before re-polling.
func (s ShuffleConfig) DeviceSettle() time.Duration {
	return time.Duration(s.DeviceSettleMS) * time.Millisecond
}

// CacheTTL returns how long locally cached catalog data stays fresh.
func (s ShuffleConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLMinutes) * time.Minute
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.normalize()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.normalize()
	return &config
}

// SaveConfig writes the configuration back to disk as TOML.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
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

// normalize fills zero-valued tuning knobs with the defaults the provider's
// rate limits were measured against.
func (c *Config) normalize() {
	s := &c.Shuffle
	if s.MaxQueueLength <= 0 {
		s.MaxQueueLength = 150
	}
	if s.PageSize <= 0 || s.PageSize > 50 {
		s.PageSize = 50
	}
	if s.WindowSize <= 0 {
		s.WindowSize = 5
	}
	if s.WindowDelayMS <= 0 {
		s.WindowDelayMS = 100
	}
	if s.QueueDelayMS <= 0 {
		s.QueueDelayMS = 150
	}
	if s.DeviceSettleMS <= 0 {
		s.DeviceSettleMS = 1500
	}
	if s.CacheTTLMinutes <= 0 {
		s.CacheTTLMinutes = 30
	}
}
