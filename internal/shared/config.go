package shared

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values from the configuration file.
const (
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvRedirectURI  = "REDIRECT_URI"
	EnvPort         = "PORT"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Spotify     EndpointsConfig   `toml:"spotify"`
	Server      ServerConfig      `toml:"server"`
	Watch       WatchConfig       `toml:"watch"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
//
// The client secret is only read by the token service and must never be sent to a browser.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// EndpointsConfig contains the base URLs of the Spotify accounts service and Web API.
type EndpointsConfig struct {
	AccountsURL string `toml:"accounts_url"`
	APIURL      string `toml:"api_url"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host      string  `toml:"host"`
	Port      int     `toml:"port"`
	RateLimit float64 `toml:"rate_limit"`
	RateBurst int     `toml:"rate_burst"`
}

// WatchConfig contains settings for the terminal page controller.
type WatchConfig struct {
	ServiceURL string `toml:"service_url"`
}

// Addr returns the host:port the server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
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

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides configuration values with any environment variables found by lookup.
//
// lookup is usually [os.LookupEnv].
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvClientID); ok && v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v, ok := lookup(EnvClientSecret); ok && v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v, ok := lookup(EnvRedirectURI); ok && v != "" {
		c.Credentials.Spotify.RedirectURI = v
	}
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(strings.TrimPrefix(v, ":"))
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a port", ErrInvalidConfig, EnvPort, v)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate checks the values the token service cannot run without.
func (c *Config) Validate() error {
	sp := c.Credentials.Spotify
	if sp.ClientID == "" || sp.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id and client_secret must be set", ErrMissingCredentials)
	}
	if sp.RedirectURI == "" {
		return fmt.Errorf("%w: spotify redirect_uri must be set", ErrInvalidConfig)
	}
	if _, err := url.ParseRequestURI(sp.RedirectURI); err != nil {
		return fmt.Errorf("%w: redirect_uri: %v", ErrInvalidConfig, err)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	return nil
}
