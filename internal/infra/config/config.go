// Package config provides configuration loading from YAML files.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Source types.
const (
	SourceFile    = "file"
	SourceSpotify = "spotify"
)

// Output types.
const (
	OutputClock = "clock"
	OutputMPV   = "mpv"
)

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Player  PlayerConfig  `yaml:"player"`
	Output  OutputConfig  `yaml:"output"`
	Catalog CatalogConfig `yaml:"catalog"`
	Spotify SpotifyConfig `yaml:"spotify"`
	LastFM  LastFMConfig  `yaml:"lastfm"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr         string      `yaml:"addr" default:":8080"`
	ControlToken string      `yaml:"control_token"`
	Hooks        HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// PlayerConfig represents playback controller configuration.
type PlayerConfig struct {
	DefaultAlbum  string   `yaml:"default_album"`
	InitialVolume *float64 `yaml:"initial_volume" default:"1" validate:"omitempty,gte=0,lte=1"`
	EventBuffer   int      `yaml:"event_buffer" default:"64" validate:"gte=1,lte=4096"`
}

// Volume returns the initial volume.
func (p PlayerConfig) Volume() float64 {
	if p.InitialVolume == nil {
		return 1
	}
	return *p.InitialVolume
}

// OutputConfig represents the audio output configuration.
type OutputConfig struct {
	Type     string         `yaml:"type" default:"clock" validate:"oneof=clock mpv"`
	Settings map[string]any `yaml:"settings"`
}

// CatalogConfig represents the album catalog configuration.
type CatalogConfig struct {
	Sources []SourceConfig `yaml:"sources" validate:"required,min=1,dive"`
}

// SourceConfig represents a single catalog source configuration.
type SourceConfig struct {
	Type        string         `yaml:"type" validate:"required,oneof=file spotify"`
	DisplayName string         `yaml:"display_name"`
	Settings    map[string]any `yaml:"settings" validate:"required"`
}

// SpotifyConfig represents Spotify API configuration.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Market       string `yaml:"market" validate:"omitempty,len=2" default:"US"`
}

// LastFMConfig represents Last.fm API configuration. Album metadata lookup
// is enabled when an API key is set.
type LastFMConfig struct {
	APIKey string `yaml:"api_key"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse parses configuration from YAML bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("LASTFM_API_KEY"); v != "" {
		c.LastFM.APIKey = v
	}
	if v := os.Getenv("ALBUMBOX_CONTROL_TOKEN"); v != "" {
		c.Server.ControlToken = v
	}
}

// HasSpotifySource reports whether any catalog source reads from Spotify.
func (c *Config) HasSpotifySource() bool {
	for _, s := range c.Catalog.Sources {
		if s.Type == SourceSpotify {
			return true
		}
	}
	return false
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	// Spotify credentials are only needed by Spotify sources
	if c.HasSpotifySource() {
		if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
			return errors.New("spotify client_id and client_secret are required by spotify catalog sources")
		}
	}

	return nil
}
