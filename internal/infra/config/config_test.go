package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileSource() SourceConfig {
	return SourceConfig{Type: SourceFile, Settings: map[string]any{"path": "albums.yaml"}}
}

func TestConfig_Validate(t *testing.T) {
	volume := 0.5
	tooLoud := 1.5

	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config",
			config: Config{
				Player:  PlayerConfig{InitialVolume: &volume, EventBuffer: 64},
				Output:  OutputConfig{Type: OutputClock},
				Catalog: CatalogConfig{Sources: []SourceConfig{fileSource()}},
			},
			wantErr: false,
		},
		{
			name: "no catalog sources",
			config: Config{
				Player: PlayerConfig{EventBuffer: 64},
				Output: OutputConfig{Type: OutputClock},
			},
			wantErr: true,
			errMsg:  "Sources",
		},
		{
			name: "unknown source type",
			config: Config{
				Player: PlayerConfig{EventBuffer: 64},
				Output: OutputConfig{Type: OutputClock},
				Catalog: CatalogConfig{Sources: []SourceConfig{
					{Type: "ftp", Settings: map[string]any{"host": "x"}},
				}},
			},
			wantErr: true,
			errMsg:  "Type",
		},
		{
			name: "unknown output type",
			config: Config{
				Player:  PlayerConfig{EventBuffer: 64},
				Output:  OutputConfig{Type: "alsa"},
				Catalog: CatalogConfig{Sources: []SourceConfig{fileSource()}},
			},
			wantErr: true,
			errMsg:  "Type",
		},
		{
			name: "volume out of range",
			config: Config{
				Player:  PlayerConfig{InitialVolume: &tooLoud, EventBuffer: 64},
				Output:  OutputConfig{Type: OutputClock},
				Catalog: CatalogConfig{Sources: []SourceConfig{fileSource()}},
			},
			wantErr: true,
			errMsg:  "InitialVolume",
		},
		{
			name: "spotify source without credentials",
			config: Config{
				Player: PlayerConfig{EventBuffer: 64},
				Output: OutputConfig{Type: OutputClock},
				Catalog: CatalogConfig{Sources: []SourceConfig{
					{Type: SourceSpotify, Settings: map[string]any{"albums": []any{}}},
				}},
			},
			wantErr: true,
			errMsg:  "client_id",
		},
		{
			name: "invalid market length",
			config: Config{
				Player:  PlayerConfig{EventBuffer: 64},
				Output:  OutputConfig{Type: OutputClock},
				Catalog: CatalogConfig{Sources: []SourceConfig{fileSource()}},
				Spotify: SpotifyConfig{Market: "JAPAN"},
			},
			wantErr: true,
			errMsg:  "Market",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`
catalog:
  sources:
    - type: file
      settings:
        path: albums.yaml
`))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, OutputClock, cfg.Output.Type)
	assert.Equal(t, 64, cfg.Player.EventBuffer)
	assert.Equal(t, 1.0, cfg.Player.Volume())
	assert.Equal(t, "US", cfg.Spotify.Market)
	assert.False(t, cfg.HasSpotifySource())
}

func TestParse_ExplicitZeroVolume(t *testing.T) {
	cfg, err := Parse([]byte(`
player:
  initial_volume: 0
catalog:
  sources:
    - type: file
      settings:
        path: albums.yaml
`))
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Player.Volume())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")
	t.Setenv("ALBUMBOX_CONTROL_TOKEN", "env-token")
	t.Setenv("LASTFM_API_KEY", "env-lastfm")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
  control_token: file-token
output:
  type: mpv
  settings:
    binary: /usr/bin/mpv
catalog:
  sources:
    - type: spotify
      display_name: Spotify
      settings:
        albums:
          - slug: night-drive
            album: spotify:album:abc
spotify:
  market: JP
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "env-token", cfg.Server.ControlToken)
	assert.Equal(t, "env-id", cfg.Spotify.ClientID)
	assert.Equal(t, "env-secret", cfg.Spotify.ClientSecret)
	assert.Equal(t, "JP", cfg.Spotify.Market)
	assert.Equal(t, "env-lastfm", cfg.LastFM.APIKey)
	assert.Equal(t, OutputMPV, cfg.Output.Type)
	assert.Equal(t, "/usr/bin/mpv", cfg.Output.Settings["binary"])
	assert.True(t, cfg.HasSpotifySource())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
