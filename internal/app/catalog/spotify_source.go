package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/albumbox/internal/domain/album"
)

// SpotifyAlbumEntry maps a slug to a Spotify album ID, URL, or URI.
type SpotifyAlbumEntry struct {
	Slug  string `mapstructure:"slug" validate:"required"`
	Album string `mapstructure:"album" validate:"required"`
}

// SpotifySourceConfig represents the settings of a Spotify source.
type SpotifySourceConfig struct {
	Albums []SpotifyAlbumEntry `mapstructure:"albums" validate:"required,min=1,dive"`
}

// SpotifySource loads albums from the Spotify Web API. Track sources are the
// 30-second preview URLs.
type SpotifySource struct {
	spotify SpotifyClient
	config  *SpotifySourceConfig
}

// NewSpotifySource creates a new SpotifySource from raw settings.
func NewSpotifySource(spotify SpotifyClient, settings map[string]any) (*SpotifySource, error) {
	if spotify == nil {
		return nil, errors.New("spotify client is required")
	}

	var config SpotifySourceConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	zlog.Debug().Msgf("spotify source config: %+v", config)
	if err := validator.New().Struct(config); err != nil {
		zlog.Error().Msgf("spotify source validation failed: %v", err)
		return nil, errors.Wrap(err, "validation failed")
	}
	return &SpotifySource{spotify: spotify, config: &config}, nil
}

// Albums fetches every configured album. Albums that fail to load are skipped.
func (s *SpotifySource) Albums(ctx context.Context) ([]album.Album, error) {
	albums := make([]album.Album, 0, len(s.config.Albums))
	for _, e := range s.config.Albums {
		a, err := s.spotify.GetAlbum(ctx, e.Album)
		if err != nil {
			zlog.Warn().Msgf("spotify album failed, skipping: slug=%s album=%s error=%v", e.Slug, e.Album, err)
			continue
		}
		a.Slug = e.Slug
		albums = append(albums, *a)
	}

	if len(albums) == 0 {
		return nil, errors.New("no spotify albums could be loaded")
	}
	return albums, nil
}

// Name returns the source name.
func (s *SpotifySource) Name() string {
	return "spotify"
}
