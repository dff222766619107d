package catalog

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/albumbox/internal/infra/config"
)

// NewChainFromConfig creates a source chain from configuration.
// spotify may be nil when no Spotify source is configured.
func NewChainFromConfig(cfg *config.Config, spotify SpotifyClient) (*Chain, error) {
	if len(cfg.Catalog.Sources) == 0 {
		return nil, errors.New("no catalog sources configured")
	}

	var sources []SourceWithMetadata

	for i, scfg := range cfg.Catalog.Sources {
		var source Source
		var err error
		zlog.Debug().Msgf("creating catalog source: index=%d type=%s settings=%+v", i+1, scfg.Type, scfg.Settings)
		switch scfg.Type {
		case config.SourceFile:
			source, err = NewFileSource(scfg.Settings)

		case config.SourceSpotify:
			source, err = NewSpotifySource(spotify, scfg.Settings)

		default:
			return nil, errors.Newf("unsupported source type: %s (source index %d)", scfg.Type, i)
		}

		if err != nil {
			return nil, errors.Wrapf(err, "failed to create source (index %d, type %s)", i, scfg.Type)
		}

		name := scfg.DisplayName
		if name == "" {
			name = scfg.Type
		}
		sources = append(sources, SourceWithMetadata{
			Source:      source,
			DisplayName: name,
		})

		zlog.Info().Msgf("registered catalog source: index=%d type=%s display_name=%s", i+1, scfg.Type, name)
	}

	return NewChain(sources), nil
}
