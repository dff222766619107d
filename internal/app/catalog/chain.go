package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/albumbox/internal/domain/album"
)

// SourceWithMetadata wraps a source with its metadata.
type SourceWithMetadata struct {
	Source      Source
	DisplayName string
}

// Chain loads albums from multiple sources in order.
type Chain struct {
	sources  []SourceWithMetadata
	enricher Enricher
}

// NewChain creates a new source chain.
func NewChain(sources []SourceWithMetadata) *Chain {
	return &Chain{
		sources: sources,
	}
}

// SetEnricher sets the enricher applied to every loaded album.
func (c *Chain) SetEnricher(e Enricher) {
	c.enricher = e
}

// Load retrieves albums from all sources. A failing source is skipped, an
// invalid album is skipped, and the first album for a slug wins.
func (c *Chain) Load(ctx context.Context) ([]album.Album, error) {
	var all []album.Album
	seen := make(map[string]bool)

	for i, sm := range c.sources {
		zlog.Debug().Msgf("loading source: index=%d total=%d name=%s source_type=%s",
			i+1, len(c.sources), sm.DisplayName, sm.Source.Name())

		albums, err := sm.Source.Albums(ctx)
		if err != nil {
			zlog.Warn().Msgf("source failed, trying next: source=%s error=%v", sm.DisplayName, err)
			continue
		}

		added := 0
		for _, a := range albums {
			if err := a.Validate(); err != nil {
				zlog.Warn().Msgf("skipping invalid album: source=%s slug=%s error=%v", sm.DisplayName, a.Slug, err)
				continue
			}
			if seen[a.Slug] {
				zlog.Warn().Msgf("skipping duplicate album: source=%s slug=%s", sm.DisplayName, a.Slug)
				continue
			}
			seen[a.Slug] = true
			a.Normalize()
			if c.enricher != nil {
				if err := c.enricher.Enrich(ctx, &a); err != nil {
					zlog.Warn().Msgf("album metadata lookup failed: slug=%s error=%v", a.Slug, err)
				}
			}
			all = append(all, a)
			added++
		}

		zlog.Info().Msgf("source returned albums: source=%s count=%d total_so_far=%d",
			sm.DisplayName, added, len(all))
	}

	if len(all) == 0 {
		return nil, errors.New("all sources failed to return albums")
	}

	return all, nil
}

// Len returns the number of sources.
func (c *Chain) Len() int {
	return len(c.sources)
}
