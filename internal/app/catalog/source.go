// Package catalog resolves album slugs to albums loaded from configured sources.
package catalog

import (
	"context"

	"github.com/osa030/albumbox/internal/domain/album"
)

// Source is the interface for album catalog sources.
// Different implementations load albums from different places
// (e.g., a YAML file, the Spotify Web API).
type Source interface {
	// Albums loads every album the source provides, in source order.
	Albums(ctx context.Context) ([]album.Album, error)

	// Name returns the source type name (used in config).
	Name() string
}

// SpotifyClient defines the Spotify operations needed by catalog sources.
type SpotifyClient interface {
	GetAlbum(ctx context.Context, albumID string) (*album.Album, error)
}

// Enricher fills metadata an album is missing, such as cover art.
type Enricher interface {
	Enrich(ctx context.Context, a *album.Album) error
}
