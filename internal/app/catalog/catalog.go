package catalog

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/osa030/albumbox/internal/domain/album"
)

// ErrAlbumNotFound is returned when no album matches a slug.
var ErrAlbumNotFound = errors.New("album not found")

// Catalog is an ordered, slug-indexed set of albums.
type Catalog struct {
	mu     sync.RWMutex
	albums []album.Album
	bySlug map[string]int
	chain  *Chain
}

// New creates a catalog from albums. Later duplicates of a slug are ignored.
func New(albums []album.Album) *Catalog {
	c := &Catalog{}
	c.set(albums)
	return c
}

// Load creates a catalog from everything the chain provides.
func Load(ctx context.Context, chain *Chain) (*Catalog, error) {
	albums, err := chain.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load catalog")
	}
	c := New(albums)
	c.chain = chain
	return c, nil
}

// Reload re-reads the chain the catalog was loaded from.
// The current albums are kept if the reload fails.
func (c *Catalog) Reload(ctx context.Context) error {
	if c.chain == nil {
		return errors.New("catalog has no sources")
	}
	albums, err := c.chain.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to reload catalog")
	}
	c.set(albums)
	return nil
}

func (c *Catalog) set(albums []album.Album) {
	list := make([]album.Album, 0, len(albums))
	index := make(map[string]int, len(albums))
	for _, a := range albums {
		if _, ok := index[a.Slug]; ok {
			continue
		}
		index[a.Slug] = len(list)
		list = append(list, a)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.albums = list
	c.bySlug = index
}

// Find returns the album for a slug.
func (c *Catalog) Find(slug string) (album.Album, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.bySlug[slug]
	if !ok {
		return album.Album{}, errors.Wrapf(ErrAlbumNotFound, "slug %q", slug)
	}
	return c.albums[i], nil
}

// Albums returns all albums in catalog order.
func (c *Catalog) Albums() []album.Album {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]album.Album(nil), c.albums...)
}

// Slugs returns all slugs in catalog order.
func (c *Catalog) Slugs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	slugs := make([]string, len(c.albums))
	for i, a := range c.albums {
		slugs[i] = a.Slug
	}
	return slugs
}

// Len returns the number of albums.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.albums)
}

// DurationOf returns the declared duration of the track with the given
// source, for outputs that cannot read media metadata.
func (c *Catalog) DurationOf(source string) (float64, bool) {
	if source == "" {
		return 0, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, a := range c.albums {
		for _, t := range a.Tracks {
			if t.Source == source && t.Duration > 0 {
				return t.Duration, true
			}
		}
	}
	return 0, false
}
