// Package album provides the Album domain entity.
package album

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/osa030/albumbox/internal/domain/track"
)

var (
	ErrNoTracks = errors.New("album has no tracks")
	ErrNoSlug   = errors.New("album has no slug")
)

// Album represents a catalog entry with ordered tracks.
type Album struct {
	Slug        string        // Identifier used for routing
	Title       string        // Album title
	Artist      string        // Artist name
	ReleaseInfo string        // Free-form release information
	CoverArtURL string        // Cover art locator
	Tracks      []track.Track // Tracks in navigation order
}

// Validate checks the album invariants: a slug and at least one track.
func (a *Album) Validate() error {
	if strings.TrimSpace(a.Slug) == "" {
		return ErrNoSlug
	}
	if len(a.Tracks) == 0 {
		return errors.Wrapf(ErrNoTracks, "album %q", a.Slug)
	}
	return nil
}

// Len returns the number of tracks.
func (a *Album) Len() int {
	return len(a.Tracks)
}

// TrackAt returns the track at index i.
func (a *Album) TrackAt(i int) (track.Track, bool) {
	if i < 0 || i >= len(a.Tracks) {
		return track.Track{}, false
	}
	return a.Tracks[i], true
}

// TotalDuration returns the sum of the catalog-declared durations in seconds.
func (a *Album) TotalDuration() float64 {
	var total float64
	for _, t := range a.Tracks {
		total += t.Duration
	}
	return total
}

// Normalize fills in track positions from their order when they are unset.
func (a *Album) Normalize() {
	for i := range a.Tracks {
		if a.Tracks[i].Position == 0 {
			a.Tracks[i].Position = i + 1
		}
	}
}
