package album

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/osa030/albumbox/internal/domain/track"
)

func TestAlbum_Validate(t *testing.T) {
	tests := []struct {
		name    string
		album   Album
		wantErr error
	}{
		{
			name: "valid album",
			album: Album{
				Slug:   "a",
				Tracks: []track.Track{{Title: "One"}},
			},
		},
		{
			name:    "no tracks",
			album:   Album{Slug: "a"},
			wantErr: ErrNoTracks,
		},
		{
			name:    "blank slug",
			album:   Album{Slug: "  ", Tracks: []track.Track{{Title: "One"}}},
			wantErr: ErrNoSlug,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.album.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "unexpected error: %v", err)
		})
	}
}

func TestAlbum_TrackAt(t *testing.T) {
	a := Album{
		Slug: "a",
		Tracks: []track.Track{
			{Title: "One", Position: 1},
			{Title: "Two", Position: 2},
		},
	}

	tests := []struct {
		name      string
		index     int
		wantTitle string
		wantOK    bool
	}{
		{name: "first", index: 0, wantTitle: "One", wantOK: true},
		{name: "last", index: 1, wantTitle: "Two", wantOK: true},
		{name: "negative", index: -1, wantOK: false},
		{name: "past the end", index: 2, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trk, ok := a.TrackAt(tt.index)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantTitle, trk.Title)
		})
	}
}

func TestAlbum_TotalDuration(t *testing.T) {
	a := Album{
		Tracks: []track.Track{
			{Duration: 180},
			{Duration: 200},
			{Duration: 20.5},
		},
	}

	assert.InDelta(t, 400.5, a.TotalDuration(), 1e-9)
	assert.Equal(t, 3, a.Len())
}

func TestAlbum_Normalize(t *testing.T) {
	a := Album{
		Tracks: []track.Track{
			{Title: "One"},
			{Title: "Two", Position: 7},
			{Title: "Three"},
		},
	}

	a.Normalize()

	assert.Equal(t, 1, a.Tracks[0].Position)
	assert.Equal(t, 7, a.Tracks[1].Position)
	assert.Equal(t, 3, a.Tracks[2].Position)
}
