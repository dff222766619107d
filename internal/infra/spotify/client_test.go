package spotify

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAlbumID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Spotify URI format",
			input:    "spotify:album:4aawyAB9vmqN3uQ7FjRGTy",
			expected: "4aawyAB9vmqN3uQ7FjRGTy",
		},
		{
			name:     "Spotify URL format",
			input:    "https://open.spotify.com/album/4aawyAB9vmqN3uQ7FjRGTy",
			expected: "4aawyAB9vmqN3uQ7FjRGTy",
		},
		{
			name:     "Spotify URL with query params",
			input:    "https://open.spotify.com/album/4aawyAB9vmqN3uQ7FjRGTy?si=abc123",
			expected: "4aawyAB9vmqN3uQ7FjRGTy",
		},
		{
			name:     "Localized URL",
			input:    "https://open.spotify.com/intl-ja/album/abc123/",
			expected: "abc123",
		},
		{
			name:     "Plain album ID",
			input:    "  4aawyAB9vmqN3uQ7FjRGTy ",
			expected: "4aawyAB9vmqN3uQ7FjRGTy",
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractAlbumID(tt.input)
			assert.Equal(t, tt.expected, result,
				"extractAlbumID(%s) should return %s", tt.input, tt.expected)
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "rate limit error with 429", err: errors.New("Error 429: rate limit exceeded"), expected: true},
		{name: "rate limit text", err: errors.New("rate limit exceeded"), expected: true},
		{name: "server error 500", err: errors.New("Error 500: internal server error"), expected: true},
		{name: "server error 503", err: errors.New("503 Service Unavailable"), expected: true},
		{name: "client error 400", err: errors.New("400 Bad Request"), expected: false},
		{name: "not found error", err: errors.New("404 not found"), expected: false},
		{name: "generic error", err: errors.New("something went wrong"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isRetryable(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

const albumJSON = `{
  "id": "alb1",
  "name": "Night Drive",
  "album_type": "album",
  "release_date": "2019-04-12",
  "artists": [{"id": "ar1", "name": "First"}, {"id": "ar2", "name": "Second"}],
  "images": [{"url": "https://i.scdn.co/image/cover", "height": 640, "width": 640}],
  "tracks": {
    "href": "",
    "limit": 2,
    "offset": 0,
    "total": 3,
    "next": "more",
    "items": [
      {"id": "t1", "name": "Intro", "duration_ms": 65000, "preview_url": "https://p.scdn.co/mp3-preview/1", "track_number": 1},
      {"id": "t2", "name": "Highway", "duration_ms": 200500, "preview_url": "https://p.scdn.co/mp3-preview/2", "track_number": 2}
    ]
  }
}`

const tracksPageJSON = `{
  "href": "",
  "limit": 50,
  "offset": 2,
  "total": 3,
  "items": [
    {"id": "t3", "name": "Outro", "duration_ms": 90000, "preview_url": "", "track_number": 3}
  ]
}`

func TestClient_GetAlbum(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/albums/alb1":
			assert.Equal(t, "JP", r.URL.Query().Get("market"))
			fmt.Fprint(w, albumJSON)
		case "/albums/alb1/tracks":
			assert.Equal(t, "2", r.URL.Query().Get("offset"))
			fmt.Fprint(w, tracksPageJSON)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := NewWithHTTPClient(server.Client(), server.URL, "JP")

	a, err := c.GetAlbum(t.Context(), "spotify:album:alb1")
	require.NoError(t, err)

	assert.Equal(t, []string{"/albums/alb1", "/albums/alb1/tracks"}, paths)
	assert.Equal(t, "Night Drive", a.Title)
	assert.Equal(t, "First, Second", a.Artist)
	assert.Equal(t, "Released 2019-04-12", a.ReleaseInfo)
	assert.Equal(t, "https://i.scdn.co/image/cover", a.CoverArtURL)
	require.Len(t, a.Tracks, 3)
	assert.Equal(t, "Intro", a.Tracks[0].Title)
	assert.Equal(t, 65.0, a.Tracks[0].Duration)
	assert.Equal(t, "https://p.scdn.co/mp3-preview/1", a.Tracks[0].Source)
	assert.Equal(t, 200.5, a.Tracks[1].Duration)
	assert.Equal(t, 3, a.Tracks[2].Position)
	assert.False(t, a.Tracks[2].HasSource())
}

func TestClient_GetAlbum_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error": {"status": 404, "message": "non existing id"}}`)
	}))
	defer server.Close()

	c := NewWithHTTPClient(server.Client(), server.URL, "")

	_, err := c.GetAlbum(t.Context(), "missing")
	assert.Error(t, err)
}

func TestClient_GetAlbum_InvalidID(t *testing.T) {
	c := NewWithHTTPClient(http.DefaultClient, "http://127.0.0.1:0", "")

	_, err := c.GetAlbum(t.Context(), "   ")
	assert.Error(t, err)
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New(t.Context(), Config{ClientID: "id"})
	assert.Error(t, err)
}

func TestClient_GetAlbumURL(t *testing.T) {
	c := NewWithHTTPClient(http.DefaultClient, "", "")
	assert.Equal(t, "https://open.spotify.com/album/abc", c.GetAlbumURL("abc"))
}
