package lastfm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/albumbox/internal/domain/album"
)

const albumInfoResponse = `{
	"album": {
		"name": "Kind of Blue",
		"artist": "Miles Davis",
		"image": [
			{"#text": "https://img.example/s.png", "size": "small"},
			{"#text": "https://img.example/xl.png", "size": "extralarge"},
			{"#text": "https://img.example/l.png", "size": "large"},
			{"#text": "", "size": "mega"}
		],
		"tags": {"tag": [{"name": "jazz"}, {"name": "modal"}]},
		"wiki": {"published": "17 Aug 1959, 00:00"}
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{APIKey: "test_key"})
	require.NoError(t, err)
	client.baseURL = server.URL + "/"
	return client
}

func TestNew(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestGetAlbumInfo(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "album.getInfo", r.URL.Query().Get("method"))
		assert.Equal(t, "Miles Davis", r.URL.Query().Get("artist"))
		assert.Equal(t, "Kind of Blue", r.URL.Query().Get("album"))
		assert.Equal(t, "test_key", r.URL.Query().Get("api_key"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, albumInfoResponse)
	})

	ctx := context.Background()
	info, err := client.GetAlbumInfo(ctx, "Miles Davis", "Kind of Blue")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/xl.png", info.ImageURL)
	assert.Equal(t, "17 Aug 1959, 00:00", info.Published)
	assert.Equal(t, []string{"jazz", "modal"}, info.Tags)

	// Second lookup is served from the cache.
	cached, err := client.GetAlbumInfo(ctx, "miles davis", "KIND OF BLUE")
	require.NoError(t, err)
	assert.Same(t, info, cached)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetAlbumInfo_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		status   int
		notFound bool
	}{
		{name: "unknown album", body: `{"error": 6, "message": "Album not found"}`, status: http.StatusOK, notFound: true},
		{name: "invalid key", body: `{"error": 10, "message": "Invalid API key"}`, status: http.StatusForbidden},
		{name: "server error", body: `oops`, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := client.GetAlbumInfo(context.Background(), "a", "b")
			require.Error(t, err)
			assert.Equal(t, tt.notFound, errors.Is(err, ErrAlbumNotFound))
		})
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := client.GetAlbumInfo(context.Background(), "", "b")
	assert.Error(t, err)
}

func TestEnrich(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, albumInfoResponse)
	})
	ctx := context.Background()

	t.Run("fills missing fields", func(t *testing.T) {
		a := &album.Album{Slug: "kob", Title: "Kind of Blue", Artist: "Miles Davis"}
		require.NoError(t, client.Enrich(ctx, a))
		assert.Equal(t, "https://img.example/xl.png", a.CoverArtURL)
		assert.Equal(t, "Released 17 Aug 1959", a.ReleaseInfo)
	})

	t.Run("keeps existing fields", func(t *testing.T) {
		a := &album.Album{Slug: "kob", Title: "Kind of Blue", Artist: "Miles Davis", ReleaseInfo: "Columbia, 1959"}
		require.NoError(t, client.Enrich(ctx, a))
		assert.Equal(t, "Columbia, 1959", a.ReleaseInfo)
		assert.Equal(t, "https://img.example/xl.png", a.CoverArtURL)
	})

	t.Run("complete album skips lookup", func(t *testing.T) {
		before := calls.Load()
		a := &album.Album{Title: "X", Artist: "Y", ReleaseInfo: "r", CoverArtURL: "c"}
		require.NoError(t, client.Enrich(ctx, a))
		assert.Equal(t, before, calls.Load())
	})
}

func TestLargestImage(t *testing.T) {
	assert.Equal(t, "", largestImage(nil))
	assert.Equal(t, "m", largestImage([]image{{URL: "s", Size: "small"}, {URL: "m", Size: "mega"}, {URL: "l", Size: "large"}}))
	assert.Equal(t, "x", largestImage([]image{{URL: "x", Size: ""}}))
}
