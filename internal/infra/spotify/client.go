// Package spotify provides a client for the Spotify Web API album catalog.
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/osa030/albumbox/internal/domain/album"
	"github.com/osa030/albumbox/internal/domain/track"
)

// pageLimit is the Spotify API maximum for album track pages.
const pageLimit = 50

// Client is a Spotify API client.
type Client struct {
	client     *spotify.Client
	market     string
	maxRetries int
	retryDelay time.Duration
}

// Config represents Spotify client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	Market       string
}

// New creates a new Spotify client authenticated as the application.
// Catalog reads need no user authorization.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("spotify credentials are required")
	}

	auth := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	return newClient(spotify.New(auth.Client(ctx)), cfg.Market), nil
}

// NewWithHTTPClient creates a client that talks to baseURL through httpClient.
func NewWithHTTPClient(httpClient *http.Client, baseURL, market string) *Client {
	var opts []spotify.ClientOption
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		opts = append(opts, spotify.WithBaseURL(baseURL))
	}
	return newClient(spotify.New(httpClient, opts...), market)
}

func newClient(client *spotify.Client, market string) *Client {
	if market == "" {
		market = "US"
	}
	return &Client{
		client:     client,
		market:     market,
		maxRetries: 3,
		retryDelay: time.Second,
	}
}

// GetAlbum retrieves an album with all of its tracks by ID, URL, or URI.
// The slug of the returned album is left empty.
func (c *Client) GetAlbum(ctx context.Context, albumID string) (*album.Album, error) {
	id := extractAlbumID(albumID)
	if id == "" {
		return nil, errors.New("invalid album ID")
	}

	var full *spotify.FullAlbum
	err := c.retry(func() error {
		a, err := c.client.GetAlbum(ctx, spotify.ID(id), spotify.Market(c.market))
		if err != nil {
			return err
		}
		full = a
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get album %s", id)
	}

	tracks := append([]spotify.SimpleTrack(nil), full.Tracks.Tracks...)
	total := int(full.Tracks.Total)

	for len(tracks) < total {
		offset := len(tracks)
		var page *spotify.SimpleTrackPage
		err := c.retry(func() error {
			p, err := c.client.GetAlbumTracks(ctx, spotify.ID(id),
				spotify.Limit(pageLimit),
				spotify.Offset(offset),
				spotify.Market(c.market),
			)
			if err != nil {
				return err
			}
			page = p
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get album tracks %s", id)
		}
		if len(page.Tracks) == 0 {
			break
		}
		tracks = append(tracks, page.Tracks...)
	}

	result := c.convertAlbum(full, tracks)
	zlog.Debug().Msgf("spotify album fetched: id=%s title=%s tracks=%d", id, result.Title, len(result.Tracks))
	return result, nil
}

// convertAlbum converts a Spotify album and its tracks to a domain Album.
func (c *Client) convertAlbum(a *spotify.FullAlbum, items []spotify.SimpleTrack) *album.Album {
	artists := make([]string, len(a.Artists))
	for i, ar := range a.Artists {
		artists[i] = ar.Name
	}

	var coverArt string
	if len(a.Images) > 0 {
		coverArt = a.Images[0].URL
	}

	var releaseInfo string
	if a.ReleaseDate != "" {
		releaseInfo = "Released " + a.ReleaseDate
	}

	tracks := make([]track.Track, 0, len(items))
	for i, t := range items {
		tracks = append(tracks, track.Track{
			Title:    t.Name,
			Duration: float64(t.Duration) / 1000,
			Source:   t.PreviewURL,
			Position: i + 1,
		})
	}

	return &album.Album{
		Title:       a.Name,
		Artist:      strings.Join(artists, ", "),
		ReleaseInfo: releaseInfo,
		CoverArtURL: coverArt,
		Tracks:      tracks,
	}
}

// GetAlbumURL returns the Spotify URL for an album.
func (c *Client) GetAlbumURL(albumID string) string {
	return fmt.Sprintf("https://open.spotify.com/album/%s", albumID)
}

// retry retries an operation with linear backoff.
func (c *Client) retry(fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < c.maxRetries-1 {
			time.Sleep(c.retryDelay * time.Duration(i+1))
		}
	}
	return errors.Wrap(lastErr, "max retries exceeded")
}

// isRetryable checks if an error is retryable.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	// Rate limit errors and server errors are retryable
	errStr := err.Error()
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}

// extractAlbumID extracts the album ID from a Spotify album URL or URI.
func extractAlbumID(input string) string {
	input = strings.TrimSpace(input)
	// Handle Spotify URI format: spotify:album:ALBUM_ID
	if strings.HasPrefix(input, "spotify:album:") {
		return strings.TrimPrefix(input, "spotify:album:")
	}

	// Handle URL format: https://open.spotify.com/album/ALBUM_ID or https://open.spotify.com/intl-XX/album/ALBUM_ID
	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/album/") {
		parts := strings.Split(input, "/album/")
		if len(parts) >= 2 {
			id := strings.Split(parts[len(parts)-1], "?")[0]
			id = strings.TrimRight(id, "/")
			return id
		}
	}

	// Assume it's already an album ID
	return input
}
