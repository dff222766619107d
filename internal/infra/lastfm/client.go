// Package lastfm provides a client for the Last.fm API.
package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/albumbox/internal/domain/album"
)

// ErrAlbumNotFound is returned when Last.fm does not know the album.
var ErrAlbumNotFound = errors.New("album not found on last.fm")

// Last.fm error code for an unknown album.
const errCodeInvalidParameters = 6

// Client is a Last.fm API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	// Cache for album info, keyed by artist and title
	albumCache map[string]*AlbumInfo
	cacheMu    sync.RWMutex
}

// Config represents Last.fm client configuration.
type Config struct {
	APIKey string
}

// AlbumInfo is the album metadata Last.fm returns.
type AlbumInfo struct {
	Name      string
	Artist    string
	ImageURL  string // largest image available
	Published string // release date as Last.fm formats it
	Tags      []string
}

type image struct {
	URL  string `json:"#text"`
	Size string `json:"size"`
}

// getAlbumInfoResponse represents the response from album.getInfo API.
type getAlbumInfoResponse struct {
	Album struct {
		Name   string  `json:"name"`
		Artist string  `json:"artist"`
		Image  []image `json:"image"`
		Tags   struct {
			Tag []struct {
				Name string `json:"name"`
			} `json:"tag"`
		} `json:"tags"`
		Wiki struct {
			Published string `json:"published"`
		} `json:"wiki"`
	} `json:"album"`
}

// apiError represents an error response from Last.fm API.
type apiError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// Image sizes from smallest to largest.
var imageSizeRank = map[string]int{
	"small":      1,
	"medium":     2,
	"large":      3,
	"extralarge": 4,
	"mega":       5,
}

// New creates a new Last.fm client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("last.fm API key is required")
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    "https://ws.audioscrobbler.com/2.0/",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		albumCache: make(map[string]*AlbumInfo),
	}, nil
}

// GetAlbumInfo retrieves album metadata from Last.fm.
// Reference: https://www.last.fm/api/show/album.getInfo
func (c *Client) GetAlbumInfo(ctx context.Context, artistName, albumName string) (*AlbumInfo, error) {
	if artistName == "" || albumName == "" {
		return nil, errors.New("artist name and album name are required")
	}

	// Check cache first
	cacheKey := fmt.Sprintf("album:%s:%s", strings.ToLower(artistName), strings.ToLower(albumName))
	c.cacheMu.RLock()
	if info, ok := c.albumCache[cacheKey]; ok {
		c.cacheMu.RUnlock()
		zlog.Debug().Msgf("using cached album info: %s - %s", artistName, albumName)
		return info, nil
	}
	c.cacheMu.RUnlock()

	params := url.Values{}
	params.Set("method", "album.getInfo")
	params.Set("api_key", c.apiKey)
	params.Set("artist", artistName)
	params.Set("album", albumName)
	params.Set("format", "json")
	params.Set("autocorrect", "1")

	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	// Check for Last.fm API errors
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != 0 {
		if apiErr.Error == errCodeInvalidParameters {
			return nil, errors.Wrapf(ErrAlbumNotFound, "%s - %s", artistName, albumName)
		}
		return nil, errors.Errorf("last.fm API error %d: %s", apiErr.Error, apiErr.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("last.fm API returned status %d", resp.StatusCode)
	}

	// Parse successful response
	var response getAlbumInfoResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, "failed to parse response")
	}

	info := &AlbumInfo{
		Name:      response.Album.Name,
		Artist:    response.Album.Artist,
		ImageURL:  largestImage(response.Album.Image),
		Published: strings.TrimSpace(response.Album.Wiki.Published),
	}
	for _, t := range response.Album.Tags.Tag {
		info.Tags = append(info.Tags, t.Name)
	}

	// Cache the result
	c.cacheMu.Lock()
	c.albumCache[cacheKey] = info
	c.cacheMu.Unlock()
	zlog.Debug().Msgf("cached album info: %s - %s (tags: %d)", artistName, albumName, len(info.Tags))

	return info, nil
}

// Enrich fills the cover art and release info an album is missing.
// Fields already set are kept.
func (c *Client) Enrich(ctx context.Context, a *album.Album) error {
	if a.CoverArtURL != "" && a.ReleaseInfo != "" {
		return nil
	}

	info, err := c.GetAlbumInfo(ctx, a.Artist, a.Title)
	if err != nil {
		return err
	}

	if a.CoverArtURL == "" {
		a.CoverArtURL = info.ImageURL
	}
	if a.ReleaseInfo == "" && info.Published != "" {
		a.ReleaseInfo = "Released " + releaseDate(info.Published)
	}
	return nil
}

func largestImage(images []image) string {
	best, bestRank := "", 0
	for _, img := range images {
		if img.URL == "" {
			continue
		}
		if rank := imageSizeRank[img.Size]; rank >= bestRank {
			best, bestRank = img.URL, rank
		}
	}
	return best
}

// releaseDate drops the time of day from a Last.fm published timestamp
// such as "17 Aug 1959, 00:00".
func releaseDate(published string) string {
	if i := strings.Index(published, ","); i >= 0 {
		return strings.TrimSpace(published[:i])
	}
	return published
}
