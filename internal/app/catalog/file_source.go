package catalog

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/osa030/albumbox/internal/domain/album"
	"github.com/osa030/albumbox/internal/domain/track"
)

// FileSourceConfig represents the settings of a YAML file source.
type FileSourceConfig struct {
	Path string `mapstructure:"path" validate:"required"`
	// Relative track sources are resolved against the catalog file directory
	// unless KeepRelative is set.
	KeepRelative bool `mapstructure:"keep_relative"`
}

// FileSource loads albums from a YAML catalog file.
type FileSource struct {
	config *FileSourceConfig
}

// catalogFile is the YAML catalog document.
type catalogFile struct {
	Albums []albumEntry `yaml:"albums"`
}

type albumEntry struct {
	Slug        string       `yaml:"slug"`
	Title       string       `yaml:"title"`
	Artist      string       `yaml:"artist"`
	ReleaseInfo string       `yaml:"release_info"`
	CoverArtURL string       `yaml:"cover_art_url"`
	Tracks      []trackEntry `yaml:"tracks"`
}

type trackEntry struct {
	Title    string  `yaml:"title"`
	Duration seconds `yaml:"duration"`
	Source   string  `yaml:"source"`
}

// seconds accepts a number of seconds or an "m:ss" string.
type seconds float64

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *seconds) UnmarshalYAML(value *yaml.Node) error {
	v, err := parseSeconds(value.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", value.Line)
	}
	*s = seconds(v)
	return nil
}

// parseSeconds parses "200", "200.5", "3:20" or "1:02:03".
func parseSeconds(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	if !strings.Contains(text, ":") {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil || v < 0 {
			return 0, errors.Newf("invalid duration %q", text)
		}
		return v, nil
	}

	var total float64
	for _, part := range strings.Split(text, ":") {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v < 0 {
			return 0, errors.Newf("invalid duration %q", text)
		}
		total = total*60 + v
	}
	return total, nil
}

// NewFileSource creates a new FileSource from raw settings.
func NewFileSource(settings map[string]any) (*FileSource, error) {
	var config FileSourceConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	zlog.Debug().Msgf("file source config: %+v", config)
	if err := validator.New().Struct(config); err != nil {
		zlog.Error().Msgf("file source validation failed: %v", err)
		return nil, errors.Wrap(err, "validation failed")
	}
	return &FileSource{config: &config}, nil
}

// Albums reads and parses the catalog file.
func (s *FileSource) Albums(ctx context.Context) ([]album.Album, error) {
	data, err := os.ReadFile(s.config.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read catalog file")
	}

	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "failed to parse catalog file %s", s.config.Path)
	}

	base := filepath.Dir(s.config.Path)
	albums := make([]album.Album, 0, len(doc.Albums))
	for _, e := range doc.Albums {
		a := album.Album{
			Slug:        strings.TrimSpace(e.Slug),
			Title:       e.Title,
			Artist:      e.Artist,
			ReleaseInfo: e.ReleaseInfo,
			CoverArtURL: e.CoverArtURL,
			Tracks:      make([]track.Track, 0, len(e.Tracks)),
		}
		for i, t := range e.Tracks {
			source := t.Source
			if !s.config.KeepRelative {
				source = resolveSource(base, source)
			}
			a.Tracks = append(a.Tracks, track.Track{
				Title:    t.Title,
				Duration: float64(t.Duration),
				Source:   source,
				Position: i + 1,
			})
		}
		albums = append(albums, a)
	}
	return albums, nil
}

// Name returns the source name.
func (s *FileSource) Name() string {
	return "file"
}

// resolveSource makes a relative file path absolute against base.
// URLs and absolute paths are returned unchanged.
func resolveSource(base, source string) string {
	if source == "" || filepath.IsAbs(source) {
		return source
	}
	if u, err := url.Parse(source); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return source
	}
	return filepath.Join(base, source)
}
