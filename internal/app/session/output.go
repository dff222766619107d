package session

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/albumbox/internal/infra/config"
	"github.com/osa030/albumbox/internal/infra/media"
	"github.com/osa030/albumbox/internal/infra/media/mpv"
)

// Output is an audio output the process owns and must close on exit.
type Output interface {
	media.Output
	Close() error
}

// NewOutputFromConfig creates the configured audio output. probe supplies
// declared durations to outputs that cannot read media metadata.
func NewOutputFromConfig(ctx context.Context, cfg *config.Config, probe media.DurationProbe) (Output, error) {
	zlog.Debug().Msgf("creating output: type=%s settings=%+v", cfg.Output.Type, cfg.Output.Settings)

	switch cfg.Output.Type {
	case config.OutputClock, "":
		out, err := media.NewClockFromSettings(cfg.Output.Settings, probe)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create clock output")
		}
		return out, nil

	case config.OutputMPV:
		out, err := mpv.NewFromSettings(ctx, cfg.Output.Settings)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create mpv output")
		}
		return out, nil

	default:
		return nil, errors.Newf("unsupported output type: %s", cfg.Output.Type)
	}
}
