package media

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"
)

// ClockConfig represents the configuration for the clock output.
type ClockConfig struct {
	TickMs      int `mapstructure:"tick_ms" default:"250" validate:"gte=10,lte=5000"`
	EventBuffer int `mapstructure:"event_buffer" default:"64" validate:"gte=1"`
}

// DurationProbe resolves the duration of a source in seconds.
type DurationProbe func(source string) (float64, bool)

// Clock is a silent output. It keeps a playback position that advances in
// real time while playing and reports durations through a probe.
type Clock struct {
	mu sync.Mutex

	*Dispatcher

	probe DurationProbe
	tick  time.Duration
	now   func() time.Time

	source   string
	position float64
	duration float64
	volume   float64
	playing  bool
	last     time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewClockFromSettings creates a clock output from raw settings.
func NewClockFromSettings(settings map[string]any, probe DurationProbe) (*Clock, error) {
	var cfg ClockConfig
	if err := mapstructure.Decode(settings, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}
	zlog.Debug().Msgf("clock output config: %+v", cfg)
	return NewClock(cfg, probe), nil
}

// NewClock creates a clock output and starts its ticker.
func NewClock(cfg ClockConfig, probe DurationProbe) *Clock {
	if cfg.TickMs <= 0 {
		cfg.TickMs = 250
	}
	if probe == nil {
		probe = func(string) (float64, bool) { return 0, false }
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Clock{
		Dispatcher: NewDispatcher(cfg.EventBuffer),
		probe:      probe,
		tick:       time.Duration(cfg.TickMs) * time.Millisecond,
		now:        time.Now,
		volume:     1,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	go c.loop(ctx)
	return c
}

// Load sets the source and resets position and duration.
func (c *Clock) Load(source string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.source = source
	c.position = 0
	c.duration = 0
	c.playing = false

	c.Emit(Event{Type: EventPositionChanged, Value: 0})
	if source == "" {
		return nil
	}
	if d, ok := c.probe(source); ok && d > 0 {
		c.duration = d
		c.Emit(Event{Type: EventDurationKnown, Value: d})
	}
	return nil
}

// Play starts advancing the position. Without a source it does nothing.
func (c *Clock) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.source == "" {
		return nil
	}
	if c.duration > 0 && c.position >= c.duration {
		c.position = 0
	}
	c.playing = true
	c.last = c.now()
	return nil
}

// Pause stops advancing the position.
func (c *Clock) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.advanceLocked()
	c.playing = false
	return nil
}

// Seek moves the position, clamped to [0, duration].
func (c *Clock) Seek(seconds float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.source == "" {
		return nil
	}
	c.position = clamp(seconds, 0, c.duration)
	c.last = c.now()
	c.Emit(Event{Type: EventPositionChanged, Value: c.position})
	return nil
}

// SetVolume sets the volume, clamped to [0, 1].
func (c *Clock) SetVolume(level float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.volume = clamp(level, 0, 1)
	c.Emit(Event{Type: EventVolumeChanged, Value: c.volume})
	return nil
}

// Clear unsets the source.
func (c *Clock) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.source = ""
	c.position = 0
	c.duration = 0
	c.playing = false
	return nil
}

// Close stops the ticker and the event delivery.
func (c *Clock) Close() error {
	c.cancel()
	<-c.done
	c.Dispatcher.Close()
	return nil
}

func (c *Clock) loop(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.playing {
				c.advanceLocked()
				c.Emit(Event{Type: EventPositionChanged, Value: c.position})
			}
			c.mu.Unlock()
		}
	}
}

// advanceLocked moves the position by the time elapsed since the last
// advance. Must be called with lock held.
func (c *Clock) advanceLocked() {
	if !c.playing {
		return
	}
	now := c.now()
	c.position += now.Sub(c.last).Seconds()
	c.last = now

	if c.duration > 0 && c.position >= c.duration {
		c.position = c.duration
		c.playing = false
		zlog.Debug().Msgf("clock: reached end of source: source=%s duration=%.1f", c.source, c.duration)
	}
}
