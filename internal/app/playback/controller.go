package playback

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/albumbox/internal/domain/album"
	"github.com/osa030/albumbox/internal/domain/track"
	"github.com/osa030/albumbox/internal/infra/media"
)

// Errors
var (
	ErrNoTrack         = errors.New("no track selected")
	ErrTrackOutOfRange = errors.New("track index out of range")
	ErrClosed          = errors.New("controller is closed")
)

const noTrack = -1

// Config holds controller configuration.
type Config struct {
	InitialVolume float64 // Volume applied when the output is bound, in [0, 1]
	EventBuffer   int     // Size of the event channel
}

// Controller owns one audio output for the lifetime of one album and keeps
// the playback session state in sync with it.
type Controller struct {
	mu sync.Mutex

	album     album.Album
	sessionID string

	// Output binding
	output  media.Output
	release func()

	// Session state
	current     int // Selected track, noTrack when idle
	loaded      int // Track whose source the output holds
	isPlaying   bool
	currentTime float64
	duration    float64
	volume      float64
	hovered     int

	// Events
	eventCh chan Event
	closed  bool
}

// NewController binds the output and pre-loads the first track without
// starting it.
func NewController(a album.Album, output media.Output, config Config) (*Controller, error) {
	if err := a.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid album")
	}
	a.Tracks = append([]track.Track(nil), a.Tracks...)
	a.Normalize()

	if config.EventBuffer <= 0 {
		config.EventBuffer = 64
	}
	volume := clampUnit(config.InitialVolume)

	c := &Controller{
		album:     a,
		sessionID: uuid.New().String(),
		output:    output,
		current:   noTrack,
		loaded:    0,
		duration:  a.Tracks[0].Duration,
		volume:    volume,
		hovered:   noTrack,
		eventCh:   make(chan Event, config.EventBuffer),
	}

	release, err := output.Bind(c.handleOutputEvent)
	if err != nil {
		return nil, errors.Wrap(err, "failed to bind output")
	}
	c.release = release

	c.mu.Lock()
	defer c.mu.Unlock()

	c.call("set_volume", func() error { return output.SetVolume(volume) })
	c.call("load", func() error { return output.Load(a.Tracks[0].Source) })

	zlog.Debug().Msgf("playback: controller created: session_id=%s album=%s tracks=%d",
		c.sessionID, a.Slug, len(a.Tracks))

	return c, nil
}

// Events returns the event channel. It is closed by Close.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// SessionID returns the ID of this playback session.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// Album returns the album this controller plays.
func (c *Controller) Album() album.Album {
	return c.album
}

// SelectTrack handles a click on track i.
// A different track is loaded and played. The playing track is paused and
// deselected. The paused current track resumes.
func (c *Controller) SelectTrack(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if i < 0 || i >= len(c.album.Tracks) {
		return errors.Wrapf(ErrTrackOutOfRange, "index %d", i)
	}

	c.selectLocked(i)
	return nil
}

// Toggle handles the transport play/pause button.
func (c *Controller) Toggle() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	switch {
	case c.isPlaying:
		c.call("pause", c.output.Pause)
		c.isPlaying = false
		c.sendEventLocked(EventStateChanged)

	case c.current != noTrack:
		c.call("play", c.output.Play)
		c.isPlaying = true
		c.sendEventLocked(EventStateChanged)

	default:
		// Idle: resume whatever the output holds, at its current position.
		c.current = c.loaded
		c.call("play", c.output.Play)
		c.isPlaying = true
		zlog.Debug().Msgf("playback: resuming loaded track: session_id=%s index=%d", c.sessionID, c.loaded)
		c.sendEventLocked(EventTrackChanged)
	}
	return nil
}

// Previous moves to the previous track, stopping at the first one.
func (c *Controller) Previous() error {
	return c.step(-1)
}

// Next moves to the next track, stopping at the last one.
func (c *Controller) Next() error {
	return c.step(1)
}

func (c *Controller) step(delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.current == noTrack {
		return ErrNoTrack
	}

	target := c.current + delta
	if target < 0 {
		target = 0
	}
	if last := len(c.album.Tracks) - 1; target > last {
		target = last
	}

	if target != c.current {
		c.loadAndPlayLocked(target)
		return nil
	}

	// At a boundary: stay on the track, make sure it plays.
	if !c.isPlaying {
		c.call("play", c.output.Play)
		c.isPlaying = true
		c.sendEventLocked(EventStateChanged)
	}
	return nil
}

// Scrub seeks to fraction f of the duration and updates the current time
// before the output confirms it.
func (c *Controller) Scrub(f float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	target := c.duration * clampUnit(f)
	c.call("seek", func() error { return c.output.Seek(target) })
	c.currentTime = target
	c.sendEventLocked(EventPositionChanged)
	return nil
}

// SetVolume sets the volume and updates it before the output confirms it.
func (c *Controller) SetVolume(v float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	level := clampUnit(v)
	c.call("set_volume", func() error { return c.output.SetVolume(level) })
	c.volume = level
	c.sendEventLocked(EventVolumeChanged)
	return nil
}

// Hover marks row i as hovered. Out-of-range rows are ignored.
func (c *Controller) Hover(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || i < 0 || i >= len(c.album.Tracks) || i == c.hovered {
		return
	}
	c.hovered = i
	c.sendEventLocked(EventHoverChanged)
}

// Unhover clears the hovered row.
func (c *Controller) Unhover() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.hovered == noTrack {
		return
	}
	c.hovered = noTrack
	c.sendEventLocked(EventHoverChanged)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// State returns the current playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Close clears the output's source, releases the binding and closes the
// event channel. It is safe to call more than once.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	c.call("clear", c.output.Clear)
	if c.release != nil {
		c.release()
	}
	c.isPlaying = false
	close(c.eventCh)

	zlog.Debug().Msgf("playback: controller closed: session_id=%s", c.sessionID)
	return nil
}

// handleOutputEvent applies an authoritative value reported by the output.
// It overwrites any optimistic value unconditionally.
func (c *Controller) handleOutputEvent(e media.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	switch e.Type {
	case media.EventPositionChanged:
		c.currentTime = e.Value
		c.sendEventLocked(EventPositionChanged)
	case media.EventDurationKnown:
		c.duration = e.Value
		c.sendEventLocked(EventDurationChanged)
	case media.EventVolumeChanged:
		c.volume = e.Value
		c.sendEventLocked(EventVolumeChanged)
	}
}

// selectLocked applies a click on track i. Must be called with lock held.
func (c *Controller) selectLocked(i int) {
	if i != c.current {
		c.loadAndPlayLocked(i)
		return
	}

	if c.isPlaying {
		c.call("pause", c.output.Pause)
		c.isPlaying = false
		c.current = noTrack
		c.sendEventLocked(EventTrackChanged)
		return
	}

	c.call("play", c.output.Play)
	c.isPlaying = true
	c.sendEventLocked(EventStateChanged)
}

// loadAndPlayLocked makes track i current, then loads and plays it.
// Must be called with lock held.
func (c *Controller) loadAndPlayLocked(i int) {
	t := c.album.Tracks[i]

	c.current = i
	c.loaded = i
	c.currentTime = 0
	c.duration = t.Duration

	c.call("load", func() error { return c.output.Load(t.Source) })
	c.call("play", c.output.Play)
	c.isPlaying = true

	zlog.Debug().Msgf("playback: track selected: session_id=%s index=%d title=%s",
		c.sessionID, i, t.Title)

	c.sendEventLocked(EventTrackChanged)
}

// call runs a transport operation. Failures are logged, not returned.
func (c *Controller) call(op string, fn func() error) {
	if err := fn(); err != nil {
		zlog.Warn().Msgf("playback: output %s failed: session_id=%s error=%v", op, c.sessionID, err)
	}
}

// stateLocked derives the state. Must be called with lock held.
func (c *Controller) stateLocked() State {
	switch {
	case c.isPlaying:
		return StatePlaying
	case c.current != noTrack:
		return StatePaused
	default:
		return StateIdle
	}
}

// snapshotLocked copies the state. Must be called with lock held.
func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		SessionID:    c.sessionID,
		Album:        c.album,
		State:        c.stateLocked(),
		IsPlaying:    c.isPlaying,
		CurrentIndex: c.current,
		LoadedIndex:  c.loaded,
		CurrentTime:  c.currentTime,
		Duration:     c.duration,
		Volume:       c.volume,
		HoveredIndex: c.hovered,
	}
	if c.current != noTrack {
		t := c.album.Tracks[c.current]
		s.CurrentTrack = &t
	}
	return s
}

// sendEventLocked sends an event without blocking.
// Must be called with lock held.
func (c *Controller) sendEventLocked(t EventType) {
	select {
	case c.eventCh <- Event{Type: t, Snapshot: c.snapshotLocked()}:
	default:
		// Channel full, drop; the next event carries a full snapshot.
	}
}

// clampUnit limits v to [0, 1].
func clampUnit(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// FormatTime renders seconds for the transport bar time display.
func FormatTime(seconds float64) string {
	return track.FormatTime(seconds)
}
