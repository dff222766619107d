// Package session provides the session manager. It scopes one playback
// controller to the album currently open and forwards its events to remote
// subscribers.
package session

import (
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	remotev1 "github.com/osa030/albumbox/internal/api/remotev1"
	"github.com/osa030/albumbox/internal/app/notification"
	"github.com/osa030/albumbox/internal/app/playback"
	"github.com/osa030/albumbox/internal/domain/album"
	"github.com/osa030/albumbox/internal/infra/media"
)

var (
	ErrNoAlbum = errors.New("no album is open")
	ErrClosed  = errors.New("session manager is closed")
)

// Catalog resolves album slugs.
type Catalog interface {
	Find(slug string) (album.Album, error)
	Albums() []album.Album
}

// Config holds session manager configuration.
type Config struct {
	InitialVolume float64
	EventBuffer   int
}

// Status is the state of the open album.
type Status struct {
	Open     bool
	Snapshot playback.Snapshot
}

// Manager owns the audio output and the controller of the open album.
// Opening another album disposes of the previous controller first, so the
// output is never shared.
type Manager struct {
	mu sync.RWMutex

	// Configuration
	config Config

	// Components
	catalog      Catalog
	output       media.Output
	notification *notification.Manager

	// Open album
	controller *playback.Controller
	loopDone   chan struct{}

	closed bool
	done   chan struct{}
}

// NewManager creates a new session manager.
func NewManager(cat Catalog, output media.Output, notif *notification.Manager, cfg Config) *Manager {
	if notif == nil {
		notif = notification.NewManager()
	}
	return &Manager{
		config:       cfg,
		catalog:      cat,
		output:       output,
		notification: notif,
		done:         make(chan struct{}),
	}
}

// Open makes the album with the given slug the open album.
// An unknown slug returns an error wrapping catalog.ErrAlbumNotFound and
// leaves the current album open.
func (m *Manager) Open(slug string) (*playback.Controller, error) {
	a, err := m.catalog.Find(slug)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}

	m.closeControllerLocked()

	c, err := playback.NewController(a, m.output, playback.Config{
		InitialVolume: m.config.InitialVolume,
		EventBuffer:   m.config.EventBuffer,
	})
	if err != nil {
		m.mu.Unlock()
		return nil, errors.Wrapf(err, "failed to open album %s", slug)
	}

	loopDone := make(chan struct{})
	m.controller = c
	m.loopDone = loopDone
	go m.forwardLoop(c, loopDone)
	m.mu.Unlock()

	zlog.Info().Msgf("album opened: slug=%s session_id=%s tracks=%d", a.Slug, c.SessionID(), len(a.Tracks))

	m.notification.Broadcast(&remotev1.Notification{
		Type:  remotev1.NotificationTypeAlbumOpened,
		State: BuildPlayerState(c.Snapshot()),
	})

	return c, nil
}

// Controller returns the controller of the open album.
func (m *Manager) Controller() (*playback.Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	if m.controller == nil {
		return nil, ErrNoAlbum
	}
	return m.controller, nil
}

// Status returns the state of the open album.
func (m *Manager) Status() *Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.controller == nil {
		return &Status{}
	}
	return &Status{Open: true, Snapshot: m.controller.Snapshot()}
}

// Albums returns the catalog albums.
func (m *Manager) Albums() []album.Album {
	return m.catalog.Albums()
}

// GetNotificationManager returns the notification manager.
func (m *Manager) GetNotificationManager() *notification.Manager {
	return m.notification
}

// Done returns a channel that is closed when the manager is closed.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Close disposes of the open controller and removes all subscribers.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	hadAlbum := m.controller != nil
	m.closeControllerLocked()
	m.mu.Unlock()

	if hadAlbum {
		m.notification.Broadcast(&remotev1.Notification{Type: remotev1.NotificationTypeAlbumClosed})
	}
	close(m.done)
	m.notification.Close()
	zlog.Info().Msg("session manager closed")
}

// closeControllerLocked closes the open controller and waits for its event
// loop to drain. Must be called with lock held.
func (m *Manager) closeControllerLocked() {
	if m.controller == nil {
		return
	}
	sessionID := m.controller.SessionID()
	if err := m.controller.Close(); err != nil {
		zlog.Warn().Msgf("failed to close controller: session_id=%s error=%v", sessionID, err)
	}
	<-m.loopDone
	m.controller = nil
	m.loopDone = nil
	zlog.Debug().Msgf("controller disposed: session_id=%s", sessionID)
}

// forwardLoop broadcasts controller events until its channel is closed.
func (m *Manager) forwardLoop(c *playback.Controller, done chan struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Msgf("forward loop panicked: session_id=%s error=%v", c.SessionID(), r)
		}
	}()

	for event := range c.Events() {
		if event.Type != playback.EventPositionChanged {
			zlog.Debug().Msgf("playback event: type=%s state=%s index=%d",
				event.Type, event.Snapshot.State, event.Snapshot.CurrentIndex)
		}
		m.notification.Broadcast(&remotev1.Notification{
			Type:  remotev1.NotificationTypeStateChanged,
			Event: event.Type.String(),
			State: BuildPlayerState(event.Snapshot),
		})
	}
}
