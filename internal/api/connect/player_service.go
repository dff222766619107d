// Package connect provides Connect RPC service implementations.
package connect

import (
	"context"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	remotev1 "github.com/osa030/albumbox/internal/api/remotev1"
	"github.com/osa030/albumbox/internal/api/remotev1/remotev1connect"
	"github.com/osa030/albumbox/internal/app/catalog"
	"github.com/osa030/albumbox/internal/app/playback"
	"github.com/osa030/albumbox/internal/app/session"
)

// PlayerService implements the PlayerService RPC.
type PlayerService struct {
	session *session.Manager
}

// NewPlayerService creates a new PlayerService.
func NewPlayerService(session *session.Manager) *PlayerService {
	return &PlayerService{
		session: session,
	}
}

// Ensure PlayerService implements the interface.
var _ remotev1connect.PlayerServiceHandler = (*PlayerService)(nil)

// ListAlbums lists the catalog.
func (s *PlayerService) ListAlbums(
	ctx context.Context,
	req *connect.Request[remotev1.ListAlbumsRequest],
) (*connect.Response[remotev1.ListAlbumsResponse], error) {
	albums := s.session.Albums()

	resp := &remotev1.ListAlbumsResponse{
		Albums: make([]*remotev1.AlbumInfo, len(albums)),
	}
	for i, a := range albums {
		resp.Albums[i] = session.BuildAlbumInfo(a, false)
	}
	return connect.NewResponse(resp), nil
}

// OpenAlbum opens the album with the given slug.
func (s *PlayerService) OpenAlbum(
	ctx context.Context,
	req *connect.Request[remotev1.OpenAlbumRequest],
) (*connect.Response[remotev1.PlayerState], error) {
	c, err := s.session.Open(req.Msg.Slug)
	if err != nil {
		return nil, toConnectError(err)
	}
	return stateResponse(c), nil
}

// GetState returns the state of the open album.
func (s *PlayerService) GetState(
	ctx context.Context,
	req *connect.Request[remotev1.GetStateRequest],
) (*connect.Response[remotev1.PlayerState], error) {
	c, err := s.session.Controller()
	if err != nil {
		return nil, toConnectError(err)
	}
	return stateResponse(c), nil
}

// SelectTrack clicks a track row.
func (s *PlayerService) SelectTrack(
	ctx context.Context,
	req *connect.Request[remotev1.SelectTrackRequest],
) (*connect.Response[remotev1.PlayerState], error) {
	return s.control(func(c *playback.Controller) error {
		return c.SelectTrack(int(req.Msg.Index))
	})
}

// Toggle presses the transport play/pause button.
func (s *PlayerService) Toggle(
	ctx context.Context,
	req *connect.Request[remotev1.ToggleRequest],
) (*connect.Response[remotev1.PlayerState], error) {
	return s.control(func(c *playback.Controller) error {
		return c.Toggle()
	})
}

// Previous moves to the previous track.
func (s *PlayerService) Previous(
	ctx context.Context,
	req *connect.Request[remotev1.PreviousRequest],
) (*connect.Response[remotev1.PlayerState], error) {
	return s.control(func(c *playback.Controller) error {
		return c.Previous()
	})
}

// Next moves to the next track.
func (s *PlayerService) Next(
	ctx context.Context,
	req *connect.Request[remotev1.NextRequest],
) (*connect.Response[remotev1.PlayerState], error) {
	return s.control(func(c *playback.Controller) error {
		return c.Next()
	})
}

// Scrub seeks to a fraction of the track.
func (s *PlayerService) Scrub(
	ctx context.Context,
	req *connect.Request[remotev1.ScrubRequest],
) (*connect.Response[remotev1.PlayerState], error) {
	return s.control(func(c *playback.Controller) error {
		return c.Scrub(req.Msg.Fraction)
	})
}

// SetVolume sets the volume.
func (s *PlayerService) SetVolume(
	ctx context.Context,
	req *connect.Request[remotev1.SetVolumeRequest],
) (*connect.Response[remotev1.PlayerState], error) {
	return s.control(func(c *playback.Controller) error {
		return c.SetVolume(req.Msg.Volume)
	})
}

// Hover sets or clears the hovered row.
func (s *PlayerService) Hover(
	ctx context.Context,
	req *connect.Request[remotev1.HoverRequest],
) (*connect.Response[remotev1.PlayerState], error) {
	return s.control(func(c *playback.Controller) error {
		if req.Msg.Index < 0 {
			c.Unhover()
		} else {
			c.Hover(int(req.Msg.Index))
		}
		return nil
	})
}

// Subscribe streams notifications, starting with the current state.
func (s *PlayerService) Subscribe(
	ctx context.Context,
	req *connect.Request[remotev1.SubscribeRequest],
	stream *connect.ServerStream[remotev1.Notification],
) error {
	notifManager := s.session.GetNotificationManager()

	initial := &remotev1.Notification{
		Type:       remotev1.NotificationTypeInitialState,
		SequenceNo: notifManager.NextSequenceNo(),
	}
	if status := s.session.Status(); status.Open {
		initial.State = session.BuildPlayerState(status.Snapshot)
	}
	if err := stream.Send(initial); err != nil {
		return err
	}

	adapter := &notificationStreamAdapter{stream: stream}
	subscriptionID := notifManager.Subscribe(adapter)
	defer notifManager.Unsubscribe(subscriptionID)

	zlog.Debug().Msgf("subscriber connected: id=%s peer=%s", subscriptionID, req.Peer().Addr)

	// Wait for client disconnect or shutdown
	select {
	case <-ctx.Done():
	case <-s.session.Done():
	}
	return nil
}

// control runs an operation on the open controller and returns its state.
func (s *PlayerService) control(op func(c *playback.Controller) error) (*connect.Response[remotev1.PlayerState], error) {
	c, err := s.session.Controller()
	if err != nil {
		return nil, toConnectError(err)
	}
	// Navigation without a current track is a no-op.
	if err := op(c); err != nil && !errors.Is(err, playback.ErrNoTrack) {
		return nil, toConnectError(err)
	}
	return stateResponse(c), nil
}

func stateResponse(c *playback.Controller) *connect.Response[remotev1.PlayerState] {
	return connect.NewResponse(session.BuildPlayerState(c.Snapshot()))
}

// toConnectError maps domain errors to Connect codes.
func toConnectError(err error) error {
	switch {
	case errors.Is(err, catalog.ErrAlbumNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, session.ErrNoAlbum):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, playback.ErrTrackOutOfRange):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, playback.ErrClosed), errors.Is(err, session.ErrClosed):
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// notificationStreamAdapter adapts connect.ServerStream to notification.Stream.
type notificationStreamAdapter struct {
	stream *connect.ServerStream[remotev1.Notification]
}

func (a *notificationStreamAdapter) Send(notification *remotev1.Notification) error {
	return a.stream.Send(notification)
}
