// Package remotev1connect binds the albumbox.v1.PlayerService to Connect.
package remotev1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	remotev1 "github.com/osa030/albumbox/internal/api/remotev1"
)

// PlayerServiceName is the fully-qualified name of the PlayerService service.
const PlayerServiceName = "albumbox.v1.PlayerService"

// Procedure paths.
const (
	PlayerServiceListAlbumsProcedure  = "/albumbox.v1.PlayerService/ListAlbums"
	PlayerServiceOpenAlbumProcedure   = "/albumbox.v1.PlayerService/OpenAlbum"
	PlayerServiceGetStateProcedure    = "/albumbox.v1.PlayerService/GetState"
	PlayerServiceSelectTrackProcedure = "/albumbox.v1.PlayerService/SelectTrack"
	PlayerServiceToggleProcedure      = "/albumbox.v1.PlayerService/Toggle"
	PlayerServicePreviousProcedure    = "/albumbox.v1.PlayerService/Previous"
	PlayerServiceNextProcedure        = "/albumbox.v1.PlayerService/Next"
	PlayerServiceScrubProcedure       = "/albumbox.v1.PlayerService/Scrub"
	PlayerServiceSetVolumeProcedure   = "/albumbox.v1.PlayerService/SetVolume"
	PlayerServiceHoverProcedure       = "/albumbox.v1.PlayerService/Hover"
	PlayerServiceSubscribeProcedure   = "/albumbox.v1.PlayerService/Subscribe"
)

// MutatingProcedures change playback state and may require a control token.
var MutatingProcedures = map[string]bool{
	PlayerServiceOpenAlbumProcedure:   true,
	PlayerServiceSelectTrackProcedure: true,
	PlayerServiceToggleProcedure:      true,
	PlayerServicePreviousProcedure:    true,
	PlayerServiceNextProcedure:        true,
	PlayerServiceScrubProcedure:       true,
	PlayerServiceSetVolumeProcedure:   true,
	PlayerServiceHoverProcedure:       true,
}

// PlayerServiceHandler is implemented by the server.
type PlayerServiceHandler interface {
	ListAlbums(context.Context, *connect.Request[remotev1.ListAlbumsRequest]) (*connect.Response[remotev1.ListAlbumsResponse], error)
	OpenAlbum(context.Context, *connect.Request[remotev1.OpenAlbumRequest]) (*connect.Response[remotev1.PlayerState], error)
	GetState(context.Context, *connect.Request[remotev1.GetStateRequest]) (*connect.Response[remotev1.PlayerState], error)
	SelectTrack(context.Context, *connect.Request[remotev1.SelectTrackRequest]) (*connect.Response[remotev1.PlayerState], error)
	Toggle(context.Context, *connect.Request[remotev1.ToggleRequest]) (*connect.Response[remotev1.PlayerState], error)
	Previous(context.Context, *connect.Request[remotev1.PreviousRequest]) (*connect.Response[remotev1.PlayerState], error)
	Next(context.Context, *connect.Request[remotev1.NextRequest]) (*connect.Response[remotev1.PlayerState], error)
	Scrub(context.Context, *connect.Request[remotev1.ScrubRequest]) (*connect.Response[remotev1.PlayerState], error)
	SetVolume(context.Context, *connect.Request[remotev1.SetVolumeRequest]) (*connect.Response[remotev1.PlayerState], error)
	Hover(context.Context, *connect.Request[remotev1.HoverRequest]) (*connect.Response[remotev1.PlayerState], error)
	Subscribe(context.Context, *connect.Request[remotev1.SubscribeRequest], *connect.ServerStream[remotev1.Notification]) error
}

// NewPlayerServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewPlayerServiceHandler(svc PlayerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(remotev1.Codec{})}, opts...)

	handlers := map[string]http.Handler{
		PlayerServiceListAlbumsProcedure:  connect.NewUnaryHandler(PlayerServiceListAlbumsProcedure, svc.ListAlbums, opts...),
		PlayerServiceOpenAlbumProcedure:   connect.NewUnaryHandler(PlayerServiceOpenAlbumProcedure, svc.OpenAlbum, opts...),
		PlayerServiceGetStateProcedure:    connect.NewUnaryHandler(PlayerServiceGetStateProcedure, svc.GetState, opts...),
		PlayerServiceSelectTrackProcedure: connect.NewUnaryHandler(PlayerServiceSelectTrackProcedure, svc.SelectTrack, opts...),
		PlayerServiceToggleProcedure:      connect.NewUnaryHandler(PlayerServiceToggleProcedure, svc.Toggle, opts...),
		PlayerServicePreviousProcedure:    connect.NewUnaryHandler(PlayerServicePreviousProcedure, svc.Previous, opts...),
		PlayerServiceNextProcedure:        connect.NewUnaryHandler(PlayerServiceNextProcedure, svc.Next, opts...),
		PlayerServiceScrubProcedure:       connect.NewUnaryHandler(PlayerServiceScrubProcedure, svc.Scrub, opts...),
		PlayerServiceSetVolumeProcedure:   connect.NewUnaryHandler(PlayerServiceSetVolumeProcedure, svc.SetVolume, opts...),
		PlayerServiceHoverProcedure:       connect.NewUnaryHandler(PlayerServiceHoverProcedure, svc.Hover, opts...),
		PlayerServiceSubscribeProcedure:   connect.NewServerStreamHandler(PlayerServiceSubscribeProcedure, svc.Subscribe, opts...),
	}

	return "/" + PlayerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// PlayerServiceClient is a client for the PlayerService.
type PlayerServiceClient struct {
	listAlbums  *connect.Client[remotev1.ListAlbumsRequest, remotev1.ListAlbumsResponse]
	openAlbum   *connect.Client[remotev1.OpenAlbumRequest, remotev1.PlayerState]
	getState    *connect.Client[remotev1.GetStateRequest, remotev1.PlayerState]
	selectTrack *connect.Client[remotev1.SelectTrackRequest, remotev1.PlayerState]
	toggle      *connect.Client[remotev1.ToggleRequest, remotev1.PlayerState]
	previous    *connect.Client[remotev1.PreviousRequest, remotev1.PlayerState]
	next        *connect.Client[remotev1.NextRequest, remotev1.PlayerState]
	scrub       *connect.Client[remotev1.ScrubRequest, remotev1.PlayerState]
	setVolume   *connect.Client[remotev1.SetVolumeRequest, remotev1.PlayerState]
	hover       *connect.Client[remotev1.HoverRequest, remotev1.PlayerState]
	subscribe   *connect.Client[remotev1.SubscribeRequest, remotev1.Notification]
}

// NewPlayerServiceClient constructs a client for the PlayerService at baseURL
// (for example, http://localhost:8080).
func NewPlayerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *PlayerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(remotev1.Codec{})}, opts...)

	return &PlayerServiceClient{
		listAlbums:  connect.NewClient[remotev1.ListAlbumsRequest, remotev1.ListAlbumsResponse](httpClient, baseURL+PlayerServiceListAlbumsProcedure, opts...),
		openAlbum:   connect.NewClient[remotev1.OpenAlbumRequest, remotev1.PlayerState](httpClient, baseURL+PlayerServiceOpenAlbumProcedure, opts...),
		getState:    connect.NewClient[remotev1.GetStateRequest, remotev1.PlayerState](httpClient, baseURL+PlayerServiceGetStateProcedure, opts...),
		selectTrack: connect.NewClient[remotev1.SelectTrackRequest, remotev1.PlayerState](httpClient, baseURL+PlayerServiceSelectTrackProcedure, opts...),
		toggle:      connect.NewClient[remotev1.ToggleRequest, remotev1.PlayerState](httpClient, baseURL+PlayerServiceToggleProcedure, opts...),
		previous:    connect.NewClient[remotev1.PreviousRequest, remotev1.PlayerState](httpClient, baseURL+PlayerServicePreviousProcedure, opts...),
		next:        connect.NewClient[remotev1.NextRequest, remotev1.PlayerState](httpClient, baseURL+PlayerServiceNextProcedure, opts...),
		scrub:       connect.NewClient[remotev1.ScrubRequest, remotev1.PlayerState](httpClient, baseURL+PlayerServiceScrubProcedure, opts...),
		setVolume:   connect.NewClient[remotev1.SetVolumeRequest, remotev1.PlayerState](httpClient, baseURL+PlayerServiceSetVolumeProcedure, opts...),
		hover:       connect.NewClient[remotev1.HoverRequest, remotev1.PlayerState](httpClient, baseURL+PlayerServiceHoverProcedure, opts...),
		subscribe:   connect.NewClient[remotev1.SubscribeRequest, remotev1.Notification](httpClient, baseURL+PlayerServiceSubscribeProcedure, opts...),
	}
}

// ListAlbums calls albumbox.v1.PlayerService.ListAlbums.
func (c *PlayerServiceClient) ListAlbums(ctx context.Context, req *connect.Request[remotev1.ListAlbumsRequest]) (*connect.Response[remotev1.ListAlbumsResponse], error) {
	return c.listAlbums.CallUnary(ctx, req)
}

// OpenAlbum calls albumbox.v1.PlayerService.OpenAlbum.
func (c *PlayerServiceClient) OpenAlbum(ctx context.Context, req *connect.Request[remotev1.OpenAlbumRequest]) (*connect.Response[remotev1.PlayerState], error) {
	return c.openAlbum.CallUnary(ctx, req)
}

// GetState calls albumbox.v1.PlayerService.GetState.
func (c *PlayerServiceClient) GetState(ctx context.Context, req *connect.Request[remotev1.GetStateRequest]) (*connect.Response[remotev1.PlayerState], error) {
	return c.getState.CallUnary(ctx, req)
}

// SelectTrack calls albumbox.v1.PlayerService.SelectTrack.
func (c *PlayerServiceClient) SelectTrack(ctx context.Context, req *connect.Request[remotev1.SelectTrackRequest]) (*connect.Response[remotev1.PlayerState], error) {
	return c.selectTrack.CallUnary(ctx, req)
}

// Toggle calls albumbox.v1.PlayerService.Toggle.
func (c *PlayerServiceClient) Toggle(ctx context.Context, req *connect.Request[remotev1.ToggleRequest]) (*connect.Response[remotev1.PlayerState], error) {
	return c.toggle.CallUnary(ctx, req)
}

// Previous calls albumbox.v1.PlayerService.Previous.
func (c *PlayerServiceClient) Previous(ctx context.Context, req *connect.Request[remotev1.PreviousRequest]) (*connect.Response[remotev1.PlayerState], error) {
	return c.previous.CallUnary(ctx, req)
}

// Next calls albumbox.v1.PlayerService.Next.
func (c *PlayerServiceClient) Next(ctx context.Context, req *connect.Request[remotev1.NextRequest]) (*connect.Response[remotev1.PlayerState], error) {
	return c.next.CallUnary(ctx, req)
}

// Scrub calls albumbox.v1.PlayerService.Scrub.
func (c *PlayerServiceClient) Scrub(ctx context.Context, req *connect.Request[remotev1.ScrubRequest]) (*connect.Response[remotev1.PlayerState], error) {
	return c.scrub.CallUnary(ctx, req)
}

// SetVolume calls albumbox.v1.PlayerService.SetVolume.
func (c *PlayerServiceClient) SetVolume(ctx context.Context, req *connect.Request[remotev1.SetVolumeRequest]) (*connect.Response[remotev1.PlayerState], error) {
	return c.setVolume.CallUnary(ctx, req)
}

// Hover calls albumbox.v1.PlayerService.Hover.
func (c *PlayerServiceClient) Hover(ctx context.Context, req *connect.Request[remotev1.HoverRequest]) (*connect.Response[remotev1.PlayerState], error) {
	return c.hover.CallUnary(ctx, req)
}

// Subscribe calls albumbox.v1.PlayerService.Subscribe.
func (c *PlayerServiceClient) Subscribe(ctx context.Context, req *connect.Request[remotev1.SubscribeRequest]) (*connect.ServerStreamForClient[remotev1.Notification], error) {
	return c.subscribe.CallServerStream(ctx, req)
}
