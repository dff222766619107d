package connect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	remotev1 "github.com/osa030/albumbox/internal/api/remotev1"
	"github.com/osa030/albumbox/internal/api/remotev1/remotev1connect"
	"github.com/osa030/albumbox/internal/app/catalog"
	"github.com/osa030/albumbox/internal/app/notification"
	"github.com/osa030/albumbox/internal/app/session"
	"github.com/osa030/albumbox/internal/domain/album"
	"github.com/osa030/albumbox/internal/domain/track"
	"github.com/osa030/albumbox/internal/infra/media"
)

func newTestServer(t *testing.T, token string) (*remotev1connect.PlayerServiceClient, *session.Manager) {
	t.Helper()

	cat := catalog.New([]album.Album{
		{
			Slug: "kind-of-blue", Title: "Kind of Blue", Artist: "Miles Davis",
			Tracks: []track.Track{
				{Title: "So What", Duration: 562, Source: "kob/1.mp3", Position: 1},
				{Title: "Freddie Freeloader", Duration: 586, Source: "kob/2.mp3", Position: 2},
				{Title: "Blue in Green", Duration: 337, Source: "kob/3.mp3", Position: 3},
			},
		},
	})
	out := media.NewClock(media.ClockConfig{TickMs: 5000, EventBuffer: 64}, cat.DurationOf)
	sess := session.NewManager(cat, out, notification.NewManager(), session.Config{InitialVolume: 1, EventBuffer: 64})

	mux := http.NewServeMux()
	mux.Handle(remotev1connect.NewPlayerServiceHandler(
		NewPlayerService(sess),
		connect.WithInterceptors(NewControlAuthInterceptor(token)),
	))
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		sess.Close()
		server.Close()
		_ = out.Close()
	})

	return remotev1connect.NewPlayerServiceClient(server.Client(), server.URL), sess
}

func TestPlayerService_ListAlbums(t *testing.T) {
	client, _ := newTestServer(t, "")

	resp, err := client.ListAlbums(t.Context(), connect.NewRequest(&remotev1.ListAlbumsRequest{}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Albums, 1)

	a := resp.Msg.Albums[0]
	assert.Equal(t, "kind-of-blue", a.Slug)
	assert.Equal(t, int32(3), a.TrackCount)
	assert.Equal(t, 1485.0, a.TotalDuration)
	assert.Empty(t, a.Tracks)
}

func TestPlayerService_Errors(t *testing.T) {
	client, _ := newTestServer(t, "")
	ctx := t.Context()

	_, err := client.GetState(ctx, connect.NewRequest(&remotev1.GetStateRequest{}))
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

	_, err = client.Toggle(ctx, connect.NewRequest(&remotev1.ToggleRequest{}))
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

	_, err = client.OpenAlbum(ctx, connect.NewRequest(&remotev1.OpenAlbumRequest{Slug: "nope"}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = client.OpenAlbum(ctx, connect.NewRequest(&remotev1.OpenAlbumRequest{Slug: "kind-of-blue"}))
	require.NoError(t, err)

	_, err = client.SelectTrack(ctx, connect.NewRequest(&remotev1.SelectTrackRequest{Index: 7}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestPlayerService_Playback(t *testing.T) {
	client, _ := newTestServer(t, "")
	ctx := t.Context()

	opened, err := client.OpenAlbum(ctx, connect.NewRequest(&remotev1.OpenAlbumRequest{Slug: "kind-of-blue"}))
	require.NoError(t, err)
	assert.Equal(t, "idle", opened.Msg.State)
	assert.Equal(t, int32(-1), opened.Msg.CurrentIndex)
	assert.Equal(t, int32(0), opened.Msg.LoadedIndex)
	assert.Len(t, opened.Msg.Album.Tracks, 3)

	// Navigation before anything is current is a no-op.
	resp, err := client.Next(ctx, connect.NewRequest(&remotev1.NextRequest{}))
	require.NoError(t, err)
	assert.Equal(t, int32(-1), resp.Msg.CurrentIndex)

	resp, err = client.SelectTrack(ctx, connect.NewRequest(&remotev1.SelectTrackRequest{Index: 1}))
	require.NoError(t, err)
	assert.True(t, resp.Msg.IsPlaying)
	assert.Equal(t, "Freddie Freeloader", resp.Msg.CurrentTrack.Title)
	assert.Equal(t, "9:46", resp.Msg.DurationText)

	resp, err = client.Toggle(ctx, connect.NewRequest(&remotev1.ToggleRequest{}))
	require.NoError(t, err)
	assert.False(t, resp.Msg.IsPlaying)

	resp, err = client.Next(ctx, connect.NewRequest(&remotev1.NextRequest{}))
	require.NoError(t, err)
	assert.Equal(t, int32(2), resp.Msg.CurrentIndex)
	assert.True(t, resp.Msg.IsPlaying)

	resp, err = client.Scrub(ctx, connect.NewRequest(&remotev1.ScrubRequest{Fraction: 1.5}))
	require.NoError(t, err)
	assert.Equal(t, 337.0, resp.Msg.CurrentTime)

	resp, err = client.SetVolume(ctx, connect.NewRequest(&remotev1.SetVolumeRequest{Volume: 0.25}))
	require.NoError(t, err)
	assert.Equal(t, 0.25, resp.Msg.CurrentVolume)

	resp, err = client.Hover(ctx, connect.NewRequest(&remotev1.HoverRequest{Index: 0}))
	require.NoError(t, err)
	assert.Equal(t, int32(0), resp.Msg.HoveredIndex)

	resp, err = client.Hover(ctx, connect.NewRequest(&remotev1.HoverRequest{Index: -1}))
	require.NoError(t, err)
	assert.Equal(t, int32(-1), resp.Msg.HoveredIndex)

	state, err := client.GetState(ctx, connect.NewRequest(&remotev1.GetStateRequest{}))
	require.NoError(t, err)
	assert.Equal(t, "Blue in Green", state.Msg.CurrentTrack.Title)
}

func TestPlayerService_ControlToken(t *testing.T) {
	client, _ := newTestServer(t, "secret")
	ctx := t.Context()

	// Reads are open.
	_, err := client.ListAlbums(ctx, connect.NewRequest(&remotev1.ListAlbumsRequest{}))
	require.NoError(t, err)

	_, err = client.OpenAlbum(ctx, connect.NewRequest(&remotev1.OpenAlbumRequest{Slug: "kind-of-blue"}))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	req := connect.NewRequest(&remotev1.OpenAlbumRequest{Slug: "kind-of-blue"})
	req.Header().Set(ControlTokenHeader, "wrong")
	_, err = client.OpenAlbum(ctx, req)
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	req = connect.NewRequest(&remotev1.OpenAlbumRequest{Slug: "kind-of-blue"})
	req.Header().Set(ControlTokenHeader, "secret")
	_, err = client.OpenAlbum(ctx, req)
	require.NoError(t, err)
}

func TestControlTokenClientInterceptor(t *testing.T) {
	_, sess := newTestServer(t, "secret")

	// Rebuild a client that attaches the token itself.
	mux := http.NewServeMux()
	mux.Handle(remotev1connect.NewPlayerServiceHandler(
		NewPlayerService(sess),
		connect.WithInterceptors(NewControlAuthInterceptor("secret")),
	))
	server := httptest.NewServer(mux)
	defer server.Close()

	client := remotev1connect.NewPlayerServiceClient(server.Client(), server.URL,
		connect.WithInterceptors(NewControlTokenClientInterceptor("secret")))

	resp, err := client.OpenAlbum(t.Context(), connect.NewRequest(&remotev1.OpenAlbumRequest{Slug: "kind-of-blue"}))
	require.NoError(t, err)
	assert.Equal(t, "kind-of-blue", resp.Msg.Album.Slug)
}

func TestPlayerService_Subscribe(t *testing.T) {
	client, sess := newTestServer(t, "")

	_, err := client.OpenAlbum(t.Context(), connect.NewRequest(&remotev1.OpenAlbumRequest{Slug: "kind-of-blue"}))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 3*time.Second)
	defer cancel()

	stream, err := client.Subscribe(ctx, connect.NewRequest(&remotev1.SubscribeRequest{}))
	require.NoError(t, err)
	defer stream.Close()

	require.True(t, stream.Receive(), "initial state: %v", stream.Err())
	initial := stream.Msg()
	assert.Equal(t, remotev1.NotificationTypeInitialState, initial.Type)
	require.NotNil(t, initial.State)
	assert.Equal(t, "kind-of-blue", initial.State.Album.Slug)

	require.Eventually(t, func() bool {
		return sess.GetNotificationManager().SubscriberCount() == 1
	}, time.Second, 10*time.Millisecond)

	_, err = client.SelectTrack(ctx, connect.NewRequest(&remotev1.SelectTrackRequest{Index: 2}))
	require.NoError(t, err)

	var got *remotev1.Notification
	for stream.Receive() {
		n := stream.Msg()
		if n.Type == remotev1.NotificationTypeStateChanged && n.State.CurrentTrack != nil &&
			n.State.CurrentTrack.Title == "Blue in Green" {
			got = n
			break
		}
	}
	require.NotNil(t, got, "no state_changed notification: %v", stream.Err())
	assert.Greater(t, got.SequenceNo, initial.SequenceNo)
}
