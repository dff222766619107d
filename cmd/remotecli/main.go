// Package main provides the remote control CLI entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	apiconnect "github.com/osa030/albumbox/internal/api/connect"
	remotev1 "github.com/osa030/albumbox/internal/api/remotev1"
	"github.com/osa030/albumbox/internal/api/remotev1/remotev1connect"
	"github.com/osa030/albumbox/internal/app/playback"
)

var (
	app    = kingpin.New("albumbox-remotecli", "albumbox remote control client")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	token  = app.Flag("token", "Control token (or set ALBUMBOX_CONTROL_TOKEN env)").Envar("ALBUMBOX_CONTROL_TOKEN").String()

	// albums command
	albumsCmd = app.Command("albums", "List catalog albums").Alias("list")

	// open command
	openCmd  = app.Command("open", "Open an album")
	openSlug = openCmd.Arg("slug", "Album slug").Required().String()

	// state command
	stateCmd = app.Command("state", "Show the player state").Alias("status")

	// select command
	selectCmd   = app.Command("select", "Click a track row")
	selectIndex = selectCmd.Arg("index", "Track index (0-based)").Required().Int32()

	toggleCmd = app.Command("toggle", "Play or pause")
	prevCmd   = app.Command("prev", "Previous track")
	nextCmd   = app.Command("next", "Next track")

	// scrub command
	scrubCmd      = app.Command("scrub", "Seek to a fraction of the track")
	scrubFraction = scrubCmd.Arg("fraction", "Fraction in [0,1]").Required().Float64()

	// volume command
	volumeCmd   = app.Command("volume", "Set the volume")
	volumeLevel = volumeCmd.Arg("level", "Volume in [0,1]").Required().Float64()

	// hover command
	hoverCmd   = app.Command("hover", "Hover a track row (-1 clears)")
	hoverIndex = hoverCmd.Arg("index", "Track index (0-based)").Required().Int32()

	// subscribe command
	subscribeCmd = app.Command("subscribe", "Subscribe to notifications")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Create client
	client := remotev1connect.NewPlayerServiceClient(
		http.DefaultClient,
		*server,
		connect.WithInterceptors(apiconnect.NewControlTokenClientInterceptor(*token)),
	)

	ctx := context.Background()

	// Execute command
	switch command {
	case albumsCmd.FullCommand():
		listAlbums(ctx, client)
	case openCmd.FullCommand():
		printState(call(client.OpenAlbum(ctx, connect.NewRequest(&remotev1.OpenAlbumRequest{Slug: *openSlug}))))
	case stateCmd.FullCommand():
		printState(call(client.GetState(ctx, connect.NewRequest(&remotev1.GetStateRequest{}))))
	case selectCmd.FullCommand():
		printState(call(client.SelectTrack(ctx, connect.NewRequest(&remotev1.SelectTrackRequest{Index: *selectIndex}))))
	case toggleCmd.FullCommand():
		printState(call(client.Toggle(ctx, connect.NewRequest(&remotev1.ToggleRequest{}))))
	case prevCmd.FullCommand():
		printState(call(client.Previous(ctx, connect.NewRequest(&remotev1.PreviousRequest{}))))
	case nextCmd.FullCommand():
		printState(call(client.Next(ctx, connect.NewRequest(&remotev1.NextRequest{}))))
	case scrubCmd.FullCommand():
		printState(call(client.Scrub(ctx, connect.NewRequest(&remotev1.ScrubRequest{Fraction: *scrubFraction}))))
	case volumeCmd.FullCommand():
		printState(call(client.SetVolume(ctx, connect.NewRequest(&remotev1.SetVolumeRequest{Volume: *volumeLevel}))))
	case hoverCmd.FullCommand():
		printState(call(client.Hover(ctx, connect.NewRequest(&remotev1.HoverRequest{Index: *hoverIndex}))))
	case subscribeCmd.FullCommand():
		subscribe(ctx, client)
	}
}

// call exits on error and returns the response state otherwise.
func call(resp *connect.Response[remotev1.PlayerState], err error) *remotev1.PlayerState {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	return resp.Msg
}

func listAlbums(ctx context.Context, client *remotev1connect.PlayerServiceClient) {
	resp, err := client.ListAlbums(ctx, connect.NewRequest(&remotev1.ListAlbumsRequest{}))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if len(resp.Msg.Albums) == 0 {
		fmt.Println("No albums")
		return
	}

	fmt.Println("\n=== ALBUMS ===")
	for _, a := range resp.Msg.Albums {
		fmt.Printf("  %-24s %s / %s (%d tracks)\n", a.Slug, a.Title, a.Artist, a.TrackCount)
	}
}

func printState(s *remotev1.PlayerState) {
	if s == nil {
		fmt.Println("No album is open")
		return
	}

	fmt.Println("\n=== PLAYER STATE ===")
	if s.Album != nil {
		fmt.Printf("Album: %s / %s\n", s.Album.Title, s.Album.Artist)
		if s.Album.ReleaseInfo != "" {
			fmt.Printf("  %s\n", s.Album.ReleaseInfo)
		}
	}
	fmt.Printf("Session ID: %s\n", s.SessionId)
	fmt.Printf("State: %s\n", s.State)
	fmt.Printf("Time: %s / %s\n", s.CurrentTimeText, s.DurationText)
	fmt.Printf("Volume: %.0f%%\n", s.CurrentVolume*100)

	if s.Album == nil {
		return
	}
	fmt.Println("\nTracks:")
	for _, t := range s.Album.Tracks {
		marker := " "
		if t.Index == s.CurrentIndex {
			marker = playback.GlyphPlay
			if s.IsPlaying {
				marker = playback.GlyphPause
			}
		}
		fmt.Printf("  %s %2d. %-40s %s\n", marker, t.Position, t.Title, t.DurationText)
	}
}

func subscribe(ctx context.Context, client *remotev1connect.PlayerServiceClient) {
	stream, err := client.Subscribe(ctx, connect.NewRequest(&remotev1.SubscribeRequest{}))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Subscribed to notifications. Press Ctrl+C to exit.")

	// Handle shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nUnsubscribing...")
		os.Exit(0)
	}()

	// Receive notifications
	for stream.Receive() {
		printNotification(stream.Msg())
	}

	if err := stream.Err(); err != nil {
		fmt.Printf("Stream error: %v\n", err)
	}
}

func printNotification(n *remotev1.Notification) {
	// Print sequence number
	fmt.Printf("\n[Sequence: %d] ", n.SequenceNo)

	// Print event type header
	switch n.Type {
	case remotev1.NotificationTypeInitialState:
		fmt.Println("=== INITIAL STATE ===")
	case remotev1.NotificationTypeStateChanged:
		fmt.Printf("=== STATE CHANGED (%s) ===\n", n.Event)
	case remotev1.NotificationTypeAlbumOpened:
		fmt.Println("=== ALBUM OPENED ===")
	case remotev1.NotificationTypeAlbumClosed:
		fmt.Println("=== ALBUM CLOSED ===")
	default:
		fmt.Printf("=== UNKNOWN EVENT (%v) ===\n", n.Type)
	}

	s := n.State
	if s == nil {
		return
	}
	title := "-"
	if s.CurrentTrack != nil {
		title = s.CurrentTrack.Title
	}
	fmt.Printf("  %s  %s  %s / %s  vol %.0f%%  hover %d\n",
		s.State, title, s.CurrentTimeText, s.DurationText, s.CurrentVolume*100, s.HoveredIndex)
}
