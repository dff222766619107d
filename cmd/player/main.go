// Package main provides the terminal player entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/albumbox/internal/app/catalog"
	"github.com/osa030/albumbox/internal/app/playback"
	"github.com/osa030/albumbox/internal/app/session"
	"github.com/osa030/albumbox/internal/infra/config"
	"github.com/osa030/albumbox/internal/infra/lastfm"
	"github.com/osa030/albumbox/internal/infra/logger"
	"github.com/osa030/albumbox/internal/infra/spotify"
	"github.com/osa030/albumbox/internal/ui"
)

var (
	app        = kingpin.New("albumbox-player", "albumbox terminal player")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file").Default("albumbox.log").String()
	slug       = app.Arg("album", "Album slug (default: player.default_album or the first album)").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	// Log to a file so the terminal stays clean
	loggerConfig := logger.Config{
		Output: "file",
		Level:  "info",
		File:   *logfile,
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	closeLog, err := logger.Init(loggerConfig)
	if err != nil {
		fmt.Printf("Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(); err != nil {
		zlog.Error().Msgf("Player error: %v", err)
		_ = closeLog()
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	_ = closeLog()
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	var spotifyClient catalog.SpotifyClient
	if cfg.HasSpotifySource() {
		client, err := spotify.New(ctx, spotify.Config{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			Market:       cfg.Spotify.Market,
		})
		if err != nil {
			return errors.Wrap(err, "failed to create Spotify client")
		}
		spotifyClient = client
	}

	chain, err := catalog.NewChainFromConfig(cfg, spotifyClient)
	if err != nil {
		return errors.Wrap(err, "invalid catalog config")
	}

	// Album metadata lookup is optional
	if cfg.LastFM.APIKey != "" {
		lastfmClient, err := lastfm.New(lastfm.Config{APIKey: cfg.LastFM.APIKey})
		if err != nil {
			return errors.Wrap(err, "failed to create Last.fm client")
		}
		chain.SetEnricher(lastfmClient)
	}
	cat, err := catalog.Load(ctx, chain)
	if err != nil {
		return errors.Wrap(err, "failed to load catalog")
	}

	target := *slug
	if target == "" {
		target = cfg.Player.DefaultAlbum
	}
	if target == "" {
		target = cat.Slugs()[0]
	}
	a, err := cat.Find(target)
	if err != nil {
		return err
	}

	output, err := session.NewOutputFromConfig(ctx, cfg, cat.DurationOf)
	if err != nil {
		return errors.Wrap(err, "failed to create output")
	}
	defer func() {
		if err := output.Close(); err != nil {
			zlog.Warn().Msgf("Failed to close output: %v", err)
		}
	}()

	controller, err := playback.NewController(a, output, playback.Config{
		InitialVolume: cfg.Player.Volume(),
		EventBuffer:   cfg.Player.EventBuffer,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create controller")
	}
	defer func() { _ = controller.Close() }()

	zlog.Info().Msgf("Player started: album=%s session_id=%s", a.Slug, controller.SessionID())

	p := tea.NewProgram(ui.New(controller), tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		return errors.Wrap(err, "terminal UI failed")
	}

	zlog.Info().Msg("Player stopped")
	return nil
}
