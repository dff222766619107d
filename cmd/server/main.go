// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apiconnect "github.com/osa030/albumbox/internal/api/connect"
	"github.com/osa030/albumbox/internal/api/remotev1/remotev1connect"
	"github.com/osa030/albumbox/internal/app/catalog"
	"github.com/osa030/albumbox/internal/app/notification"
	"github.com/osa030/albumbox/internal/app/session"
	"github.com/osa030/albumbox/internal/infra/config"
	"github.com/osa030/albumbox/internal/infra/lastfm"
	"github.com/osa030/albumbox/internal/infra/logger"
	"github.com/osa030/albumbox/internal/infra/spotify"
)

var (
	app        = kingpin.New("albumbox-server", "albumbox headless player server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// list-albums command
	listAlbumsCmd = app.Command("list-albums", "List catalog albums and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	// Override with command-line flags if specified
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = "file"
		loggerConfig.File = *logfile
	}
	closeLog, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func() { _ = closeLog() }()

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if command == listAlbumsCmd.FullCommand() {
		if err := printAlbums(cfg); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Run server (defer ensures shutdown hook is called)
	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		_ = closeLog()
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx := context.Background()

	cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		return err
	}

	// Create audio output
	output, err := session.NewOutputFromConfig(ctx, cfg, cat.DurationOf)
	if err != nil {
		return errors.Wrap(err, "failed to create output")
	}
	defer func() {
		if err := output.Close(); err != nil {
			zlog.Warn().Msgf("Failed to close output: %v", err)
		}
	}()

	// Create session manager
	sessionMgr := session.NewManager(cat, output, notification.NewManager(), session.Config{
		InitialVolume: cfg.Player.Volume(),
		EventBuffer:   cfg.Player.EventBuffer,
	})
	defer sessionMgr.Close()

	if cfg.Player.DefaultAlbum != "" {
		if _, err := sessionMgr.Open(cfg.Player.DefaultAlbum); err != nil {
			return errors.Wrapf(err, "failed to open default album %s", cfg.Player.DefaultAlbum)
		}
	}

	// Create RPC service
	playerService := apiconnect.NewPlayerService(sessionMgr)

	// Create HTTP mux
	mux := http.NewServeMux()

	// Register service with the control token interceptor
	controlAuthInterceptor := apiconnect.NewControlAuthInterceptor(cfg.Server.ControlToken)
	playerPath, playerHandler := remotev1connect.NewPlayerServiceHandler(
		playerService,
		connect.WithInterceptors(controlAuthInterceptor),
	)
	mux.Handle(playerPath, playerHandler)

	if cfg.Server.ControlToken == "" {
		zlog.Warn().Msg("No control token configured, mutating procedures are open")
	}

	// Create server with h2c (HTTP/2 cleartext) support
	serverAddr := cfg.Server.Addr
	server := &http.Server{
		Addr:    serverAddr,
		Handler: h2c.NewHandler(mux, &http2.Server{}),
	}

	// Channel to capture server startup errors
	serverErrCh := make(chan error, 1)
	serverStartedCh := make(chan struct{})

	// Start server
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", serverAddr)
		// Signal that we're about to start listening
		close(serverStartedCh)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for server to start listening
	<-serverStartedCh
	// Give the server a moment to fully initialize
	time.Sleep(100 * time.Millisecond)

	// Execute startup hook if configured (after server is running)
	executeHooks(cfg.Server.Hooks.OnStarted, "on_started")

	// Wait for shutdown signal or server error. SIGHUP reloads the catalog.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

wait:
	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				if err := cat.Reload(ctx); err != nil {
					zlog.Error().Msgf("Failed to reload catalog: %v", err)
				} else {
					zlog.Info().Msgf("Catalog reloaded: albums=%d", cat.Len())
				}
				continue
			}
			zlog.Info().Msg("Received shutdown signal...")
			break wait
		case err := <-serverErrCh:
			return errors.Wrap(err, "server error")
		}
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close session manager first to terminate active streams
	sessionMgr.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")

	// Execute shutdown hook if configured
	executeHooks(cfg.Server.Hooks.OnStopped, "on_stopped")

	return nil
}

// loadCatalog builds the configured source chain and loads every album.
func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	var spotifyClient catalog.SpotifyClient
	if cfg.HasSpotifySource() {
		client, err := spotify.New(ctx, spotify.Config{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			Market:       cfg.Spotify.Market,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create Spotify client")
		}
		spotifyClient = client
	}

	chain, err := catalog.NewChainFromConfig(cfg, spotifyClient)
	if err != nil {
		return nil, errors.Wrap(err, "invalid catalog config")
	}

	// Album metadata lookup is optional
	if cfg.LastFM.APIKey != "" {
		lastfmClient, err := lastfm.New(lastfm.Config{APIKey: cfg.LastFM.APIKey})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create Last.fm client")
		}
		chain.SetEnricher(lastfmClient)
	}

	cat, err := catalog.Load(ctx, chain)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load catalog")
	}
	zlog.Info().Msgf("Catalog loaded: albums=%d sources=%d", cat.Len(), chain.Len())
	return cat, nil
}

// printAlbums prints the catalog albums.
func printAlbums(cfg *config.Config) error {
	cat, err := loadCatalog(context.Background(), cfg)
	if err != nil {
		return err
	}

	fmt.Println("Available Albums:")
	for _, a := range cat.Albums() {
		fmt.Printf("  %-24s - %s / %s (%d tracks, %s)\n",
			a.Slug, a.Title, a.Artist, len(a.Tracks), formatTotal(a.TotalDuration()))
	}
	return nil
}

func formatTotal(seconds float64) string {
	d := time.Duration(seconds) * time.Second
	return d.String()
}

// executeHooks runs a list of shell commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		// Use sh -c to allow shell features like redirection or pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
