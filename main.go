// Command navalbattle starts the two-player naval battle server.
//
// It supports three commands:
//  1. "serve" (default) runs the TCP game listener and, optionally, the HTTP
//     operations API with the WebSocket player endpoint and an /mcp endpoint
//  2. "mcp" runs an MCP stdio server against a running operations API
//  3. "validate" checks message catalogs
//
// Every flag can also be set through a NAVAL_* environment variable; a .env
// file in the working directory is loaded first. An ngrok TCP tunnel can
// expose the game listener publicly during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/navalbattle/api"
	"github.com/wricardo/mcp-training/navalbattle/game/config"
	"github.com/wricardo/mcp-training/navalbattle/game/results"
	"github.com/wricardo/mcp-training/navalbattle/game/service"
	"github.com/wricardo/mcp-training/navalbattle/game/session"
	"github.com/wricardo/mcp-training/navalbattle/transport/mcp"
	"github.com/wricardo/mcp-training/navalbattle/transport/tcp"
	"github.com/wricardo/mcp-training/navalbattle/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Naval Battle Server"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	defaults := config.DefaultSettings()

	return &cli.Command{
		Name:    "navalbattle",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "trace, debug, info, warn or error",
				Sources: cli.EnvVars("NAVAL_LOG_LEVEL", "LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "pretty",
				Usage:   "human-friendly console logs",
				Sources: cli.EnvVars("NAVAL_LOG_PRETTY"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(defaults),
			mcpCommand(),
			validateCommand(defaults),
		},
		DefaultCommand: "serve",
	}
}

func serveCommand(defaults config.Settings) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "host matches on the TCP game listener",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "listen",
				Value:   defaults.ListenAddr,
				Usage:   "TCP address for player connections",
				Sources: cli.EnvVars("NAVAL_LISTEN"),
			},
			&cli.StringFlag{
				Name:    "http",
				Usage:   "address for the operations API, WebSocket players and /mcp (disabled when empty)",
				Sources: cli.EnvVars("NAVAL_HTTP"),
			},
			&cli.IntFlag{
				Name:    "max-matches",
				Value:   defaults.MaxMatches,
				Usage:   "matches hosted at the same time",
				Sources: cli.EnvVars("NAVAL_MAX_MATCHES"),
			},
			&cli.IntFlag{
				Name:    "write-queue",
				Value:   defaults.WriteQueue,
				Usage:   "outbound lines queued per connection before it is dropped",
				Sources: cli.EnvVars("NAVAL_WRITE_QUEUE"),
			},
			&cli.IntFlag{
				Name:    "max-line-bytes",
				Value:   defaults.MaxLineBytes,
				Usage:   "longest accepted command line",
				Sources: cli.EnvVars("NAVAL_MAX_LINE_BYTES"),
			},
			&cli.StringFlag{
				Name:    "catalog",
				Value:   defaults.Catalog,
				Usage:   "message catalog used for player messages",
				Sources: cli.EnvVars("NAVAL_CATALOG"),
			},
			&cli.StringFlag{
				Name:    "catalog-dir",
				Value:   defaults.CatalogDir,
				Usage:   "directory with extra message catalogs",
				Sources: cli.EnvVars("NAVAL_CATALOG_DIR", "CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "results-db",
				Usage:   "SQLite file for the results ledger (in memory when empty)",
				Sources: cli.EnvVars("NAVAL_RESULTS_DB"),
			},
			&cli.DurationFlag{
				Name:    "cleanup-interval",
				Value:   defaults.CleanupInterval,
				Usage:   "how often finished matches are pruned",
				Sources: cli.EnvVars("NAVAL_CLEANUP_INTERVAL"),
			},
			&cli.DurationFlag{
				Name:    "retain-finished",
				Value:   defaults.RetainFinished,
				Usage:   "how long finished matches stay listed",
				Sources: cli.EnvVars("NAVAL_RETAIN_FINISHED"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "expose the game listener through an ngrok TCP tunnel",
				Sources: cli.EnvVars("NAVAL_NGROK", "NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-authtoken",
				Usage:   "ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-remote-addr",
				Usage:   "reserved ngrok TCP address (optional)",
				Sources: cli.EnvVars("NGROK_REMOTE_ADDR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settings := settingsFromCommand(cmd)
			if err := settings.Validate(); err != nil {
				return err
			}
			return runServer(ctx, settings, newLogger(cmd))
		},
	}
}

// settingsFromCommand reads the serve flags
func settingsFromCommand(cmd *cli.Command) config.Settings {
	return config.Settings{
		ListenAddr:      cmd.String("listen"),
		HTTPAddr:        cmd.String("http"),
		MaxMatches:      cmd.Int("max-matches"),
		WriteQueue:      cmd.Int("write-queue"),
		MaxLineBytes:    cmd.Int("max-line-bytes"),
		Catalog:         cmd.String("catalog"),
		CatalogDir:      cmd.String("catalog-dir"),
		ResultsDB:       cmd.String("results-db"),
		CleanupInterval: cmd.Duration("cleanup-interval"),
		RetainFinished:  cmd.Duration("retain-finished"),
		Ngrok: config.NgrokSettings{
			Enabled:    cmd.Bool("ngrok"),
			AuthToken:  cmd.String("ngrok-authtoken"),
			RemoteAddr: cmd.String("ngrok-remote-addr"),
		},
	}
}

// newLogger configures zerolog from the root flags
func newLogger(cmd *cli.Command) zerolog.Logger {
	level, err := zerolog.ParseLevel(cmd.String("log-level"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if cmd.Bool("pretty") {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// services is everything a running server is made of
type services struct {
	catalogs *config.Manager
	sessions *session.Manager
	game     service.GameService
	store    results.Store
}

// initializeServices wires the catalog, results and session managers
func initializeServices(settings config.Settings, log zerolog.Logger) (*services, error) {
	catalogDir := settings.CatalogDir
	if catalogDir == config.DefaultSettings().CatalogDir {
		// the default directory is optional, the built-in catalogs always load
		if _, err := os.Stat(catalogDir); os.IsNotExist(err) {
			log.Info().Str("dir", catalogDir).Msg("catalog directory not found, using built-in catalogs")
			catalogDir = ""
		}
	}
	catalogs, err := config.NewManager(catalogDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog manager: %w", err)
	}
	if err := catalogs.SetDefault(settings.Catalog); err != nil {
		return nil, fmt.Errorf("failed to select catalog %s: %w", settings.Catalog, err)
	}

	store := results.NewMemoryStore()
	if settings.ResultsDB != "" {
		if store, err = results.OpenSQLite(settings.ResultsDB); err != nil {
			return nil, fmt.Errorf("failed to open results db: %w", err)
		}
	}

	sessions := session.NewManager(catalogs.Default(),
		session.WithMaxMatches(settings.MaxMatches),
		session.WithResults(store),
		session.WithLogger(log.With().Str("component", "session").Logger()),
	)

	return &services{
		catalogs: catalogs,
		sessions: sessions,
		game:     service.NewGameService(sessions, catalogs),
		store:    store,
	}, nil
}

// runServer hosts matches until ctx is done, then shuts everything down
func runServer(ctx context.Context, settings config.Settings, log zerolog.Logger) error {
	svc, err := initializeServices(settings, log)
	if err != nil {
		return err
	}
	defer svc.store.Close()

	ln, err := gameListener(ctx, settings, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errc := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		svc.sessions.Run(ctx, settings.CleanupInterval, settings.RetainFinished)
	}()

	gameServer := tcp.NewServer(svc.sessions,
		tcp.WithMaxLineBytes(settings.MaxLineBytes),
		tcp.WithWriteQueue(settings.WriteQueue),
		tcp.WithLogger(log.With().Str("component", "tcp").Logger()),
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := gameServer.Serve(ctx, ln); err != nil {
			errc <- fmt.Errorf("game listener: %w", err)
		}
	}()

	var httpServer *http.Server
	if settings.HTTPAddr != "" {
		hub := websocket.NewHub(svc.sessions, log.With().Str("component", "websocket").Logger())
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Run(ctx)
		}()

		httpServer = &http.Server{
			Addr:        settings.HTTPAddr,
			Handler:     newHTTPHandler(svc.game, hub, settings.HTTPAddr, log),
			ReadTimeout: 15 * time.Second,
			IdleTimeout: 60 * time.Second,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info().Str("addr", settings.HTTPAddr).Msg("operations API listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- fmt.Errorf("http server: %w", err)
			}
		}()
	}

	log.Info().Str("version", Version).Int("max_matches", settings.MaxMatches).Msg("server started")

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err = <-errc:
		log.Error().Err(err).Msg("server failed, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := svc.sessions.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("matches did not close in time")
	}
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("http server shutdown error")
		}
	}
	cancel()
	wg.Wait()

	log.Info().Msg("server stopped")
	return err
}

// gameListener opens the player listener, either locally or as an ngrok
// TCP tunnel
func gameListener(ctx context.Context, settings config.Settings, log zerolog.Logger) (net.Listener, error) {
	if !settings.Ngrok.Enabled {
		ln, err := net.Listen("tcp", settings.ListenAddr)
		if err != nil {
			return nil, fmt.Errorf("listen on %s: %w", settings.ListenAddr, err)
		}
		return ln, nil
	}

	var opts []ngrokConfig.TCPEndpointOption
	if settings.Ngrok.RemoteAddr != "" {
		opts = append(opts, ngrokConfig.WithRemoteAddr(settings.Ngrok.RemoteAddr))
	}
	tun, err := ngrok.Listen(ctx,
		ngrokConfig.TCPEndpoint(opts...),
		ngrok.WithAuthtoken(settings.Ngrok.AuthToken),
	)
	if err != nil {
		return nil, fmt.Errorf("start ngrok tunnel: %w", err)
	}
	log.Info().Str("url", tun.URL()).Msg("ngrok tunnel established")
	return tun, nil
}

// newHTTPHandler combines the operations API with an /mcp endpoint that
// proxies back to the API itself
func newHTTPHandler(game service.GameService, hub *websocket.Hub, addr string, log zerolog.Logger) http.Handler {
	apiServer := api.NewServer(game, hub, log.With().Str("component", "api").Logger())
	mcpClient := mcp.NewClient("http://" + addr)

	mux := http.NewServeMux()
	mux.Handle("/", apiServer)
	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Warn().Err(err).Msg("failed to write mcp response")
		}
	})
	return mux
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "serve MCP tools over stdio against a running operations API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api",
				Value:   "http://127.0.0.1:8081",
				Usage:   "base URL of the operations API",
				Sources: cli.EnvVars("NAVAL_API_URL"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client := mcp.NewClient(cmd.String("api"))
			return mcpserver.ServeStdio(client.GetMCPServer())
		},
	}
}

func validateCommand(defaults config.Settings) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check every catalog in the catalog directory",
		ArgsUsage: "[catalog-dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := defaults.CatalogDir
			if cmd.Args().Present() {
				dir = cmd.Args().First()
			}
			return validateCatalogs(cmd.Root().Writer, dir)
		},
	}
}

// validateCatalogs parses every .json catalog in dir and reports each one.
// It fails if any catalog is invalid.
func validateCatalogs(w io.Writer, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read catalog directory: %w", err)
	}

	checked, failed := 0, 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		checked++

		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err == nil {
			var catalog *config.Catalog
			if catalog, err = config.Parse(data); err == nil {
				fmt.Fprintf(w, "✓ %s (%s)\n", e.Name(), catalog.Name)
				continue
			}
		}
		fmt.Fprintf(w, "✗ %s: %v\n", e.Name(), err)
		failed++
	}

	if checked == 0 {
		return fmt.Errorf("no catalogs found in %s", dir)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d catalogs invalid", failed, checked)
	}
	return nil
}
