package main

import (
	"fmt"
	"log/slog"

	"github.com/nao1215/webpulse/internal/config"
	"github.com/nao1215/webpulse/internal/log"
	"github.com/nao1215/webpulse/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Serve exposes the scanner and the scan history as a JSON API:

  POST   /api/scan          scan a URL ({"url": "example.com"})
  GET    /api/scans         list recent scans
  GET    /api/scan/{id}     get a saved scan
  DELETE /api/scan/{id}     delete a saved scan
  GET    /api/report/{id}   download a report (?format=text|markdown|json)
  GET    /api/stats         history statistics
  GET    /api/health        liveness check
  GET    /api/ai-status     suggestion mode

The API has no authentication. It listens on loopback unless --listen
says otherwise. Request logs are written to stderr as JSON.

Examples:
  # Listen on the default address (127.0.0.1:8000)
  webpulse serve

  # Listen on all interfaces with Claude suggestions
  webpulse serve --listen :8000 --ai`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddr,
		"Address to listen on")
	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit,
		"Number of scans listed by GET /api/scans")
	cmd.Flags().Bool("no-save", false,
		"Run without a scan history (history routes answer 503)")
	addScannerFlags(cmd)

	return cmd
}

// addScannerFlags adds the fetch and suggestion flags shared by the
// long-running commands.
func addScannerFlags(cmd *cobra.Command) {
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for fetching each page")
	cmd.Flags().String("user-agent", "",
		"User-Agent header sent with each request (default: webpulse audit bot)")
	cmd.Flags().StringP("proxy", "p", "",
		"Fetch through a SOCKS5 proxy at this address (e.g., 127.0.0.1:9050)")
	cmd.Flags().Bool("tor", false,
		"Start an embedded Tor daemon and fetch through it")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")
	cmd.Flags().Bool("ai", false,
		"Generate suggestions with Claude (requires ANTHROPIC_API_KEY)")
	cmd.Flags().String("ai-model", config.DefaultAIModel,
		"Claude model used for suggestions")
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Request logs are the point of a server log, so Info is the floor.
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := log.New(cmd.ErrOrStderr(), log.Options{Level: level, JSON: true})

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	rt, err := newScanRuntime(ctx, cfg, logger, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	srvCfg := server.Config{
		ListenAddr:   cfg.ListenAddr,
		Scanner:      rt.scanner,
		HistoryLimit: cfg.HistoryLimit,
		AI:           server.NewAIStatus(rt.scanner.SuggestionMode(), cfg.AIModel),
		Version:      getVersion(),
		Logger:       logger,
	}
	if cfg.SaveToDB {
		db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		srvCfg.Store = db
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "webpulse API listening on http://%s\n", cfg.ListenAddr)
	return srv.Run(ctx)
}
