package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/webpulse/internal/config"
	"github.com/nao1215/webpulse/internal/database"
	"github.com/nao1215/webpulse/internal/fetcher"
	"github.com/nao1215/webpulse/internal/log"
	"github.com/nao1215/webpulse/internal/pipeline"
	"github.com/nao1215/webpulse/internal/proxy"
	"github.com/nao1215/webpulse/internal/suggest"
	"github.com/spf13/cobra"
)

// apiKeyEnv is the environment variable holding the Anthropic API key.
// It is the only place the key is read from.
const apiKeyEnv = "ANTHROPIC_API_KEY"

// errOnionNeedsProxy is returned when a .onion URL is scanned without a
// SOCKS5 route to the Tor network.
var errOnionNeedsProxy = errors.New("onion addresses can only be scanned through Tor: use --tor or --proxy")

// flagString returns the value of a flag, or "" when cmd has no such flag.
// Persistent flags of the root command are only visible when the command
// runs as part of the full tree.
func flagString(cmd *cobra.Command, name string) string {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f.Value.String()
	}
	return ""
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	return flagString(cmd, "verbose") == "true"
}

// loadConfig builds the configuration of a command run: defaults, then the
// configuration file, then the flags the user actually set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.ConfigFilePath = flagString(cmd, "config")

	// If the user explicitly named a config file, it must exist.
	// Otherwise a missing file just means built-in defaults.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies every changed flag into cfg. Flags a command does not
// define are never reported as changed, so one function serves them all.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	var err error

	if fs.Changed("timeout") {
		if cfg.Timeout, err = fs.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if fs.Changed("user-agent") {
		if cfg.UserAgent, err = fs.GetString("user-agent"); err != nil {
			return err
		}
	}
	if fs.Changed("batch") {
		if cfg.BatchSize, err = fs.GetInt("batch"); err != nil {
			return err
		}
	}
	if fs.Changed("proxy") {
		if cfg.ProxyAddress, err = fs.GetString("proxy"); err != nil {
			return err
		}
	}
	if fs.Changed("tor") {
		if cfg.UseTor, err = fs.GetBool("tor"); err != nil {
			return err
		}
	}
	if fs.Changed("tor-timeout") {
		if cfg.TorStartupTimeout, err = fs.GetDuration("tor-timeout"); err != nil {
			return err
		}
	}
	if fs.Changed("ai") {
		if cfg.AIEnabled, err = fs.GetBool("ai"); err != nil {
			return err
		}
	}
	if fs.Changed("ai-model") {
		if cfg.AIModel, err = fs.GetString("ai-model"); err != nil {
			return err
		}
	}
	if fs.Changed("no-save") {
		noSave, err := fs.GetBool("no-save")
		if err != nil {
			return err
		}
		cfg.SaveToDB = !noSave
	}
	if fs.Changed("data-dir") {
		if cfg.DBDir, err = fs.GetString("data-dir"); err != nil {
			return err
		}
	}
	if fs.Changed("listen") {
		if cfg.ListenAddr, err = fs.GetString("listen"); err != nil {
			return err
		}
	}
	if fs.Changed("limit") {
		if cfg.HistoryLimit, err = fs.GetInt("limit"); err != nil {
			return err
		}
	}
	if fs.Changed("json") {
		if cfg.JSONReport, err = fs.GetBool("json"); err != nil {
			return err
		}
	}
	if fs.Changed("markdown") {
		if cfg.MarkdownReport, err = fs.GetBool("markdown"); err != nil {
			return err
		}
	}
	if fs.Changed("output") {
		if cfg.ReportFile, err = fs.GetString("output"); err != nil {
			return err
		}
	}
	return nil
}

// setupLogger creates the CLI logger. Logs go to w, which is stderr in
// every command so reports on stdout stay clean.
func setupLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return log.NewSecureLogger(w, cfg.Verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// openStore opens the scan history, creating it if needed.
func openStore(cfg *config.Config) (*database.ScanDB, error) {
	db, err := database.Open(cfg.DBPath(), database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open scan history: %w", err)
	}
	return db, nil
}

// openExistingStore opens the scan history for reading. It fails when no
// scan has ever been saved instead of creating an empty database.
func openExistingStore(cfg *config.Config) (*database.ScanDB, error) {
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(cfg.DBPath(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open scan history: %w", err)
	}
	return db, nil
}

// newSuggester returns the Claude suggester when AI is enabled and a key is
// available. A nil result selects the static table.
func newSuggester(cfg *config.Config, logger *slog.Logger) suggest.Suggester {
	if !cfg.AIEnabled {
		return nil
	}
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		logger.Warn("AI suggestions enabled but no API key found, using static suggestions",
			"env", apiKeyEnv)
		return nil
	}
	return suggest.NewClaude(apiKey, cfg.AIModel, suggest.WithClaudeLogger(logger))
}

// scanRuntime holds what a scanning command needs and releases it on Close.
type scanRuntime struct {
	scanner *pipeline.Orchestrator
	tor     *proxy.EmbeddedTor
	logger  *slog.Logger
}

// Close stops the embedded Tor daemon, if one was started.
func (r *scanRuntime) Close() {
	if r.tor == nil {
		return
	}
	r.logger.Info("stopping embedded Tor daemon...")
	if err := r.tor.Stop(); err != nil {
		r.logger.Error("failed to stop embedded Tor", "error", err)
	}
}

// newScanRuntime wires the fetcher, the optional proxy and the suggester
// into an orchestrator. Progress messages about Tor go to status.
func newScanRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger, status io.Writer) (*scanRuntime, error) {
	rt := &scanRuntime{logger: logger}

	socks, err := rt.connectProxy(ctx, cfg, status)
	if err != nil {
		return nil, err
	}

	opts := []fetcher.Option{
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, fetcher.WithUserAgent(cfg.UserAgent))
	}
	if cfg.SiteConfigs != nil {
		opts = append(opts, fetcher.WithSites(cfg.SiteConfigs.SiteLookup()))
	}
	if socks != nil {
		opts = append(opts, fetcher.WithProxy(socks))
	}

	rt.scanner = pipeline.NewOrchestrator(pipeline.Config{
		Timeout:           cfg.Timeout,
		Fetcher:           fetcher.New(opts...),
		Suggester:         newSuggester(cfg, logger),
		EnrichConcurrency: cfg.EnrichConcurrency,
		Logger:            logger,
	})
	logger.Debug("scanner ready",
		"suggestions", rt.scanner.SuggestionMode(),
		"proxy", socks != nil,
	)
	return rt, nil
}

// connectProxy returns the SOCKS5 client fetches go through, or nil for
// direct connections. With UseTor it starts an embedded daemon.
func (r *scanRuntime) connectProxy(ctx context.Context, cfg *config.Config, status io.Writer) (*proxy.Client, error) {
	switch {
	case cfg.UseTor:
		return r.startEmbeddedTor(ctx, cfg, status)
	case cfg.ProxyAddress != "":
		client, err := proxy.NewClient(cfg.ProxyAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to create proxy client: %w", err)
		}
		if err := client.CheckConnection(ctx).Err(); err != nil {
			return nil, fmt.Errorf("proxy check failed: %w (make sure a SOCKS5 proxy is running at %s)",
				err, cfg.ProxyAddress)
		}
		r.logger.Info("proxy connection verified", "address", cfg.ProxyAddress)
		return client, nil
	default:
		return nil, nil
	}
}

// startEmbeddedTor starts an embedded Tor daemon using tornago and returns
// a client for its SOCKS proxy.
func (r *scanRuntime) startEmbeddedTor(ctx context.Context, cfg *config.Config, status io.Writer) (*proxy.Client, error) {
	fmt.Fprintln(status, "Starting embedded Tor daemon...")
	fmt.Fprintf(status, "This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

	embedded := proxy.NewEmbeddedTor(proxy.WithStartupTimeout(cfg.TorStartupTimeout))
	if err := embedded.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start embedded Tor: %w", err)
	}

	client, err := embedded.NewClient()
	if err != nil {
		_ = embedded.Stop() //nolint:errcheck // Best effort cleanup
		return nil, fmt.Errorf("failed to create Tor client: %w", err)
	}
	if err := client.CheckConnection(ctx).Err(); err != nil {
		_ = embedded.Stop() //nolint:errcheck // Best effort cleanup
		return nil, fmt.Errorf("embedded Tor proxy check failed: %w", err)
	}

	r.tor = embedded
	r.logger.Info("embedded Tor daemon started", "socksAddr", embedded.SocksAddr())
	fmt.Fprintf(status, "Embedded Tor daemon started. SOCKS proxy: %s\n\n", embedded.SocksAddr())
	return client, nil
}

// normalizeTargets normalizes every target URL in place. Onion targets are
// refused unless fetches go through a proxy.
func normalizeTargets(cfg *config.Config) error {
	for i, target := range cfg.Targets {
		normalized, err := fetcher.NormalizeURL(target)
		if err != nil {
			return fmt.Errorf("invalid URL %q: %w", target, err)
		}
		if fetcher.IsOnionURL(normalized) && !cfg.UseTor && cfg.ProxyAddress == "" {
			return fmt.Errorf("%w (%s)", errOnionNeedsProxy, normalized)
		}
		cfg.Targets[i] = normalized
	}
	return nil
}
