package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/relay/gateway"
	"github.com/papercomputeco/relay/pkg/augment"
	"github.com/papercomputeco/relay/pkg/logger"
	"github.com/papercomputeco/relay/pkg/search"
	"github.com/papercomputeco/relay/pkg/upstream"
)

const relayLongDesc string = `Run the relay gateway.

The gateway sits between a frontend and an LLM backend: it authenticates
callers, optionally augments the last user message with academic search
context, forwards the chat request upstream, and relays the backend's
NDJSON stream back unchanged.

Configuration comes from a TOML file, RELAY_* environment variables, and
flags, in that order of precedence (later wins).

Examples:
  relay --config relay.toml
  relay --upstream http://localhost:9000 --listen :8000`

const relayShortDesc string = "LLM chat forwarding gateway"

type relayCommander struct {
	configPath  string
	listenAddr  string
	upstreamURL string
	debug       bool
}

func newRelayCmd() *cobra.Command {
	cmder := &relayCommander{}

	cmd := &cobra.Command{
		Use:   "relay",
		Short: relayShortDesc,
		Long:  relayLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to TOML config file")
	cmd.Flags().StringVar(&cmder.listenAddr, "listen", "", "Address to listen on (overrides config)")
	cmd.Flags().StringVar(&cmder.upstreamURL, "upstream", "", "LLM backend base URL (overrides config)")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *relayCommander) run(ctx context.Context) error {
	cfg, err := gateway.LoadConfig(c.configPath)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	if c.listenAddr != "" {
		cfg.Server.ListenAddr = c.listenAddr
	}
	if c.upstreamURL != "" {
		cfg.Upstream.BaseURL = c.upstreamURL
	}
	if c.debug {
		cfg.Logging.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log := logger.NewLoggerWithFile(cfg.Logging.Debug, logger.FileConfig{
		Path:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	defer log.Sync()

	log.Info("relay gateway starting",
		zap.String("listen", cfg.Server.ListenAddr),
		zap.String("upstream", cfg.Upstream.BaseURL),
		zap.Bool("augmentation", cfg.Augmentation.Enabled),
		zap.Bool("debug", cfg.Logging.Debug),
	)

	backend := upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.APIKey, log)
	searcher := search.NewArxivClient(cfg.Augmentation.SearchURL, log)
	pipeline := augment.New(cfg.Augmentation.Enabled, cfg.Augmentation.Trigger, searcher, log)

	g := gateway.New(*cfg, backend, pipeline, log)

	if err := g.Run(); err != nil {
		return fmt.Errorf("gateway server failed: %w", err)
	}
	return nil
}

func main() {
	if err := newRelayCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
