// Command weave-bridge runs the transaction-admission and gossip-bridge
// daemon: it loads configuration, starts the firewall scanner, the libp2p
// gossip mesh, the Bridge actor, its peer maintainer, and the local HTTP
// interface. It does not open a wallet keystore.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/weavenet/bridge/core"
	"github.com/weavenet/bridge/pkg/config"
	"github.com/weavenet/bridge/pkg/utils"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "weave-bridge",
		Short: "Run the weave transaction admission and gossip-bridge daemon",
		RunE:  run,
	}
	defaultConfigPath := utils.EnvOrDefault("WEAVE_CONFIG_PATH", "weave-bridge.yaml")
	root.Flags().StringVar(&configPath, "config", defaultConfigPath, "path to the YAML configuration file")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	signatures, err := loadSignatures(cfg.FirewallSignaturesPath, logger)
	if err != nil {
		return err
	}
	firewall := core.NewFirewallScanner(ctx, signatures, logger)

	mesh, err := core.NewLibP2PMesh(ctx, cfg.GossipListenAddr, logger)
	if err != nil {
		return fmt.Errorf("weave-bridge: start gossip mesh: %w", err)
	}
	defer mesh.Close()

	wire := core.NewHTTPWireClient(logger)

	bridge, err := core.NewBridge(core.BridgeConfig{
		Mesh:         mesh,
		Wire:         wire,
		Firewall:     firewall,
		LocalPort:    cfg.LocalPort,
		ProcessedCap: cfg.ProcessedCap,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("weave-bridge: start bridge: %w", err)
	}
	go bridge.Run(ctx)
	go pumpInboundGossip(ctx, mesh, bridge)

	maintainer := core.NewPeerMaintainer(bridge, nil, logger)
	maintainer.Start(ctx)

	api := core.NewLocalAPI(bridge, firewall, logger)
	logger.WithField("addr", cfg.LocalHTTPAddr).Info("weave-bridge: local interface listening")
	return api.ListenAndServe(ctx, cfg.LocalHTTPAddr)
}

func pumpInboundGossip(ctx context.Context, mesh *core.LibP2PMesh, bridge *core.Bridge) {
	for raw := range mesh.Messages(ctx) {
		bridge.InboundGossip(raw)
	}
}

func loadSignatures(path string, logger interface{ Warnf(string, ...any) }) ([]core.FirewallSignature, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		logger.Warnf("weave-bridge: firewall signatures file %s not found, running with an empty rule set", path)
		return nil, nil
	}
	return core.LoadSignaturesYAML(path)
}
