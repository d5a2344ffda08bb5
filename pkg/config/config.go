// Package config loads weave-bridge's runtime configuration from a YAML
// file, environment variables, and built-in defaults, via viper, the way
// the teacher's own services centralize configuration loading.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/weavenet/bridge/pkg/utils"
)

// Config holds every tunable named in SPEC_FULL §6 (constants and I/O
// parameters) plus the local-interface and keystore additions.
type Config struct {
	// Pricing (spec §4.2/§6).
	Difficulty uint64 `mapstructure:"difficulty"`

	// Networking (spec §6).
	GossipListenAddr string `mapstructure:"gossip_listen_addr"`
	LocalHTTPAddr    string `mapstructure:"local_http_addr"`
	LocalPort        uint16 `mapstructure:"local_port"`
	NetTimeout       time.Duration `mapstructure:"net_timeout"`

	// Bridge timers (spec §6).
	IgnorePeersTime  time.Duration `mapstructure:"ignore_peers_time"`
	GetMorePeersTime time.Duration `mapstructure:"get_more_peers_time"`
	ProcessedCap     int           `mapstructure:"processed_capacity"`

	// Verifier behavior (DESIGN.md open-question decisions).
	AllowUnsignedTx bool `mapstructure:"allow_unsigned_tx"`
	GenesisBootstrap bool `mapstructure:"genesis_bootstrap"`

	// Firewall (spec §4.5).
	FirewallSignaturesPath string `mapstructure:"firewall_signatures_path"`

	// Wallet keystore (SPEC_FULL §4.3.1).
	KeystorePath string `mapstructure:"keystore_path"`

	// Logging.
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

// Defaults mirror the constants named in spec §6.
func defaults(v *viper.Viper) {
	v.SetDefault("difficulty", 25)
	v.SetDefault("gossip_listen_addr", "/ip4/0.0.0.0/tcp/1985")
	v.SetDefault("local_http_addr", ":1984")
	v.SetDefault("local_port", 1984)
	v.SetDefault("net_timeout", 10*time.Second)
	v.SetDefault("ignore_peers_time", 5*time.Minute)
	v.SetDefault("get_more_peers_time", 2*time.Minute)
	v.SetDefault("processed_capacity", 1_000_000)
	v.SetDefault("allow_unsigned_tx", false)
	v.SetDefault("genesis_bootstrap", true)
	v.SetDefault("firewall_signatures_path", "firewall_signatures.yaml")
	v.SetDefault("keystore_path", "wallet.keystore.json")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
}

// Load reads configuration from configPath (if non-empty and present), then
// from WEAVE_-prefixed environment variables, layered over defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix("weave")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, os.ErrNotExist) {
				return nil, utils.Wrap(err, fmt.Sprintf("config: read %s", configPath))
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, utils.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}
