// Package config loads the Chain Watcher and Prover Service configurations
// from environment variables and an optional config file, using viper's
// SetConfigFile/AutomaticEnv/SetEnvKeyReplacer to let either source
// populate the same struct.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// WatcherConfig configures the Chain Watcher process. The env tags name
// the environment variables the deployment sets; mapstructure/yaml tags let
// the same struct be populated from a config file instead.
type WatcherConfig struct {
	L1RPC                string        `mapstructure:"l1_rpc" yaml:"l1_rpc" env:"L1_RPC"`
	L2RPC                string        `mapstructure:"l2_rpc" yaml:"l2_rpc" env:"L2_RPC"`
	RollupAddress        string        `mapstructure:"l1_rollup" yaml:"l1_rollup" env:"L1_ROLLUP"`
	PrivateKeyHex        string        `mapstructure:"l1_rollup_private_key" yaml:"l1_rollup_private_key" env:"L1_ROLLUP_PRIVATE_KEY"` //nolint:lll // ok
	ProverRPC            string        `mapstructure:"prover_rpc" yaml:"prover_rpc" env:"PROVER_RPC"`
	MetricsListenAddr    string        `mapstructure:"metrics_listen_addr" yaml:"metrics_listen_addr"`
	ChallengeWindowBlocks uint64       `mapstructure:"challenge_window_blocks" yaml:"challenge_window_blocks"`
	GasLimitBufferPct    uint64        `mapstructure:"gas_limit_buffer_pct" yaml:"gas_limit_buffer_pct"`
	IterationRetryDelay  time.Duration `mapstructure:"iteration_retry_delay" yaml:"iteration_retry_delay"`
	ProofPollInterval    time.Duration `mapstructure:"proof_poll_interval" yaml:"proof_poll_interval"`
	LogLevel             string        `mapstructure:"log_level" yaml:"log_level"`
	LogPretty            bool          `mapstructure:"log_pretty" yaml:"log_pretty"`
}

// DefaultWatcherConfig returns the watcher defaults. The challenge window
// is 21600 blocks, about three days at a 12 second block time.
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		MetricsListenAddr:     "0.0.0.0:6021",
		ChallengeWindowBlocks: 21600,
		GasLimitBufferPct:     15,
		IterationRetryDelay:   10 * time.Second,
		ProofPollInterval:     5 * time.Minute,
		LogLevel:              "info",
	}
}

// LoadWatcherConfig loads configuration from configPath (if non-empty) and
// the environment, validating required fields. Environment variables take
// precedence over the config file, per viper.AutomaticEnv's normal
// resolution order.
func LoadWatcherConfig(configPath string) (*WatcherConfig, error) {
	v := viper.New()
	setWatcherDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindWatcherEnv(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read watcher config file %q: %w", configPath, err)
		}
	}

	cfg := DefaultWatcherConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal watcher config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setWatcherDefaults(v *viper.Viper) {
	d := DefaultWatcherConfig()
	v.SetDefault("metrics_listen_addr", d.MetricsListenAddr)
	v.SetDefault("challenge_window_blocks", d.ChallengeWindowBlocks)
	v.SetDefault("gas_limit_buffer_pct", d.GasLimitBufferPct)
	v.SetDefault("iteration_retry_delay", d.IterationRetryDelay)
	v.SetDefault("proof_poll_interval", d.ProofPollInterval)
	v.SetDefault("log_level", d.LogLevel)
}

func bindWatcherEnv(v *viper.Viper) {
	_ = v.BindEnv("l1_rpc", "L1_RPC")
	_ = v.BindEnv("l2_rpc", "L2_RPC")
	_ = v.BindEnv("l1_rollup", "L1_ROLLUP")
	_ = v.BindEnv("l1_rollup_private_key", "L1_ROLLUP_PRIVATE_KEY")
	_ = v.BindEnv("prover_rpc", "PROVER_RPC")
}

// Validate reports every missing required setting at once so an operator
// fixes one startup failure, not five.
func (c *WatcherConfig) Validate() error {
	var missing []string
	if c.L1RPC == "" {
		missing = append(missing, "L1_RPC")
	}
	if c.L2RPC == "" {
		missing = append(missing, "L2_RPC")
	}
	if c.RollupAddress == "" {
		missing = append(missing, "L1_ROLLUP")
	}
	if c.PrivateKeyHex == "" {
		missing = append(missing, "L1_ROLLUP_PRIVATE_KEY")
	}
	if c.ProverRPC == "" {
		missing = append(missing, "PROVER_RPC")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required watcher settings: %s", strings.Join(missing, ", "))
	}
	return nil
}
