package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ProverConfig configures the prover service process. The env tags name the
// environment variables bound to the tagged fields; listen_addr and log_level
// are also read from LISTEN_ADDR and LOG_LEVEL, while log_pretty is read only
// from the config file.
type ProverConfig struct {
	ListenAddr        string `mapstructure:"listen_addr" yaml:"listen_addr"`
	ProofDir          string `mapstructure:"prover_proof_dir" yaml:"prover_proof_dir" env:"PROVER_PROOF_DIR"`
	ParamsDir         string `mapstructure:"prover_params_dir" yaml:"prover_params_dir" env:"PROVER_PARAMS_DIR"`
	AssetsDir         string `mapstructure:"scroll_prover_assets_dir" yaml:"scroll_prover_assets_dir" env:"SCROLL_PROVER_ASSETS_DIR"` //nolint:lll
	GenerateEVMVerifier bool `mapstructure:"generate_evm_verifier" yaml:"generate_evm_verifier" env:"GENERATE_EVM_VERIFIER"`
	LogLevel          string `mapstructure:"log_level" yaml:"log_level"`
	LogPretty         bool   `mapstructure:"log_pretty" yaml:"log_pretty"`
}

// DefaultProverConfig returns the prover service defaults.
func DefaultProverConfig() ProverConfig {
	return ProverConfig{
		ListenAddr: "0.0.0.0:3030",
		ProofDir:   "./proof",
		LogLevel:   "info",
	}
}

// LoadProverConfig loads configuration from configPath (if non-empty) and
// the environment.
func LoadProverConfig(configPath string) (*ProverConfig, error) {
	v := viper.New()
	d := DefaultProverConfig()
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("prover_proof_dir", d.ProofDir)
	v.SetDefault("log_level", d.LogLevel)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = v.BindEnv("prover_proof_dir", "PROVER_PROOF_DIR")
	_ = v.BindEnv("prover_params_dir", "PROVER_PARAMS_DIR")
	_ = v.BindEnv("scroll_prover_assets_dir", "SCROLL_PROVER_ASSETS_DIR")
	_ = v.BindEnv("generate_evm_verifier", "GENERATE_EVM_VERIFIER")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read prover config file %q: %w", configPath, err)
		}
	}

	cfg := d
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal prover config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces that a proof output directory is always set; every
// other field has a usable zero value (verifier generation stays off,
// params/assets dirs are resolved by the circuit library itself).
func (c *ProverConfig) Validate() error {
	if c.ProofDir == "" {
		return fmt.Errorf("config: PROVER_PROOF_DIR must not be empty")
	}
	return nil
}
