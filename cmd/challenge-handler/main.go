package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/rollupwatch/prove-responder/config"
	rlog "github.com/rollupwatch/prove-responder/log"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "challenge-handler",
		Short: "Chain Watcher",
		Long:  banner + "\n\nDetects L1 fraud-proof challenges and drives the response pipeline.",
		RunE:  runApp,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run:   runVersion,
	}
)

const banner = `
 ██████╗██╗  ██╗ █████╗ ██╗     ██╗     ███████╗███╗   ██╗ ██████╗ ███████╗
██╔════╝██║  ██║██╔══██╗██║     ██║     ██╔════╝████╗  ██║██╔════╝ ██╔════╝
██║     ███████║███████║██║     ██║     █████╗  ██╔██╗ ██║██║  ███╗█████╗
██║     ██╔══██║██╔══██║██║     ██║     ██╔══╝  ██║╚██╗██║██║   ██║██╔══╝
╚██████╗██║  ██║██║  ██║███████╗███████╗███████╗██║ ╚████║╚██████╔╝███████╗
 ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚══════╝╚══════╝╚═╝  ╚═══╝ ╚═════╝ ╚══════╝`

func main() {
	if err := execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func execute() error {
	initCommands()
	return rootCmd.Execute()
}

func initCommands() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "enable pretty logging")
	rootCmd.PersistentFlags().String("l1-rpc", "", "L1 RPC URL")
	rootCmd.PersistentFlags().String("l2-rpc", "", "L2 RPC URL")
	rootCmd.PersistentFlags().String("l1-rollup", "", "rollup contract address")
	rootCmd.PersistentFlags().String("prover-rpc", "", "prover service base URL")
}

func runApp(cmd *cobra.Command, _ []string) error {
	fmt.Println(banner)
	fmt.Println()

	cfg, err := config.LoadWatcherConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, cfg)

	log := rlog.New(cfg.LogLevel, cfg.LogPretty)
	log.Info().Str("go_version", runtime.Version()).Msg("Build information")
	log.Info().
		Str("l1_rpc", cfg.L1RPC).
		Str("l2_rpc", cfg.L2RPC).
		Str("rollup", cfg.RollupAddress).
		Str("prover_rpc", cfg.ProverRPC).
		Msg("Configuration loaded")

	app, err := NewApp(cmd.Context(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return app.Run(cmd.Context())
}

func runVersion(*cobra.Command, []string) {
	fmt.Println(banner)
	fmt.Println()
	fmt.Printf("Chain Watcher\n")
	fmt.Printf("Go Version: %s\n", runtime.Version())
	fmt.Printf("OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

func applyFlags(cmd *cobra.Command, cfg *config.WatcherConfig) {
	if cmd.Flag("log-level").Changed {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flag("log-pretty").Changed {
		cfg.LogPretty, _ = cmd.Flags().GetBool("log-pretty")
	}
	if cmd.Flag("l1-rpc").Changed {
		cfg.L1RPC, _ = cmd.Flags().GetString("l1-rpc")
	}
	if cmd.Flag("l2-rpc").Changed {
		cfg.L2RPC, _ = cmd.Flags().GetString("l2-rpc")
	}
	if cmd.Flag("l1-rollup").Changed {
		cfg.RollupAddress, _ = cmd.Flags().GetString("l1-rollup")
	}
	if cmd.Flag("prover-rpc").Changed {
		cfg.ProverRPC, _ = cmd.Flags().GetString("prover-rpc")
	}
}
