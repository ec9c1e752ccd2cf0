package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stslalabs/stswap/internal/config"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/stslalabs/stswap/cmd.Version=1.2.3" .
var Version = "1.0.0"

var (
	cfgDir      string
	cfg         *config.Config
	verbose     bool
	networkFlag string
	walletFlag  string
	rpcFlag     string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "stswap",
	Short: "Buy synthetic Tesla with USDC from your terminal",
	Long: `stswap — terminal client for the BUYsTSLA contract.

  Connect a wallet, watch your USDC and sTSLA balances live, and swap
  USDC for synthetic Tesla in one command. Approvals, delegated-trading
  permission and confirmation waits are handled for you.

Global flags --network and --wallet override the configured defaults for
a single invocation. Persist them with: stswap config set-default-network /
stswap config set-default-wallet`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config (skip for commands that don't need it).
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if networkFlag != "" {
			cfg.DefaultNetwork = networkFlag
		}
		if walletFlag != "" {
			cfg.DefaultWallet = walletFlag
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// STSWAP_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv("STSWAP_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.stswap)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&networkFlag, "network", "", "network to use for this invocation")
	rootCmd.PersistentFlags().StringVar(&walletFlag, "wallet", "", "wallet to sign with for this invocation")
	rootCmd.PersistentFlags().StringVar(&rpcFlag, "rpc", "", "RPC endpoint override (skips endpoint selection)")

	// Register all sub-commands.
	rootCmd.AddCommand(
		connectCmd,
		balanceCmd,
		estimateCmd,
		buyCmd,
		watchCmd,
		networksCmd,
		walletCmd,
		syncCmd,
		configCmd,
	)
}
