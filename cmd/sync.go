package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	csync "github.com/stslalabs/stswap/internal/sync"
	"github.com/stslalabs/stswap/internal/ui"
)

var syncWatch bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync contract addresses from a deployments manifest",
	Long: `The BUYsTSLA contracts move on every fork redeploy. Point sync at the
deployments manifest and the address overrides follow automatically:

  stswap sync set-source https://example.com/deployments.json
  stswap sync run`,
}

var syncSetSourceCmd = &cobra.Command{
	Use:   "set-source <url>",
	Short: "Set the remote deployments manifest URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := args[0]
		syncer := csync.New(cfg)
		if err := syncer.SetSource(url); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Sync source set to: %s", url)))
		return nil
	},
}

var syncRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch the latest contract addresses from the manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		syncer := csync.New(cfg)

		if syncWatch {
			fmt.Println(ui.Meta("Watching for changes every 30s. Press Ctrl+C to stop."))
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			return syncer.Watch(ctx, 30*time.Second)
		}

		spin := ui.NewSpinner("Syncing contract addresses...")
		spin.Start()
		err := syncer.Run(context.Background())
		spin.Stop()
		if err != nil {
			return err
		}
		fmt.Println(ui.Success("Contract addresses synced."))
		return nil
	},
}

func init() {
	syncRunCmd.Flags().BoolVar(&syncWatch, "watch", false, "poll every 30s for changes")
	syncCmd.AddCommand(syncSetSourceCmd, syncRunCmd)
}
