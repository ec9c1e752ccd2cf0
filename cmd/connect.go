package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stslalabs/stswap/internal/amount"
	"github.com/stslalabs/stswap/internal/tracker"
	"github.com/stslalabs/stswap/internal/ui"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to the node and show the session",
	Long: `Run the connect sequence once: list the node's accounts, check the
chain, bind the contract set and print the resulting session with the
initial balances. A failure at any step leaves nothing half-connected.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		spin := ui.NewSpinner("Connecting...")
		spin.Start()
		mgr, sess, client, err := openSession(ctx)
		spin.Stop()
		if err != nil {
			return err
		}
		defer mgr.Close()

		block, _ := client.BlockNumber(ctx)
		trk := tracker.New(sess.Contracts.USDC, sess.Contracts.STSLA, sess.Contracts.Market, sess.Account)
		snap := trk.Refresh(ctx, block)

		market := "CLOSED"
		if snap.MarketOpen {
			market = "OPEN"
		}

		fmt.Println(ui.KeyValueBlock("Session", [][2]string{
			{"Account", sess.Account.Hex()},
			{"Network", sess.Network.DisplayName},
			{"Chain ID", fmt.Sprintf("%d", sess.ChainID)},
			{"RPC", client.URL()},
			{"Block", fmt.Sprintf("#%d", block)},
			{"USDC", amount.Format(snap.USDC, sess.Contracts.USDCDecimals, cfg.DisplayDecimals)},
			{"sTSLA", amount.Format(snap.STSLA, sess.Contracts.STSLADecimals, cfg.DisplayDecimals)},
			{"TSLA market", market},
		}))
		fmt.Println(ui.Hint("Run `stswap watch` for a live dashboard."))
		return nil
	},
}
