package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stslalabs/stswap/internal/amount"
	"github.com/stslalabs/stswap/internal/tracker"
	"github.com/stslalabs/stswap/internal/ui"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show USDC and sTSLA balances",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		spin := ui.NewSpinner("Fetching balances...")
		spin.Start()
		mgr, sess, client, err := openSession(ctx)
		if err != nil {
			spin.Stop()
			return err
		}
		defer mgr.Close()

		block, _ := client.BlockNumber(ctx)
		trk := tracker.New(sess.Contracts.USDC, sess.Contracts.STSLA, sess.Contracts.Market, sess.Account)
		snap := trk.Refresh(ctx, block)
		spin.Stop()

		fmt.Printf("  %s  %s\n", ui.Meta("Account:"), ui.Addr(ui.TruncateAddr(sess.Account.Hex())))
		fmt.Printf("  %s  %s\n", ui.Meta("USDC:   "), ui.Val(amount.Format(snap.USDC, sess.Contracts.USDCDecimals, cfg.DisplayDecimals)))
		fmt.Printf("  %s  %s\n", ui.Meta("sTSLA:  "), ui.Val(amount.Format(snap.STSLA, sess.Contracts.STSLADecimals, cfg.DisplayDecimals)))
		if snap.MarketOpen {
			fmt.Printf("  %s  %s\n", ui.Meta("Market: "), ui.StyleSuccess.Render("OPEN"))
		} else {
			fmt.Printf("  %s  %s\n", ui.Meta("Market: "), ui.StyleWarning.Render("CLOSED"))
		}
		fmt.Println(ui.Meta(fmt.Sprintf("  as of block #%d", snap.Block)))
		return nil
	},
}
