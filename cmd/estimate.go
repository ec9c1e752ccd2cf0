package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stslalabs/stswap/internal/amount"
	"github.com/stslalabs/stswap/internal/ui"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate <usdc-amount>",
	Short: "Estimate the sTSLA received for a USDC amount",
	Long: `Quote the swap without sending anything. The quote uses the same
settlement path a purchase would take right now: delegated exchange while
the TSLA market is open, direct settlement while it is closed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		mgr, sess, _, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer mgr.Close()

		spend, err := amount.ParseUnits(args[0], sess.Contracts.USDCDecimals)
		if err != nil {
			return fmt.Errorf("invalid USDC amount %q: %w", args[0], err)
		}

		suspended, err := sess.Contracts.Market.Suspended(ctx)
		if err != nil {
			return fmt.Errorf("reading market status: %w", err)
		}

		out, err := sess.Contracts.Market.EstimateSwap(ctx, spend, !suspended)
		if err != nil {
			return fmt.Errorf("estimating swap: %w", err)
		}

		fmt.Printf("  %s %s  %s  %s %s\n",
			ui.Val(args[0]), ui.Meta("USDC"),
			ui.Meta("→"),
			ui.StyleSuccess.Render("≈ "+amount.Format(out, sess.Contracts.STSLADecimals, 4)), ui.Meta("sTSLA"))
		if suspended {
			fmt.Println(ui.Warn("TSLA market is closed — the swap would settle without delegation."))
		}
		return nil
	},
}
