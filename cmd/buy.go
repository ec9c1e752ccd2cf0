package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/stslalabs/stswap/internal/amount"
	"github.com/stslalabs/stswap/internal/config"
	"github.com/stslalabs/stswap/internal/contract"
	"github.com/stslalabs/stswap/internal/purchase"
	"github.com/stslalabs/stswap/internal/tracker"
	"github.com/stslalabs/stswap/internal/ui"
)

var buyYes bool

var buyCmd = &cobra.Command{
	Use:   "buy <usdc-amount>",
	Short: "Swap USDC for sTSLA",
	Long: `Run the full purchase sequence: balance check, USDC allowance
(one-time infinite approval), delegated-trading permission when the TSLA
market is open, then the swap itself, waiting for each transaction to be
mined before the next step.

  stswap buy 250        # spend 250 USDC
  stswap buy 0.5 --yes  # skip the confirmation prompt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if _, _, err := loadSigningWallet(); err != nil {
			return err
		}
		warnIfNoSession()

		mgr, sess, client, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer mgr.Close()

		spend, err := amount.ParseUnits(args[0], sess.Contracts.USDCDecimals)
		if err != nil {
			return fmt.Errorf("invalid USDC amount %q: %w", args[0], err)
		}

		// Display state for the pre-flight checks.
		block, _ := client.BlockNumber(ctx)
		trk := tracker.New(sess.Contracts.USDC, sess.Contracts.STSLA, sess.Contracts.Market, sess.Account)
		snap := trk.Refresh(ctx, block)

		fmt.Printf("  %s  %s USDC  %s  %s\n",
			ui.Meta("Spending"), ui.Val(args[0]), ui.Meta("as"), ui.Addr(ui.TruncateAddr(sess.Account.Hex())))
		if est := estimateQuiet(ctx, sess.Contracts.Market, spend, snap.MarketOpen, sess.Contracts.STSLADecimals); est != "" {
			fmt.Printf("  %s  %s sTSLA\n", ui.Meta("Expected"), ui.StyleSuccess.Render("≈ "+est))
		}
		if !snap.MarketOpen {
			fmt.Println(ui.Warn("  TSLA market is closed — settling without delegation."))
		}
		if !buyYes && !ui.Confirm("Proceed with the swap?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		orch := purchase.New(purchase.Config{
			Token:      sess.Contracts.USDC,
			Market:     sess.Contracts.Market,
			Delegates:  sess.Contracts.Delegates,
			Confirm:    contract.NewConfirmer(client, config.TxConfirmTimeout),
			Account:    sess.Account,
			Balance:    func() *big.Int { return trk.Snapshot().USDC },
			MarketOpen: func() bool { return trk.Snapshot().MarketOpen },
			Status: func(phase purchase.Phase, message string) {
				fmt.Println(ui.Info("  " + message))
			},
		})

		// Progress comes from the Status lines; a spinner would fight them
		// for the cursor.
		hash, err := orch.Buy(ctx, spend)
		if err != nil {
			if errors.Is(err, purchase.ErrInsufficientBalance) {
				return fmt.Errorf("%w: you hold %s USDC", err,
					amount.Format(snap.USDC, sess.Contracts.USDCDecimals, cfg.DisplayDecimals))
			}
			return err
		}

		fmt.Println(ui.Success("Swap confirmed: " + hash))
		if link := explorerTxURL(sess.Network.Explorer, hash); link != "" {
			fmt.Println(ui.Hint("View it: " + link))
		}

		final := trk.Refresh(ctx, block)
		fmt.Printf("  %s  %s\n", ui.Meta("sTSLA now:"),
			ui.Val(amount.Format(final.STSLA, sess.Contracts.STSLADecimals, cfg.DisplayDecimals)))
		return nil
	},
}

// estimateQuiet returns a formatted quote, or "" when the estimate fails.
// A missing quote never blocks the purchase.
func estimateQuiet(ctx context.Context, market *contract.BuySTSLA, spend *big.Int, marketOpen bool, stslaDecimals int) string {
	out, err := market.EstimateSwap(ctx, spend, marketOpen)
	if err != nil {
		return ""
	}
	return amount.Format(out, stslaDecimals, 4)
}

// explorerTxURL builds a block-explorer link, or "" when the network has no
// explorer (the local fork).
func explorerTxURL(explorer, hash string) string {
	if explorer == "" {
		return ""
	}
	return explorer + "/tx/" + hash
}

func init() {
	buyCmd.Flags().BoolVarP(&buyYes, "yes", "y", false, "skip the confirmation prompt")
}
