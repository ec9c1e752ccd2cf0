package cmd

import (
	"context"
	"fmt"
	"math/big"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/stslalabs/stswap/internal/amount"
	"github.com/stslalabs/stswap/internal/purchase"
	"github.com/stslalabs/stswap/internal/session"
	"github.com/stslalabs/stswap/internal/tracker"
	"github.com/stslalabs/stswap/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live balance and swap-estimate dashboard",
	Long: `Full-screen dashboard that follows the chain block by block: USDC and
sTSLA balances, the TSLA market flag, and a live sTSLA estimate for
whatever USDC amount you type. Press q to quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		poll := time.Duration(cfg.WatchInterval) * time.Second
		mgr, sess, client, err := openSession(ctx, session.WithPollInterval(poll))
		if err != nil {
			return err
		}
		defer mgr.Close()

		trk := tracker.New(sess.Contracts.USDC, sess.Contracts.STSLA, sess.Contracts.Market, sess.Account)
		usdcDec := sess.Contracts.USDCDecimals
		stslaDec := sess.Contracts.STSLADecimals

		// The orchestrator only quotes here; its display-state hooks read
		// the tracker like the buy command's do.
		orch := purchase.New(purchase.Config{
			Token:      sess.Contracts.USDC,
			Market:     sess.Contracts.Market,
			Delegates:  sess.Contracts.Delegates,
			Account:    sess.Account,
			Balance:    func() *big.Int { return trk.Snapshot().USDC },
			MarketOpen: func() bool { return trk.Snapshot().MarketOpen },
		})

		var p *tea.Program

		snapshotMsg := func(snap tracker.Snapshot) ui.SnapshotMsg {
			return ui.SnapshotMsg{
				USDC:       amount.Format(snap.USDC, usdcDec, cfg.DisplayDecimals),
				STSLA:      amount.Format(snap.STSLA, stslaDec, cfg.DisplayDecimals),
				MarketOpen: snap.MarketOpen,
				Block:      snap.Block,
			}
		}

		model := ui.DashboardModel{
			Account: sess.Account.Hex(),
			Network: sess.Network.DisplayName,
			OnSpendChange: func(spend string) {
				go func() {
					raw, err := amount.ParseUnits(spend, usdcDec)
					if err != nil || raw.Sign() <= 0 {
						p.Send(ui.EstimateMsg{Spend: spend})
						return
					}
					out := orch.EstimateReturn(ctx, raw)
					ret := ""
					if out.Sign() > 0 {
						ret = amount.Format(out, stslaDec, 4)
					}
					p.Send(ui.EstimateMsg{Spend: spend, Return: ret})
				}()
			},
		}
		p = tea.NewProgram(model, tea.WithAltScreen())

		mgr.OnBlock = func(_ session.Session, block uint64) {
			p.Send(snapshotMsg(trk.Refresh(ctx, block)))
		}
		mgr.OnAccount = func(s session.Session) {
			trk.SetAccount(s.Account)
			p.Send(ui.SessionMsg{Account: s.Account.Hex(), Network: s.Network.DisplayName})
		}
		mgr.OnDisconnect = func(reason error) {
			p.Send(ui.DashboardErrMsg{Err: reason.Error()})
		}

		go mgr.Run(ctx) //nolint:errcheck

		// First paint without waiting for the poll tick.
		go func() {
			block, _ := client.BlockNumber(ctx)
			p.Send(snapshotMsg(trk.Refresh(ctx, block)))
		}()

		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running dashboard: %w", err)
		}
		return nil
	},
}
