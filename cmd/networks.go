package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stslalabs/stswap/internal/ui"
)

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List supported networks and their contract addresses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := cfg.Registry()

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Display", Width: 16},
			{Title: "BUYsTSLA", Width: 44},
			{Title: "Default", Width: 8},
		})

		for _, n := range reg.All() {
			def := ""
			if n.Name == cfg.DefaultNetwork {
				def = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{
				ui.ChainName(n.Name),
				ui.Val(n.DisplayName),
				ui.Addr(n.Addresses.BuySTSLA.Hex()),
				def,
			})
		}
		fmt.Println(t.Render())

		for _, n := range reg.All() {
			fmt.Println(ui.KeyValueBlock(n.DisplayName, [][2]string{
				{"USDC", n.Addresses.USDC.Hex()},
				{"sTSLA", n.Addresses.STSLA.Hex()},
				{"BUYsTSLA", n.Addresses.BuySTSLA.Hex()},
				{"DelegateApprovals", n.Addresses.DelegateApprovals.Hex()},
				{"RPCs", strings.Join(cfg.RPCs(&n), ", ")},
			}))
		}
		return nil
	},
}
