package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stslalabs/stswap/internal/ui"
	"github.com/stslalabs/stswap/internal/wallet"
)

var walletKeyFlag string

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a wallet",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()

		if walletKeyFlag != "" {
			// Signing wallet.
			if err := mgr.AddWithKey(name, walletKeyFlag); err != nil {
				return err
			}
			w, _ := mgr.Get(name)
			fmt.Println(ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
			fmt.Println(ui.Hint(fmt.Sprintf("Set as default with: stswap wallet use %s", name)))
		} else {
			if len(args) < 2 {
				return fmt.Errorf("address required for watch-only wallet\n  Usage: stswap wallet add <name> <address>\n  Or for signing: stswap wallet add <name> --key <private-key>")
			}
			address := args[1]
			if err := mgr.Add(name, &wallet.Wallet{
				Name:    name,
				Address: address,
				Type:    wallet.TypeWatchOnly,
			}); err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(address))))
			fmt.Println(ui.Hint(fmt.Sprintf("Set as default with: stswap wallet use %s", name)))
		}
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		wallets := mgr.List()

		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets configured yet."))
			fmt.Println(ui.Hint("Add one with: stswap wallet add myWallet 0xYourAddress"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Type", Width: 12},
			{Title: "Default", Width: 8},
		})

		for _, w := range wallets {
			def := ""
			if w.IsDefault {
				def = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{
				ui.Val(w.Name),
				ui.Addr(w.Address),
				ui.Meta(walletTypeLabel(w.Type)),
				def,
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !ui.ConfirmDanger(fmt.Sprintf("Remove wallet %q?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		mgr := newWalletManager()
		if err := mgr.Remove(name); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()
		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		cfg.DefaultWallet = name
		cfg.Save() //nolint:errcheck
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		fmt.Println(ui.Hint("This wallet signs swaps when --wallet is not specified."))
		return nil
	},
}

var walletUnlockAll bool

var walletUnlockCmd = &cobra.Command{
	Use:   "unlock [name]",
	Short: "Cache wallet key(s) for the session (skips future keychain prompts)",
	Long: `Retrieve private keys from the OS keychain once and cache them in a
restricted session file so all future commands run without any prompt.

  # Unlock a specific wallet by name
  stswap wallet unlock alice

  # Unlock every signing wallet at once
  stswap wallet unlock --all

Note: the OS may prompt once per wallet during unlock:
  macOS        — Keychain Access GUI dialog
  Ubuntu (GUI) — GNOME Keyring password popup
  Ubuntu (SSH) — terminal passphrase for the file backend
  Windows      — silent (Credential Manager handles it)

After unlock, every buy runs with zero prompts.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		ks := wallet.DefaultKeystore()

		var names []string
		switch {
		case walletUnlockAll:
			for _, w := range mgr.List() {
				if w.Type == wallet.TypeSigning {
					names = append(names, w.Name)
				}
			}
			if len(names) == 0 {
				fmt.Println(ui.Info("No signing wallets found."))
				fmt.Println(ui.Hint("Add one with: stswap wallet add <name> --key <private-key>"))
				return nil
			}

		case len(args) > 0:
			names = []string{args[0]}

		default:
			return fmt.Errorf("wallet name required (or use --all)")
		}

		// Inform user about the upcoming OS prompt (before it fires).
		fmt.Println(ui.Info("Your OS keychain may prompt once per wallet being unlocked."))
		fmt.Println()

		var unlocked, skipped int
		for _, name := range names {
			w, err := mgr.Get(name)
			if err != nil {
				fmt.Println(ui.Err(fmt.Sprintf("  %-20s %v", name, err)))
				continue
			}
			if _, ok := wallet.GetSessionKey(w.KeyRef); ok {
				fmt.Println(ui.Meta(fmt.Sprintf("  %-20s already cached", name)))
				skipped++
				continue
			}
			hexKey, err := ks.Retrieve(w.KeyRef) // OS prompt fires here if needed
			if err != nil {
				fmt.Println(ui.Err(fmt.Sprintf("  %-20s %v", name, err)))
				continue
			}
			wallet.PutSessionKey(w.KeyRef, hexKey)
			fmt.Println(ui.Success(fmt.Sprintf("  %-20s unlocked", name)))
			unlocked++
		}

		fmt.Println()
		if unlocked > 0 {
			fmt.Println(ui.Success(fmt.Sprintf(
				"%d wallet(s) cached. Zero prompts until 'stswap wallet lock'.", unlocked)))
		}
		if skipped > 0 {
			fmt.Println(ui.Meta(fmt.Sprintf("  %d already cached, skipped.", skipped)))
		}
		return nil
	},
}

var walletLockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Clear the session cache (re-enables keychain prompts)",
	Long:  `Delete the session file written by 'stswap wallet unlock'. The next transaction will prompt the OS keychain again.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !wallet.SessionActive() {
			fmt.Println(ui.Meta("No active session — nothing to clear."))
			return nil
		}
		if err := wallet.ClearSession(); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
		fmt.Println(ui.Success("Session cleared. Keychain will be used on next access."))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "private key for signing wallet (stored in OS keychain)")
	walletUnlockCmd.Flags().BoolVar(&walletUnlockAll, "all", false, "unlock all signing wallets")
	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletRemoveCmd, walletUseCmd,
		walletUnlockCmd, walletLockCmd)
}

// warnIfNoSession prints a one-line hint when no session file is active.
// Call this at the start of any command that will sign a transaction so the
// user understands why the OS keychain dialog is about to appear.
func warnIfNoSession() {
	if !wallet.SessionActive() {
		fmt.Println(ui.Info(
			"No session active — keychain may prompt for each tx.\n" +
				"  Run 'stswap wallet unlock --all' once to cache all keys and skip future prompts.",
		))
		fmt.Println()
	}
}

// walletTypeLabel converts an internal wallet type to a user-friendly label.
func walletTypeLabel(t string) string {
	switch t {
	case wallet.TypeSigning:
		return "read-write"
	default:
		return t // "watch-only" is already user-friendly
	}
}

// newWalletManager creates a Manager backed by the config-dir JSON store.
func newWalletManager() *wallet.Manager {
	store := wallet.NewJSONStore(cfg.WalletsPath())
	return wallet.NewManager(
		wallet.WithStore(store),
		wallet.WithKeystore(wallet.NewCachedKeystore(wallet.DefaultKeystore())),
	)
}

// loadSigningWallet resolves the selected wallet and verifies it can sign.
// Used by the buy command before it dials anything.
func loadSigningWallet() (*wallet.Wallet, *wallet.Manager, error) {
	mgr := newWalletManager()

	var w *wallet.Wallet
	if cfg.DefaultWallet != "" {
		var err error
		if w, err = mgr.Get(cfg.DefaultWallet); err != nil {
			return nil, nil, fmt.Errorf(
				"wallet %q not found — run `stswap wallet list` or set a default with `stswap wallet use <name>`",
				cfg.DefaultWallet,
			)
		}
	} else if w = mgr.Default(); w == nil {
		return nil, nil, fmt.Errorf(
			"no wallet configured\n  Add a signing wallet: stswap wallet add <name> --key <private-key>")
	}

	if w.Type != wallet.TypeSigning {
		return nil, nil, fmt.Errorf(
			"wallet %q is watch-only and cannot sign transactions\n  To add a signing wallet: stswap wallet add <name> --key <private-key>",
			w.Name,
		)
	}
	return w, mgr, nil
}
