package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/stslalabs/stswap/internal/chain"
	"github.com/stslalabs/stswap/internal/config"
	"github.com/stslalabs/stswap/internal/netconf"
	"github.com/stslalabs/stswap/internal/rpc"
	"github.com/stslalabs/stswap/internal/session"
	"github.com/stslalabs/stswap/internal/wallet"
)

// resolveNetwork returns the network entry commands should dial. The flag
// or configured default names the entry; the chain ID check happens later,
// during Connect.
func resolveNetwork() (*netconf.Network, error) {
	name := cfg.DefaultNetwork
	network, err := cfg.Registry().Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("network %q is not supported — run `stswap networks` to see the list", name)
	}
	return network, nil
}

// pickEndpoint selects the RPC endpoint for a network: the --rpc override
// when given, otherwise the best of the configured list.
func pickEndpoint(ctx context.Context, network *netconf.Network) (string, error) {
	if rpcFlag != "" {
		return rpcFlag, nil
	}
	selCtx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	defer cancel()
	url, err := rpc.SelectBest(selCtx, cfg.RPCs(network), cfg.RPCAlgorithm)
	if err != nil {
		return "", fmt.Errorf("no reachable RPC for %s: %w", network.DisplayName, err)
	}
	return url, nil
}

// sessionSigner builds a signer from the selected wallet, or nil when no
// signing wallet is configured. Read commands work fine without one.
func sessionSigner() *wallet.Signer {
	mgr := newWalletManager()

	var w *wallet.Wallet
	if cfg.DefaultWallet != "" {
		w, _ = mgr.Get(cfg.DefaultWallet)
	}
	if w == nil {
		w = mgr.Default()
	}
	if w == nil || w.Type != wallet.TypeSigning {
		return nil
	}
	return wallet.NewSigner(w, wallet.NewCachedKeystore(wallet.DefaultKeystore()))
}

// openSession dials the network and runs the connect sequence once.
// The returned manager owns the session; callers must Close it.
func openSession(ctx context.Context, opts ...session.ManagerOption) (*session.Manager, session.Session, *chain.Client, error) {
	network, err := resolveNetwork()
	if err != nil {
		return nil, session.Session{}, nil, err
	}

	url, err := pickEndpoint(ctx, network)
	if err != nil {
		return nil, session.Session{}, nil, err
	}
	client := chain.NewClient(url)

	mgr := session.NewManager(client, cfg.Registry(), session.Binder(client, sessionSigner()), opts...)
	sess, err := mgr.Connect(ctx)
	if err != nil {
		return nil, session.Session{}, nil, connectError(err, url)
	}
	return mgr, sess, client, nil
}

// connectError rewraps the connect sentinels with actionable hints.
func connectError(err error, url string) error {
	switch {
	case errors.Is(err, session.ErrNoAccounts):
		return fmt.Errorf("%w\n  The node at %s has no unlocked accounts. Point --rpc at your fork node.", err, url)
	case errors.Is(err, session.ErrUnsupportedNetwork):
		return fmt.Errorf("%w\n  Switch the node to the Mainnet Fork and reconnect.", err)
	default:
		return err
	}
}
