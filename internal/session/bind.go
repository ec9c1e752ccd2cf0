package session

import (
	"context"
	"fmt"
	"math/big"

	"github.com/stslalabs/stswap/internal/chain"
	"github.com/stslalabs/stswap/internal/contract"
	"github.com/stslalabs/stswap/internal/netconf"
	"github.com/stslalabs/stswap/internal/wallet"
)

// Binder builds the default contract handle set over one RPC client. The
// signer is optional; without it every handle is read-only.
func Binder(client *chain.Client, signer *wallet.Signer) BindFunc {
	return func(ctx context.Context, net *netconf.Network) (*Contracts, error) {
		var sender *contract.Sender
		if signer != nil {
			// Sign with the chain ID the node actually reports; the registry
			// entry's ID is 0 for a local fork.
			chainID, err := client.ChainID(ctx)
			if err != nil {
				return nil, fmt.Errorf("reading chain id: %w", err)
			}
			sender = contract.NewSender(client, signer, big.NewInt(chainID))
		}

		c := &Contracts{
			USDC:      contract.NewERC20(client, net.Addresses.USDC, sender),
			STSLA:     contract.NewERC20(client, net.Addresses.STSLA, sender),
			Market:    contract.NewBuySTSLA(client, net.Addresses.BuySTSLA, sender),
			Delegates: contract.NewDelegateApprovals(client, net.Addresses.DelegateApprovals, sender),
		}

		dec, err := c.USDC.Decimals(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading USDC decimals: %w", err)
		}
		c.USDCDecimals = dec

		dec, err = c.STSLA.Decimals(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading sTSLA decimals: %w", err)
		}
		c.STSLADecimals = dec

		return c, nil
	}
}
