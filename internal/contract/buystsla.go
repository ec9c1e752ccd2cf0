package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stslalabs/stswap/internal/chain"
)

// BuySTSLA is a handle to the USDC → sTSLA swap contract.
type BuySTSLA struct {
	addr   common.Address
	client *chain.Client
	sender *Sender
}

// NewBuySTSLA creates a swap contract handle. sender may be nil for
// watch-only use.
func NewBuySTSLA(client *chain.Client, addr common.Address, sender *Sender) *BuySTSLA {
	return &BuySTSLA{addr: addr, client: client, sender: sender}
}

// Address returns the swap contract address.
func (b *BuySTSLA) Address() common.Address { return b.addr }

// Suspended reports whether the sTSLA trading venue is suspended.
// The market-open flag shown to the user is the inverse.
func (b *BuySTSLA) Suspended(ctx context.Context) (bool, error) {
	data, err := b.client.CallContract(ctx, b.addr, pack("stsla_suspended()"))
	if err != nil {
		return false, fmt.Errorf("stsla_suspended: %w", err)
	}
	return unpackBool(data)
}

// EstimateSwap asks the contract how much sTSLA the given USDC amount
// would currently buy.
func (b *BuySTSLA) EstimateSwap(ctx context.Context, usdcAmount *big.Int, useDelegated bool) (*big.Int, error) {
	data, err := b.client.CallContract(ctx, b.addr,
		pack("est_swap_usdc_to_stsla(uint256,bool)", uintWord(usdcAmount), boolWord(useDelegated)))
	if err != nil {
		return nil, fmt.Errorf("est_swap_usdc_to_stsla: %w", err)
	}
	return unpackBigInt(data)
}

// Swap submits the swap transaction and returns its hash.
func (b *BuySTSLA) Swap(ctx context.Context, usdcAmount *big.Int, useDelegated bool) (string, error) {
	if b.sender == nil {
		return "", ErrReadOnly
	}
	return b.sender.Send(ctx, b.addr,
		pack("swap_usdc_to_stsla(uint256,bool)", uintWord(usdcAmount), boolWord(useDelegated)))
}
