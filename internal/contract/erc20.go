package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stslalabs/stswap/internal/chain"
)

// ERC20 is a handle to a deployed fungible token contract.
// Reads go through the RPC client; writes go through the session's Sender.
type ERC20 struct {
	addr   common.Address
	client *chain.Client
	sender *Sender
}

// NewERC20 creates a token handle. sender may be nil for watch-only use;
// write methods then fail.
func NewERC20(client *chain.Client, addr common.Address, sender *Sender) *ERC20 {
	return &ERC20{addr: addr, client: client, sender: sender}
}

// Address returns the token contract address.
func (t *ERC20) Address() common.Address { return t.addr }

// Decimals fetches the token's decimal count.
func (t *ERC20) Decimals(ctx context.Context) (int, error) {
	data, err := t.client.CallContract(ctx, t.addr, pack("decimals()"))
	if err != nil {
		return 0, fmt.Errorf("decimals: %w", err)
	}
	n, err := unpackBigInt(data)
	if err != nil {
		return 0, fmt.Errorf("decimals: %w", err)
	}
	return int(n.Int64()), nil
}

// BalanceOf returns owner's raw token balance.
func (t *ERC20) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	data, err := t.client.CallContract(ctx, t.addr, pack("balanceOf(address)", addressWord(owner)))
	if err != nil {
		return nil, fmt.Errorf("balanceOf: %w", err)
	}
	return unpackBigInt(data)
}

// Allowance returns how much owner has approved spender to transfer.
func (t *ERC20) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	data, err := t.client.CallContract(ctx, t.addr,
		pack("allowance(address,address)", addressWord(owner), addressWord(spender)))
	if err != nil {
		return nil, fmt.Errorf("allowance: %w", err)
	}
	return unpackBigInt(data)
}

// Approve submits an approval transaction and returns its hash.
func (t *ERC20) Approve(ctx context.Context, spender common.Address, amt *big.Int) (string, error) {
	if t.sender == nil {
		return "", ErrReadOnly
	}
	return t.sender.Send(ctx, t.addr, pack("approve(address,uint256)", addressWord(spender), uintWord(amt)))
}
