package contract

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stslalabs/stswap/internal/chain"
)

// DelegateApprovals is a handle to the Synthetix delegate-approval registry,
// which records which contracts may exchange on a user's behalf.
type DelegateApprovals struct {
	addr   common.Address
	client *chain.Client
	sender *Sender
}

// NewDelegateApprovals creates a registry handle. sender may be nil for
// watch-only use.
func NewDelegateApprovals(client *chain.Client, addr common.Address, sender *Sender) *DelegateApprovals {
	return &DelegateApprovals{addr: addr, client: client, sender: sender}
}

// Address returns the registry contract address.
func (d *DelegateApprovals) Address() common.Address { return d.addr }

// CanExchangeFor reports whether delegate is already authorized to exchange
// on owner's behalf.
func (d *DelegateApprovals) CanExchangeFor(ctx context.Context, owner, delegate common.Address) (bool, error) {
	data, err := d.client.CallContract(ctx, d.addr,
		pack("canExchangeFor(address,address)", addressWord(owner), addressWord(delegate)))
	if err != nil {
		return false, fmt.Errorf("canExchangeFor: %w", err)
	}
	return unpackBool(data)
}

// ApproveExchangeOnBehalf authorizes delegate to exchange for the sender and
// returns the transaction hash.
func (d *DelegateApprovals) ApproveExchangeOnBehalf(ctx context.Context, delegate common.Address) (string, error) {
	if d.sender == nil {
		return "", ErrReadOnly
	}
	return d.sender.Send(ctx, d.addr,
		pack("approveExchangeOnBehalf(address)", addressWord(delegate)))
}
