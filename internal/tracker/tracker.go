package tracker

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// BalanceReader reads one account's raw balance. *contract.ERC20 satisfies it.
type BalanceReader interface {
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
}

// MarketStatus reports venue suspension. *contract.BuySTSLA satisfies it.
type MarketStatus interface {
	Suspended(ctx context.Context) (bool, error)
}

// Snapshot is one observation of everything the dashboard shows. Balances
// are raw token units; fields are replaced wholesale and never mutated, so
// a returned snapshot can be read without locking.
type Snapshot struct {
	USDC       *big.Int
	STSLA      *big.Int
	MarketOpen bool
	Block      uint64
}

// Tracker re-reads balances and the market flag on each new block. A failed
// read keeps the previous value: display data may go stale but a flaky RPC
// never interrupts whatever the user is doing.
type Tracker struct {
	usdc   BalanceReader
	stsla  BalanceReader
	market MarketStatus

	mu      sync.Mutex
	account common.Address
	snap    Snapshot
}

// New creates a tracker for one account.
func New(usdc, stsla BalanceReader, market MarketStatus, account common.Address) *Tracker {
	return &Tracker{
		usdc:    usdc,
		stsla:   stsla,
		market:  market,
		account: account,
		snap: Snapshot{
			USDC:  big.NewInt(0),
			STSLA: big.NewInt(0),
		},
	}
}

// SetAccount switches the tracked account. The next Refresh reads the new
// account's balances; the current snapshot is left alone until then.
func (t *Tracker) SetAccount(account common.Address) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.account = account
}

// Refresh re-reads all tracked values and returns the updated snapshot.
func (t *Tracker) Refresh(ctx context.Context, block uint64) Snapshot {
	t.mu.Lock()
	account := t.account
	next := t.snap
	t.mu.Unlock()

	next.Block = block

	if bal, err := t.usdc.BalanceOf(ctx, account); err == nil {
		next.USDC = bal
	}
	if bal, err := t.stsla.BalanceOf(ctx, account); err == nil {
		next.STSLA = bal
	}
	if suspended, err := t.market.Suspended(ctx); err == nil {
		next.MarketOpen = !suspended
	}

	t.mu.Lock()
	t.snap = next
	t.mu.Unlock()
	return next
}

// Snapshot returns the last observed snapshot.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}
