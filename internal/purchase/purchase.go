package purchase

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stslalabs/stswap/internal/amount"
)

// SpendToken is the spend-currency surface the buy flow needs.
// *contract.ERC20 satisfies it.
type SpendToken interface {
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, spender common.Address, amt *big.Int) (string, error)
}

// SwapMarket is the swap-contract surface. *contract.BuySTSLA satisfies it.
type SwapMarket interface {
	Address() common.Address
	EstimateSwap(ctx context.Context, usdcAmount *big.Int, useDelegated bool) (*big.Int, error)
	Swap(ctx context.Context, usdcAmount *big.Int, useDelegated bool) (string, error)
}

// DelegateRegistry is the delegated-trading approval surface.
// *contract.DelegateApprovals satisfies it.
type DelegateRegistry interface {
	CanExchangeFor(ctx context.Context, owner, delegate common.Address) (bool, error)
	ApproveExchangeOnBehalf(ctx context.Context, delegate common.Address) (string, error)
}

// Confirmer waits for a broadcast transaction to be mined.
// *contract.Confirmer satisfies it.
type Confirmer interface {
	WaitMined(ctx context.Context, hash string) error
}

// Phase identifies one step of the buy sequence for status reporting.
type Phase int

const (
	PhaseApproval Phase = iota
	PhaseDelegate
	PhaseSwap
	PhaseConfirm
)

func (p Phase) String() string {
	switch p {
	case PhaseApproval:
		return "approval"
	case PhaseDelegate:
		return "delegate"
	case PhaseSwap:
		return "swap"
	case PhaseConfirm:
		return "confirm"
	default:
		return "invalid"
	}
}

// StatusFunc receives exactly one user-facing message per phase reached.
type StatusFunc func(phase Phase, message string)

// Errors.
var (
	ErrPurchasePending     = errors.New("a purchase is already in progress")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNonPositiveAmount   = errors.New("must spend a positive amount")
)

// Orchestrator runs the buy sequence against one session's contract handles.
// Display state (balance, market flag) is supplied by the caller so the
// pre-flight checks never hit the network.
type Orchestrator struct {
	token     SpendToken
	market    SwapMarket
	delegates DelegateRegistry
	confirm   Confirmer

	account    common.Address
	balance    func() *big.Int
	marketOpen func() bool
	status     StatusFunc

	mu      sync.Mutex
	pending bool
}

// Config collects the orchestrator's collaborators.
type Config struct {
	Token     SpendToken
	Market    SwapMarket
	Delegates DelegateRegistry
	Confirm   Confirmer

	Account common.Address

	// Balance returns the current spend-currency balance (display state).
	Balance func() *big.Int
	// MarketOpen returns the current market-open flag (display state).
	MarketOpen func() bool
	// Status receives per-phase progress messages. Optional.
	Status StatusFunc
}

// New creates an orchestrator.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		token:      cfg.Token,
		market:     cfg.Market,
		delegates:  cfg.Delegates,
		confirm:    cfg.Confirm,
		account:    cfg.Account,
		balance:    cfg.Balance,
		marketOpen: cfg.MarketOpen,
		status:     cfg.Status,
	}
	if o.status == nil {
		o.status = func(Phase, string) {}
	}
	return o
}

// Pending reports whether a purchase is in flight.
func (o *Orchestrator) Pending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending
}

// Buy runs the purchase sequence for spend (raw spend-token units) and
// returns the swap transaction hash. Steps run in strict order; each failure
// aborts without running later steps, and the pending flag is cleared on
// every exit path. A second Buy while one is in flight is rejected up front
// without executing any step.
func (o *Orchestrator) Buy(ctx context.Context, spend *big.Int) (string, error) {
	o.mu.Lock()
	if o.pending {
		o.mu.Unlock()
		return "", ErrPurchasePending
	}
	o.mu.Unlock()

	// Pre-flight checks against display state, before the guard engages.
	if spend.Cmp(o.balance()) > 0 {
		return "", ErrInsufficientBalance
	}
	if spend.Sign() <= 0 {
		return "", ErrNonPositiveAmount
	}

	o.mu.Lock()
	if o.pending {
		o.mu.Unlock()
		return "", ErrPurchasePending
	}
	o.pending = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.pending = false
		o.mu.Unlock()
	}()

	useDelegated := o.marketOpen()

	if err := o.ensureAllowance(ctx, spend); err != nil {
		return "", err
	}
	if useDelegated {
		if err := o.ensureDelegate(ctx); err != nil {
			return "", err
		}
	}

	hash, err := o.market.Swap(ctx, spend, useDelegated)
	if err != nil {
		return "", failure(PhaseSwap, "swap failed", err)
	}
	o.status(PhaseSwap, fmt.Sprintf("swap submitted, pending: %s", hash))

	if err := o.confirm.WaitMined(ctx, hash); err != nil {
		return hash, failure(PhaseConfirm, "swap not confirmed", err)
	}
	o.status(PhaseConfirm, "swap confirmed")
	return hash, nil
}

// ensureAllowance grants the swap contract an infinite allowance unless the
// current allowance already covers spend. Boundary rule: spend equal to the
// allowance needs no new approval.
func (o *Orchestrator) ensureAllowance(ctx context.Context, spend *big.Int) error {
	spender := o.market.Address()

	allowance, err := o.token.Allowance(ctx, o.account, spender)
	if err != nil {
		return failure(PhaseApproval, "allowance check failed", err)
	}
	if spend.Cmp(allowance) <= 0 {
		return nil
	}

	o.status(PhaseApproval, "approving USDC spend")
	hash, err := o.token.Approve(ctx, spender, amount.MaxUint256)
	if err != nil {
		return failure(PhaseApproval, "approval failed", err)
	}
	if err := o.confirm.WaitMined(ctx, hash); err != nil {
		return failure(PhaseApproval, "approval not confirmed", err)
	}
	return nil
}

// ensureDelegate authorizes the swap contract to exchange on the user's
// behalf, unless it already may. Only runs while the market is open; a
// closed-market swap settles without delegation.
func (o *Orchestrator) ensureDelegate(ctx context.Context) error {
	delegate := o.market.Address()

	ok, err := o.delegates.CanExchangeFor(ctx, o.account, delegate)
	if err != nil {
		return failure(PhaseDelegate, "delegate check failed", err)
	}
	if ok {
		return nil
	}

	o.status(PhaseDelegate, "approving delegated trading")
	hash, err := o.delegates.ApproveExchangeOnBehalf(ctx, delegate)
	if err != nil {
		return failure(PhaseDelegate, "delegate approval failed", err)
	}
	if err := o.confirm.WaitMined(ctx, hash); err != nil {
		return failure(PhaseDelegate, "delegate approval not confirmed", err)
	}
	return nil
}

// EstimateReturn queries the expected sTSLA return for spend, using the same
// delegated flag a purchase would use right now. Any failure yields zero so
// the caller resets its display instead of showing a stale estimate.
func (o *Orchestrator) EstimateReturn(ctx context.Context, spend *big.Int) *big.Int {
	out, err := o.market.EstimateSwap(ctx, spend, o.marketOpen())
	if err != nil {
		return big.NewInt(0)
	}
	return out
}

// failure wraps a step error with its user-facing message. A stale signing
// nonce gets the targeted hint instead of the generic text.
func failure(phase Phase, message string, err error) error {
	if isNonceError(err) {
		return fmt.Errorf("%s: transaction nonce out of sync, reset your wallet account: %w", phase, err)
	}
	return fmt.Errorf("%s: %s: %w", phase, message, err)
}

func isNonceError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "nonce")
}
