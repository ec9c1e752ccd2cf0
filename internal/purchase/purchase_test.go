package purchase

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stslalabs/stswap/internal/amount"
)

var (
	owner      = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	marketAddr = common.HexToAddress("0x3Aa5ebB10DC797CAC828524e59A333d0A371443c")
)

type fakeToken struct {
	allowance    *big.Int
	allowanceErr error
	approveErr   error

	approveCalls []*big.Int
}

func (f *fakeToken) Allowance(_ context.Context, _, _ common.Address) (*big.Int, error) {
	if f.allowanceErr != nil {
		return nil, f.allowanceErr
	}
	return f.allowance, nil
}

func (f *fakeToken) Approve(_ context.Context, _ common.Address, amt *big.Int) (string, error) {
	if f.approveErr != nil {
		return "", f.approveErr
	}
	f.approveCalls = append(f.approveCalls, amt)
	return "0xapprove", nil
}

type fakeMarket struct {
	estimate    *big.Int
	estimateErr error
	swapErr     error

	swapCalls []swapCall
	estCalls  []swapCall
}

type swapCall struct {
	amount       *big.Int
	useDelegated bool
}

func (f *fakeMarket) Address() common.Address { return marketAddr }

func (f *fakeMarket) EstimateSwap(_ context.Context, amt *big.Int, useDelegated bool) (*big.Int, error) {
	f.estCalls = append(f.estCalls, swapCall{amt, useDelegated})
	if f.estimateErr != nil {
		return nil, f.estimateErr
	}
	return f.estimate, nil
}

func (f *fakeMarket) Swap(_ context.Context, amt *big.Int, useDelegated bool) (string, error) {
	if f.swapErr != nil {
		return "", f.swapErr
	}
	f.swapCalls = append(f.swapCalls, swapCall{amt, useDelegated})
	return "0xswap", nil
}

type fakeDelegates struct {
	canExchange bool
	checkErr    error
	approveErr  error

	checkCalls   int
	approveCalls int
}

func (f *fakeDelegates) CanExchangeFor(_ context.Context, _, _ common.Address) (bool, error) {
	f.checkCalls++
	if f.checkErr != nil {
		return false, f.checkErr
	}
	return f.canExchange, nil
}

func (f *fakeDelegates) ApproveExchangeOnBehalf(_ context.Context, _ common.Address) (string, error) {
	f.approveCalls++
	if f.approveErr != nil {
		return "", f.approveErr
	}
	return "0xdelegate", nil
}

type fakeConfirmer struct {
	errs   map[string]error
	waited []string
}

func (f *fakeConfirmer) WaitMined(_ context.Context, hash string) error {
	f.waited = append(f.waited, hash)
	return f.errs[hash]
}

type fixture struct {
	token     *fakeToken
	market    *fakeMarket
	delegates *fakeDelegates
	confirm   *fakeConfirmer

	balance    *big.Int
	marketOpen bool

	statuses []string
}

func newFixture() *fixture {
	return &fixture{
		token:      &fakeToken{allowance: big.NewInt(0)},
		market:     &fakeMarket{estimate: big.NewInt(0)},
		delegates:  &fakeDelegates{},
		confirm:    &fakeConfirmer{errs: map[string]error{}},
		balance:    big.NewInt(100),
		marketOpen: false,
	}
}

func (f *fixture) orchestrator() *Orchestrator {
	return New(Config{
		Token:      f.token,
		Market:     f.market,
		Delegates:  f.delegates,
		Confirm:    f.confirm,
		Account:    owner,
		Balance:    func() *big.Int { return f.balance },
		MarketOpen: func() bool { return f.marketOpen },
		Status: func(_ Phase, msg string) {
			f.statuses = append(f.statuses, msg)
		},
	})
}

func TestBuyInsufficientBalance(t *testing.T) {
	f := newFixture()
	f.balance = big.NewInt(100)
	o := f.orchestrator()

	_, err := o.Buy(context.Background(), big.NewInt(101))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Terminated before any contract call; guard never engaged.
	assert.Empty(t, f.token.approveCalls)
	assert.Empty(t, f.market.swapCalls)
	assert.Zero(t, f.delegates.checkCalls)
	assert.False(t, o.Pending())
}

func TestBuyFullBalanceAllowed(t *testing.T) {
	f := newFixture()
	f.balance = big.NewInt(100)
	f.token.allowance = big.NewInt(100)
	o := f.orchestrator()

	// Spending exactly the full balance passes the strict > check.
	_, err := o.Buy(context.Background(), big.NewInt(100))
	require.NoError(t, err)
	require.Len(t, f.market.swapCalls, 1)
}

func TestBuyNonPositiveAmount(t *testing.T) {
	f := newFixture()
	o := f.orchestrator()

	_, err := o.Buy(context.Background(), big.NewInt(0))
	assert.ErrorIs(t, err, ErrNonPositiveAmount)

	_, err = o.Buy(context.Background(), big.NewInt(-5))
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
	assert.False(t, o.Pending())
}

func TestBuyApprovalSkippedAtBoundary(t *testing.T) {
	f := newFixture()
	f.token.allowance = big.NewInt(50)
	o := f.orchestrator()

	// 30 <= 50: no approval, straight to swap.
	hash, err := o.Buy(context.Background(), big.NewInt(30))
	require.NoError(t, err)
	assert.Equal(t, "0xswap", hash)

	assert.Empty(t, f.token.approveCalls)
	require.Len(t, f.market.swapCalls, 1)
	assert.EqualValues(t, 30, f.market.swapCalls[0].amount.Int64())
}

func TestBuyApprovesInfiniteWhenShort(t *testing.T) {
	f := newFixture()
	f.token.allowance = big.NewInt(10)
	f.marketOpen = false
	o := f.orchestrator()

	// allowance 10 < spend 30: approve max-uint, skip delegation (market
	// closed), swap with (30, false).
	_, err := o.Buy(context.Background(), big.NewInt(30))
	require.NoError(t, err)

	require.Len(t, f.token.approveCalls, 1)
	assert.Zero(t, f.token.approveCalls[0].Cmp(amount.MaxUint256))

	assert.Zero(t, f.delegates.checkCalls)

	require.Len(t, f.market.swapCalls, 1)
	assert.EqualValues(t, 30, f.market.swapCalls[0].amount.Int64())
	assert.False(t, f.market.swapCalls[0].useDelegated)

	// Approval waited on before the swap was submitted.
	assert.Equal(t, []string{"0xapprove", "0xswap"}, f.confirm.waited)
}

func TestBuyMarketOpenUsesDelegation(t *testing.T) {
	f := newFixture()
	f.token.allowance = big.NewInt(100)
	f.marketOpen = true
	f.delegates.canExchange = false
	o := f.orchestrator()

	_, err := o.Buy(context.Background(), big.NewInt(30))
	require.NoError(t, err)

	assert.Equal(t, 1, f.delegates.checkCalls)
	assert.Equal(t, 1, f.delegates.approveCalls)
	require.Len(t, f.market.swapCalls, 1)
	assert.True(t, f.market.swapCalls[0].useDelegated)
}

func TestBuyDelegationSkippedWhenAlreadyGranted(t *testing.T) {
	f := newFixture()
	f.token.allowance = big.NewInt(100)
	f.marketOpen = true
	f.delegates.canExchange = true
	o := f.orchestrator()

	_, err := o.Buy(context.Background(), big.NewInt(30))
	require.NoError(t, err)

	assert.Equal(t, 1, f.delegates.checkCalls)
	assert.Zero(t, f.delegates.approveCalls)
	assert.True(t, f.market.swapCalls[0].useDelegated)
}

func TestBuyApprovalFailureAborts(t *testing.T) {
	f := newFixture()
	f.token.allowance = big.NewInt(0)
	f.token.approveErr = errors.New("user rejected")
	o := f.orchestrator()

	_, err := o.Buy(context.Background(), big.NewInt(30))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "approval failed")

	// No later step ran; guard released.
	assert.Empty(t, f.market.swapCalls)
	assert.Zero(t, f.delegates.checkCalls)
	assert.False(t, o.Pending())
}

func TestBuyDelegateFailureAborts(t *testing.T) {
	f := newFixture()
	f.token.allowance = big.NewInt(100)
	f.marketOpen = true
	f.delegates.approveErr = errors.New("user rejected")
	o := f.orchestrator()

	_, err := o.Buy(context.Background(), big.NewInt(30))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delegate approval failed")
	assert.Empty(t, f.market.swapCalls)
	assert.False(t, o.Pending())
}

func TestBuySwapFailure(t *testing.T) {
	f := newFixture()
	f.token.allowance = big.NewInt(100)
	f.market.swapErr = errors.New("execution reverted")
	o := f.orchestrator()

	_, err := o.Buy(context.Background(), big.NewInt(30))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "swap failed")
	assert.False(t, o.Pending())
}

func TestBuyConfirmFailureReturnsHash(t *testing.T) {
	f := newFixture()
	f.token.allowance = big.NewInt(100)
	f.confirm.errs["0xswap"] = errors.New("not mined within 3m")
	o := f.orchestrator()

	hash, err := o.Buy(context.Background(), big.NewInt(30))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not confirmed")
	assert.Equal(t, "0xswap", hash)
	assert.False(t, o.Pending())
}

func TestBuyNonceErrorGetsResetHint(t *testing.T) {
	f := newFixture()
	f.token.allowance = big.NewInt(100)
	f.market.swapErr = errors.New("rpc error: nonce too low")
	o := f.orchestrator()

	_, err := o.Buy(context.Background(), big.NewInt(30))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reset your wallet account")
}

func TestBuyRejectsReentry(t *testing.T) {
	f := newFixture()
	f.token.allowance = big.NewInt(100)

	started := make(chan struct{})
	release := make(chan struct{})
	blocking := &blockingMarket{fakeMarket: f.market, started: started, release: release}

	o := New(Config{
		Token:      f.token,
		Market:     blocking,
		Delegates:  f.delegates,
		Confirm:    f.confirm,
		Account:    owner,
		Balance:    func() *big.Int { return f.balance },
		MarketOpen: func() bool { return false },
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := o.Buy(context.Background(), big.NewInt(30))
		assert.NoError(t, err)
	}()

	<-started
	assert.True(t, o.Pending())

	// Second invocation while the first is in flight: rejected, and none of
	// its steps run (the allowance fake would have recorded a second call).
	_, err := o.Buy(context.Background(), big.NewInt(30))
	assert.ErrorIs(t, err, ErrPurchasePending)

	close(release)
	wg.Wait()
	assert.False(t, o.Pending())
}

type blockingMarket struct {
	*fakeMarket
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingMarket) Swap(ctx context.Context, amt *big.Int, useDelegated bool) (string, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return b.fakeMarket.Swap(ctx, amt, useDelegated)
}

func TestBuyStatusPerPhase(t *testing.T) {
	f := newFixture()
	f.token.allowance = big.NewInt(0)
	f.marketOpen = true
	o := f.orchestrator()

	_, err := o.Buy(context.Background(), big.NewInt(30))
	require.NoError(t, err)

	require.Len(t, f.statuses, 4)
	assert.Contains(t, f.statuses[0], "approving USDC")
	assert.Contains(t, f.statuses[1], "delegated trading")
	assert.Contains(t, f.statuses[2], "pending")
	assert.Contains(t, f.statuses[3], "confirmed")
}

func TestEstimateReturn(t *testing.T) {
	f := newFixture()
	f.market.estimate = big.NewInt(987)
	f.marketOpen = true
	o := f.orchestrator()

	out := o.EstimateReturn(context.Background(), big.NewInt(30))
	assert.EqualValues(t, 987, out.Int64())

	// The estimate uses the same delegated flag a purchase would.
	require.Len(t, f.market.estCalls, 1)
	assert.True(t, f.market.estCalls[0].useDelegated)
}

func TestEstimateReturnFailureYieldsZero(t *testing.T) {
	f := newFixture()
	f.market.estimateErr = errors.New("execution reverted")
	o := f.orchestrator()

	out := o.EstimateReturn(context.Background(), big.NewInt(30))
	assert.Zero(t, out.Sign())
}
