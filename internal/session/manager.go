package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stslalabs/stswap/internal/netconf"
)

// Provider is the slice of the RPC surface the session manager needs.
// *chain.Client satisfies it.
type Provider interface {
	Accounts(ctx context.Context) ([]common.Address, error)
	ChainID(ctx context.Context) (int64, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// BindFunc builds the contract handle set for a resolved network, including
// the decimals reads. It must return a complete set or an error.
type BindFunc func(ctx context.Context, net *netconf.Network) (*Contracts, error)

// EventKind tags session events.
type EventKind int

const (
	EventNewBlock EventKind = iota
	EventAccountsChanged
	EventNetworkChanged
)

// Event is one observation from the poller. Exactly one consumer (Run)
// processes events, in order, so handlers never race each other.
type Event struct {
	Kind     EventKind
	Block    uint64
	Accounts []common.Address
	ChainID  int64
}

const defaultPollInterval = 4 * time.Second

// Manager owns the session lifecycle: the connect state machine, the
// polling goroutine that watches the provider, and the event loop that
// reacts to what the poller sees.
type Manager struct {
	provider Provider
	registry *netconf.Registry
	bind     BindFunc

	pollInterval time.Duration

	// Handlers are invoked from the Run goroutine only.
	OnBlock      func(sess Session, block uint64)
	OnAccount    func(sess Session)
	OnDisconnect func(reason error)

	mu      sync.Mutex
	state   State
	session *Session

	events   chan Event
	pollStop chan struct{}
	pollDone chan struct{}
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithPollInterval overrides the provider poll cadence.
func WithPollInterval(d time.Duration) ManagerOption {
	return func(m *Manager) { m.pollInterval = d }
}

// WithBinder overrides how contract handles are built (used by tests).
func WithBinder(bind BindFunc) ManagerOption {
	return func(m *Manager) { m.bind = bind }
}

// NewManager creates a session manager. provider may be nil; Connect then
// fails with ErrNoProvider.
func NewManager(provider Provider, registry *netconf.Registry, bind BindFunc, opts ...ManagerOption) *Manager {
	m := &Manager{
		provider:     provider,
		registry:     registry,
		bind:         bind,
		pollInterval: defaultPollInterval,
		state:        StateDisconnected,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns a copy of the active session, or ErrNotConnected.
func (m *Manager) Session() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateConnected || m.session == nil {
		return Session{}, ErrNotConnected
	}
	return *m.session, nil
}

// Connect runs the connect sequence. Calling it while not disconnected is
// rejected with ErrAlreadyConnected and has no side effects. Every failure
// rolls the state back to disconnected; a session is established whole or
// not at all.
func (m *Manager) Connect(ctx context.Context) (Session, error) {
	m.mu.Lock()
	if m.state != StateDisconnected {
		m.mu.Unlock()
		return Session{}, ErrAlreadyConnected
	}
	m.state = StateConnecting
	m.mu.Unlock()

	sess, err := m.establish(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.state = StateDisconnected
		m.session = nil
		return Session{}, err
	}
	m.state = StateConnected
	m.session = &sess
	m.startPoller(sess.ChainID)
	return sess, nil
}

func (m *Manager) establish(ctx context.Context) (Session, error) {
	if m.provider == nil {
		return Session{}, ErrNoProvider
	}

	accounts, err := m.provider.Accounts(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("listing accounts: %w", err)
	}
	if len(accounts) == 0 {
		return Session{}, ErrNoAccounts
	}

	chainID, err := m.provider.ChainID(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("reading chain id: %w", err)
	}

	name := netconf.NameForChainID(chainID)
	network, err := m.registry.Resolve(name)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %s", ErrUnsupportedNetwork, m.registry.DisplayName(name))
	}

	contracts, err := m.bind(ctx, network)
	if err != nil {
		return Session{}, fmt.Errorf("binding contracts: %w", err)
	}

	return Session{
		Account:   accounts[0],
		Network:   network,
		ChainID:   chainID,
		Contracts: contracts,
	}, nil
}

// Close tears the session down: stops the poller, drops the event channel
// and returns to disconnected. A later Connect builds everything fresh, so
// handlers are registered exactly once per session.
func (m *Manager) Close() {
	m.mu.Lock()
	stop := m.pollStop
	done := m.pollDone
	m.pollStop = nil
	m.pollDone = nil
	m.state = StateDisconnected
	m.session = nil
	m.events = nil
	m.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

// Run consumes session events until ctx is cancelled or the session closes.
// It is the only goroutine that mutates a live session.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	events := m.events
	m.mu.Unlock()
	if events == nil {
		return ErrNotConnected
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			m.handle(ctx, ev)
		}
	}
}

func (m *Manager) handle(ctx context.Context, ev Event) {
	switch ev.Kind {
	case EventNewBlock:
		sess, err := m.Session()
		if err != nil {
			return
		}
		if m.OnBlock != nil {
			m.OnBlock(sess, ev.Block)
		}

	case EventAccountsChanged:
		m.mu.Lock()
		if m.state != StateConnected || m.session == nil || len(ev.Accounts) == 0 {
			m.mu.Unlock()
			return
		}
		m.session.Account = ev.Accounts[0]
		sess := *m.session
		m.mu.Unlock()
		if m.OnAccount != nil {
			m.OnAccount(sess)
		}

	case EventNetworkChanged:
		m.switchNetwork(ctx, ev.ChainID)
	}
}

// switchNetwork re-resolves the contract set against the new chain. An
// unsupported network degrades the session to disconnected rather than
// leaving stale handles live.
func (m *Manager) switchNetwork(ctx context.Context, chainID int64) {
	name := netconf.NameForChainID(chainID)
	network, err := m.registry.Resolve(name)
	if err != nil {
		reason := fmt.Errorf("%w: %s", ErrUnsupportedNetwork, m.registry.DisplayName(name))
		m.Close()
		if m.OnDisconnect != nil {
			m.OnDisconnect(reason)
		}
		return
	}

	contracts, err := m.bind(ctx, network)
	if err != nil {
		m.Close()
		if m.OnDisconnect != nil {
			m.OnDisconnect(fmt.Errorf("binding contracts: %w", err))
		}
		return
	}

	m.mu.Lock()
	if m.state == StateConnected && m.session != nil {
		m.session.Network = network
		m.session.ChainID = chainID
		m.session.Contracts = contracts
		sess := *m.session
		m.mu.Unlock()
		if m.OnAccount != nil {
			m.OnAccount(sess)
		}
		return
	}
	m.mu.Unlock()
}

// startPoller launches the watcher goroutine. Caller holds m.mu.
func (m *Manager) startPoller(chainID int64) {
	m.events = make(chan Event, 16)
	m.pollStop = make(chan struct{})
	m.pollDone = make(chan struct{})
	go m.poll(m.events, m.pollStop, m.pollDone, chainID)
}

// poll watches the provider for new blocks, account changes and chain
// switches, translating observations into events. Errors are skipped; the
// next tick tries again.
func (m *Manager) poll(events chan<- Event, stop <-chan struct{}, done chan<- struct{}, chainID int64) {
	defer close(done)
	defer close(events) // sole sender; lets Run drain and return

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	var lastBlock uint64
	var lastAccounts []common.Address
	lastChainID := chainID
	ctx := context.Background()

	emit := func(ev Event) bool {
		select {
		case events <- ev:
			return true
		case <-stop:
			return false
		}
	}

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		if id, err := m.provider.ChainID(ctx); err == nil && id != lastChainID {
			lastChainID = id
			if !emit(Event{Kind: EventNetworkChanged, ChainID: id}) {
				return
			}
			continue
		}

		if accounts, err := m.provider.Accounts(ctx); err == nil {
			changed := accountsChanged(lastAccounts, accounts)
			lastAccounts = accounts
			if changed && !emit(Event{Kind: EventAccountsChanged, Accounts: accounts}) {
				return
			}
		}

		if block, err := m.provider.BlockNumber(ctx); err == nil && block > lastBlock {
			lastBlock = block
			if !emit(Event{Kind: EventNewBlock, Block: block}) {
				return
			}
		}
	}
}

func accountsChanged(prev, next []common.Address) bool {
	if prev == nil {
		return false // first observation is the connect-time state, not a change
	}
	if len(prev) != len(next) {
		return true
	}
	for i := range prev {
		if prev[i] != next[i] {
			return true
		}
	}
	return false
}
