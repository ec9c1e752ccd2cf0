package session

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stslalabs/stswap/internal/contract"
	"github.com/stslalabs/stswap/internal/netconf"
)

// State is the connection state of the session manager.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "invalid"
	}
}

// Errors. Each failure path of Connect surfaces its own sentinel so the
// command layer can print a targeted message.
var (
	ErrAlreadyConnected   = errors.New("session already connected")
	ErrNoProvider         = errors.New("no RPC provider configured")
	ErrNoAccounts         = errors.New("provider returned no accounts")
	ErrUnsupportedNetwork = errors.New("unsupported network")
	ErrNotConnected       = errors.New("session not connected")
)

// Contracts is the resolved contract handle set for one network. It is built
// whole or not at all; a Session never carries a partial set.
type Contracts struct {
	USDC      *contract.ERC20
	STSLA     *contract.ERC20
	Market    *contract.BuySTSLA
	Delegates *contract.DelegateApprovals

	// Cached at connect time so balance formatting never needs a round trip.
	USDCDecimals  int
	STSLADecimals int
}

// Session is the immutable snapshot of a live connection.
type Session struct {
	Account   common.Address
	Network   *netconf.Network
	ChainID   int64
	Contracts *Contracts
}
