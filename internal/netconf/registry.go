package netconf

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// ErrNetworkNotFound is returned when a network has no configured address set.
var ErrNetworkNotFound = errors.New("network not found")

// AddressSet holds the four contract addresses deployed on one network.
type AddressSet struct {
	USDC              common.Address `json:"usdc"`
	STSLA             common.Address `json:"stsla"`
	BuySTSLA          common.Address `json:"buy_stsla"`
	DelegateApprovals common.Address `json:"delegate_approvals"`
}

// Network holds all metadata for a single supported network.
type Network struct {
	Name        string     `json:"name"`         // provider-reported name, e.g. "homestead"
	DisplayName string     `json:"display_name"` // human-friendly alias
	ChainID     int64      `json:"chain_id"`     // 0 when the chain ID is not fixed (local fork)
	Addresses   AddressSet `json:"addresses"`
	DefaultRPCs []string   `json:"default_rpcs"`
	Explorer    string     `json:"explorer,omitempty"`
}

// Registry maps provider-reported network names to address sets.
// Lookup is exact-match; a miss is a first-class ErrNetworkNotFound,
// never a panic.
type Registry struct {
	networks []Network
	byName   map[string]*Network
	aliases  map[string]string
}

// NewRegistry returns the registry of all supported networks.
//
// A provider that cannot recognize the active chain reports the network
// name "unknown" — which is exactly what a local mainnet fork looks like —
// so "unknown" is aliased to the fork entry.
func NewRegistry() *Registry {
	return newRegistry(allNetworks(), map[string]string{
		NameUnknown: NameFork,
	})
}

func newRegistry(networks []Network, aliases map[string]string) *Registry {
	r := &Registry{
		networks: networks,
		byName:   make(map[string]*Network, len(networks)),
		aliases:  aliases,
	}
	for i := range r.networks {
		n := &r.networks[i]
		r.byName[n.Name] = n
	}
	return r
}

// All returns every configured network.
func (r *Registry) All() []Network {
	return r.networks
}

// Resolve returns the network entry for a provider-reported name.
// Aliases are followed first; an absent key returns ErrNetworkNotFound.
func (r *Registry) Resolve(name string) (*Network, error) {
	if target, ok := r.aliases[name]; ok {
		name = target
	}
	n, ok := r.byName[name]
	if !ok {
		return nil, ErrNetworkNotFound
	}
	return n, nil
}

// DisplayName returns a human-friendly alias for a network name, for use in
// unsupported-network error messages. Unknown names are returned as-is.
func (r *Registry) DisplayName(name string) string {
	if n, err := r.Resolve(name); err == nil {
		return n.DisplayName
	}
	if alias, ok := wellKnownNames[name]; ok {
		return alias
	}
	return name
}

// NameForChainID maps a numeric chain ID to the provider-style network name.
// Anything that is not a recognized public network reports as "unknown",
// matching how injected providers name a local fork.
func NameForChainID(id int64) string {
	switch id {
	case 1:
		return NameHomestead
	default:
		return NameUnknown
	}
}

// ApplyOverrides replaces the address set of any named network present in
// the overrides map. Unknown names are ignored: an override can never add a
// network, only repoint a supported one (e.g. after a fork redeploy).
func (r *Registry) ApplyOverrides(overrides map[string]AddressSet) {
	for name, addrs := range overrides {
		if n, ok := r.byName[name]; ok {
			n.Addresses = addrs
		}
	}
}

// Provider-reported network names.
const (
	NameHomestead = "homestead"
	NameFork      = "homestead_fork"
	NameUnknown   = "unknown"
)

// wellKnownNames covers networks we recognize but do not support, so the
// unsupported-network message can still name them.
var wellKnownNames = map[string]string{
	NameHomestead: "Ethereum Mainnet",
	"sepolia":     "Sepolia Testnet",
	"goerli":      "Goerli Testnet",
	"kovan":       "Kovan Testnet",
	"ropsten":     "Ropsten Testnet",
}

// --- network data ---

func allNetworks() []Network {
	return []Network{
		// Mainnet fork — the only deployment target today. The BUYsTSLA
		// contract is not on mainnet yet; once it is, a homestead entry
		// joins this table.
		{
			Name:        NameFork,
			DisplayName: "Mainnet Fork",
			ChainID:     0,
			Addresses: AddressSet{
				USDC:              common.HexToAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"),
				STSLA:             common.HexToAddress("0x918dA91Ccbc32B7a6A0cc4eCd5987bbab6E31e6D"),
				BuySTSLA:          common.HexToAddress("0x3Aa5ebB10DC797CAC828524e59A333d0A371443c"),
				DelegateApprovals: common.HexToAddress("0x15fd6e554874B9e70F832Ed37f231Ac5E142362f"),
			},
			DefaultRPCs: []string{"http://127.0.0.1:8545"},
		},
	}
}
