package config

import "github.com/stslalabs/stswap/internal/netconf"

// Config holds all stswap configuration.
type Config struct {
	DefaultNetwork  string              `json:"default_network"`
	DefaultWallet   string              `json:"default_wallet"`
	RPCAlgorithm    string              `json:"rpc_algorithm"` // "fastest" | "round-robin" | "failover"
	WatchInterval   int                 `json:"watch_interval"` // seconds
	DisplayDecimals int                 `json:"display_decimals"`
	CustomRPCs      map[string][]string `json:"custom_rpcs"`

	// AddressOverrides repoints a network's contract addresses, e.g. after
	// the local fork is redeployed. Populated by `stswap sync`.
	AddressOverrides map[string]netconf.AddressSet `json:"address_overrides,omitempty"`

	// internal: config dir path used for Save()
	configDir string
}

// SyncConfig is the structure of sync.json.
type SyncConfig struct {
	Source     string `json:"source"`
	LastSynced string `json:"last_synced"`
}
