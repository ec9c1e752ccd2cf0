package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/stslalabs/stswap/internal/netconf"
)

const (
	defaultNetwork  = netconf.NameFork
	defaultAlgo     = "fastest"
	defaultInterval = 4
	defaultDecimals = 2

	configFile  = "config.json"
	walletsFile = "wallets.json"
	syncFile    = "sync.json"
)

// Load reads config from dir (or creates defaults). dir defaults to ~/.stswap.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".stswap")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	if cfg.DisplayDecimals <= 0 {
		cfg.DisplayDecimals = defaultDecimals
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// AddRPC adds a custom RPC URL for a network.
func (c *Config) AddRPC(network, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[network], url) {
		return fmt.Errorf("RPC %s already exists for network %s", url, network)
	}
	c.CustomRPCs[network] = append(c.CustomRPCs[network], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a network.
func (c *Config) RemoveRPC(network, url string) error {
	rpcs := c.CustomRPCs[network]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for network %s", url, network)
	}
	c.CustomRPCs[network] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// RPCs returns the endpoints to try for a network: custom RPCs first,
// then the network's defaults.
func (c *Config) RPCs(network *netconf.Network) []string {
	custom := c.CustomRPCs[network.Name]
	out := make([]string, 0, len(custom)+len(network.DefaultRPCs))
	out = append(out, custom...)
	out = append(out, network.DefaultRPCs...)
	return out
}

// Registry builds the network registry with any synced address overrides
// applied.
func (c *Config) Registry() *netconf.Registry {
	r := netconf.NewRegistry()
	if len(c.AddressOverrides) > 0 {
		r.ApplyOverrides(c.AddressOverrides)
	}
	return r
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath returns the wallet store file path.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// LoadSync reads sync.json.
func (c *Config) LoadSync() (*SyncConfig, error) {
	return loadJSON[SyncConfig](filepath.Join(c.configDir, syncFile))
}

// SaveSync writes sync.json.
func (c *Config) SaveSync(sc *SyncConfig) error {
	return saveJSON(filepath.Join(c.configDir, syncFile), sc)
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		DefaultNetwork:  defaultNetwork,
		RPCAlgorithm:    defaultAlgo,
		WatchInterval:   defaultInterval,
		DisplayDecimals: defaultDecimals,
		CustomRPCs:      make(map[string][]string),
		configDir:       dir,
	}
}

func loadJSON[T any](path string) (*T, error) {
	var zero T
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &zero, nil
	}
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
