package config_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stslalabs/stswap/internal/config"
	"github.com/stslalabs/stswap/internal/netconf"
)

func TestLoadDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, netconf.NameFork, cfg.DefaultNetwork)
	assert.Equal(t, "fastest", cfg.RPCAlgorithm)
	assert.Equal(t, 4, cfg.WatchInterval)
	assert.Equal(t, 2, cfg.DisplayDecimals)
}

func TestSaveAndReloadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	cfg.DefaultWallet = "hot"
	cfg.RPCAlgorithm = "round-robin"
	cfg.WatchInterval = 12

	require.NoError(t, cfg.Save())

	reloaded, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "hot", reloaded.DefaultWallet)
	assert.Equal(t, "round-robin", reloaded.RPCAlgorithm)
	assert.Equal(t, 12, reloaded.WatchInterval)
}

func TestAddCustomRPC(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	require.NoError(t, cfg.AddRPC(netconf.NameFork, "http://10.0.0.5:8545"))

	network, err := netconf.NewRegistry().Resolve(netconf.NameFork)
	require.NoError(t, err)

	// Custom endpoints come first, defaults after.
	rpcs := cfg.RPCs(network)
	require.NotEmpty(t, rpcs)
	assert.Equal(t, "http://10.0.0.5:8545", rpcs[0])
	assert.Contains(t, rpcs, "http://127.0.0.1:8545")
}

func TestAddDuplicateRPCErrors(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)

	cfg.AddRPC(netconf.NameFork, "http://10.0.0.5:8545") //nolint:errcheck
	err := cfg.AddRPC(netconf.NameFork, "http://10.0.0.5:8545")
	assert.Error(t, err)
}

func TestRemoveRPC(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)

	require.NoError(t, cfg.AddRPC(netconf.NameFork, "http://10.0.0.5:8545"))
	require.NoError(t, cfg.RemoveRPC(netconf.NameFork, "http://10.0.0.5:8545"))

	assert.Error(t, cfg.RemoveRPC(netconf.NameFork, "http://10.0.0.5:8545"))
}

func TestRegistryAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	newBuy := common.HexToAddress("0x1111111111111111111111111111111111111111")
	cfg.AddressOverrides = map[string]netconf.AddressSet{
		netconf.NameFork: {
			USDC:              common.HexToAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"),
			STSLA:             common.HexToAddress("0x918dA91Ccbc32B7a6A0cc4eCd5987bbab6E31e6D"),
			BuySTSLA:          newBuy,
			DelegateApprovals: common.HexToAddress("0x15fd6e554874B9e70F832Ed37f231Ac5E142362f"),
		},
	}

	network, err := cfg.Registry().Resolve(netconf.NameFork)
	require.NoError(t, err)
	assert.Equal(t, newBuy, network.Addresses.BuySTSLA)

	// Overrides survive a save/reload cycle.
	require.NoError(t, cfg.Save())
	reloaded, err := config.Load(dir)
	require.NoError(t, err)
	network, err = reloaded.Registry().Resolve(netconf.NameFork)
	require.NoError(t, err)
	assert.Equal(t, newBuy, network.Addresses.BuySTSLA)
}

func TestSyncConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)

	sc, err := cfg.LoadSync()
	require.NoError(t, err)
	assert.Empty(t, sc.Source)

	sc.Source = "https://deploy.stslalabs.xyz/manifest.json"
	sc.LastSynced = "2026-09-01T10:00:00Z"
	require.NoError(t, cfg.SaveSync(sc))

	sc2, err := cfg.LoadSync()
	require.NoError(t, err)
	assert.Equal(t, sc.Source, sc2.Source)
	assert.Equal(t, sc.LastSynced, sc2.LastSynced)
}
