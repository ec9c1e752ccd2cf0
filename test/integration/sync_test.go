package integration_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stslalabs/stswap/internal/config"
	"github.com/stslalabs/stswap/internal/netconf"
	csync "github.com/stslalabs/stswap/internal/sync"
	"github.com/stslalabs/stswap/test/fixtures"
)

func TestSyncAppliesFixtureManifest(t *testing.T) {
	manifest := fixtures.LoadManifest(t, "deployments.json")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(manifest) //nolint:errcheck
	}))
	defer server.Close()

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	syncer := csync.New(cfg)
	require.NoError(t, syncer.SetSource(server.URL))
	require.NoError(t, syncer.Run(context.Background()))

	// The overridden addresses shadow the built-in table.
	net, err := cfg.Registry().Resolve(netconf.NameFork)
	require.NoError(t, err)
	assert.Equal(t,
		common.HexToAddress("0x1111111111111111111111111111111111111111"),
		net.Addresses.BuySTSLA)
	assert.Equal(t,
		common.HexToAddress("0x2222222222222222222222222222222222222222"),
		net.Addresses.DelegateApprovals)

	// And they survive a config reload.
	reloaded, err := config.Load(cfg.Dir())
	require.NoError(t, err)
	net, err = reloaded.Registry().Resolve(netconf.NameFork)
	require.NoError(t, err)
	assert.Equal(t,
		common.HexToAddress("0x1111111111111111111111111111111111111111"),
		net.Addresses.BuySTSLA)
}
