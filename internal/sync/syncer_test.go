package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stslalabs/stswap/internal/config"
	"github.com/stslalabs/stswap/internal/netconf"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func fullAddressSet() netconf.AddressSet {
	return netconf.AddressSet{
		USDC:              common.HexToAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"),
		STSLA:             common.HexToAddress("0x918dA91Ccbc32B7a6A0cc4eCd5987bbab6E31e6D"),
		BuySTSLA:          common.HexToAddress("0x2222222222222222222222222222222222222222"),
		DelegateApprovals: common.HexToAddress("0x15fd6e554874B9e70F832Ed37f231Ac5E142362f"),
	}
}

func testSyncer(t *testing.T) (*Syncer, *config.Config) {
	t.Helper()
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	return New(cfg), cfg
}

func manifestServer(t *testing.T, m Manifest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(m) //nolint:errcheck
	}))
}

// ---------------------------------------------------------------------------
// Manifest struct JSON parsing
// ---------------------------------------------------------------------------

func TestManifestParseValid(t *testing.T) {
	data := `{
		"networks": {
			"homestead_fork": {
				"usdc": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
				"stsla": "0x918dA91Ccbc32B7a6A0cc4eCd5987bbab6E31e6D",
				"buy_stsla": "0x3Aa5ebB10DC797CAC828524e59A333d0A371443c",
				"delegate_approvals": "0x15fd6e554874B9e70F832Ed37f231Ac5E142362f"
			}
		}
	}`

	var m Manifest
	require.NoError(t, json.Unmarshal([]byte(data), &m))

	require.Contains(t, m.Networks, netconf.NameFork)
	set := m.Networks[netconf.NameFork]
	assert.Equal(t, common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), set.USDC)
	assert.Equal(t, common.HexToAddress("0x3Aa5ebB10DC797CAC828524e59A333d0A371443c"), set.BuySTSLA)
}

func TestManifestParseInvalid(t *testing.T) {
	var m Manifest
	err := json.Unmarshal([]byte(`{not valid json`), &m)
	require.Error(t, err)
}

func TestManifestParseEmpty(t *testing.T) {
	var m Manifest
	require.NoError(t, json.Unmarshal([]byte(`{}`), &m))
	assert.Empty(t, m.Networks)
}

// ---------------------------------------------------------------------------
// fetchManifest
// ---------------------------------------------------------------------------

func TestFetchManifestSuccess(t *testing.T) {
	m := Manifest{
		Networks: map[string]netconf.AddressSet{
			netconf.NameFork: fullAddressSet(),
		},
	}

	srv := manifestServer(t, m)
	defer srv.Close()

	s, _ := testSyncer(t)
	got, err := s.fetchManifest(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Contains(t, got.Networks, netconf.NameFork)
	assert.Equal(t, fullAddressSet(), got.Networks[netconf.NameFork])
}

func TestFetchManifestInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json}`)) //nolint:errcheck
	}))
	defer srv.Close()

	s, _ := testSyncer(t)
	_, err := s.fetchManifest(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing manifest")
}

func TestFetchManifestConnectionError(t *testing.T) {
	s, _ := testSyncer(t)
	_, err := s.fetchManifest(context.Background(), "http://127.0.0.1:19993")
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// SetSource / Run
// ---------------------------------------------------------------------------

func TestSetSourceSavesURL(t *testing.T) {
	s, cfg := testSyncer(t)

	const testURL = "https://example.com/deployments.json"
	require.NoError(t, s.SetSource(testURL))

	syncCfg, err := cfg.LoadSync()
	require.NoError(t, err)
	assert.Equal(t, testURL, syncCfg.Source)
}

func TestRunNoSourceConfigured(t *testing.T) {
	// sync.json doesn't exist, so LoadSync returns an empty Source.
	s, _ := testSyncer(t)

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sync source configured")
}

func TestRunUpdatesOverrides(t *testing.T) {
	m := Manifest{
		Networks: map[string]netconf.AddressSet{
			netconf.NameFork: fullAddressSet(),
		},
	}
	mSrv := manifestServer(t, m)
	defer mSrv.Close()

	s, cfg := testSyncer(t)
	require.NoError(t, s.SetSource(mSrv.URL))
	require.NoError(t, s.Run(context.Background()))

	// The override lands in config and flows through Registry().
	network, err := cfg.Registry().Resolve(netconf.NameFork)
	require.NoError(t, err)
	assert.Equal(t, fullAddressSet().BuySTSLA, network.Addresses.BuySTSLA)

	// And it was persisted.
	reloaded, err := config.Load(cfg.Dir())
	require.NoError(t, err)
	network, err = reloaded.Registry().Resolve(netconf.NameFork)
	require.NoError(t, err)
	assert.Equal(t, fullAddressSet().BuySTSLA, network.Addresses.BuySTSLA)
}

func TestRunRejectsIncompleteEntry(t *testing.T) {
	partial := fullAddressSet()
	partial.DelegateApprovals = common.Address{}

	mSrv := manifestServer(t, Manifest{
		Networks: map[string]netconf.AddressSet{netconf.NameFork: partial},
	})
	defer mSrv.Close()

	s, cfg := testSyncer(t)
	require.NoError(t, s.SetSource(mSrv.URL))

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delegate_approvals")

	// Nothing was applied.
	assert.Empty(t, cfg.AddressOverrides)
}

func TestRunUpdatesLastSynced(t *testing.T) {
	// Empty manifest still updates LastSynced.
	mSrv := manifestServer(t, Manifest{Networks: map[string]netconf.AddressSet{}})
	defer mSrv.Close()

	s, cfg := testSyncer(t)
	require.NoError(t, s.SetSource(mSrv.URL))

	before := time.Now().Add(-time.Second)
	require.NoError(t, s.Run(context.Background()))

	syncCfg, err := cfg.LoadSync()
	require.NoError(t, err)
	require.NotEmpty(t, syncCfg.LastSynced)

	ts, err := time.Parse(time.RFC3339, syncCfg.LastSynced)
	require.NoError(t, err)
	assert.True(t, ts.After(before), "LastSynced should be after test start")
}

// ---------------------------------------------------------------------------
// Watch
// ---------------------------------------------------------------------------

func TestWatchCancellation(t *testing.T) {
	// Watch should return nil when the context is cancelled.
	callCount := 0
	mSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		json.NewEncoder(w).Encode(Manifest{Networks: map[string]netconf.AddressSet{}}) //nolint:errcheck
	}))
	defer mSrv.Close()

	s, _ := testSyncer(t)
	require.NoError(t, s.SetSource(mSrv.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		// Use a very long tick so it never fires during the test.
		done <- s.Watch(ctx, 30*time.Second)
	}()

	select {
	case err := <-done:
		assert.NoError(t, err, "Watch should return nil on context cancellation")
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after context deadline")
	}

	// At least one initial Run should have been triggered.
	assert.GreaterOrEqual(t, callCount, 1)
}
