package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/stslalabs/stswap/internal/config"
	"github.com/stslalabs/stswap/internal/netconf"
)

// Manifest is the structure of a deployments.json manifest: contract address
// sets keyed by network name. Published by the deploy pipeline each time the
// fork is redeployed.
type Manifest struct {
	Networks map[string]netconf.AddressSet `json:"networks"`
}

// Syncer fetches the deployments manifest and updates the configured
// address overrides.
type Syncer struct {
	cfg    *config.Config
	client *http.Client
}

// New creates a new Syncer.
func New(cfg *config.Config) *Syncer {
	return &Syncer{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Run fetches the manifest from the configured source and updates the
// address overrides. Networks absent from the manifest keep their current
// addresses; incomplete manifest entries are rejected so an override can
// never leave a partial address set behind.
func (s *Syncer) Run(ctx context.Context) error {
	syncCfg, err := s.cfg.LoadSync()
	if err != nil {
		return fmt.Errorf("loading sync config: %w", err)
	}

	if syncCfg.Source == "" {
		return fmt.Errorf("no sync source configured; run: stswap sync set-source <url>")
	}

	manifest, err := s.fetchManifest(ctx, syncCfg.Source)
	if err != nil {
		return fmt.Errorf("fetching manifest: %w", err)
	}

	for network, addrs := range manifest.Networks {
		if err := validateAddressSet(addrs); err != nil {
			return fmt.Errorf("manifest entry for %s: %w", network, err)
		}
	}

	if len(manifest.Networks) > 0 {
		if s.cfg.AddressOverrides == nil {
			s.cfg.AddressOverrides = make(map[string]netconf.AddressSet)
		}
		for network, addrs := range manifest.Networks {
			s.cfg.AddressOverrides[network] = addrs
		}
		if err := s.cfg.Save(); err != nil {
			return fmt.Errorf("saving overrides: %w", err)
		}
	}

	syncCfg.LastSynced = time.Now().UTC().Format(time.RFC3339)
	return s.cfg.SaveSync(syncCfg)
}

// SetSource sets the remote manifest URL.
func (s *Syncer) SetSource(url string) error {
	syncCfg, err := s.cfg.LoadSync()
	if err != nil {
		return err
	}
	syncCfg.Source = url
	return s.cfg.SaveSync(syncCfg)
}

// Watch runs Syncer.Run on a ticker until ctx is cancelled.
func (s *Syncer) Watch(ctx context.Context, interval time.Duration) error {
	if err := s.Run(ctx); err != nil {
		return err
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Run(ctx) //nolint:errcheck
		}
	}
}

func (s *Syncer) fetchManifest(ctx context.Context, url string) (*Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

func validateAddressSet(a netconf.AddressSet) error {
	zero := netconf.AddressSet{}
	switch {
	case a.USDC == zero.USDC:
		return fmt.Errorf("missing usdc address")
	case a.STSLA == zero.STSLA:
		return fmt.Errorf("missing stsla address")
	case a.BuySTSLA == zero.BuySTSLA:
		return fmt.Errorf("missing buy_stsla address")
	case a.DelegateApprovals == zero.DelegateApprovals:
		return fmt.Errorf("missing delegate_approvals address")
	}
	return nil
}
