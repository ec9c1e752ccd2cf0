// check-balances: queries USDC and sTSLA balances for a set of wallets
// against every configured network in parallel and prints a summary table.
//
// Run from the module root (fork node listening on 127.0.0.1:8545):
//
//	go run ./scripts/check-balances
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stslalabs/stswap/internal/amount"
	"github.com/stslalabs/stswap/internal/chain"
	"github.com/stslalabs/stswap/internal/contract"
	"github.com/stslalabs/stswap/internal/netconf"
)

// ── config ────────────────────────────────────────────────────────────────────

var wallets = []string{
	"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
	"0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
}

const rpcTimeout = 12 * time.Second

// ── types ─────────────────────────────────────────────────────────────────────

type result struct {
	network string
	wallet  string // short form
	usdc    string
	stsla   string
	err     string
}

// ── main ──────────────────────────────────────────────────────────────────────

func main() {
	reg := netconf.NewRegistry()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)

	for _, n := range reg.All() {
		if len(n.DefaultRPCs) == 0 {
			continue
		}
		rpcURL := n.DefaultRPCs[0] // use first built-in RPC

		for _, wallet := range wallets {
			wg.Add(1)
			go func(n netconf.Network, rpcURL, wallet string) {
				defer wg.Done()

				ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
				defer cancel()

				client := chain.NewClient(rpcURL)

				r := result{
					network: n.DisplayName,
					wallet:  shortAddr(wallet),
				}

				// Quick ping first — skip nodes that don't respond.
				if _, _, pingErr := client.Ping(ctx); pingErr != nil {
					r.usdc, r.stsla = "—", "—"
					r.err = "unreachable"
				} else {
					owner := common.HexToAddress(wallet)
					usdc := contract.NewERC20(client, n.Addresses.USDC, nil)
					stsla := contract.NewERC20(client, n.Addresses.STSLA, nil)

					r.usdc = readBalance(ctx, usdc, owner, 6)
					r.stsla = readBalance(ctx, stsla, owner, 18)
				}

				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}(n, rpcURL, wallet)
		}
	}

	wg.Wait()

	printTable(results)
}

func readBalance(ctx context.Context, token *contract.ERC20, owner common.Address, decimals int) string {
	bal, err := token.BalanceOf(ctx, owner)
	if err != nil {
		return "—"
	}
	return trimZeros(amount.Format(bal, decimals, decimals))
}

// ── output ────────────────────────────────────────────────────────────────────

func printTable(results []result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.network != b.network {
			return a.network < b.network
		}
		return a.wallet < b.wallet
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "NETWORK\tWALLET\tUSDC\tSTSLA\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 14)+"\t"+
		strings.Repeat("-", 14)+"\t"+
		strings.Repeat("-", 18)+"\t"+
		strings.Repeat("-", 18)+"\t"+
		strings.Repeat("-", 12))

	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.network, r.wallet, r.usdc, r.stsla, r.err)
	}
	w.Flush()
}

// ── helpers ───────────────────────────────────────────────────────────────────

func shortAddr(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

// trimZeros removes trailing zeros after decimal: "0.050000000000000000" → "0.05"
func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
