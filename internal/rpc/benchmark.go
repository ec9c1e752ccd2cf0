package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/stslalabs/stswap/internal/chain"
)

// BenchmarkResult holds the result of a single endpoint benchmark.
type BenchmarkResult struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Err         error
}

// Benchmark pings all RPC URLs in parallel and returns results.
func Benchmark(ctx context.Context, urls []string) []BenchmarkResult {
	results := make([]BenchmarkResult, len(urls))
	var wg sync.WaitGroup

	for i, url := range urls {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			c := chain.NewClient(u)
			latency, block, err := c.Ping(ctx)
			results[idx] = BenchmarkResult{
				URL:         u,
				Latency:     latency,
				BlockNumber: block,
				Err:         err,
			}
		}(i, url)
	}

	wg.Wait()
	return results
}

// ResultsToEndpoints converts benchmark results to picker Endpoints.
// All returned endpoints have Checked: true since they have been actively tested.
func ResultsToEndpoints(results []BenchmarkResult) []Endpoint {
	endpoints := make([]Endpoint, 0, len(results))
	for _, r := range results {
		endpoints = append(endpoints, Endpoint{
			URL:         r.URL,
			Latency:     r.Latency,
			BlockNumber: r.BlockNumber,
			Healthy:     r.Err == nil,
			Checked:     true,
		})
	}
	return endpoints
}

// Best runs a benchmark and returns the best endpoint URL using the given algorithm.
func Best(ctx context.Context, urls []string, algo Algorithm) (string, error) {
	if len(urls) == 1 {
		return urls[0], nil
	}

	results := Benchmark(ctx, urls)
	endpoints := ResultsToEndpoints(results)

	picker := NewPicker(algo)
	winner, err := picker.Pick(endpoints)
	if err != nil {
		return "", err
	}
	return winner.URL, nil
}
