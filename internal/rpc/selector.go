package rpc

import "context"

// SelectBest picks the best RPC URL from the provided list using the named
// algorithm. A single-entry list (the common local-fork case) is returned
// without benchmarking.
//
// algorithm must be one of "fastest", "round-robin", or "failover". An empty
// string defaults to "fastest".
//
// Returns ErrNoHealthyRPC when the list is empty or all endpoints fail.
func SelectBest(ctx context.Context, urls []string, algorithm string) (string, error) {
	if len(urls) == 0 {
		return "", ErrNoHealthyRPC
	}
	if len(urls) == 1 {
		return urls[0], nil
	}
	algo := Algorithm(algorithm)
	if algo == "" {
		algo = AlgorithmFastest
	}
	return Best(ctx, urls, algo)
}
