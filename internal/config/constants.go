package config

import "time"

// Timeout constants used across cmd packages.
const (
	RPCSelectTimeout = 10 * time.Second // RPC benchmark / selection
	TxConfirmTimeout = 3 * time.Minute  // transaction confirmation wait
)
