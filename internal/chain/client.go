package chain

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Client is a minimal JSON-RPC client for an EVM endpoint. It is the only
// piece of the repository that talks to the network; everything above it
// (contract bindings, session, purchase flow) goes through these methods.
type Client struct {
	url    string
	client *http.Client
}

// NewClient creates a client pointed at url.
func NewClient(url string) *Client {
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// URL returns the endpoint this client talks to.
func (c *Client) URL() string { return c.url }

// ChainID returns the chain's numeric ID.
func (c *Client) ChainID(ctx context.Context) (int64, error) {
	n, err := c.callBigInt(ctx, "eth_chainId")
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}

// BlockNumber returns the latest block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	n, err := c.callBigInt(ctx, "eth_blockNumber")
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Accounts returns the endpoint's unlocked accounts. A plain public RPC
// returns an empty list; a local fork node (or a wallet-backed RPC bridge)
// returns the accounts it can sign for.
func (c *Client) Accounts(ctx context.Context) ([]common.Address, error) {
	result, err := c.call(ctx, "eth_accounts")
	if err != nil {
		return nil, err
	}
	var hexAddrs []string
	if err := json.Unmarshal(result, &hexAddrs); err != nil {
		return nil, fmt.Errorf("parsing accounts: %w", err)
	}
	addrs := make([]common.Address, len(hexAddrs))
	for i, h := range hexAddrs {
		addrs[i] = common.HexToAddress(h)
	}
	return addrs, nil
}

// CallContract executes a read-only contract call and returns the raw
// return data.
func (c *Client) CallContract(ctx context.Context, to common.Address, calldata []byte) ([]byte, error) {
	result, err := c.call(ctx, "eth_call", map[string]string{
		"to":   to.Hex(),
		"data": "0x" + hex.EncodeToString(calldata),
	}, "latest")
	if err != nil {
		return nil, err
	}
	var hexStr string
	if err := json.Unmarshal(result, &hexStr); err != nil {
		return nil, fmt.Errorf("unexpected eth_call result: %w", err)
	}
	data, err := hex.DecodeString(strings.TrimPrefix(hexStr, "0x"))
	if err != nil {
		return nil, fmt.Errorf("decoding eth_call result: %w", err)
	}
	return data, nil
}

// EstimateGas estimates gas for a contract call from the given sender.
func (c *Client) EstimateGas(ctx context.Context, from, to common.Address, calldata []byte) (uint64, error) {
	params := map[string]string{
		"from": from.Hex(),
		"to":   to.Hex(),
	}
	if len(calldata) > 0 {
		params["data"] = "0x" + hex.EncodeToString(calldata)
	}
	n, err := c.callBigInt(ctx, "eth_estimateGas", params, "latest")
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// GasPrice returns the current gas price.
func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	return c.callBigInt(ctx, "eth_gasPrice")
}

// PendingNonce returns the transaction count including queued transactions.
func (c *Client) PendingNonce(ctx context.Context, addr common.Address) (uint64, error) {
	n, err := c.callBigInt(ctx, "eth_getTransactionCount", addr.Hex(), "pending")
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// SendRawTransaction broadcasts a signed raw transaction and returns its hash.
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (string, error) {
	result, err := c.call(ctx, "eth_sendRawTransaction", "0x"+hex.EncodeToString(raw))
	if err != nil {
		return "", err
	}
	var hash string
	if err := json.Unmarshal(result, &hash); err != nil {
		return "", fmt.Errorf("unexpected broadcast result: %w", err)
	}
	return hash, nil
}

// Receipt holds the on-chain receipt of a mined transaction.
type Receipt struct {
	Hash        string
	Status      uint64 // 1 = success, 0 = reverted
	BlockNumber uint64
	GasUsed     uint64
}

// TransactionReceipt fetches the receipt for hash.
// Returns nil, nil while the transaction is still pending.
func (c *Client) TransactionReceipt(ctx context.Context, hash string) (*Receipt, error) {
	result, err := c.call(ctx, "eth_getTransactionReceipt", hash)
	if err != nil {
		return nil, err
	}
	if string(result) == "null" {
		return nil, nil // still pending
	}

	var r struct {
		Status      string `json:"status"`
		BlockNumber string `json:"blockNumber"`
		GasUsed     string `json:"gasUsed"`
	}
	if err := json.Unmarshal(result, &r); err != nil {
		return nil, fmt.Errorf("parsing receipt: %w", err)
	}

	receipt := &Receipt{Hash: hash}
	if s, ok := parseBigHex(r.Status); ok {
		receipt.Status = s.Uint64()
	}
	if bn, ok := parseBigHex(r.BlockNumber); ok {
		receipt.BlockNumber = bn.Uint64()
	}
	if gu, ok := parseBigHex(r.GasUsed); ok {
		receipt.GasUsed = gu.Uint64()
	}
	return receipt, nil
}

// WaitForReceipt polls until the transaction is mined or timeout expires.
// Returns an error if the transaction reverted (Status == 0).
func (c *Client) WaitForReceipt(ctx context.Context, hash string, timeout time.Duration) (*Receipt, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		receipt, err := c.TransactionReceipt(ctx, hash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			if receipt.Status == 0 {
				return receipt, fmt.Errorf("transaction reverted (hash: %s)", hash)
			}
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(receiptPollInterval):
		}
	}
	return nil, fmt.Errorf("transaction %s not mined within %s", hash, timeout)
}

const receiptPollInterval = 2 * time.Second

// Ping tests the endpoint and returns latency + block number.
func (c *Client) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	n, err := c.callBigInt(ctx, "eth_blockNumber")
	latency = time.Since(start)
	if err != nil {
		return latency, 0, err
	}
	return latency, n.Uint64(), nil
}

// --- internal JSON-RPC plumbing ---

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	if params == nil {
		params = []interface{}{}
	}
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("RPC error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}

// callBigInt runs a call whose result is a single hex-quantity string.
func (c *Client) callBigInt(ctx context.Context, method string, params ...interface{}) (*big.Int, error) {
	result, err := c.call(ctx, method, params...)
	if err != nil {
		return nil, err
	}
	var hexStr string
	if err := json.Unmarshal(result, &hexStr); err != nil {
		return nil, fmt.Errorf("unexpected %s result: %w", method, err)
	}
	n, ok := parseBigHex(hexStr)
	if !ok {
		return nil, fmt.Errorf("could not parse %s result: %s", method, hexStr)
	}
	return n, nil
}

func parseBigHex(s string) (*big.Int, bool) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return big.NewInt(0), true
	}
	return new(big.Int).SetString(s, 16)
}

// ExtractRevertReason pulls the revert reason out of an RPC error message,
// falling back to the message itself.
func ExtractRevertReason(errMsg string) string {
	if idx := strings.Index(errMsg, "execution reverted:"); idx >= 0 {
		return strings.TrimSpace(errMsg[idx:])
	}
	if idx := strings.Index(errMsg, "revert"); idx >= 0 {
		return strings.TrimSpace(errMsg[idx:])
	}
	return errMsg
}
