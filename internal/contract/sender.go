package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/stslalabs/stswap/internal/chain"
	"github.com/stslalabs/stswap/internal/wallet"
)

// ErrReadOnly is returned by write methods when the handle was built
// without a signing sender.
var ErrReadOnly = errors.New("contract handle is read-only: no signing wallet")

// fallbackGasLimit is used when gas estimation fails; swap transactions
// touch several Synthetix contracts and need headroom.
const fallbackGasLimit = 600_000

// Sender signs and broadcasts contract write transactions.
type Sender struct {
	client  *chain.Client
	signer  *wallet.Signer
	chainID *big.Int
}

// NewSender creates a Sender bound to one chain and signing wallet.
func NewSender(client *chain.Client, signer *wallet.Signer, chainID *big.Int) *Sender {
	return &Sender{client: client, signer: signer, chainID: chainID}
}

// From returns the sending account address.
func (s *Sender) From() common.Address { return s.signer.Address() }

// Send builds a dynamic-fee transaction for calldata against to, signs it
// and broadcasts it. Returns the transaction hash.
func (s *Sender) Send(ctx context.Context, to common.Address, calldata []byte) (string, error) {
	from := s.signer.Address()

	gas, err := s.client.EstimateGas(ctx, from, to, calldata)
	if err != nil {
		gas = fallbackGasLimit
	}

	gasPrice, err := s.client.GasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("getting gas price: %w", err)
	}

	nonce, err := s.client.PendingNonce(ctx, from)
	if err != nil {
		return "", fmt.Errorf("getting nonce: %w", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gas,
		To:        &to,
		Value:     big.NewInt(0),
		Data:      calldata,
	})

	raw, err := s.signer.SignTx(tx, s.chainID)
	if err != nil {
		return "", fmt.Errorf("signing transaction: %w", err)
	}

	hash, err := s.client.SendRawTransaction(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("broadcasting transaction: %w", err)
	}
	return hash, nil
}

// Confirmer waits for broadcast transactions to be mined.
type Confirmer struct {
	client  *chain.Client
	timeout time.Duration
}

// NewConfirmer creates a Confirmer with the given per-transaction timeout.
func NewConfirmer(client *chain.Client, timeout time.Duration) *Confirmer {
	return &Confirmer{client: client, timeout: timeout}
}

// WaitMined blocks until the transaction is mined, reverts or times out.
func (c *Confirmer) WaitMined(ctx context.Context, hash string) error {
	_, err := c.client.WaitForReceipt(ctx, hash, c.timeout)
	return err
}
