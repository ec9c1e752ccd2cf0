package wallet

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTx() *types.Transaction {
	to := common.HexToAddress("0x3Aa5ebB10DC797CAC828524e59A333d0A371443c")
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(1),
		Nonce:     0,
		GasTipCap: big.NewInt(1_000_000_000),
		GasFeeCap: big.NewInt(2_000_000_000),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(0),
	})
}

func TestSignTx(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, err := ks.Store("hot", testKey)
	require.NoError(t, err)

	s := NewSigner(&Wallet{
		Name:    "hot",
		Address: testAddr,
		Type:    TypeSigning,
		KeyRef:  ref,
	}, ks)

	raw, err := s.SignTx(testTx(), big.NewInt(1))
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	// Recover the sender from the signed bytes.
	var signed types.Transaction
	require.NoError(t, signed.UnmarshalBinary(raw))
	from, err := types.Sender(types.NewLondonSigner(big.NewInt(1)), &signed)
	require.NoError(t, err)
	assert.Equal(t, testAddr, from.Hex())
}

func TestSignTxWatchOnly(t *testing.T) {
	s := NewSigner(&Wallet{
		Name:    "watcher",
		Address: testAddr,
		Type:    TypeWatchOnly,
	}, NewInMemoryKeystore())

	_, err := s.SignTx(testTx(), big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch-only")
}

func TestSignTxMissingKey(t *testing.T) {
	s := NewSigner(&Wallet{
		Name:    "hot",
		Address: testAddr,
		Type:    TypeSigning,
		KeyRef:  "stswap.hot",
	}, NewInMemoryKeystore())

	_, err := s.SignTx(testTx(), big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieving key")
}

func TestSignerAddress(t *testing.T) {
	s := NewSigner(&Wallet{Address: testAddr}, NewInMemoryKeystore())
	assert.Equal(t, testAddr, s.Address().Hex())
}
