package contract

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// Selector computes the 4-byte function selector for a canonical signature,
// e.g. "approve(address,uint256)".
func Selector(signature string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return h.Sum(nil)[:4]
}

// pack builds calldata: selector + 32-byte argument words.
func pack(signature string, words ...[]byte) []byte {
	out := make([]byte, 0, 4+32*len(words))
	out = append(out, Selector(signature)...)
	for _, w := range words {
		out = append(out, w...)
	}
	return out
}

// addressWord left-pads an address to a 32-byte word.
func addressWord(a common.Address) []byte {
	w := make([]byte, 32)
	copy(w[12:], a.Bytes())
	return w
}

// uintWord left-pads a non-negative integer to a 32-byte word.
func uintWord(n *big.Int) []byte {
	w := make([]byte, 32)
	b := n.Bytes()
	copy(w[32-len(b):], b)
	return w
}

// boolWord encodes a bool as a 32-byte word.
func boolWord(b bool) []byte {
	w := make([]byte, 32)
	if b {
		w[31] = 1
	}
	return w
}

// unpackBigInt decodes a single uint256 return word.
func unpackBigInt(data []byte) (*big.Int, error) {
	if len(data) < 32 {
		return nil, fmt.Errorf("short return data: %d bytes", len(data))
	}
	return new(big.Int).SetBytes(data[:32]), nil
}

// unpackBool decodes a single bool return word.
func unpackBool(data []byte) (bool, error) {
	n, err := unpackBigInt(data)
	if err != nil {
		return false, err
	}
	return n.Sign() != 0, nil
}
