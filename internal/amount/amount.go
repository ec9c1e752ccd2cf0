package amount

import (
	"fmt"
	"math/big"
	"strings"
)

// MaxUint256 is the largest representable ERC-20 amount, used for the
// infinite-approval pattern so future purchases skip the approval prompt.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Format renders a raw token amount as a decimal string.
//
// raw is divided by 10^scaleDecimals, then the fractional part is padded
// with zeros or hard-truncated (never rounded) to exactly displayDecimals
// digits. No thousands separators. Negative inputs are passed through with
// their sign; callers never produce them.
func Format(raw *big.Int, scaleDecimals, displayDecimals int) string {
	sign := ""
	abs := new(big.Int).Set(raw)
	if abs.Sign() < 0 {
		sign = "-"
		abs.Neg(abs)
	}

	scale := pow10(scaleDecimals)
	whole, frac := new(big.Int).QuoRem(abs, scale, new(big.Int))

	if displayDecimals == 0 {
		return sign + whole.String()
	}

	// Left-pad the remainder to the full scale width, then fit to the
	// display width.
	fracStr := frac.String()
	if pad := scaleDecimals - len(fracStr); pad > 0 {
		fracStr = strings.Repeat("0", pad) + fracStr
	}
	if scaleDecimals == 0 {
		fracStr = ""
	}
	if len(fracStr) < displayDecimals {
		fracStr += strings.Repeat("0", displayDecimals-len(fracStr))
	} else {
		fracStr = fracStr[:displayDecimals]
	}

	return sign + whole.String() + "." + fracStr
}

// ParseUnits converts a human-entered decimal string into a raw integer
// amount scaled by decimals. Excess fractional digits are rejected rather
// than silently truncated: the user typed a precision the token cannot hold.
func ParseUnits(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > decimals {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", s, decimals)
	}

	digits := whole + frac + strings.Repeat("0", decimals-len(frac))
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return n, nil
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
