// Package eth converts between on-chain integer wei and the ETH amounts shown
// to people. Conversion happens only at formatting boundaries.
package eth

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const Decimals int32 = 18

var ErrInvalidAmount = errors.New("invalid bid amount")

// MinIncrement is the ratio a new bid must reach over the current highest bid.
var MinIncrement = decimal.RequireFromString("1.10")

func ToDisplay(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -Decimals)
}

// ToWei truncates anything below one wei.
func ToWei(amount decimal.Decimal) *big.Int {
	return amount.Shift(Decimals).BigInt()
}

func MinNextBid(highestWei *big.Int) decimal.Decimal {
	return ToDisplay(highestWei).Mul(MinIncrement)
}

// ParseBid reads a bid typed by a user in ETH. Anything other than a finite
// number greater than zero is rejected.
func ParseBid(text string) (decimal.Decimal, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	return decimal.NewFromFloat(f), nil
}

// Format renders an amount with trailing zeros trimmed, e.g. "1.5".
func Format(amount decimal.Decimal) string {
	return amount.String()
}

// Fixed renders an amount with exactly three decimals, e.g. "1.100".
func Fixed(amount decimal.Decimal) string {
	return amount.StringFixed(3)
}

// ShortAddress abbreviates hex addresses to 0x1234...abcd. Display names are
// returned unchanged.
func ShortAddress(s string) string {
	if !common.IsHexAddress(s) {
		return s
	}
	hex := common.HexToAddress(s).Hex()
	return hex[:6] + "..." + hex[len(hex)-4:]
}
