package eth

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func oneEth() *big.Int {
	v, _ := new(big.Int).SetString("1000000000000000000", 10)
	return v
}

func TestToDisplay(t *testing.T) {
	t.Parallel()

	require.Equal(t, "1", Format(ToDisplay(oneEth())))
	require.Equal(t, "0", Format(ToDisplay(nil)))

	half, _ := new(big.Int).SetString("1500000000000000000", 10)
	require.Equal(t, "1.5", Format(ToDisplay(half)))
}

func TestMinNextBid(t *testing.T) {
	t.Parallel()

	require.Equal(t, "1.100", Fixed(MinNextBid(oneEth())))
	require.Equal(t, "0.000", Fixed(MinNextBid(big.NewInt(0))))

	half, _ := new(big.Int).SetString("500000000000000000", 10)
	require.Equal(t, "0.550", Fixed(MinNextBid(half)))
}

func TestParseBid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
		err   bool
	}{
		{name: "decimal", input: "1.2", want: "1.200"},
		{name: "padded", input: "  0.75 ", want: "0.750"},
		{name: "exponent", input: "1e-1", want: "0.100"},
		{name: "letters", input: "abc", err: true},
		{name: "negative", input: "-3", err: true},
		{name: "zero", input: "0", err: true},
		{name: "empty", input: "", err: true},
		{name: "nan", input: "NaN", err: true},
		{name: "infinity", input: "Inf", err: true},
		{name: "overflow", input: "1e400", err: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseBid(tt.input)
			if tt.err {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, Fixed(got))
		})
	}
}

func TestBelowMinimum(t *testing.T) {
	t.Parallel()

	minBid := MinNextBid(oneEth())

	low, err := ParseBid("1.05")
	require.NoError(t, err)
	require.True(t, low.LessThan(minBid))

	exact, err := ParseBid("1.1")
	require.NoError(t, err)
	require.False(t, exact.LessThan(minBid))
}

func TestToWei(t *testing.T) {
	t.Parallel()

	require.Equal(t, "1200000000000000000", ToWei(decimal.RequireFromString("1.2")).String())
	require.Equal(t, "1", ToWei(decimal.RequireFromString("0.0000000000000000019")).String())
}

func TestShortAddress(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0x5aAe...eAed", ShortAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"))
	require.Equal(t, "0xSynthMaster", ShortAddress("0xSynthMaster"))
	require.Equal(t, "", ShortAddress(""))
}
