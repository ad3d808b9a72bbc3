package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAmountCommand(t *testing.T) {
	tests := []struct {
		command string
		amount  string
		symbol  string
	}{
		{"1", "1", ""},
		{"1.5 USDC", "1.5", "USDC"},
		{"  move 0.25   usdc ", "0.25", "USDC"},
		{"100", "100", ""},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			req, err := ParseAmountCommand(tt.command)
			require.NoError(t, err)
			require.Equal(t, tt.amount, req.Amount)
			require.Equal(t, tt.symbol, req.Symbol)
		})
	}
}

func TestParseAmountCommandInvalid(t *testing.T) {
	for _, command := range []string{"", "USDC", "1.", "-1", "1 USDC to SOL", "1,5"} {
		_, err := ParseAmountCommand(command)
		require.Error(t, err, command)
	}
}

func TestResolveAmount(t *testing.T) {
	amount, err := ResolveAmount("1.5 USDC", "usdc", 6)
	require.NoError(t, err)
	require.Equal(t, "1500000", amount.MinorUnits())

	amount, err = ResolveAmount("1", "USDC", 6)
	require.NoError(t, err)
	require.Equal(t, "1.0", amount.String())

	_, err = ResolveAmount("1 SOL", "USDC", 6)
	require.Error(t, err)

	_, err = ResolveAmount("0.0000001", "USDC", 6)
	require.Error(t, err)

	_, err = ResolveAmount("0", "USDC", 6)
	require.Error(t, err)
}
