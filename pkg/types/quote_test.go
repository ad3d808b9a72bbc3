package types

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func TestDecodeEVMTransactionRequest(t *testing.T) {
	raw := []byte(`{
		"to": "0x1231DEB6f5749EF6cE6943a275A1D3E7486F4EaE",
		"from": "0x552008c0f6870c2f77e5cC1d2eb9bdff03e30Ea0",
		"chainId": 8453,
		"value": "0x0",
		"data": "0xabcdef",
		"gasPrice": "0x5f5e100",
		"gasLimit": "250000"
	}`)

	req, err := DecodeEVMTransactionRequest(raw)
	require.NoError(t, err)
	require.Equal(t, "0x1231DEB6f5749EF6cE6943a275A1D3E7486F4EaE", req.To)
	require.Equal(t, uint64(8453), req.ChainID.Int().Uint64())
	require.Equal(t, "0", req.Value.String())
	require.Equal(t, "100000000", req.GasPrice.String())
	require.Equal(t, uint64(250000), req.GasLimit.Int().Uint64())
}

func TestDecodeEVMTransactionRequestMissingFields(t *testing.T) {
	_, err := DecodeEVMTransactionRequest(nil)
	require.Error(t, err)

	_, err = DecodeEVMTransactionRequest([]byte(`{"to": "0x1", "gasPrice": "1"}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "gasLimit")

	_, err = DecodeEVMTransactionRequest([]byte(`{"to": "0x1", "gasPrice": "zz", "gasLimit": "1"}`))
	require.Error(t, err)
}

func TestDecodeSolanaTransactionRequest(t *testing.T) {
	req, err := DecodeSolanaTransactionRequest([]byte(`{"data": "AQID"}`))
	require.NoError(t, err)
	require.Equal(t, "AQID", req.Data)

	_, err = DecodeSolanaTransactionRequest([]byte(`{}`))
	require.Error(t, err)
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"0x10", "16", false},
		{"0X10", "16", false},
		{"010", "10", false},
		{"12345", "12345", false},
		{"0x", "", true},
		{"-5", "", true},
		{"1.5", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			q, err := ParseQuantity(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, q.String())
		})
	}
}

func TestQuoteKeepsTransactionRequestBytes(t *testing.T) {
	raw := []byte(`{"action":{"fromChainId":8453,"fromAmount":"1000000"},"transactionRequest":{"data":"AQID","extra":[1,2]}}`)

	var quote Quote
	require.NoError(t, json.Unmarshal(raw, &quote))
	require.Equal(t, uint64(8453), quote.Action.FromChainID)
	require.JSONEq(t, `{"data":"AQID","extra":[1,2]}`, string(quote.TransactionRequest))
}

func TestStatusIsFinal(t *testing.T) {
	require.True(t, (&StatusResponse{Status: "DONE"}).IsFinal())
	require.True(t, (&StatusResponse{Status: "failed"}).IsFinal())
	require.False(t, (&StatusResponse{Status: "PENDING"}).IsFinal())
	require.False(t, (&StatusResponse{Status: "NOT_FOUND"}).IsFinal())
}
