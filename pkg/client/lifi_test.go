package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"usdc-mover/pkg/types"
)

const quoteBody = `{
  "id": "q-1",
  "type": "lifi",
  "tool": "mayan",
  "action": {
    "fromChainId": 8453,
    "toChainId": 1151111081099710,
    "fromToken": {"address": "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", "chainId": 8453, "symbol": "USDC", "decimals": 6},
    "toToken": {"address": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "chainId": 1151111081099710, "symbol": "USDC", "decimals": 6},
    "fromAmount": "1000000",
    "fromAddress": "0x1111111111111111111111111111111111111111",
    "toAddress": "So11111111111111111111111111111111111111112"
  },
  "estimate": {"approvalAddress": "0x2222222222222222222222222222222222222222", "toAmount": "998000"},
  "transactionRequest": {"to": "0x2222222222222222222222222222222222222222", "data": "0x", "value": "0x0", "gasPrice": "0x1", "gasLimit": "0x5208", "chainId": 8453}
}`

func TestGetQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/quote", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "BAS", q.Get("fromChain"))
		require.Equal(t, "SOL", q.Get("toChain"))
		require.Equal(t, "1000000", q.Get("fromAmount"))
		require.Equal(t, "key", r.Header.Get("x-lifi-api-key"))
		_, _ = w.Write([]byte(quoteBody))
	}))
	defer srv.Close()

	c := NewLiFiClient(srv.URL+"/", "key")
	quote, err := c.GetQuote(context.Background(), types.QuoteRequest{
		FromChain:   "BAS",
		ToChain:     "SOL",
		FromToken:   "USDC",
		ToToken:     "USDC",
		FromAmount:  "1000000",
		FromAddress: "0x1111111111111111111111111111111111111111",
		ToAddress:   "So11111111111111111111111111111111111111112",
	})
	require.NoError(t, err)
	require.Equal(t, uint64(8453), quote.Action.FromChainID)
	require.Equal(t, "USDC", quote.Action.ToToken.Symbol)
	require.Equal(t, "0x2222222222222222222222222222222222222222", quote.Estimate.ApprovalAddress)

	req, err := types.DecodeEVMTransactionRequest(quote.TransactionRequest)
	require.NoError(t, err)
	require.Equal(t, "21000", req.GasLimit.String())
}

func TestGetQuoteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code": 1002, "message": "No available quotes for the requested transfer"}`))
	}))
	defer srv.Close()

	_, err := NewLiFiClient(srv.URL, "").GetQuote(context.Background(), types.QuoteRequest{})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.Equal(t, 1002, apiErr.Code)
	require.Contains(t, err.Error(), "No available quotes")
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewLiFiClient(srv.URL, "").GetTokens(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "bad gateway", apiErr.Message)
}

func TestGetStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/status", r.URL.Path)
		require.Equal(t, "0xabc", r.URL.Query().Get("txHash"))
		require.Equal(t, "SOL", r.URL.Query().Get("fromChain"))
		require.False(t, r.URL.Query().Has("bridge"))
		_, _ = w.Write([]byte(`{"status": "DONE", "substatus": "COMPLETED", "sending": {"txHash": "0xabc", "chainId": 1151111081099710}}`))
	}))
	defer srv.Close()

	status, err := NewLiFiClient(srv.URL, "").GetStatus(context.Background(), types.StatusRequest{TxHash: "0xabc", FromChain: "SOL"})
	require.NoError(t, err)
	require.True(t, status.IsFinal())
	require.Equal(t, "COMPLETED", status.Substatus)
	require.Equal(t, "0xabc", status.Sending.TxHash)

	_, err = NewLiFiClient(srv.URL, "").GetStatus(context.Background(), types.StatusRequest{})
	require.Error(t, err)
}

func TestFindTokenOnChain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/tokens", r.URL.Path)
		require.Equal(t, "BAS", r.URL.Query().Get("chains"))
		_, _ = w.Write([]byte(`{"tokens": {"8453": [
			{"address": "0x0000000000000000000000000000000000000000", "chainId": 8453, "symbol": "ETH", "decimals": 18},
			{"address": "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", "chainId": 8453, "symbol": "USDC", "decimals": 6}
		]}}`))
	}))
	defer srv.Close()

	c := NewLiFiClient(srv.URL, "")
	token, err := c.FindTokenOnChain(context.Background(), "usdc", "BAS")
	require.NoError(t, err)
	require.Equal(t, uint8(6), token.Decimals)

	_, err = c.FindTokenOnChain(context.Background(), "DAI", "BAS")
	require.Error(t, err)
}

func TestRequestsEndWithContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewLiFiClient(srv.URL, "")
	require.Zero(t, c.httpClient.Timeout)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.GetStatus(ctx, types.StatusRequest{TxHash: "0xabc"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
