package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"

	"usdc-mover/pkg/types"
)

const defaultBaseURL = "https://li.quest"

// APIError is a non-2xx response from the bridge API
type APIError struct {
	StatusCode int
	Code       int    `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("bridge API returned status code %d", e.StatusCode)
	}
	return fmt.Sprintf("bridge API returned status code %d: %s", e.StatusCode, e.Message)
}

// LiFiClient talks to the LI.FI bridge aggregation API
type LiFiClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewLiFiClient creates a new bridge API client. An empty baseURL selects
// the public endpoint; apiKey is optional.
func NewLiFiClient(baseURL, apiKey string) *LiFiClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &LiFiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{}, // calls are bounded by the caller's context only
	}
}

// GetQuote requests a route with a ready-to-sign transaction
func (c *LiFiClient) GetQuote(ctx context.Context, req types.QuoteRequest) (*types.Quote, error) {
	query := url.Values{}
	query.Set("fromChain", req.FromChain)
	query.Set("toChain", req.ToChain)
	query.Set("fromToken", req.FromToken)
	query.Set("toToken", req.ToToken)
	query.Set("fromAmount", req.FromAmount)
	query.Set("fromAddress", req.FromAddress)
	query.Set("toAddress", req.ToAddress)

	body, err := c.makeRequest(ctx, "/v1/quote", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	var quote types.Quote
	if err := json.Unmarshal(body, &quote); err != nil {
		return nil, fmt.Errorf("failed to decode quote: %w", err)
	}
	return &quote, nil
}

// GetStatus checks the progress of a bridge transfer
func (c *LiFiClient) GetStatus(ctx context.Context, req types.StatusRequest) (*types.StatusResponse, error) {
	if req.TxHash == "" {
		return nil, fmt.Errorf("transaction hash is required")
	}

	query := url.Values{}
	query.Set("txHash", req.TxHash)
	if req.FromChain != "" {
		query.Set("fromChain", req.FromChain)
	}
	if req.ToChain != "" {
		query.Set("toChain", req.ToChain)
	}
	if req.Bridge != "" {
		query.Set("bridge", req.Bridge)
	}

	body, err := c.makeRequest(ctx, "/v1/status", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	var status types.StatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("failed to decode status: %w", err)
	}
	return &status, nil
}

// GetTokens retrieves the tokens the bridge supports on the given chains
func (c *LiFiClient) GetTokens(ctx context.Context, chains ...string) (*types.TokensResponse, error) {
	query := url.Values{}
	if len(chains) > 0 {
		query.Set("chains", strings.Join(chains, ","))
	}

	body, err := c.makeRequest(ctx, "/v1/tokens", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get tokens: %w", err)
	}

	var tokens types.TokensResponse
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, fmt.Errorf("failed to decode tokens: %w", err)
	}
	return &tokens, nil
}

// FindTokenOnChain searches for a token by symbol on a specific chain
func (c *LiFiClient) FindTokenOnChain(ctx context.Context, symbol, chain string) (*types.Token, error) {
	resp, err := c.GetTokens(ctx, chain)
	if err != nil {
		return nil, err
	}

	symbol = strings.ToUpper(symbol)
	for _, tokens := range resp.Tokens {
		for _, token := range tokens {
			if strings.ToUpper(token.Symbol) == symbol {
				return &token, nil
			}
		}
	}

	return nil, fmt.Errorf("token '%s' not found on chain %s", symbol, chain)
}

func (c *LiFiClient) makeRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-lifi-api-key", c.apiKey)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: res.StatusCode}
		if jsonErr := json.Unmarshal(body, apiErr); jsonErr != nil {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return nil, apiErr
	}

	return body, nil
}
