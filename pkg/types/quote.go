package types

import (
	"fmt"
	"math/big"
	"strings"

	json "github.com/goccy/go-json"
)

// QuoteRequest holds the parameters of a bridge quote request
type QuoteRequest struct {
	FromChain   string
	ToChain     string
	FromToken   string
	ToToken     string
	FromAmount  string
	FromAddress string
	ToAddress   string
}

// Token is a token as described by the bridge API
type Token struct {
	Address  string `json:"address"`
	ChainID  uint64 `json:"chainId"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Name     string `json:"name,omitempty"`
	PriceUSD string `json:"priceUSD,omitempty"`
	LogoURI  string `json:"logoURI,omitempty"`
}

// Spec returns the fields of the token that route validation compares
func (t Token) Spec() TokenSpec {
	return TokenSpec{
		Address:  t.Address,
		ChainID:  t.ChainID,
		Symbol:   t.Symbol,
		Decimals: t.Decimals,
	}
}

// Action is the route echo of a quote: what the bridge intends to move, from
// where, to where
type Action struct {
	FromChainID uint64  `json:"fromChainId"`
	ToChainID   uint64  `json:"toChainId"`
	FromToken   Token   `json:"fromToken"`
	ToToken     Token   `json:"toToken"`
	FromAmount  string  `json:"fromAmount"`
	FromAddress string  `json:"fromAddress"`
	ToAddress   string  `json:"toAddress"`
	Slippage    float64 `json:"slippage,omitempty"`
}

// Estimate is informational only; nothing in it is trusted
type Estimate struct {
	Tool              string  `json:"tool,omitempty"`
	FromAmount        string  `json:"fromAmount,omitempty"`
	ToAmount          string  `json:"toAmount,omitempty"`
	ToAmountMin       string  `json:"toAmountMin,omitempty"`
	ApprovalAddress   string  `json:"approvalAddress,omitempty"`
	ExecutionDuration float64 `json:"executionDuration,omitempty"`
}

// Quote is the bridge API's quote response. TransactionRequest is kept as
// raw JSON because its shape depends on the source chain.
type Quote struct {
	ID                 string          `json:"id"`
	Type               string          `json:"type"`
	Tool               string          `json:"tool"`
	Action             Action          `json:"action"`
	Estimate           *Estimate       `json:"estimate,omitempty"`
	TransactionRequest json.RawMessage `json:"transactionRequest"`
}

// SolanaTransactionRequest carries a fully formed, base64-encoded serialized
// transaction
type SolanaTransactionRequest struct {
	Data string `json:"data"`
}

// EVMTransactionRequest carries the call parameters of the bridge
// transaction on an EVM chain
type EVMTransactionRequest struct {
	To       string   `json:"to"`
	From     string   `json:"from"`
	ChainID  Quantity `json:"chainId"`
	Value    Quantity `json:"value"`
	Data     string   `json:"data"`
	GasPrice Quantity `json:"gasPrice"`
	GasLimit Quantity `json:"gasLimit"`
}

// DecodeSolanaTransactionRequest decodes a raw transactionRequest payload
func DecodeSolanaTransactionRequest(raw []byte) (*SolanaTransactionRequest, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("quote has no transactionRequest")
	}
	var req SolanaTransactionRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("failed to decode solana transactionRequest: %w", err)
	}
	if req.Data == "" {
		return nil, fmt.Errorf("solana transactionRequest has no data")
	}
	return &req, nil
}

// DecodeEVMTransactionRequest decodes a raw transactionRequest payload
func DecodeEVMTransactionRequest(raw []byte) (*EVMTransactionRequest, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("quote has no transactionRequest")
	}
	var req EVMTransactionRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("failed to decode evm transactionRequest: %w", err)
	}
	if req.To == "" {
		return nil, fmt.Errorf("evm transactionRequest has no destination contract")
	}
	if !req.GasLimit.IsSet() {
		return nil, fmt.Errorf("evm transactionRequest has no gasLimit")
	}
	if !req.GasPrice.IsSet() {
		return nil, fmt.Errorf("evm transactionRequest has no gasPrice")
	}
	return &req, nil
}

// Quantity is a non-negative integer the bridge API may encode as a JSON
// number, a decimal string or a 0x-prefixed hex string
type Quantity struct {
	v *big.Int
}

// NewQuantity wraps a big.Int
func NewQuantity(v *big.Int) Quantity {
	if v == nil {
		return Quantity{}
	}
	return Quantity{v: new(big.Int).Set(v)}
}

// ParseQuantity parses a decimal or 0x-prefixed hex string
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	if s == "" {
		return Quantity{}, fmt.Errorf("empty quantity")
	}
	v, ok := new(big.Int).SetString(s, base)
	if !ok || v.Sign() < 0 {
		return Quantity{}, fmt.Errorf("invalid quantity %q", s)
	}
	return Quantity{v: v}, nil
}

// IsSet reports whether a value was present
func (q Quantity) IsSet() bool {
	return q.v != nil
}

// Int returns a copy of the value, zero when unset
func (q Quantity) Int() *big.Int {
	if q.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(q.v)
}

func (q Quantity) String() string {
	return q.Int().String()
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + q.String() + `"`), nil
}

func (q *Quantity) UnmarshalJSON(p []byte) error {
	s := strings.Trim(string(p), `"`)
	if s == "null" || s == "" {
		q.v = nil
		return nil
	}
	parsed, err := ParseQuantity(s)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// StatusRequest identifies a bridge transfer by its source transaction
type StatusRequest struct {
	TxHash    string
	FromChain string
	ToChain   string
	Bridge    string
}

// TransferLeg is one side of a bridge transfer as reported by the status API
type TransferLeg struct {
	TxHash  string `json:"txHash"`
	TxLink  string `json:"txLink,omitempty"`
	Amount  string `json:"amount,omitempty"`
	ChainID uint64 `json:"chainId"`
	Token   *Token `json:"token,omitempty"`
}

// StatusResponse is the bridge status API response
type StatusResponse struct {
	Status           string       `json:"status"`
	Substatus        string       `json:"substatus,omitempty"`
	SubstatusMessage string       `json:"substatusMessage,omitempty"`
	Tool             string       `json:"tool,omitempty"`
	Sending          *TransferLeg `json:"sending,omitempty"`
	Receiving        *TransferLeg `json:"receiving,omitempty"`
}

// Bridge status values
const (
	StatusPending  = "PENDING"
	StatusDone     = "DONE"
	StatusFailed   = "FAILED"
	StatusNotFound = "NOT_FOUND"
	StatusInvalid  = "INVALID"
)

// IsFinal reports whether the bridge transfer will not change status again
func (s *StatusResponse) IsFinal() bool {
	switch strings.ToUpper(s.Status) {
	case StatusDone, StatusFailed, StatusInvalid:
		return true
	default:
		return false
	}
}

// TokensResponse is the bridge tokens API response, keyed by chain id
type TokensResponse struct {
	Tokens map[string][]Token `json:"tokens"`
}
