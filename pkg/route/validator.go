package route

import (
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"

	"usdc-mover/pkg/types"
)

// Expected holds the terms that were requested from the bridge. A quote is
// only acted on when its route echoes these exactly.
type Expected struct {
	SenderAddress string
	SourceChainID uint64
	Amount        string // minor units
	SourceToken   types.TokenSpec
	DestToken     types.TokenSpec
}

// ValidatedRoute is a quote whose route matched the request
type ValidatedRoute struct {
	Action             types.Action
	TransactionRequest json.RawMessage
}

// FieldMismatchError names the first route field that differs from the request
type FieldMismatchError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *FieldMismatchError) Error() string {
	return fmt.Sprintf("route field %s mismatch: expected %q, got %q", e.Field, e.Expected, e.Actual)
}

// Validate checks the quote's route against the request. It has no side
// effects; callers must not build or sign anything unless it succeeds.
func Validate(quote *types.Quote, expected Expected) (*ValidatedRoute, error) {
	if quote == nil {
		return nil, fmt.Errorf("malformed quote: empty response")
	}

	action := quote.Action

	if err := matchString("fromAddress", expected.SenderAddress, action.FromAddress); err != nil {
		return nil, err
	}
	if err := matchUint("fromChainId", expected.SourceChainID, action.FromChainID); err != nil {
		return nil, err
	}
	if err := matchString("fromAmount", expected.Amount, action.FromAmount); err != nil {
		return nil, err
	}
	if err := matchToken("fromToken", expected.SourceToken, action.FromToken.Spec()); err != nil {
		return nil, err
	}
	if err := matchToken("toToken", expected.DestToken, action.ToToken.Spec()); err != nil {
		return nil, err
	}

	return &ValidatedRoute{
		Action:             action,
		TransactionRequest: quote.TransactionRequest,
	}, nil
}

func matchToken(prefix string, expected, actual types.TokenSpec) error {
	if err := matchString(prefix+".address", expected.Address, actual.Address); err != nil {
		return err
	}
	if err := matchUint(prefix+".chainId", expected.ChainID, actual.ChainID); err != nil {
		return err
	}
	if err := matchString(prefix+".symbol", expected.Symbol, actual.Symbol); err != nil {
		return err
	}
	return matchUint(prefix+".decimals", uint64(expected.Decimals), uint64(actual.Decimals))
}

func matchString(field, expected, actual string) error {
	if expected != actual {
		return &FieldMismatchError{Field: field, Expected: expected, Actual: actual}
	}
	return nil
}

func matchUint(field string, expected, actual uint64) error {
	if expected != actual {
		return &FieldMismatchError{
			Field:    field,
			Expected: strconv.FormatUint(expected, 10),
			Actual:   strconv.FormatUint(actual, 10),
		}
	}
	return nil
}
