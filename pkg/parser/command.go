package parser

import (
	"fmt"
	"regexp"
	"strings"

	"usdc-mover/pkg/types"
)

var amountPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)(?:\s+([A-Z0-9.]+))?$`)

// AmountRequest is a parsed amount argument
type AmountRequest struct {
	Amount string
	Symbol string // empty when the argument had no token symbol
}

// ParseAmountCommand parses an amount argument
// Examples:
//   - "1"
//   - "1.5 USDC"
//   - "move 0.25 usdc"
func ParseAmountCommand(command string) (*AmountRequest, error) {
	// Normalize the command
	command = strings.Join(strings.Fields(strings.ToUpper(command)), " ")

	// Remove the word "MOVE" if present at the beginning
	command = strings.TrimPrefix(command, "MOVE ")

	matches := amountPattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid amount format. Expected: '<amount> [token]' (e.g., '1.5 USDC')")
	}

	return &AmountRequest{
		Amount: matches[1],
		Symbol: matches[2],
	}, nil
}

// ResolveAmount parses command and converts it to minor units of the token.
// A symbol in the command must match the configured token.
func ResolveAmount(command, symbol string, decimals int32) (types.TokenAmount, error) {
	req, err := ParseAmountCommand(command)
	if err != nil {
		return types.TokenAmount{}, err
	}

	if req.Symbol != "" && req.Symbol != NormalizeTokenSymbol(symbol) {
		return types.TokenAmount{}, fmt.Errorf("token %s is not supported, only %s can be moved", req.Symbol, NormalizeTokenSymbol(symbol))
	}

	amount, err := types.ParseTokenAmount(req.Amount, decimals)
	if err != nil {
		return types.TokenAmount{}, err
	}
	if amount.IsZero() {
		return types.TokenAmount{}, fmt.Errorf("amount must be greater than zero")
	}
	return amount, nil
}

// NormalizeTokenSymbol normalizes token symbols to standard format
func NormalizeTokenSymbol(symbol string) string {
	return strings.TrimSpace(strings.ToUpper(symbol))
}
