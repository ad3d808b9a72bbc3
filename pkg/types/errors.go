package types

import "fmt"

// ConfigError is returned when configuration or a credential file is
// missing or unreadable
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error (%s): %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// RPCError wraps a failed chain RPC call
type RPCError struct {
	Chain ChainKind
	Op    string
	Err   error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%s rpc %s failed: %v", e.Chain, e.Op, e.Err)
}

func (e *RPCError) Unwrap() error {
	return e.Err
}

// InsufficientFundsError is returned before any quote or transaction when
// the sender cannot cover the transfer amount
type InsufficientFundsError struct {
	Address string
	Have    TokenAmount
	Need    TokenAmount
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds on %s: have %s, need %s", e.Address, e.Have, e.Need)
}

// SubmissionError is returned when a signed transaction is rejected or its
// receipt reports failure
type SubmissionError struct {
	Chain  ChainKind
	TxHash string
	Reason string
	Err    error
}

func (e *SubmissionError) Error() string {
	msg := fmt.Sprintf("%s transaction failed", e.Chain)
	if e.TxHash != "" {
		msg += " (" + e.TxHash + ")"
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
