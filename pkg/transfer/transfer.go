package transfer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"usdc-mover/pkg/chain"
	"usdc-mover/pkg/types"
)

// Wallet is an account able to hold and send the token on a single chain
type Wallet interface {
	chain.Wallet
	TokenAccountExists(ctx context.Context) (bool, error)
	CreateTokenAccount(ctx context.Context, owner string) (string, error)
	Transfer(ctx context.Context, to string, amount types.TokenAmount) (string, error)
}

// Balance is a snapshot of one account
type Balance struct {
	Address string
	Native  types.TokenAmount
	Token   types.TokenAmount
}

// Result describes a completed transfer
type Result struct {
	From           string
	To             string
	Amount         types.TokenAmount
	Balances       [2]Balance
	TokenAccountTx string // empty when the receiver already had a token account
	TransferTx     string
}

// Service moves tokens between two accounts on the same chain, always from
// the account holding more
type Service struct {
	first  Wallet
	second Wallet
	log    logrus.FieldLogger
}

// NewService creates a transfer service
func NewService(first, second Wallet, log logrus.FieldLogger) *Service {
	return &Service{first: first, second: second, log: log}
}

// Run performs one transfer of amount
func (s *Service) Run(ctx context.Context, amount types.TokenAmount) (*Result, error) {
	var balances [2]Balance
	for i, w := range []Wallet{s.first, s.second} {
		b, err := readBalance(ctx, w)
		if err != nil {
			return nil, err
		}
		balances[i] = b
		s.log.WithFields(logrus.Fields{
			"address":        b.Address,
			w.NativeSymbol(): b.Native.String(),
			"token":          b.Token.String(),
		}).Info("Balance")
	}

	sender, receiver := s.second, s.first
	senderBalance := balances[1].Token
	if types.FirstSends(balances[0].Token, balances[1].Token) {
		sender, receiver = s.first, s.second
		senderBalance = balances[0].Token
	}

	log := s.log.WithFields(logrus.Fields{
		"from":   sender.Address(),
		"to":     receiver.Address(),
		"amount": amount.String(),
	})

	if senderBalance.Cmp(amount) < 0 {
		return nil, &types.InsufficientFundsError{
			Address: sender.Address(),
			Have:    senderBalance,
			Need:    amount,
		}
	}

	res := &Result{
		From:     sender.Address(),
		To:       receiver.Address(),
		Amount:   amount,
		Balances: balances,
	}

	exists, err := receiver.TokenAccountExists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check receiver token account: %w", err)
	}
	if !exists {
		log.Info("Creating receiver token account")
		sig, err := sender.CreateTokenAccount(ctx, receiver.Address())
		if err != nil {
			return nil, fmt.Errorf("failed to create receiver token account: %w", err)
		}
		res.TokenAccountTx = sig
		log.WithField("tx", sig).Info("Receiver token account created")
	}

	log.Info("Sending transfer")
	sig, err := sender.Transfer(ctx, receiver.Address(), amount)
	if err != nil {
		return nil, fmt.Errorf("transfer failed: %w", err)
	}
	res.TransferTx = sig
	log.WithField("tx", sig).Info("Transfer confirmed")

	return res, nil
}

func readBalance(ctx context.Context, w Wallet) (Balance, error) {
	native, err := w.NativeBalance(ctx)
	if err != nil {
		return Balance{}, fmt.Errorf("failed to get %s balance of %s: %w", w.NativeSymbol(), w.Address(), err)
	}
	token, err := w.TokenBalance(ctx)
	if err != nil {
		return Balance{}, fmt.Errorf("failed to get token balance of %s: %w", w.Address(), err)
	}
	return Balance{Address: w.Address(), Native: native, Token: token}, nil
}
