package settlement

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"

	"github.com/sirupsen/logrus"

	"usdc-mover/pkg/chain"
	"usdc-mover/pkg/route"
	"usdc-mover/pkg/types"
)

// SolanaSide is the Solana account taking part in a bridge transfer
type SolanaSide interface {
	chain.Wallet
	SignAndSubmit(ctx context.Context, raw []byte) (string, error)
}

// EVMSide is the EVM account taking part in a bridge transfer
type EVMSide interface {
	chain.Wallet
	Allowance(ctx context.Context, spender string) (*big.Int, error)
	Approve(ctx context.Context, spender string, amount *big.Int) (*chain.Receipt, error)
	SubmitTransaction(ctx context.Context, req types.EVMTransactionRequest) (*chain.Receipt, error)
}

// QuoteClient fetches bridge quotes
type QuoteClient interface {
	GetQuote(ctx context.Context, req types.QuoteRequest) (*types.Quote, error)
}

// Network describes one side of the bridge as the bridge API knows it
type Network struct {
	BridgeChain string // chain key sent in quote requests
	Token       types.TokenSpec
}

// Params are the inputs of a settlement run
type Params struct {
	Amount             types.TokenAmount
	Solana             Network
	EVM                Network
	ApprovalMultiplier int64
	DryRun             bool
}

// Direction is the way tokens move in a run
type Direction int

const (
	SolanaToEVM Direction = iota
	EVMToSolana
)

func (d Direction) String() string {
	if d == SolanaToEVM {
		return "solana->evm"
	}
	return "evm->solana"
}

// ChooseDirection picks Solana->EVM only when the Solana balance is strictly
// greater; ties go EVM->Solana
func ChooseDirection(solana, evm types.TokenAmount) Direction {
	if types.FirstSends(solana, evm) {
		return SolanaToEVM
	}
	return EVMToSolana
}

// State is a step of the settlement state machine
type State int

const (
	StateInit State = iota
	StateBalancesFetched
	StateDirectionChosen
	StateFundsChecked
	StateQuoteFetched
	StateRouteValidated
	StateSourceChainSubmit
	StateDestChainApproveAndSubmit
	StateConfirmed
	StateFailed
)

var stateNames = map[State]string{
	StateInit:                      "Init",
	StateBalancesFetched:           "BalancesFetched",
	StateDirectionChosen:           "DirectionChosen",
	StateFundsChecked:              "FundsChecked",
	StateQuoteFetched:              "QuoteFetched",
	StateRouteValidated:            "RouteValidated",
	StateSourceChainSubmit:         "SourceChainSubmit",
	StateDestChainApproveAndSubmit: "DestChainApproveAndSubmit",
	StateConfirmed:                 "Confirmed",
	StateFailed:                    "Failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Result reports how far a run got
type Result struct {
	Direction     Direction
	State         State
	SolanaBalance types.TokenAmount
	EVMBalance    types.TokenAmount
	Quote         *types.Quote
	ApprovalTx    string
	TxHash        string
}

// Executor drives one bridge transfer from balance check to confirmation
type Executor struct {
	params Params
	sol    SolanaSide
	evm    EVMSide
	quotes QuoteClient
	log    logrus.FieldLogger
}

// NewExecutor creates an executor
func NewExecutor(params Params, sol SolanaSide, evm EVMSide, quotes QuoteClient, log logrus.FieldLogger) *Executor {
	if params.ApprovalMultiplier < 1 {
		params.ApprovalMultiplier = 2
	}
	return &Executor{
		params: params,
		sol:    sol,
		evm:    evm,
		quotes: quotes,
		log:    log,
	}
}

// Run executes the transfer. The returned Result is never nil; its State is
// the last state reached, or StateFailed when a submission failed.
func (e *Executor) Run(ctx context.Context) (*Result, error) {
	res := &Result{State: StateInit}

	solBalance, err := e.sol.TokenBalance(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to get solana token balance: %w", err)
	}
	evmBalance, err := e.evm.TokenBalance(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to get evm token balance: %w", err)
	}
	res.SolanaBalance, res.EVMBalance = solBalance, evmBalance
	res.State = StateBalancesFetched
	e.logNativeBalances(ctx)
	e.log.WithFields(logrus.Fields{
		"solana": solBalance.String(),
		"evm":    evmBalance.String(),
	}).Info("Token balances fetched")

	res.Direction = ChooseDirection(solBalance, evmBalance)
	res.State = StateDirectionChosen

	var (
		sender             chain.Wallet
		receiver           chain.Wallet
		source, dest       Network
		senderTokenBalance types.TokenAmount
	)
	if res.Direction == SolanaToEVM {
		sender, receiver = e.sol, e.evm
		source, dest = e.params.Solana, e.params.EVM
		senderTokenBalance = solBalance
	} else {
		sender, receiver = e.evm, e.sol
		source, dest = e.params.EVM, e.params.Solana
		senderTokenBalance = evmBalance
	}

	log := e.log.WithFields(logrus.Fields{
		"direction": res.Direction.String(),
		"from":      sender.Address(),
		"to":        receiver.Address(),
		"amount":    e.params.Amount.String(),
	})
	log.Info("Direction chosen")

	if senderTokenBalance.Cmp(e.params.Amount) < 0 {
		return res, &types.InsufficientFundsError{
			Address: sender.Address(),
			Have:    senderTokenBalance,
			Need:    e.params.Amount,
		}
	}
	res.State = StateFundsChecked

	quote, err := e.quotes.GetQuote(ctx, types.QuoteRequest{
		FromChain:   source.BridgeChain,
		ToChain:     dest.BridgeChain,
		FromToken:   source.Token.Address,
		ToToken:     dest.Token.Address,
		FromAmount:  e.params.Amount.MinorUnits(),
		FromAddress: sender.Address(),
		ToAddress:   receiver.Address(),
	})
	if err != nil {
		return res, err
	}
	res.Quote = quote
	res.State = StateQuoteFetched
	log.WithFields(logrus.Fields{"quote": quote.ID, "tool": quote.Tool}).Info("Quote received")

	validated, err := route.Validate(quote, route.Expected{
		SenderAddress: sender.Address(),
		SourceChainID: source.Token.ChainID,
		Amount:        e.params.Amount.MinorUnits(),
		SourceToken:   source.Token,
		DestToken:     dest.Token,
	})
	if err != nil {
		return res, err
	}
	res.State = StateRouteValidated
	log.Info("Route validated")

	if e.params.DryRun {
		log.Info("Dry run, nothing submitted")
		return res, nil
	}

	if res.Direction == SolanaToEVM {
		res.State = StateSourceChainSubmit
		err = e.submitSolana(ctx, validated, res, log)
	} else {
		res.State = StateDestChainApproveAndSubmit
		err = e.submitEVM(ctx, validated, res, log)
	}
	if err != nil {
		res.State = StateFailed
		return res, err
	}

	res.State = StateConfirmed
	log.WithField("tx", res.TxHash).Info("Bridge transaction confirmed")
	return res, nil
}

func (e *Executor) submitSolana(ctx context.Context, validated *route.ValidatedRoute, res *Result, log logrus.FieldLogger) error {
	req, err := types.DecodeSolanaTransactionRequest(validated.TransactionRequest)
	if err != nil {
		return err
	}

	raw, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return fmt.Errorf("failed to decode solana transaction payload: %w", err)
	}

	log.Debug("Signing bridge transaction")
	sig, err := e.sol.SignAndSubmit(ctx, raw)
	if err != nil {
		return asSubmissionError(types.ChainSolana, sig, err)
	}
	res.TxHash = sig
	return nil
}

func (e *Executor) submitEVM(ctx context.Context, validated *route.ValidatedRoute, res *Result, log logrus.FieldLogger) error {
	req, err := types.DecodeEVMTransactionRequest(validated.TransactionRequest)
	if err != nil {
		return err
	}

	amount := e.params.Amount.Int()
	spender := req.To

	allowance, err := e.evm.Allowance(ctx, spender)
	if err != nil {
		return fmt.Errorf("failed to get allowance: %w", err)
	}
	log.WithFields(logrus.Fields{"spender": spender, "allowance": allowance.String()}).Debug("Allowance fetched")

	if allowance.Cmp(amount) < 0 {
		approveAmount := e.params.Amount.Mul(e.params.ApprovalMultiplier).Int()
		log.WithField("approve", approveAmount.String()).Info("Approving bridge contract")

		receipt, err := e.evm.Approve(ctx, spender, approveAmount)
		if err != nil {
			return asSubmissionError(types.ChainEVM, "", err)
		}
		res.ApprovalTx = receipt.TxHash
		if !receipt.Success {
			return &types.SubmissionError{Chain: types.ChainEVM, TxHash: receipt.TxHash, Reason: "approval reverted"}
		}
	}

	receipt, err := e.evm.SubmitTransaction(ctx, *req)
	if err != nil {
		return asSubmissionError(types.ChainEVM, "", err)
	}
	res.TxHash = receipt.TxHash
	if !receipt.Success {
		return &types.SubmissionError{Chain: types.ChainEVM, TxHash: receipt.TxHash, Reason: "bridge transaction reverted"}
	}
	return nil
}

func (e *Executor) logNativeBalances(ctx context.Context) {
	for _, w := range []chain.Wallet{e.sol, e.evm} {
		balance, err := w.NativeBalance(ctx)
		if err != nil {
			e.log.WithError(err).WithField("address", w.Address()).Warn("Failed to get native balance")
			continue
		}
		e.log.WithFields(logrus.Fields{
			"address":       w.Address(),
			w.NativeSymbol(): balance.String(),
		}).Debug("Native balance")
	}
}

// asSubmissionError keeps typed chain errors and wraps anything else
func asSubmissionError(kind types.ChainKind, txHash string, err error) error {
	var subErr *types.SubmissionError
	var rpcErr *types.RPCError
	if errors.As(err, &subErr) || errors.As(err, &rpcErr) {
		return err
	}
	return &types.SubmissionError{Chain: kind, TxHash: txHash, Err: err}
}
