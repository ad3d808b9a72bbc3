package chain

import (
	"context"
	"fmt"
	"strings"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"

	"usdc-mover/config"
	"usdc-mover/pkg/types"
)

// SolanaWallet signs and submits transactions for one Solana account
type SolanaWallet struct {
	config       config.SolanaConfig
	client       *rpc.Client
	privateKey   solana.PrivateKey
	publicKey    solana.PublicKey
	mint         solana.PublicKey
	decimals     int32
	pollInterval time.Duration
}

// NewSolanaWallet creates a wallet for the given key on the configured cluster
func NewSolanaWallet(cfg config.SolanaConfig, key solana.PrivateKey, decimals int32, pollInterval time.Duration) (*SolanaWallet, error) {
	if cfg.RPCUrl == "" {
		return nil, fmt.Errorf("RPC URL not configured for Solana")
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("private key not configured for Solana")
	}

	mint, err := solana.PublicKeyFromBase58(cfg.USDCMint)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid token mint address: %s", cfg.USDCMint)
	}

	return &SolanaWallet{
		config:       cfg,
		client:       rpc.New(cfg.RPCUrl),
		privateKey:   key,
		publicKey:    key.PublicKey(),
		mint:         mint,
		decimals:     decimals,
		pollInterval: pollInterval,
	}, nil
}

func (s *SolanaWallet) Chain() types.ChainKind { return types.ChainSolana }

func (s *SolanaWallet) Address() string { return s.publicKey.String() }

func (s *SolanaWallet) NativeSymbol() string { return "SOL" }

// NativeBalance returns the SOL balance
func (s *SolanaWallet) NativeBalance(ctx context.Context) (types.TokenAmount, error) {
	balance, err := s.client.GetBalance(ctx, s.publicKey, s.getCommitment())
	if err != nil {
		return types.TokenAmount{}, s.rpcError("getBalance", err)
	}
	return types.NewTokenAmountFromUint64(balance.Value, types.SolanaNativeDecimals), nil
}

// TokenBalance returns the balance of the wallet's associated token account.
// A token account that does not exist yet holds zero.
func (s *SolanaWallet) TokenBalance(ctx context.Context) (types.TokenAmount, error) {
	ata, err := s.associatedTokenAddress(s.publicKey)
	if err != nil {
		return types.TokenAmount{}, err
	}

	exists, err := s.accountExists(ctx, ata)
	if err != nil {
		return types.TokenAmount{}, err
	}
	if !exists {
		return types.NewTokenAmountFromUint64(0, s.decimals), nil
	}

	out, err := s.client.GetTokenAccountBalance(ctx, ata, s.getCommitment())
	if err != nil {
		return types.TokenAmount{}, s.rpcError("getTokenAccountBalance", err)
	}
	if out == nil || out.Value == nil {
		return types.TokenAmount{}, s.rpcError("getTokenAccountBalance", fmt.Errorf("empty response"))
	}

	amount, err := types.ParseMinorUnits(out.Value.Amount, s.decimals)
	if err != nil {
		return types.TokenAmount{}, errors.Wrap(err, "failed to parse token balance")
	}
	return amount, nil
}

// TokenAccountExists reports whether the wallet's associated token account exists
func (s *SolanaWallet) TokenAccountExists(ctx context.Context) (bool, error) {
	ata, err := s.associatedTokenAddress(s.publicKey)
	if err != nil {
		return false, err
	}
	return s.accountExists(ctx, ata)
}

// CreateTokenAccount creates the associated token account of owner, paid by
// this wallet, and waits for confirmation
func (s *SolanaWallet) CreateTokenAccount(ctx context.Context, owner string) (string, error) {
	ownerKey, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return "", errors.Wrapf(err, "invalid owner address: %s", owner)
	}

	createIx := associatedtokenaccount.NewCreateInstruction(
		s.publicKey, // payer
		ownerKey,    // wallet
		s.mint,      // mint
	).Build()

	sig, err := s.buildSignAndSend(ctx, []solana.Instruction{createIx})
	if err != nil {
		return "", err
	}
	return sig.String(), nil
}

// Transfer moves tokens from this wallet's token account to the associated
// token account of to, and waits for confirmation. The destination token
// account must already exist.
func (s *SolanaWallet) Transfer(ctx context.Context, to string, amount types.TokenAmount) (string, error) {
	recipient, err := solana.PublicKeyFromBase58(to)
	if err != nil {
		return "", errors.Wrapf(err, "invalid recipient address: %s", to)
	}
	if !amount.Int().IsUint64() {
		return "", fmt.Errorf("amount %s out of range", amount.MinorUnits())
	}

	sourceTokenAccount, err := s.associatedTokenAddress(s.publicKey)
	if err != nil {
		return "", err
	}
	destTokenAccount, err := s.associatedTokenAddress(recipient)
	if err != nil {
		return "", err
	}

	transferIx := token.NewTransferInstruction(
		amount.Int().Uint64(),
		sourceTokenAccount,
		destTokenAccount,
		s.publicKey,
		[]solana.PublicKey{}, // no multisig
	).Build()

	sig, err := s.buildSignAndSend(ctx, []solana.Instruction{transferIx})
	if err != nil {
		return "", err
	}
	return sig.String(), nil
}

// SignAndSubmit signs a prebuilt serialized transaction with this wallet's
// key, broadcasts it and waits for confirmation
func (s *SolanaWallet) SignAndSubmit(ctx context.Context, raw []byte) (string, error) {
	tx, err := SignPrebuilt(raw, s.privateKey)
	if err != nil {
		return "", &types.SubmissionError{Chain: types.ChainSolana, Reason: "failed to sign prebuilt transaction", Err: err}
	}

	sig, err := s.sendAndConfirm(ctx, tx)
	if err != nil {
		return "", err
	}
	return sig.String(), nil
}

// SignPrebuilt decodes a serialized (legacy or versioned) transaction,
// discards any placeholder signatures and signs its message with key. Every
// required signer of the message must be key.
func SignPrebuilt(raw []byte, key solana.PrivateKey) (*solana.Transaction, error) {
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode transaction")
	}

	publicKey := key.PublicKey()
	tx.Signatures = nil
	_, err = tx.Sign(func(k solana.PublicKey) *solana.PrivateKey {
		if k.Equals(publicKey) {
			return &key
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	return tx, nil
}

func (s *SolanaWallet) buildSignAndSend(ctx context.Context, instructions []solana.Instruction) (solana.Signature, error) {
	recent, err := s.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, s.rpcError("getLatestBlockhash", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		recent.Value.Blockhash,
		solana.TransactionPayer(s.publicKey),
	)
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to create transaction")
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.publicKey) {
			return &s.privateKey
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to sign transaction")
	}

	return s.sendAndConfirm(ctx, tx)
}

func (s *SolanaWallet) sendAndConfirm(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	opts := rpc.TransactionOpts{
		SkipPreflight:       s.config.SkipPreflight,
		PreflightCommitment: s.getCommitment(),
	}

	sig, err := s.client.SendTransactionWithOpts(ctx, tx, opts)
	if err != nil {
		return solana.Signature{}, &types.SubmissionError{Chain: types.ChainSolana, Reason: "send rejected", Err: err}
	}

	if err := s.waitForConfirmation(ctx, sig, tx.Message.RecentBlockhash); err != nil {
		return sig, err
	}
	return sig, nil
}

// waitForConfirmation polls the signature status until it reaches the
// configured commitment or reports an error. A transaction that is still
// unknown once its blockhash has expired can no longer land.
func (s *SolanaWallet) waitForConfirmation(ctx context.Context, sig solana.Signature, blockhash solana.Hash) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			status, err := s.signatureStatus(ctx, sig)
			if err != nil {
				return err
			}

			if status == nil {
				valid, err := s.client.IsBlockhashValid(ctx, blockhash, rpc.CommitmentProcessed)
				if err != nil {
					return s.rpcError("isBlockhashValid", err)
				}
				if valid != nil && valid.Value {
					continue
				}

				// last look, the transaction may have landed just before expiry
				status, err = s.signatureStatus(ctx, sig)
				if err != nil {
					return err
				}
				if status == nil {
					return &types.SubmissionError{
						Chain:  types.ChainSolana,
						TxHash: sig.String(),
						Reason: "blockhash expired before confirmation",
					}
				}
			}

			if status.Err != nil {
				return &types.SubmissionError{
					Chain:  types.ChainSolana,
					TxHash: sig.String(),
					Reason: fmt.Sprintf("%v", status.Err),
				}
			}
			if commitmentReached(status.ConfirmationStatus, s.getCommitment()) {
				return nil
			}
		}
	}
}

func (s *SolanaWallet) signatureStatus(ctx context.Context, sig solana.Signature) (*rpc.SignatureStatusesResult, error) {
	out, err := s.client.GetSignatureStatuses(ctx, false, sig)
	if err != nil {
		return nil, s.rpcError("getSignatureStatuses", err)
	}
	if out == nil || len(out.Value) == 0 {
		return nil, nil
	}
	return out.Value[0], nil
}

func commitmentReached(status rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	rank := func(v string) int {
		switch v {
		case "processed":
			return 1
		case "confirmed":
			return 2
		case "finalized":
			return 3
		default:
			return 0
		}
	}
	have := rank(string(status))
	return have > 0 && have >= rank(string(want))
}

// associatedTokenAddress derives the associated token account address
func (s *SolanaWallet) associatedTokenAddress(wallet solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(wallet, s.mint)
	if err != nil {
		return solana.PublicKey{}, errors.Wrap(err, "failed to derive associated token address")
	}
	return addr, nil
}

// accountExists checks if an account exists on-chain
func (s *SolanaWallet) accountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	info, err := s.client.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Commitment: s.getCommitment(),
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) || strings.Contains(err.Error(), "not found") {
			return false, nil
		}
		return false, s.rpcError("getAccountInfo", err)
	}
	return info != nil && info.Value != nil, nil
}

// getCommitment returns the commitment level from config
func (s *SolanaWallet) getCommitment() rpc.CommitmentType {
	switch strings.ToLower(s.config.Commitment) {
	case "finalized":
		return rpc.CommitmentFinalized
	case "confirmed":
		return rpc.CommitmentConfirmed
	case "processed":
		return rpc.CommitmentProcessed
	default:
		return rpc.CommitmentConfirmed
	}
}

func (s *SolanaWallet) rpcError(op string, err error) error {
	return &types.RPCError{Chain: types.ChainSolana, Op: op, Err: err}
}
