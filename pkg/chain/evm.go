package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"usdc-mover/config"
	"usdc-mover/pkg/types"
)

// Minimal ERC20 surface
const erc20ABI = `[
{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"},
{"constant":true,"inputs":[{"name":"_owner","type":"address"},{"name":"_spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"type":"function"},
{"constant":false,"inputs":[{"name":"_spender","type":"address"},{"name":"_value","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"type":"function"},
{"constant":false,"inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

const defaultTokenGasLimit = uint64(100000)

// EVMWallet signs and submits transactions for one EVM account
type EVMWallet struct {
	config     config.EVMConfig
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
	address    common.Address
	token      common.Address
	decimals   int32
	erc20      abi.ABI
}

// NewEVMWallet connects to the configured RPC endpoint
func NewEVMWallet(cfg config.EVMConfig, key *ecdsa.PrivateKey, decimals int32) (*EVMWallet, error) {
	if cfg.RPCUrl == "" {
		return nil, fmt.Errorf("RPC URL not configured for EVM chain %d", cfg.ChainID)
	}
	if key == nil {
		return nil, fmt.Errorf("private key not configured for EVM chain %d", cfg.ChainID)
	}
	if !common.IsHexAddress(cfg.USDCContract) {
		return nil, fmt.Errorf("invalid token contract address: %s", cfg.USDCContract)
	}

	parsedABI, err := ERC20ABI()
	if err != nil {
		return nil, err
	}

	client, err := ethclient.Dial(cfg.RPCUrl)
	if err != nil {
		return nil, &types.RPCError{Chain: types.ChainEVM, Op: "dial", Err: err}
	}

	return &EVMWallet{
		config:     cfg,
		client:     client,
		privateKey: key,
		address:    crypto.PubkeyToAddress(key.PublicKey),
		token:      common.HexToAddress(cfg.USDCContract),
		decimals:   decimals,
		erc20:      parsedABI,
	}, nil
}

// ERC20ABI parses the ERC20 subset the wallet uses
func ERC20ABI() (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return abi.ABI{}, errors.Wrap(err, "failed to parse ERC20 ABI")
	}
	return parsed, nil
}

func (e *EVMWallet) Chain() types.ChainKind { return types.ChainEVM }

func (e *EVMWallet) Address() string { return e.address.Hex() }

func (e *EVMWallet) NativeSymbol() string { return "ETH" }

// NativeBalance returns the balance in wei
func (e *EVMWallet) NativeBalance(ctx context.Context) (types.TokenAmount, error) {
	balance, err := e.client.BalanceAt(ctx, e.address, nil)
	if err != nil {
		return types.TokenAmount{}, e.rpcError("eth_getBalance", err)
	}
	return types.NewTokenAmount(balance, types.EVMNativeDecimals), nil
}

// TokenBalance returns balanceOf(wallet) on the token contract
func (e *EVMWallet) TokenBalance(ctx context.Context) (types.TokenAmount, error) {
	balance, err := e.callUint256(ctx, "balanceOf", e.address)
	if err != nil {
		return types.TokenAmount{}, err
	}
	return types.NewTokenAmount(balance, e.decimals), nil
}

// TokenAccountExists is always true: ERC20 balances need no account setup
func (e *EVMWallet) TokenAccountExists(ctx context.Context) (bool, error) {
	return true, nil
}

// CreateTokenAccount is not applicable on EVM chains
func (e *EVMWallet) CreateTokenAccount(ctx context.Context, owner string) (string, error) {
	return "", fmt.Errorf("token accounts do not exist on EVM chains")
}

// Allowance returns allowance(wallet, spender) on the token contract
func (e *EVMWallet) Allowance(ctx context.Context, spender string) (*big.Int, error) {
	if !common.IsHexAddress(spender) {
		return nil, fmt.Errorf("invalid spender address: %s", spender)
	}
	return e.callUint256(ctx, "allowance", e.address, common.HexToAddress(spender))
}

// Approve grants spender an allowance of amount and waits for the receipt
func (e *EVMWallet) Approve(ctx context.Context, spender string, amount *big.Int) (*Receipt, error) {
	if !common.IsHexAddress(spender) {
		return nil, fmt.Errorf("invalid spender address: %s", spender)
	}

	data, err := e.erc20.Pack("approve", common.HexToAddress(spender), amount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack approve data")
	}
	return e.sendTokenCall(ctx, data)
}

// Transfer sends tokens to another address and waits for the receipt
func (e *EVMWallet) Transfer(ctx context.Context, to string, amount types.TokenAmount) (string, error) {
	if !common.IsHexAddress(to) {
		return "", fmt.Errorf("invalid recipient address: %s", to)
	}

	data, err := e.erc20.Pack("transfer", common.HexToAddress(to), amount.Int())
	if err != nil {
		return "", errors.Wrap(err, "failed to pack transfer data")
	}

	receipt, err := e.sendTokenCall(ctx, data)
	if err != nil {
		return "", err
	}
	if !receipt.Success {
		return receipt.TxHash, &types.SubmissionError{Chain: types.ChainEVM, TxHash: receipt.TxHash, Reason: "transfer reverted"}
	}
	return receipt.TxHash, nil
}

// SubmitTransaction signs the bridge transaction request with the quoted gas
// parameters, broadcasts it and waits for the receipt
func (e *EVMWallet) SubmitTransaction(ctx context.Context, req types.EVMTransactionRequest) (*Receipt, error) {
	nonce, err := e.client.PendingNonceAt(ctx, e.address)
	if err != nil {
		return nil, e.rpcError("eth_getTransactionCount", err)
	}

	tx, err := NewBridgeTransaction(req, e.address, big.NewInt(e.config.ChainID), nonce)
	if err != nil {
		return nil, err
	}

	return e.signAndWait(ctx, tx)
}

// NewBridgeTransaction builds an unsigned legacy transaction from a bridge
// transaction request. The request must be addressed from the signing
// account and, when it names a chain, target the configured chain.
func NewBridgeTransaction(req types.EVMTransactionRequest, from common.Address, chainID *big.Int, nonce uint64) (*gethtypes.Transaction, error) {
	if !common.IsHexAddress(req.To) {
		return nil, fmt.Errorf("invalid transaction target: %s", req.To)
	}
	if req.From != "" && !strings.EqualFold(req.From, from.Hex()) {
		return nil, fmt.Errorf("transaction request is from %s, wallet is %s", req.From, from.Hex())
	}
	if req.ChainID.IsSet() && req.ChainID.Int().Cmp(chainID) != 0 {
		return nil, fmt.Errorf("transaction request targets chain %s, wallet is on chain %s", req.ChainID, chainID)
	}
	if !req.GasLimit.IsSet() || !req.GasLimit.Int().IsUint64() {
		return nil, fmt.Errorf("invalid gas limit: %s", req.GasLimit)
	}

	var data []byte
	if req.Data != "" {
		decoded, err := hexutil.Decode(req.Data)
		if err != nil {
			return nil, errors.Wrap(err, "invalid transaction data")
		}
		data = decoded
	}

	return gethtypes.NewTransaction(
		nonce,
		common.HexToAddress(req.To),
		req.Value.Int(),
		req.GasLimit.Int().Uint64(),
		req.GasPrice.Int(),
		data,
	), nil
}

// sendTokenCall sends a call to the token contract with network gas
// parameters and waits for the receipt
func (e *EVMWallet) sendTokenCall(ctx context.Context, data []byte) (*Receipt, error) {
	nonce, err := e.client.PendingNonceAt(ctx, e.address)
	if err != nil {
		return nil, e.rpcError("eth_getTransactionCount", err)
	}

	gasPrice, err := e.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, e.rpcError("eth_gasPrice", err)
	}

	gasLimit := defaultTokenGasLimit
	estimatedGas, err := e.client.EstimateGas(ctx, ethereum.CallMsg{
		From: e.address,
		To:   &e.token,
		Data: data,
	})
	if err == nil {
		gasLimit = estimatedGas * 120 / 100 // 20% buffer
	}

	tx := gethtypes.NewTransaction(nonce, e.token, big.NewInt(0), gasLimit, gasPrice, data)
	return e.signAndWait(ctx, tx)
}

func (e *EVMWallet) signAndWait(ctx context.Context, tx *gethtypes.Transaction) (*Receipt, error) {
	signedTx, err := gethtypes.SignTx(tx, gethtypes.NewEIP155Signer(big.NewInt(e.config.ChainID)), e.privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	if err := e.client.SendTransaction(ctx, signedTx); err != nil {
		return nil, &types.SubmissionError{Chain: types.ChainEVM, TxHash: signedTx.Hash().Hex(), Reason: "send rejected", Err: err}
	}

	receipt, err := bind.WaitMined(ctx, e.client, signedTx)
	if err != nil {
		return nil, e.rpcError("eth_getTransactionReceipt", err)
	}

	return toReceipt(receipt), nil
}

func toReceipt(r *gethtypes.Receipt) *Receipt {
	out := &Receipt{
		TxHash:  r.TxHash.Hex(),
		Success: r.Status == gethtypes.ReceiptStatusSuccessful,
		GasUsed: r.GasUsed,
	}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.Uint64()
	}
	return out
}

func (e *EVMWallet) callUint256(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	data, err := e.erc20.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to pack %s data", method)
	}

	result, err := e.client.CallContract(ctx, ethereum.CallMsg{To: &e.token, Data: data}, nil)
	if err != nil {
		return nil, e.rpcError(method, err)
	}

	values, err := e.erc20.Unpack(method, result)
	if err != nil || len(values) == 0 {
		return nil, e.rpcError(method, fmt.Errorf("unexpected result %x", result))
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, e.rpcError(method, fmt.Errorf("unexpected result type %T", values[0]))
	}
	return v, nil
}

func (e *EVMWallet) rpcError(op string, err error) error {
	return &types.RPCError{Chain: types.ChainEVM, Op: op, Err: err}
}

// Close closes the client connection
func (e *EVMWallet) Close() {
	if e.client != nil {
		e.client.Close()
	}
}
