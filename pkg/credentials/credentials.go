package credentials

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/ed25519"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"usdc-mover/pkg/types"
)

// LoadSolanaKey reads a Base58-encoded 64-byte Solana keypair from a file
func LoadSolanaKey(path string) (solana.PrivateKey, error) {
	content, err := readKeyFile(path)
	if err != nil {
		return nil, err
	}

	key, err := ParseSolanaKey(content)
	if err != nil {
		return nil, &types.ConfigError{Path: path, Err: err}
	}
	return key, nil
}

// ParseSolanaKey decodes a Base58 keypair and checks that its public half
// matches the seed
func ParseSolanaKey(encoded string) (solana.PrivateKey, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("private key is not valid base58: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length: expected %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}

	derived := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	if !bytes.Equal(derived[ed25519.SeedSize:], raw[ed25519.SeedSize:]) {
		return nil, fmt.Errorf("public key does not match private key seed")
	}

	return solana.PrivateKey(raw), nil
}

// LoadEVMKey reads a hex-encoded secp256k1 private key from a file
func LoadEVMKey(path string) (*ecdsa.PrivateKey, error) {
	content, err := readKeyFile(path)
	if err != nil {
		return nil, err
	}

	key, err := ParseEVMKey(content)
	if err != nil {
		return nil, &types.ConfigError{Path: path, Err: err}
	}
	return key, nil
}

// ParseEVMKey decodes a hex private key with or without 0x prefix
func ParseEVMKey(encoded string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimPrefix(encoded, "0x"), "0X"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

func readKeyFile(path string) (string, error) {
	if path == "" {
		return "", &types.ConfigError{Err: fmt.Errorf("key file path is empty")}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &types.ConfigError{Path: path, Err: err}
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", &types.ConfigError{Path: path, Err: fmt.Errorf("key file is empty")}
	}
	return content, nil
}
