package credentials

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"

	"usdc-mover/pkg/types"
)

func writeKey(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "account.key")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadSolanaKey(t *testing.T) {
	wallet := solana.NewWallet()
	path := writeKey(t, wallet.PrivateKey.String()+"\n")

	key, err := LoadSolanaKey(path)
	require.NoError(t, err)
	require.Equal(t, wallet.PublicKey(), key.PublicKey())
}

func TestLoadSolanaKeyRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", "   \n"},
		{"not base58", "0OIl"},
		{"short", base58.Encode(make([]byte, 32))},
		{"mismatched halves", base58.Encode(make([]byte, 64))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSolanaKey(writeKey(t, tt.content))

			var cfgErr *types.ConfigError
			require.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestLoadEVMKey(t *testing.T) {
	priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	encoded := hex.EncodeToString(crypto.FromECDSA(priv))

	for _, content := range []string{encoded, "0x" + encoded, encoded + "\n"} {
		key, err := LoadEVMKey(writeKey(t, content))
		require.NoError(t, err)
		require.Equal(t, crypto.PubkeyToAddress(priv.PublicKey), crypto.PubkeyToAddress(key.PublicKey))
	}
}

func TestLoadEVMKeyErrors(t *testing.T) {
	_, err := LoadEVMKey(writeKey(t, "not-hex"))
	var cfgErr *types.ConfigError
	require.True(t, errors.As(err, &cfgErr))

	_, err = LoadEVMKey(filepath.Join(t.TempDir(), "missing.key"))
	require.True(t, errors.As(err, &cfgErr))
	require.True(t, errors.Is(err, os.ErrNotExist))
}
