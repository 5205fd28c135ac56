package utils

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func setTestKey(t *testing.T) {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	t.Setenv("WALLET_ENCRYPTION_KEY_HEX", hex.EncodeToString(key))
	require.NoError(t, InitEncryptionKey())
}

func TestEncryptDecryptWalletAddress(t *testing.T) {
	setTestKey(t)

	const address = "TXyz123SampleUSDTAddress456789"
	cipherText, err := EncryptWalletAddress(address)
	require.NoError(t, err)
	require.NotEqual(t, address, cipherText)

	plain, err := DecryptWalletAddress(cipherText)
	require.NoError(t, err)
	require.Equal(t, address, plain)

	// Одинаковый открытый текст дает разные шифртексты из-за случайного nonce.
	cipherText2, err := EncryptWalletAddress(address)
	require.NoError(t, err)
	require.NotEqual(t, cipherText, cipherText2)
}

func TestDecryptWalletAddressGarbage(t *testing.T) {
	setTestKey(t)

	_, err := DecryptWalletAddress("не hex")
	require.Error(t, err)

	_, err = DecryptWalletAddress("abcd") // короче nonce
	require.Error(t, err)

	// Валидный hex, но подделанный шифртекст: GCM отвергает.
	cipherText, err := EncryptWalletAddress("TXyz123SampleUSDTAddress456789")
	require.NoError(t, err)
	raw, _ := hex.DecodeString(cipherText)
	raw[len(raw)-1] ^= 0xFF
	_, err = DecryptWalletAddress(hex.EncodeToString(raw))
	require.Error(t, err)
}

func TestInitEncryptionKeyValidation(t *testing.T) {
	t.Setenv("WALLET_ENCRYPTION_KEY_HEX", "")
	require.Error(t, InitEncryptionKey())

	t.Setenv("WALLET_ENCRYPTION_KEY_HEX", "zzzz")
	require.Error(t, InitEncryptionKey())

	// 16 байт вместо 32.
	t.Setenv("WALLET_ENCRYPTION_KEY_HEX", hex.EncodeToString(make([]byte, 16)))
	require.Error(t, InitEncryptionKey())
}
