package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	enc, err := NewAESEncryptor(key)
	require.NoError(t, err)

	plaintext := []byte("ya29.a0AfB_refresh-token-material")

	ciphertext, err := enc.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := enc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptProducesUniqueCiphertexts(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	enc, err := NewAESEncryptor(key)
	require.NoError(t, err)

	a, err := enc.Encrypt([]byte("same input"))
	require.NoError(t, err)
	b, err := enc.Encrypt([]byte("same input"))
	require.NoError(t, err)

	// Random nonce means identical plaintexts never collide
	assert.NotEqual(t, a, b)
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	key1, err := GenerateKey()
	require.NoError(t, err)
	key2, err := GenerateKey()
	require.NoError(t, err)

	enc1, err := NewAESEncryptor(key1)
	require.NoError(t, err)
	enc2, err := NewAESEncryptor(key2)
	require.NoError(t, err)

	ciphertext, err := enc1.Encrypt([]byte("secret"))
	require.NoError(t, err)

	_, err = enc2.Decrypt(ciphertext)
	assert.Error(t, err)
}

func TestDecryptRejectsTamperedData(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	enc, err := NewAESEncryptor(key)
	require.NoError(t, err)

	ciphertext, err := enc.Encrypt([]byte("secret"))
	require.NoError(t, err)

	_, err = enc.Decrypt([]byte("AAAA" + string(ciphertext[4:])))
	assert.Error(t, err)
}

func TestNewAESEncryptorRejectsBadKeyLength(t *testing.T) {
	_, err := NewAESEncryptor([]byte("short"))
	assert.Error(t, err)
}

func TestKeyBase64RoundTrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	decoded, err := DecodeKeyBase64(EncodeKeyBase64(key))
	require.NoError(t, err)
	assert.Equal(t, key, decoded)
}

func TestDecodeKeyBase64RejectsWrongLength(t *testing.T) {
	_, err := DecodeKeyBase64(EncodeKeyBase64([]byte("too short")))
	assert.Error(t, err)
}
