package crypto

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateChallengeNonce(t *testing.T) {
	nonce, err := GenerateChallengeNonce()
	require.NoError(t, err)
	assert.Len(t, nonce, 32)

	other, err := GenerateChallengeNonce()
	require.NoError(t, err)
	assert.NotEqual(t, nonce, other)
}

func TestGenerateRandomToken_ReadError(t *testing.T) {
	orig := randomRead
	t.Cleanup(func() { randomRead = orig })

	randomRead = func(_ []byte) (int, error) { return 0, errors.New("entropy down") }
	_, err := GenerateRandomToken(16)
	assert.Error(t, err)
}

func TestTokenCipher_RoundTrip(t *testing.T) {
	key := strings.Repeat("ab", 32)
	cipher, err := NewTokenCipher(key)
	require.NoError(t, err)

	ciphertext, err := cipher.Encrypt("signer-token-secret")
	require.NoError(t, err)
	assert.NotContains(t, ciphertext, "signer-token-secret")

	plaintext, err := cipher.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "signer-token-secret", plaintext)
}

func TestTokenCipher_BadKey(t *testing.T) {
	_, err := NewTokenCipher("zz")
	assert.Error(t, err)

	_, err = NewTokenCipher("abcd") // too short
	assert.Error(t, err)
}

func TestTokenCipher_DecryptGarbage(t *testing.T) {
	cipher, err := NewTokenCipher(strings.Repeat("cd", 32))
	require.NoError(t, err)

	_, err = cipher.Decrypt("not-a-jwe")
	assert.Error(t, err)
}

func TestTokenCipher_WrongKey(t *testing.T) {
	a, err := NewTokenCipher(strings.Repeat("ab", 32))
	require.NoError(t, err)
	b, err := NewTokenCipher(strings.Repeat("cd", 32))
	require.NoError(t, err)

	ciphertext, err := a.Encrypt("tok")
	require.NoError(t, err)

	_, err = b.Decrypt(ciphertext)
	assert.Error(t, err)
}
