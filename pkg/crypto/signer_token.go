package crypto

import (
	"encoding/hex"
	"errors"

	"github.com/go-jose/go-jose/v3"
)

// TokenCipher encrypts opaque capability tokens (the Farcaster signer token)
// before they reach the link store. Compact JWE with direct AES-256-GCM, so
// the stored column is self-describing and key rotation shows up in the
// header.
type TokenCipher struct {
	encrypter jose.Encrypter
	key       []byte
}

// NewTokenCipher creates a token cipher from a 64-hex-char key
func NewTokenCipher(encryptionKeyHex string) (*TokenCipher, error) {
	key, err := hex.DecodeString(encryptionKeyHex)
	if err != nil {
		return nil, errors.New("invalid encryption key hex")
	}
	if len(key) != 32 {
		return nil, errors.New("encryption key must be 32 bytes (64 hex chars)")
	}

	encrypter, err := jose.NewEncrypter(
		jose.A256GCM,
		jose.Recipient{Algorithm: jose.DIRECT, Key: key},
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &TokenCipher{encrypter: encrypter, key: key}, nil
}

// Encrypt seals a plaintext token into a compact JWE string
func (c *TokenCipher) Encrypt(plaintext string) (string, error) {
	obj, err := c.encrypter.Encrypt([]byte(plaintext))
	if err != nil {
		return "", err
	}
	return obj.CompactSerialize()
}

// Decrypt opens a compact JWE string produced by Encrypt
func (c *TokenCipher) Decrypt(compact string) (string, error) {
	obj, err := jose.ParseEncrypted(compact)
	if err != nil {
		return "", err
	}
	plaintext, err := obj.Decrypt(c.key)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
