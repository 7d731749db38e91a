package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

var randomRead = rand.Read

// GenerateRandomToken generates a random hex token of the given byte length
func GenerateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := randomRead(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateChallengeNonce generates the 32-character nonce embedded in a
// wallet sign-in challenge
func GenerateChallengeNonce() (string, error) {
	return GenerateRandomToken(16) // 16 bytes = 32 hex characters
}
