package jwt

import (
	"errors"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateTokenPair(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute, 24*time.Hour)
	accountID := uuid.New()

	pair, err := svc.GenerateTokenPair(accountID, "wallet_abc@wallet.castdeck.app")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, accountID, claims.AccountID)
	assert.Equal(t, "wallet_abc@wallet.castdeck.app", claims.IdentityKey)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := NewJWTService("secret-a", time.Minute, time.Hour)
	other := NewJWTService("secret-b", time.Minute, time.Hour)

	pair, err := svc.GenerateTokenPair(uuid.New(), "fid_1@farcaster.castdeck.app")
	require.NoError(t, err)

	_, err = other.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewJWTService("secret", -time.Minute, time.Hour)

	pair, err := svc.GenerateTokenPair(uuid.New(), "fid_1@farcaster.castdeck.app")
	require.NoError(t, err)

	_, err = svc.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSigningMethod(t *testing.T) {
	svc := NewJWTService("secret", time.Minute, time.Hour)

	token := gojwt.NewWithClaims(gojwt.SigningMethodNone, &Claims{AccountID: uuid.New()})
	signed, err := token.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateTokenPair_SignError(t *testing.T) {
	orig := signJWTToken
	t.Cleanup(func() { signJWTToken = orig })

	signJWTToken = func(_ *gojwt.Token, _ []byte) (string, error) {
		return "", errors.New("boom")
	}

	svc := NewJWTService("secret", time.Minute, time.Hour)
	_, err := svc.GenerateTokenPair(uuid.New(), "k")
	assert.Error(t, err)
}
