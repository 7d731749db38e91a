package usecases_test

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"

	"cast-deck.backend/internal/domain/entities"
	"cast-deck.backend/internal/usecases"
)

func TestWalletVariants_OrderAndFormat(t *testing.T) {
	d := usecases.NewCredentialDeriver()
	variants := d.WalletVariants(testProof)

	require.Len(t, variants, 2)
	assert.Equal(t, entities.WalletV2, variants[0].Variant)
	assert.Equal(t, entities.WalletV1, variants[1].Variant)

	// identity key is address-derived and shared across variants
	want := "wallet_abc0000000000000000000000000000000000001@wallet.castdeck.app"
	assert.Equal(t, want, variants[0].IdentityKey)
	assert.Equal(t, want, variants[1].IdentityKey)

	assert.Equal(t, "w2_", variants[0].Secret[:3])
	assert.Len(t, variants[0].Secret, 3+48) // 24-byte key hex-encoded
}

func TestWalletV2_MatchesDerivationFormula(t *testing.T) {
	d := usecases.NewCredentialDeriver()
	pair := d.WalletVariants(testProof)[0]

	address := "0xabc0000000000000000000000000000000000001"
	sigPrefix := testProof.Signature[:66]
	salt := address[len(address)-8:]
	key := pbkdf2.Key([]byte(sigPrefix), []byte(salt), 4096, 24, sha256.New)

	assert.Equal(t, "w2_"+hex.EncodeToString(key), pair.Secret)
}

func TestWalletV1_MatchesLegacyFormula(t *testing.T) {
	d := usecases.NewCredentialDeriver()
	pair := d.WalletVariants(testProof)[1]

	sig := testProof.Signature[2:] // no 0x
	address := "0xabc0000000000000000000000000000000000001"
	assert.Equal(t, sig[:32]+address[len(address)-6:], pair.Secret)
}

func TestWalletVariants_Deterministic(t *testing.T) {
	d := usecases.NewCredentialDeriver()

	// mixed-case address and signature normalize to the same pairs
	upper := testProof
	upper.Address = "0xABC0000000000000000000000000000000000001"

	assert.Equal(t, d.WalletVariants(testProof), d.WalletVariants(upper))
	assert.Equal(t, d.WalletVariants(testProof), d.WalletVariants(testProof))
}

func TestSocialVariants_OrderAndFormat(t *testing.T) {
	d := usecases.NewCredentialDeriver()
	variants := d.SocialVariants(testIdentity)

	require.Len(t, variants, 3)
	assert.Equal(t, entities.SocialV2, variants[0].Variant)
	assert.Equal(t, entities.SocialV1, variants[1].Variant)
	assert.Equal(t, entities.SocialV0, variants[2].Variant)

	assert.Equal(t, "fid_4242@farcaster.castdeck.app", variants[0].IdentityKey)
	assert.Equal(t, "fid_4242@farcaster.castdeck.app", variants[1].IdentityKey)
	assert.Equal(t, "farcaster_4242@castdeck.app", variants[2].IdentityKey)

	digest := ethcrypto.Keccak256([]byte("fid:4242|handle:alice"))
	assert.Equal(t, "f2_"+hex.EncodeToString(digest)[:40], variants[0].Secret)
	assert.Equal(t, "fc_4242_alice", variants[1].Secret)
	assert.Equal(t, "farcaster_4242_alice", variants[2].Secret)
}

func TestSocialVariants_HandleNormalization(t *testing.T) {
	d := usecases.NewCredentialDeriver()

	decorated := testIdentity
	decorated.Handle = " @Alice "
	assert.Equal(t, d.SocialVariants(testIdentity), d.SocialVariants(decorated))
}

func TestSocialVariants_ExcludeProofMaterial(t *testing.T) {
	d := usecases.NewCredentialDeriver()

	// a fresh sign-in carries a different signer token; derivation must not
	// depend on it or re-auth would mint a second account
	withToken := testIdentity
	withToken.SignerToken = "per-session-token"
	assert.Equal(t, d.SocialVariants(testIdentity), d.SocialVariants(withToken))
}
