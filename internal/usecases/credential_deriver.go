package usecases

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/pbkdf2"

	"cast-deck.backend/internal/domain/entities"
)

const (
	walletKeyDomain    = "wallet.castdeck.app"
	socialKeyDomain    = "farcaster.castdeck.app"
	legacyKeyDomain    = "castdeck.app"
	walletSigPrefixLen = 66 // "0x" + 32 bytes of the signature
	walletSaltLen      = 8
	pbkdf2Iterations   = 4096
	pbkdf2KeyLen       = 24
)

// CredentialDeriver computes the synthetic credential pairs that drive the
// session store. Derivation is pure: the same stable inputs always yield
// the same pair, across devices and across time.
//
// The social variants deliberately exclude proof material so a fresh
// sign-in (which produces a new signature every time) re-derives the same
// secret. Both inputs are public, so anyone who knows a fid and handle can
// compute the secret offline; the session store still refuses a sign-in
// against an identity key claimed with a different secret, but an
// unclaimed identity could be seed-claimed by an attacker first. Open
// risk, tracked in DESIGN.md.
type CredentialDeriver struct{}

// NewCredentialDeriver creates a new credential deriver
func NewCredentialDeriver() *CredentialDeriver {
	return &CredentialDeriver{}
}

// WalletVariants returns every wallet derivation, current formula first.
// Sign-in tries them in order; anything past index 0 succeeding means the
// account was issued under a legacy formula and needs its secret rotated.
func (d *CredentialDeriver) WalletVariants(proof entities.WalletProof) []entities.CredentialPair {
	return []entities.CredentialPair{
		d.walletV2(proof),
		d.walletV1(proof),
	}
}

// SocialVariants returns every social derivation, current formula first
func (d *CredentialDeriver) SocialVariants(identity entities.SocialIdentity) []entities.CredentialPair {
	return []entities.CredentialPair{
		d.socialV2(identity),
		d.socialV1(identity),
		d.socialV0(identity),
	}
}

// walletV2 derives the current wallet pair. The secret stretches a fixed
// signature prefix with an address fragment as salt, so only the holder of
// the signing key can reproduce it; the address alone is not enough.
func (d *CredentialDeriver) walletV2(proof entities.WalletProof) entities.CredentialPair {
	address := entities.NormalizeAddress(proof.Address)
	sigPrefix := fixedPrefix(strings.ToLower(proof.Signature), walletSigPrefixLen)
	salt := fixedSuffix(address, walletSaltLen)

	key := pbkdf2.Key([]byte(sigPrefix), []byte(salt), pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
	return entities.CredentialPair{
		IdentityKey: walletIdentityKey(address),
		Secret:      "w2_" + hex.EncodeToString(key),
		Variant:     entities.WalletV2,
	}
}

// walletV1 is the original concatenation formula, kept for accounts issued
// before the pbkdf2 migration
func (d *CredentialDeriver) walletV1(proof entities.WalletProof) entities.CredentialPair {
	address := entities.NormalizeAddress(proof.Address)
	sig := strings.TrimPrefix(strings.ToLower(proof.Signature), "0x")
	return entities.CredentialPair{
		IdentityKey: walletIdentityKey(address),
		Secret:      fixedPrefix(sig, 32) + fixedSuffix(address, 6),
		Variant:     entities.WalletV1,
	}
}

func (d *CredentialDeriver) socialV2(identity entities.SocialIdentity) entities.CredentialPair {
	handle := normalizeHandle(identity.Handle)
	digest := ethcrypto.Keccak256([]byte(fmt.Sprintf("fid:%d|handle:%s", identity.FID, handle)))
	return entities.CredentialPair{
		IdentityKey: fmt.Sprintf("fid_%d@%s", identity.FID, socialKeyDomain),
		Secret:      "f2_" + hex.EncodeToString(digest)[:40],
		Variant:     entities.SocialV2,
	}
}

func (d *CredentialDeriver) socialV1(identity entities.SocialIdentity) entities.CredentialPair {
	handle := normalizeHandle(identity.Handle)
	return entities.CredentialPair{
		IdentityKey: fmt.Sprintf("fid_%d@%s", identity.FID, socialKeyDomain),
		Secret:      fmt.Sprintf("fc_%d_%s", identity.FID, handle),
		Variant:     entities.SocialV1,
	}
}

// socialV0 predates the farcaster subdomain split; both the key and the
// secret use the old flat format
func (d *CredentialDeriver) socialV0(identity entities.SocialIdentity) entities.CredentialPair {
	handle := normalizeHandle(identity.Handle)
	return entities.CredentialPair{
		IdentityKey: fmt.Sprintf("farcaster_%d@%s", identity.FID, legacyKeyDomain),
		Secret:      fmt.Sprintf("farcaster_%d_%s", identity.FID, handle),
		Variant:     entities.SocialV0,
	}
}

func walletIdentityKey(address string) string {
	return "wallet_" + strings.TrimPrefix(address, "0x") + "@" + walletKeyDomain
}

func normalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

func fixedPrefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func fixedSuffix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
