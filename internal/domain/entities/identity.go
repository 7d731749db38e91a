package entities

import (
	"strings"
	"time"
)

// IdentityKind distinguishes the two externally-verified identity types
type IdentityKind string

const (
	IdentityKindWallet IdentityKind = "WALLET"
	IdentityKindSocial IdentityKind = "SOCIAL"
)

// WalletProof is a normalized, provider-signed challenge: lower-cased
// 0x address and lower-cased 0x signature over the canonical challenge
// message. Signature validity is not recomputed here; a forged signature
// only ever derives credentials for a fresh, unclaimed account, and the
// hosted auth service still enforces secret correctness on sign-in.
type WalletProof struct {
	Address   string `json:"address"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

// SocialIdentity is a Farcaster account verified via the relay sign-in
// protocol. SignerToken is an opaque capability token for write actions
// on behalf of the account; it may be absent.
type SocialIdentity struct {
	FID         int64  `json:"fid"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	SignerToken string `json:"-"`
}

// Challenge is a server-issued wallet sign-in challenge. The nonce is
// single-use and expires server-side.
type Challenge struct {
	Address   string    `json:"address"`
	Message   string    `json:"message"`
	Nonce     string    `json:"nonce"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ConnectWalletInput is the wallet linking request body. ProviderError
// carries the UI-reported provider failure (user rejection, no injected
// provider) so the API can answer with the matching remedy.
type ConnectWalletInput struct {
	Address       string `json:"address" binding:"required"`
	Message       string `json:"message"`
	Signature     string `json:"signature"`
	Nonce         string `json:"nonce"`
	ProviderError string `json:"providerError,omitempty"`
}

// NormalizeAddress lower-cases a 0x hex address
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
