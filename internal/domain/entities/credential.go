package entities

// DerivationVariant identifies a historical credential derivation formula.
// Sign-in tries the current variant first, then legacy variants in order.
type DerivationVariant string

const (
	// WalletV2 is the current wallet formula: pbkdf2 over a signature
	// prefix salted with an address fragment.
	WalletV2 DerivationVariant = "WALLET_V2"
	// WalletV1 concatenated a signature prefix and address fragment
	// directly.
	WalletV1 DerivationVariant = "WALLET_V1"

	// SocialV2 is the current social formula: keccak256 over fid and
	// handle.
	SocialV2 DerivationVariant = "SOCIAL_V2"
	// SocialV1 concatenated fid and handle.
	SocialV1 DerivationVariant = "SOCIAL_V1"
	// SocialV0 used the old identity-key domain before the farcaster
	// subdomain split.
	SocialV0 DerivationVariant = "SOCIAL_V0"
)

// CredentialPair is the synthetic (identity key, secret) pair driving the
// hosted auth service. Never persisted; re-derived from stable identity
// inputs on every attempt.
type CredentialPair struct {
	IdentityKey string
	Secret      string
	Variant     DerivationVariant
}
