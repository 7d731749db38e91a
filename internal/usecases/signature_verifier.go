package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	goredis "github.com/redis/go-redis/v9"

	"cast-deck.backend/internal/domain/entities"
	domainerrors "cast-deck.backend/internal/domain/errors"
	"cast-deck.backend/pkg/crypto"
	"cast-deck.backend/pkg/redis"
)

const challengeKeyPrefix = "wallet:challenge:"

// Provider error codes the dashboard forwards when the wallet provider
// never produced a signature
const (
	providerErrNotFound = "provider_not_found"
	providerErrRejected = "user_rejected"
)

// SignatureVerifier issues wallet sign-in challenges and normalizes the
// signed result. Verification is implicit: only the genuine key holder's
// provider can sign the challenge, and a forged signature merely derives
// credentials no existing account was issued under. No recovery is
// performed here.
type SignatureVerifier struct {
	appDomain    string
	challengeTTL time.Duration
}

// NewSignatureVerifier creates a new signature verifier
func NewSignatureVerifier(appDomain string, challengeTTL time.Duration) *SignatureVerifier {
	return &SignatureVerifier{appDomain: appDomain, challengeTTL: challengeTTL}
}

// IssueChallenge builds the canonical challenge for an address and stores
// its nonce single-use with a TTL
func (v *SignatureVerifier) IssueChallenge(ctx context.Context, address string) (*entities.Challenge, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: %q is not a hex address", domainerrors.ErrInvalidInput, address)
	}
	normalized := entities.NormalizeAddress(address)

	nonce, err := crypto.GenerateChallengeNonce()
	if err != nil {
		return nil, err
	}

	issuedAt := time.Now().UTC()
	if err := redis.Set(ctx, challengeKeyPrefix+nonce, normalized, v.challengeTTL); err != nil {
		return nil, fmt.Errorf("%w: storing challenge nonce: %v", domainerrors.ErrStoreUnavailable, err)
	}

	return &entities.Challenge{
		Address:   normalized,
		Message:   v.challengeMessage(normalized, nonce, issuedAt),
		Nonce:     nonce,
		ExpiresAt: issuedAt.Add(v.challengeTTL),
	}, nil
}

// VerifyProof consumes the challenge nonce and normalizes the signed
// result into a WalletProof. Provider-reported failures arrive in the
// input and map to their user-actionable errors.
func (v *SignatureVerifier) VerifyProof(ctx context.Context, input entities.ConnectWalletInput) (*entities.WalletProof, error) {
	switch input.ProviderError {
	case "":
	case providerErrNotFound:
		return nil, domainerrors.ErrProviderUnavailable
	case providerErrRejected:
		return nil, domainerrors.ErrSignatureDeclined
	default:
		return nil, fmt.Errorf("%w: provider reported %q", domainerrors.ErrSignatureDeclined, input.ProviderError)
	}

	if !common.IsHexAddress(input.Address) {
		return nil, fmt.Errorf("%w: %q is not a hex address", domainerrors.ErrInvalidInput, input.Address)
	}
	address := entities.NormalizeAddress(input.Address)

	signature, err := normalizeSignature(input.Signature)
	if err != nil {
		return nil, err
	}

	storedAddress, err := redis.GetDel(ctx, challengeKeyPrefix+input.Nonce)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domainerrors.ErrChallengeExpired
		}
		return nil, fmt.Errorf("%w: reading challenge nonce: %v", domainerrors.ErrStoreUnavailable, err)
	}
	if storedAddress != address {
		return nil, domainerrors.ErrChallengeExpired
	}

	return &entities.WalletProof{
		Address:   address,
		Message:   input.Message,
		Signature: signature,
	}, nil
}

// challengeMessage is the canonical challenge text the provider signs.
// The address, domain, nonce, and timestamp are all embedded so a
// signature is bound to this origin and this attempt.
func (v *SignatureVerifier) challengeMessage(address, nonce string, issuedAt time.Time) string {
	return fmt.Sprintf(
		"%s wants you to sign in with your Ethereum account:\n%s\n\nNonce: %s\nIssued At: %s",
		v.appDomain, address, nonce, issuedAt.Format(time.RFC3339),
	)
}

func normalizeSignature(signature string) (string, error) {
	if signature == "" {
		return "", domainerrors.ErrSignatureDeclined
	}
	normalized := strings.ToLower(strings.TrimSpace(signature))
	if !strings.HasPrefix(normalized, "0x") {
		normalized = "0x" + normalized
	}

	raw, err := hexutil.Decode(normalized)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domainerrors.ErrInvalidSignature, err)
	}
	if len(raw) != 65 {
		return "", fmt.Errorf("%w: expected 65 bytes, got %d", domainerrors.ErrInvalidSignature, len(raw))
	}
	return normalized, nil
}
