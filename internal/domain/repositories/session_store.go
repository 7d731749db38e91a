package repositories

import (
	"context"

	"github.com/google/uuid"
	"cast-deck.backend/internal/domain/entities"
)

// SessionStore is the hosted auth service. It knows nothing about wallets
// or social ids, only identity-key/secret pairs; sign-up errors distinguish
// "already registered" (domainerrors.ErrIdentityTaken) from other failures.
type SessionStore interface {
	SignIn(ctx context.Context, creds entities.CredentialPair) (*entities.Session, error)
	SignUp(ctx context.Context, creds entities.CredentialPair) (*entities.Session, error)
	GetUser(ctx context.Context, accessToken string) (*entities.Session, error)
	// UpdateCredentials rewrites an account's identity key and secret
	// (admin-scoped), used by the self-healing legacy-credential migration.
	// Rotating the key along with the secret is what lets the current
	// derivation formula sign in directly afterwards, even for accounts
	// issued under a formula with a different key.
	UpdateCredentials(ctx context.Context, accountID uuid.UUID, creds entities.CredentialPair) error
}
