package repositories

import (
	"context"

	"github.com/google/uuid"
	"cast-deck.backend/internal/domain/entities"
)

// LinkRepository persists the account-to-identity mapping, one row per
// account. Upsert conflicts on account_id and must never clear fields of
// the identity kind it is not carrying.
type LinkRepository interface {
	Upsert(ctx context.Context, record *entities.LinkRecord) error
	FindByAccountID(ctx context.Context, accountID uuid.UUID) (*entities.LinkRecord, error)
	FindByWalletAddress(ctx context.Context, address string) (*entities.LinkRecord, error)
	// ClearWallet unlinks a wallet: wallet fields only, social fields stay.
	ClearWallet(ctx context.Context, accountID uuid.UUID) error
}
