package repositories

import (
	"context"

	"github.com/google/uuid"
)

// Notifier fans out connection events after successful persistence so
// dependent views reload their linking state.
type Notifier interface {
	WalletConnected(ctx context.Context, accountID uuid.UUID, address string) error
	FarcasterConnected(ctx context.Context, accountID uuid.UUID, fid int64, handle string) error
}
