package notifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"cast-deck.backend/internal/domain/entities"
	"cast-deck.backend/pkg/redis"
)

// Event names consumed by dashboard views to reload connection state
const (
	EventWalletConnected    = "wallet-connected"
	EventFarcasterConnected = "farcaster-connected"
)

// Event is the envelope published after successful persistence
type Event struct {
	Name      string                `json:"event"`
	Kind      entities.IdentityKind `json:"kind"`
	AccountID uuid.UUID             `json:"accountId"`
	Address   string                `json:"address,omitempty"`
	FID       int64                 `json:"fid,omitempty"`
	Handle    string                `json:"handle,omitempty"`
	At        time.Time             `json:"at"`
}

// RedisNotifier publishes connection events on a per-account channel
type RedisNotifier struct {
	channelPrefix string
}

// NewRedisNotifier creates a notifier publishing under the given prefix
func NewRedisNotifier(channelPrefix string) *RedisNotifier {
	if channelPrefix == "" {
		channelPrefix = "castdeck:events:"
	}
	return &RedisNotifier{channelPrefix: channelPrefix}
}

// WalletConnected signals that a wallet was linked and persisted
func (n *RedisNotifier) WalletConnected(ctx context.Context, accountID uuid.UUID, address string) error {
	return n.publish(ctx, Event{
		Name:      EventWalletConnected,
		Kind:      entities.IdentityKindWallet,
		AccountID: accountID,
		Address:   address,
		At:        time.Now(),
	})
}

// FarcasterConnected signals that a Farcaster account was linked and persisted
func (n *RedisNotifier) FarcasterConnected(ctx context.Context, accountID uuid.UUID, fid int64, handle string) error {
	return n.publish(ctx, Event{
		Name:      EventFarcasterConnected,
		Kind:      entities.IdentityKindSocial,
		AccountID: accountID,
		FID:       fid,
		Handle:    handle,
		At:        time.Now(),
	})
}

func (n *RedisNotifier) publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return redis.Publish(ctx, n.channelPrefix+event.AccountID.String(), payload)
}
