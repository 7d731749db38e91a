package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// LinkRecord is the persisted mapping between one account and its bound
// identities, at most one row per account. Wallet fields, social fields,
// both, or (transiently) neither may be set. Once both are set, sign-in
// through either identity must resolve to the same account; this row is
// the only place that records the association.
type LinkRecord struct {
	ID            uuid.UUID   `json:"id"`
	AccountID     uuid.UUID   `json:"accountId"`
	WalletAddress null.String `json:"walletAddress,omitempty"`
	FarcasterID   null.Int64  `json:"farcasterId,omitempty"`
	Handle        null.String `json:"handle,omitempty"`
	DisplayName   null.String `json:"displayName,omitempty"`
	AvatarURL     null.String `json:"avatarUrl,omitempty"`
	SignerToken   null.String `json:"-"` // stored encrypted
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// HasWallet reports whether wallet fields are populated
func (r *LinkRecord) HasWallet() bool {
	return r.WalletAddress.Valid && r.WalletAddress.String != ""
}

// HasSocial reports whether social fields are populated
func (r *LinkRecord) HasSocial() bool {
	return r.FarcasterID.Valid && r.FarcasterID.Int64 > 0
}

// LinkResult is what a completed linking attempt hands back to the caller
type LinkResult struct {
	Session    *Session    `json:"session"`
	Record     *LinkRecord `json:"record"`
	NewAccount bool        `json:"newAccount"`
	// Healed is set when a legacy-variant sign-in succeeded and the
	// stored secret was rotated to the current formula.
	Healed bool `json:"healed,omitempty"`
}
