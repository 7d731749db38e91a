package models

import (
	"time"

	"github.com/google/uuid"
)

// LinkRecord is the account-to-identity mapping row. account_id is unique
// (one row per account); wallet_address carries a unique index so a lost
// update between two concurrent linking attempts for the same wallet
// surfaces as a store conflict instead of a second row.
type LinkRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	WalletAddress *string   `gorm:"type:varchar(42);uniqueIndex"`
	FarcasterID   *int64    `gorm:"index"`
	Handle        *string   `gorm:"type:varchar(255)"`
	DisplayName   *string   `gorm:"type:varchar(255)"`
	AvatarURL     *string   `gorm:"type:text"`
	SignerToken   *string   `gorm:"type:text"` // JWE ciphertext
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName sets the table name
func (LinkRecord) TableName() string {
	return "link_records"
}
