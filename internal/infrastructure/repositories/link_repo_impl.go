package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cast-deck.backend/internal/domain/entities"
	domainerrors "cast-deck.backend/internal/domain/errors"
	"cast-deck.backend/internal/infrastructure/models"
	"cast-deck.backend/pkg/crypto"
)

// LinkRepository implements link record persistence on gorm. The signer
// token is encrypted before it touches the row and decrypted on the way
// out; callers only ever see plaintext.
type LinkRepository struct {
	db     *gorm.DB
	cipher *crypto.TokenCipher
}

// NewLinkRepository creates a new link repository
func NewLinkRepository(db *gorm.DB, cipher *crypto.TokenCipher) *LinkRepository {
	return &LinkRepository{db: db, cipher: cipher}
}

// Upsert writes the record, conflicting on account_id. The caller is
// responsible for merging in previously-set fields of the other identity
// kind before calling; every column is assigned on conflict.
func (r *LinkRepository) Upsert(ctx context.Context, record *entities.LinkRecord) error {
	m, err := r.toModel(record)
	if err != nil {
		return err
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"wallet_address", "farcaster_id", "handle",
			"display_name", "avatar_url", "signer_token", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		if isUniqueViolation(err) {
			// The wallet_address index fired: another account claimed this
			// wallet between our read and this write.
			return domainerrors.ErrLinkConflict
		}
		return err
	}

	record.ID = m.ID
	record.CreatedAt = m.CreatedAt
	record.UpdatedAt = m.UpdatedAt
	return nil
}

// FindByAccountID gets the link record owned by an account
func (r *LinkRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*entities.LinkRecord, error) {
	var m models.LinkRecord
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m)
}

// FindByWalletAddress gets the link record binding a wallet, if any
func (r *LinkRepository) FindByWalletAddress(ctx context.Context, address string) (*entities.LinkRecord, error) {
	var m models.LinkRecord
	normalized := entities.NormalizeAddress(address)
	if err := r.db.WithContext(ctx).Where("wallet_address = ?", normalized).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m)
}

// ClearWallet unlinks the wallet from an account's record. Social fields
// are untouched; the row itself is never deleted here.
func (r *LinkRepository) ClearWallet(ctx context.Context, accountID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.LinkRecord{}).
		Where("account_id = ?", accountID).
		Updates(map[string]interface{}{
			"wallet_address": nil,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *LinkRepository) toModel(e *entities.LinkRecord) (*models.LinkRecord, error) {
	m := &models.LinkRecord{
		ID:            e.ID,
		AccountID:     e.AccountID,
		WalletAddress: stringPtr(e.WalletAddress),
		FarcasterID:   int64Ptr(e.FarcasterID),
		Handle:        stringPtr(e.Handle),
		DisplayName:   stringPtr(e.DisplayName),
		AvatarURL:     stringPtr(e.AvatarURL),
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
	if e.SignerToken.Valid && e.SignerToken.String != "" {
		sealed, err := r.cipher.Encrypt(e.SignerToken.String)
		if err != nil {
			return nil, err
		}
		m.SignerToken = &sealed
	}
	return m, nil
}

func (r *LinkRepository) toEntity(m *models.LinkRecord) (*entities.LinkRecord, error) {
	e := &entities.LinkRecord{
		ID:            m.ID,
		AccountID:     m.AccountID,
		WalletAddress: null.StringFromPtr(m.WalletAddress),
		FarcasterID:   null.Int64FromPtr(m.FarcasterID),
		Handle:        null.StringFromPtr(m.Handle),
		DisplayName:   null.StringFromPtr(m.DisplayName),
		AvatarURL:     null.StringFromPtr(m.AvatarURL),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.SignerToken != nil && *m.SignerToken != "" {
		plain, err := r.cipher.Decrypt(*m.SignerToken)
		if err != nil {
			return nil, err
		}
		e.SignerToken = null.StringFrom(plain)
	}
	return e, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	// sqlite (tests) reports constraint failures as plain strings
	return err != nil &&
		(strings.Contains(err.Error(), "UNIQUE constraint failed") ||
			strings.Contains(err.Error(), "duplicate key value"))
}

func stringPtr(v null.String) *string {
	if !v.Valid || v.String == "" {
		return nil
	}
	s := v.String
	return &s
}

func int64Ptr(v null.Int64) *int64 {
	if !v.Valid || v.Int64 == 0 {
		return nil
	}
	n := v.Int64
	return &n
}
