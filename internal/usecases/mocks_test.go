package usecases_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"cast-deck.backend/internal/domain/entities"
	"cast-deck.backend/internal/infrastructure/relay"
)

// Mock SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) SignIn(ctx context.Context, pair entities.CredentialPair) (*entities.Session, error) {
	args := m.Called(ctx, pair)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Session), args.Error(1)
}

func (m *MockSessionStore) SignUp(ctx context.Context, pair entities.CredentialPair) (*entities.Session, error) {
	args := m.Called(ctx, pair)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Session), args.Error(1)
}

func (m *MockSessionStore) GetUser(ctx context.Context, accessToken string) (*entities.Session, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Session), args.Error(1)
}

func (m *MockSessionStore) UpdateCredentials(ctx context.Context, accountID uuid.UUID, creds entities.CredentialPair) error {
	return m.Called(ctx, accountID, creds).Error(0)
}

// Mock LinkRepository
type MockLinkRepository struct {
	mock.Mock
}

func (m *MockLinkRepository) Upsert(ctx context.Context, record *entities.LinkRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockLinkRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*entities.LinkRecord, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LinkRecord), args.Error(1)
}

func (m *MockLinkRepository) FindByWalletAddress(ctx context.Context, address string) (*entities.LinkRecord, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LinkRecord), args.Error(1)
}

func (m *MockLinkRepository) ClearWallet(ctx context.Context, accountID uuid.UUID) error {
	return m.Called(ctx, accountID).Error(0)
}

// Mock Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) WalletConnected(ctx context.Context, accountID uuid.UUID, address string) error {
	return m.Called(ctx, accountID, address).Error(0)
}

func (m *MockNotifier) FarcasterConnected(ctx context.Context, accountID uuid.UUID, fid int64, handle string) error {
	return m.Called(ctx, accountID, fid, handle).Error(0)
}

// Mock RelayChannels
type MockRelay struct {
	mock.Mock
}

func (m *MockRelay) CreateChannel(ctx context.Context, nonce string) (*relay.Channel, error) {
	args := m.Called(ctx, nonce)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*relay.Channel), args.Error(1)
}

func (m *MockRelay) Poll(ctx context.Context, channelToken string) (*relay.Status, error) {
	args := m.Called(ctx, channelToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*relay.Status), args.Error(1)
}

// Mock social linker (matches AccountLinker.LinkSocial)
type MockSocialLinker struct {
	mock.Mock
}

func (m *MockSocialLinker) LinkSocial(ctx context.Context, identity entities.SocialIdentity, current *entities.Session) (*entities.LinkResult, error) {
	args := m.Called(ctx, identity, current)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LinkResult), args.Error(1)
}
