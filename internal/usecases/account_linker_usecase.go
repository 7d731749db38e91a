package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"cast-deck.backend/internal/domain/entities"
	domainerrors "cast-deck.backend/internal/domain/errors"
	"cast-deck.backend/internal/domain/repositories"
	"cast-deck.backend/pkg/logger"
)

// AccountLinker is the orchestration core: given a newly verified identity
// and the current session (if any), it signs in, signs up, merges into an
// existing linked account, or rejects with an actionable conflict, then
// persists the identity-to-account mapping.
//
// Within one attempt the steps run strictly sequentially. Across attempts
// there is no mutual exclusion; the link store's wallet uniqueness index
// turns the resulting lost-update race into a conflict instead of a fork.
type AccountLinker struct {
	sessionStore repositories.SessionStore
	linkRepo     repositories.LinkRepository
	notifier     repositories.Notifier
	deriver      *CredentialDeriver
}

// NewAccountLinker creates a new account linker
func NewAccountLinker(
	sessionStore repositories.SessionStore,
	linkRepo repositories.LinkRepository,
	notifier repositories.Notifier,
	deriver *CredentialDeriver,
) *AccountLinker {
	return &AccountLinker{
		sessionStore: sessionStore,
		linkRepo:     linkRepo,
		notifier:     notifier,
		deriver:      deriver,
	}
}

// LinkWallet links a verified wallet. With a current session the wallet is
// merged into that account; without one the wallet identity signs in or
// signs up, with the cross-link check preventing a duplicate account for a
// wallet already bound elsewhere.
func (l *AccountLinker) LinkWallet(ctx context.Context, proof entities.WalletProof, current *entities.Session) (*entities.LinkResult, error) {
	if current != nil {
		return l.mergeWalletIntoSession(ctx, proof, current)
	}

	variants := l.deriver.WalletVariants(proof)
	currentPair := variants[0]

	session, err := l.sessionStore.SignIn(ctx, currentPair)
	newAccount, healed := false, false
	if err != nil {
		if !errors.Is(err, domainerrors.ErrInvalidCredentials) {
			return nil, err
		}

		// Before creating a brand-new wallet identity, check whether this
		// wallet is already bound under a different (social) account. If
		// so, resolve to that account instead of forking state.
		existing, lookupErr := l.linkRepo.FindByWalletAddress(ctx, proof.Address)
		if lookupErr != nil && !errors.Is(lookupErr, domainerrors.ErrNotFound) {
			return nil, lookupErr
		}
		if existing != nil && existing.HasSocial() {
			return l.adoptSociallyBoundWallet(ctx, proof, existing)
		}

		session, newAccount, healed, err = l.establishSession(ctx, variants)
		if err != nil {
			if errors.Is(err, domainerrors.ErrIdentityTaken) {
				return nil, domainerrors.Conflict(fmt.Sprintf(
					"wallet %s is registered but its credentials could not be reconciled; sign in with the identity that created it", proof.Address))
			}
			return nil, err
		}
	}

	record, err := l.mergeWallet(ctx, session.AccountID, proof.Address)
	if err != nil {
		return nil, err
	}

	l.notifyWallet(ctx, session.AccountID, proof.Address)
	return &entities.LinkResult{Session: session, Record: record, NewAccount: newAccount, Healed: healed}, nil
}

// LinkSocial links a verified Farcaster identity. Display fields refresh
// on every link; wallet fields are never touched.
func (l *AccountLinker) LinkSocial(ctx context.Context, identity entities.SocialIdentity, current *entities.Session) (*entities.LinkResult, error) {
	if identity.FID <= 0 || identity.Handle == "" {
		return nil, fmt.Errorf("%w: social identity needs a positive fid and a handle", domainerrors.ErrInvalidInput)
	}

	var session *entities.Session
	newAccount, healed := false, false

	if current != nil {
		session = current
	} else {
		variants := l.deriver.SocialVariants(identity)
		var err error
		session, err = l.sessionStore.SignIn(ctx, variants[0])
		if err != nil {
			if !errors.Is(err, domainerrors.ErrInvalidCredentials) {
				return nil, err
			}
			session, newAccount, healed, err = l.establishSession(ctx, variants)
			if err != nil {
				if errors.Is(err, domainerrors.ErrIdentityTaken) {
					return nil, domainerrors.Conflict(fmt.Sprintf(
						"@%s is registered but its credentials could not be reconciled; contact support", identity.Handle))
				}
				return nil, err
			}
		}
	}

	record, err := l.mergeSocial(ctx, session.AccountID, identity)
	if err != nil {
		return nil, err
	}

	if nerr := l.notifier.FarcasterConnected(ctx, session.AccountID, identity.FID, identity.Handle); nerr != nil {
		logger.Warn(ctx, "farcaster-connected notification failed", zap.Error(nerr))
	}
	return &entities.LinkResult{Session: session, Record: record, NewAccount: newAccount, Healed: healed}, nil
}

// UnlinkWallet clears the wallet fields of an account's link record
func (l *AccountLinker) UnlinkWallet(ctx context.Context, accountID uuid.UUID) error {
	return l.linkRepo.ClearWallet(ctx, accountID)
}

// GetLink returns the link record for an account
func (l *AccountLinker) GetLink(ctx context.Context, accountID uuid.UUID) (*entities.LinkRecord, error) {
	return l.linkRepo.FindByAccountID(ctx, accountID)
}

// establishSession signs up with the current variant, falling back through
// legacy variants on an already-registered identity key. A legacy sign-in
// success triggers the self-healing migration to the current pair.
//
// Legacy variants issued under a different identity key are tried by
// sign-in before the sign-up: for those, sign-up's already-registered
// signal never fires (the current key is genuinely unclaimed), so signing
// up first would fork a second account for an existing user.
func (l *AccountLinker) establishSession(ctx context.Context, variants []entities.CredentialPair) (session *entities.Session, newAccount, healed bool, err error) {
	currentPair := variants[0]

	for _, legacy := range variants[1:] {
		if legacy.IdentityKey == currentPair.IdentityKey {
			continue
		}
		session, err = l.signInAndMigrate(ctx, legacy, currentPair)
		if err == nil {
			return session, false, true, nil
		}
		if !errors.Is(err, domainerrors.ErrInvalidCredentials) {
			return nil, false, false, err
		}
	}

	session, err = l.sessionStore.SignUp(ctx, currentPair)
	if err == nil {
		return session, true, false, nil
	}
	if !errors.Is(err, domainerrors.ErrIdentityTaken) {
		return nil, false, false, err
	}

	for _, legacy := range variants[1:] {
		if legacy.IdentityKey != currentPair.IdentityKey {
			continue
		}
		session, err = l.signInAndMigrate(ctx, legacy, currentPair)
		if err == nil {
			return session, false, true, nil
		}
		if !errors.Is(err, domainerrors.ErrInvalidCredentials) {
			return nil, false, false, err
		}
	}

	return nil, false, false, domainerrors.ErrIdentityTaken
}

// signInAndMigrate authenticates a legacy pair and, on success, rewrites the
// stored credentials to the current pair so the next sign-in hits the
// current formula directly.
func (l *AccountLinker) signInAndMigrate(ctx context.Context, legacy, currentPair entities.CredentialPair) (*entities.Session, error) {
	session, err := l.sessionStore.SignIn(ctx, legacy)
	if err != nil {
		return nil, err
	}

	if migrateErr := l.sessionStore.UpdateCredentials(ctx, session.AccountID, currentPair); migrateErr != nil {
		// Best effort: the legacy pair still works next time.
		logger.Warn(ctx, "credential migration after legacy sign-in failed",
			zap.String("variant", string(legacy.Variant)), zap.Error(migrateErr))
	} else {
		logger.Info(ctx, "migrated legacy credentials",
			zap.String("from", string(legacy.Variant)), zap.String("to", string(currentPair.Variant)))
	}
	return session, nil
}

// adoptSociallyBoundWallet handles the cross-link case: the wallet already
// lives on a social-bound record, so sign in through that account's social
// credentials and refresh the wallet binding rather than creating a second
// account.
func (l *AccountLinker) adoptSociallyBoundWallet(ctx context.Context, proof entities.WalletProof, existing *entities.LinkRecord) (*entities.LinkResult, error) {
	identity := entities.SocialIdentity{
		FID:    existing.FarcasterID.Int64,
		Handle: existing.Handle.String,
	}

	var session *entities.Session
	var healed bool
	for i, pair := range l.deriver.SocialVariants(identity) {
		s, err := l.sessionStore.SignIn(ctx, pair)
		if err == nil {
			session, healed = s, i > 0
			break
		}
		if !errors.Is(err, domainerrors.ErrInvalidCredentials) {
			return nil, err
		}
	}
	if session == nil {
		return nil, domainerrors.Conflict(fmt.Sprintf(
			"wallet %s is already linked to @%s; sign in with that Farcaster account instead",
			proof.Address, existing.Handle.String))
	}
	if session.AccountID != existing.AccountID {
		return nil, domainerrors.Conflict(fmt.Sprintf(
			"wallet %s is bound to a different account; sign in with @%s instead",
			proof.Address, existing.Handle.String))
	}

	record, err := l.mergeWallet(ctx, session.AccountID, proof.Address)
	if err != nil {
		return nil, err
	}

	l.notifyWallet(ctx, session.AccountID, proof.Address)
	return &entities.LinkResult{Session: session, Record: record, Healed: healed}, nil
}

// mergeWalletIntoSession binds a wallet to an already-authenticated
// account, refusing wallets bound elsewhere
func (l *AccountLinker) mergeWalletIntoSession(ctx context.Context, proof entities.WalletProof, current *entities.Session) (*entities.LinkResult, error) {
	existing, err := l.linkRepo.FindByWalletAddress(ctx, proof.Address)
	if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.AccountID != current.AccountID {
		handle := existing.Handle.String
		if handle == "" {
			handle = "its owning account"
		} else {
			handle = "@" + handle
		}
		return nil, domainerrors.Conflict(fmt.Sprintf(
			"wallet %s is already linked to %s", proof.Address, handle))
	}

	record, err := l.mergeWallet(ctx, current.AccountID, proof.Address)
	if err != nil {
		return nil, err
	}

	l.notifyWallet(ctx, current.AccountID, proof.Address)
	return &entities.LinkResult{Session: current, Record: record}, nil
}

// mergeWallet loads the account's record (if any), sets the wallet fields,
// and upserts. Social fields ride along untouched because the load happens
// first; this read-modify-write is the tolerated race documented on the
// type.
func (l *AccountLinker) mergeWallet(ctx context.Context, accountID uuid.UUID, address string) (*entities.LinkRecord, error) {
	record, err := l.loadOrInit(ctx, accountID)
	if err != nil {
		return nil, err
	}

	record.WalletAddress = null.StringFrom(entities.NormalizeAddress(address))
	if err := l.linkRepo.Upsert(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (l *AccountLinker) mergeSocial(ctx context.Context, accountID uuid.UUID, identity entities.SocialIdentity) (*entities.LinkRecord, error) {
	record, err := l.loadOrInit(ctx, accountID)
	if err != nil {
		return nil, err
	}

	record.FarcasterID = null.Int64From(identity.FID)
	record.Handle = null.StringFrom(normalizeHandle(identity.Handle))
	if identity.DisplayName != "" {
		record.DisplayName = null.StringFrom(identity.DisplayName)
	}
	if identity.AvatarURL != "" {
		record.AvatarURL = null.StringFrom(identity.AvatarURL)
	}
	if identity.SignerToken != "" {
		record.SignerToken = null.StringFrom(identity.SignerToken)
	}

	if err := l.linkRepo.Upsert(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (l *AccountLinker) loadOrInit(ctx context.Context, accountID uuid.UUID) (*entities.LinkRecord, error) {
	record, err := l.linkRepo.FindByAccountID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrNotFound) {
			return nil, err
		}
		record = &entities.LinkRecord{AccountID: accountID}
	}
	return record, nil
}

func (l *AccountLinker) notifyWallet(ctx context.Context, accountID uuid.UUID, address string) {
	if err := l.notifier.WalletConnected(ctx, accountID, entities.NormalizeAddress(address)); err != nil {
		logger.Warn(ctx, "wallet-connected notification failed", zap.Error(err))
	}
}
