package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"cast-deck.backend/internal/domain/entities"
	domainerrors "cast-deck.backend/internal/domain/errors"
	"cast-deck.backend/internal/infrastructure/relay"
	"cast-deck.backend/pkg/crypto"
	"cast-deck.backend/pkg/logger"
)

const (
	// maxChannelAuthErrors is how many consecutive token rejections a
	// channel absorbs before it is silently replaced.
	maxChannelAuthErrors = 3
	// maxChannelRecreations bounds replacement so a relay that rejects
	// everything cannot keep an attempt alive forever.
	maxChannelRecreations = 2
)

// RelayChannels is the slice of the relay client the sign-in flow needs
type RelayChannels interface {
	CreateChannel(ctx context.Context, nonce string) (*relay.Channel, error)
	Poll(ctx context.Context, channelToken string) (*relay.Status, error)
}

// socialLinker is the linking step invoked once a completion payload is
// extracted; satisfied by *AccountLinker.
type socialLinker interface {
	LinkSocial(ctx context.Context, identity entities.SocialIdentity, current *entities.Session) (*entities.LinkResult, error)
}

// FarcasterSignin drives out-of-band Farcaster sign-ins through the relay.
// Each Begin opens a channel and a server-side poll loop; callers observe
// progress through Status, which also serves as the fallback poll so a
// completion landing between ticks is not missed. Completion side effects
// run at most once per attempt regardless of how many polls observe the
// completed state.
type FarcasterSignin struct {
	relay        RelayChannels
	linker       socialLinker
	pollInterval time.Duration

	mu       sync.Mutex
	attempts map[string]*signinAttempt
}

// signinAttempt is one in-flight sign-in. Its mutex covers every field and
// is held across a poll round trip, so the ticker loop and a concurrent
// Status fallback poll serialize instead of racing the completion handler.
type signinAttempt struct {
	mu sync.Mutex

	key     string // registry key: the first channel's token
	channel *relay.Channel
	current *entities.Session

	state     entities.SigninState
	expiresAt time.Time
	result    *entities.LinkResult
	errMsg    string

	processed   bool
	authErrors  int
	recreations int
	reconnected bool

	cancel context.CancelFunc
}

// NewFarcasterSignin creates the sign-in flow
func NewFarcasterSignin(relayClient RelayChannels, linker socialLinker, pollInterval time.Duration) *FarcasterSignin {
	return &FarcasterSignin{
		relay:        relayClient,
		linker:       linker,
		pollInterval: pollInterval,
		attempts:     make(map[string]*signinAttempt),
	}
}

// Begin opens a relay channel and starts polling it. The returned session's
// ChannelToken is the handle for Status and Cancel; its ConnectURI is what
// the dashboard renders as a QR code / deep link. current, when non-nil,
// makes a successful sign-in merge into that account.
func (f *FarcasterSignin) Begin(ctx context.Context, current *entities.Session) (*entities.SigninSession, error) {
	nonce, err := crypto.GenerateChallengeNonce()
	if err != nil {
		return nil, err
	}

	channel, err := f.relay.CreateChannel(ctx, nonce)
	if err != nil {
		// One immediate retry covers a dropped connection; anything past
		// that is the relay being down.
		channel, err = f.relay.CreateChannel(ctx, nonce)
		if err != nil {
			return nil, err
		}
	}

	att := &signinAttempt{
		key:       channel.Token,
		channel:   channel,
		current:   current,
		state:     entities.SigninConnecting,
		expiresAt: channel.ExpiresAt,
	}

	loopCtx, cancel := context.WithDeadline(context.Background(), channel.ExpiresAt)
	att.cancel = cancel

	f.mu.Lock()
	f.attempts[att.key] = att
	f.mu.Unlock()

	go f.pollLoop(loopCtx, att)

	att.mu.Lock()
	snapshot := att.snapshotLocked()
	att.mu.Unlock()
	return snapshot, nil
}

// Status reports an attempt's current position. While the attempt is not
// terminal it also performs one immediate poll, so a caller checking right
// after the companion app signed sees the success without waiting a tick.
func (f *FarcasterSignin) Status(ctx context.Context, channelToken string) (*entities.SigninSession, error) {
	att, ok := f.lookup(channelToken)
	if !ok {
		return nil, domainerrors.ErrNotFound
	}

	att.mu.Lock()
	defer att.mu.Unlock()
	if !att.terminalLocked() {
		f.pollOnceLocked(ctx, att)
	}
	return att.snapshotLocked(), nil
}

// Cancel abandons an attempt and evicts it
func (f *FarcasterSignin) Cancel(ctx context.Context, channelToken string) error {
	att, ok := f.lookup(channelToken)
	if !ok {
		return domainerrors.ErrNotFound
	}

	att.cancel()
	f.mu.Lock()
	delete(f.attempts, channelToken)
	f.mu.Unlock()
	return nil
}

// Sweep evicts attempts whose channel TTL has passed and returns how many
// were removed. Terminal results stay fetchable until then.
func (f *FarcasterSignin) Sweep(now time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	removed := 0
	for key, att := range f.attempts {
		att.mu.Lock()
		expired := now.After(att.expiresAt)
		att.mu.Unlock()
		if expired {
			att.cancel()
			delete(f.attempts, key)
			removed++
		}
	}
	return removed
}

func (f *FarcasterSignin) lookup(channelToken string) (*signinAttempt, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	att, ok := f.attempts[channelToken]
	return att, ok
}

func (f *FarcasterSignin) pollLoop(ctx context.Context, att *signinAttempt) {
	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			att.mu.Lock()
			if !att.terminalLocked() {
				att.state = entities.SigninErrored
				att.errMsg = "sign-in expired before completion"
			}
			att.mu.Unlock()
			return
		case <-ticker.C:
			att.mu.Lock()
			f.pollOnceLocked(ctx, att)
			done := att.terminalLocked()
			att.mu.Unlock()
			if done {
				return
			}
		}
	}
}

// pollOnceLocked performs one poll round trip and advances the state
// machine. Caller holds att.mu.
func (f *FarcasterSignin) pollOnceLocked(ctx context.Context, att *signinAttempt) {
	if att.terminalLocked() {
		return
	}

	status, err := f.relay.Poll(ctx, att.channel.Token)
	if err != nil {
		f.handlePollErrorLocked(ctx, att, err)
		return
	}

	att.authErrors = 0
	if status.State != relay.StateCompleted {
		// A clean poll confirms the channel is live, whether it was fresh
		// or a post-recreation replacement.
		att.state = entities.SigninPolling
		return
	}

	if att.processed {
		return
	}
	att.processed = true

	identity, err := extractIdentity(status.Payload)
	if err != nil {
		att.state = entities.SigninErrored
		att.errMsg = "sign-in completed with an unreadable payload"
		logger.Warn(ctx, "relay completion payload not extractable",
			zap.String("channel", att.key), zap.Error(err))
		return
	}

	result, err := f.linker.LinkSocial(ctx, identity, att.current)
	if err != nil {
		att.state = entities.SigninErrored
		att.errMsg = err.Error()
		return
	}

	att.state = entities.SigninSucceeded
	att.result = result
}

func (f *FarcasterSignin) handlePollErrorLocked(ctx context.Context, att *signinAttempt, err error) {
	if relay.IsUnauthorized(err) {
		att.authErrors++
		if att.authErrors < maxChannelAuthErrors {
			return
		}
		if att.recreations >= maxChannelRecreations {
			att.state = entities.SigninErrored
			att.errMsg = "sign-in channel could not be kept open"
			return
		}

		nonce, nerr := crypto.GenerateChallengeNonce()
		if nerr != nil {
			att.state = entities.SigninErrored
			att.errMsg = nerr.Error()
			return
		}
		channel, cerr := f.relay.CreateChannel(ctx, nonce)
		if cerr != nil {
			att.state = entities.SigninErrored
			att.errMsg = "sign-in channel could not be reopened"
			return
		}

		logger.Info(ctx, "sign-in channel recreated",
			zap.String("attempt", att.key), zap.Int("recreations", att.recreations+1))
		att.channel = channel
		att.authErrors = 0
		att.recreations++
		// The old QR is dead; the companion app has to scan the new URI.
		att.state = entities.SigninAwaitingChannel
		return
	}

	// Transport hiccups get one silent retry on the next tick.
	if !att.reconnected {
		att.reconnected = true
		return
	}
	att.state = entities.SigninErrored
	att.errMsg = "lost connection to the sign-in relay"
}

func (att *signinAttempt) terminalLocked() bool {
	return att.state == entities.SigninSucceeded || att.state == entities.SigninErrored
}

func (att *signinAttempt) snapshotLocked() *entities.SigninSession {
	return &entities.SigninSession{
		ChannelToken: att.key,
		ConnectURI:   att.channel.URI,
		State:        att.state,
		ExpiresAt:    att.expiresAt,
		Result:       att.result,
		Error:        att.errMsg,
	}
}

// completionFields is the identity shape shared by every relay version
type completionFields struct {
	FID         int64  `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	PfpURL      string `json:"pfpUrl"`
	SignerToken string `json:"signerToken"`
}

func (c completionFields) valid() bool {
	return c.FID > 0 && c.Username != ""
}

func (c completionFields) identity() entities.SocialIdentity {
	return entities.SocialIdentity{
		FID:         c.FID,
		Handle:      c.Username,
		DisplayName: c.DisplayName,
		AvatarURL:   c.PfpURL,
		SignerToken: c.SignerToken,
	}
}

// extractIdentity pulls the signed-in identity out of a completion payload.
// Relay versions disagree on where the fields live, so shapes are tried in
// order: top level, under metadata, under signatureParams.
func extractIdentity(payload json.RawMessage) (entities.SocialIdentity, error) {
	var envelope struct {
		completionFields
		Metadata        *completionFields `json:"metadata"`
		SignatureParams *completionFields `json:"signatureParams"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return entities.SocialIdentity{}, fmt.Errorf("%w: %v", domainerrors.ErrPayloadInvalid, err)
	}

	if envelope.completionFields.valid() {
		return envelope.completionFields.identity(), nil
	}
	if envelope.Metadata != nil && envelope.Metadata.valid() {
		return envelope.Metadata.identity(), nil
	}
	if envelope.SignatureParams != nil && envelope.SignatureParams.valid() {
		return envelope.SignatureParams.identity(), nil
	}

	return entities.SocialIdentity{}, fmt.Errorf("%w: no known shape in completion payload %s",
		domainerrors.ErrPayloadInvalid, truncatePayload(payload))
}

func truncatePayload(payload json.RawMessage) string {
	const max = 256
	if len(payload) <= max {
		return string(payload)
	}
	return string(payload[:max]) + "..."
}
