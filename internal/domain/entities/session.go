package entities

import (
	"time"

	"github.com/google/uuid"
)

// Session is an authenticated hosted-auth session for one account
type Session struct {
	AccountID   uuid.UUID `json:"accountId"`
	IdentityKey string    `json:"identityKey"`
	AccessToken string    `json:"-"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// SigninState is the relay sign-in state machine position. CONNECTING means
// the channel is open but no poll has confirmed it yet; AWAITING_CHANNEL
// means the channel was replaced and the companion app must re-scan the new
// connect URI.
type SigninState string

const (
	SigninConnecting      SigninState = "CONNECTING"
	SigninAwaitingChannel SigninState = "AWAITING_CHANNEL"
	SigninPolling         SigninState = "POLLING"
	SigninSucceeded       SigninState = "SUCCEEDED"
	SigninErrored         SigninState = "ERRORED"
)

// SigninSession is the caller-visible view of one relay sign-in attempt
type SigninSession struct {
	ChannelToken string      `json:"channelToken"`
	ConnectURI   string      `json:"connectUri"`
	State        SigninState `json:"state"`
	ExpiresAt    time.Time   `json:"expiresAt"`
	// Result is set once State is SUCCEEDED and linking has run.
	Result *LinkResult `json:"result,omitempty"`
	// Error is the terminal failure message when State is ERRORED.
	Error string `json:"error,omitempty"`
}
