package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domainerrors "cast-deck.backend/internal/domain/errors"
)

// Channel state values the relay reports while a sign-in is outstanding
const (
	StatePending   = "pending"
	StateCompleted = "completed"
)

// ErrChannelUnauthorized is returned when the relay rejects the channel
// token (expired or revoked channel). Callers treat a short run of these
// as a signal to recreate the channel, not as a user-visible failure.
var ErrChannelUnauthorized = fmt.Errorf("%w: channel token rejected", domainerrors.ErrChannelError)

// Channel is a freshly created relay channel: the URI is rendered as a QR
// code / deep link for the companion app, the token authenticates polling.
type Channel struct {
	Token     string    `json:"channelToken"`
	URI       string    `json:"url"`
	Nonce     string    `json:"nonce"`
	ExpiresAt time.Time `json:"-"`
}

// Status is one poll result. Payload is the raw completion body; its shape
// is not uniform across relay versions, so extraction happens upstream.
type Status struct {
	State   string
	Payload json.RawMessage
}

// Client drives the out-of-band sign-in relay
type Client struct {
	baseURL    string
	appDomain  string
	channelTTL time.Duration
	httpClient *http.Client
}

// NewClient creates a relay client. pollTimeout bounds each status request.
func NewClient(baseURL, appDomain string, pollTimeout, channelTTL time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		appDomain:  appDomain,
		channelTTL: channelTTL,
		httpClient: &http.Client{Timeout: pollTimeout},
	}
}

// CreateChannel opens a new relay channel for one sign-in attempt
func (c *Client) CreateChannel(ctx context.Context, nonce string) (*Channel, error) {
	payload, err := json.Marshal(map[string]string{
		"siweUri": "https://" + c.appDomain + "/login",
		"domain":  c.appDomain,
		"nonce":   nonce,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/channel", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrChannelError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: channel creation returned %d", domainerrors.ErrChannelError, resp.StatusCode)
	}

	var channel Channel
	if err := json.NewDecoder(resp.Body).Decode(&channel); err != nil {
		return nil, fmt.Errorf("%w: decoding channel: %v", domainerrors.ErrChannelError, err)
	}
	if channel.Token == "" || channel.URI == "" {
		return nil, fmt.Errorf("%w: channel response missing token or uri", domainerrors.ErrChannelError)
	}
	channel.ExpiresAt = time.Now().Add(c.channelTTL)
	return &channel, nil
}

// Poll asks the relay whether the companion app has signed yet
func (c *Client) Poll(ctx context.Context, channelToken string) (*Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/channel/status", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+channelToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrChannelError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading poll response: %v", domainerrors.ErrChannelError, err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted:
		var parsed struct {
			State string `json:"state"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("%w: decoding poll response: %v", domainerrors.ErrChannelError, err)
		}
		if parsed.State == "" {
			parsed.State = StatePending
		}
		return &Status{State: parsed.State, Payload: body}, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrChannelUnauthorized
	default:
		return nil, fmt.Errorf("%w: poll returned %d", domainerrors.ErrChannelError, resp.StatusCode)
	}
}

// IsUnauthorized reports whether an error is the channel-auth rejection
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrChannelUnauthorized)
}
