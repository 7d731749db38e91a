package sessionstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"cast-deck.backend/internal/domain/entities"
	domainerrors "cast-deck.backend/internal/domain/errors"
)

// Client talks to the hosted auth service. The service has no notion of
// wallets or social ids; it authenticates identity-key/secret pairs and
// owns account creation. Error mapping is the contract that matters:
// bad credentials, already-registered, and transient outage are three
// different sentinels upstream logic branches on.
type Client struct {
	baseURL    string
	apiKey     string
	serviceKey string
	httpClient *http.Client
}

// NewClient creates a session store client. serviceKey is the admin-scoped
// key used only for secret rotation.
func NewClient(baseURL, apiKey, serviceKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	User        struct {
		ID    uuid.UUID `json:"id"`
		Email string    `json:"email"`
	} `json:"user"`
	ID    uuid.UUID `json:"id"`    // sign-up without autoconfirm returns the bare user
	Email string    `json:"email"` //
}

type errorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"msg"`
}

// SignIn authenticates a credential pair
func (c *Client) SignIn(ctx context.Context, creds entities.CredentialPair) (*entities.Session, error) {
	resp, body, err := c.post(ctx, "/token?grant_type=password", credentialsBody{
		Email:    creds.IdentityKey,
		Password: creds.Secret,
	}, "")
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return parseSession(body, creds.IdentityKey)
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnauthorized:
		return nil, domainerrors.ErrInvalidCredentials
	default:
		return nil, statusError(resp.StatusCode, body)
	}
}

// SignUp registers a credential pair, implicitly creating the account
func (c *Client) SignUp(ctx context.Context, creds entities.CredentialPair) (*entities.Session, error) {
	resp, body, err := c.post(ctx, "/signup", credentialsBody{
		Email:    creds.IdentityKey,
		Password: creds.Secret,
	}, "")
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return parseSession(body, creds.IdentityKey)
	case resp.StatusCode == http.StatusUnprocessableEntity, resp.StatusCode == http.StatusConflict:
		return nil, domainerrors.ErrIdentityTaken
	case resp.StatusCode == http.StatusBadRequest && isAlreadyRegistered(body):
		return nil, domainerrors.ErrIdentityTaken
	default:
		return nil, statusError(resp.StatusCode, body)
	}
}

// GetUser resolves the session behind an access token
func (c *Client) GetUser(ctx context.Context, accessToken string) (*entities.Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, accessToken)

	resp, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, domainerrors.ErrUnauthorized
		}
		return nil, statusError(resp.StatusCode, body)
	}

	var parsed authResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	return &entities.Session{
		AccountID:   parsed.ID,
		IdentityKey: parsed.Email,
		AccessToken: accessToken,
	}, nil
}

// UpdateCredentials rewrites an account's identity key and secret using the
// admin surface. Called by the self-healing migration after a legacy-variant
// sign-in succeeds; sending the key too migrates accounts issued under the
// pre-split identity format.
func (c *Client) UpdateCredentials(ctx context.Context, accountID uuid.UUID, creds entities.CredentialPair) error {
	payload, err := json.Marshal(map[string]string{
		"email":    creds.IdentityKey,
		"password": creds.Secret,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/admin/users/"+accountID.String(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req, c.serviceKey)

	resp, body, err := c.do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode, body)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, bearer string) (*http.Response, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req, bearer)

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failures are retryable by classification.
		return nil, nil, fmt.Errorf("%w: %v", domainerrors.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading response: %v", domainerrors.ErrStoreUnavailable, err)
	}
	return resp, body, nil
}

func (c *Client) setHeaders(req *http.Request, bearer string) {
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
}

func parseSession(body []byte, identityKey string) (*entities.Session, error) {
	var parsed authResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	accountID := parsed.User.ID
	if accountID == uuid.Nil {
		accountID = parsed.ID
	}
	if accountID == uuid.Nil {
		return nil, fmt.Errorf("%w: auth response missing account id", domainerrors.ErrStoreUnavailable)
	}

	session := &entities.Session{
		AccountID:   accountID,
		IdentityKey: identityKey,
		AccessToken: parsed.AccessToken,
	}
	if parsed.ExpiresIn > 0 {
		session.ExpiresAt = time.Now().Add(time.Duration(parsed.ExpiresIn) * time.Second)
	}
	return session, nil
}

func isAlreadyRegistered(body []byte) bool {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return false
	}
	return parsed.ErrorCode == "user_already_exists" ||
		strings.Contains(strings.ToLower(parsed.Message), "already registered")
}

func statusError(status int, body []byte) error {
	if status >= 500 {
		return fmt.Errorf("%w: auth service returned %d", domainerrors.ErrStoreUnavailable, status)
	}
	var parsed errorResponse
	_ = json.Unmarshal(body, &parsed)
	msg := parsed.Message
	if msg == "" {
		msg = parsed.Error
	}
	return fmt.Errorf("auth service returned %d: %s", status, msg)
}
