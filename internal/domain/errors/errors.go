package errors

import (
	"errors"
	"net/http"
)

// Domain errors. The taxonomy splits three ways: transient/retryable
// (channel and store failures), user-actionable (provider missing,
// signature declined, conflicting binding), and invariant violations
// (payloads no known extraction shape matches).
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrIdentityTaken       = errors.New("identity key already registered")
	ErrProviderUnavailable = errors.New("wallet provider not found")
	ErrSignatureDeclined   = errors.New("signature request declined")
	ErrInvalidSignature    = errors.New("invalid signature format")
	ErrChallengeExpired    = errors.New("challenge expired or already used")
	ErrChannelError        = errors.New("relay channel error")
	ErrPayloadInvalid      = errors.New("sign-in payload has no recognizable shape")
	ErrLinkConflict        = errors.New("identity already linked to another account")
	ErrStoreUnavailable    = errors.New("store unavailable")
)

// AppError represents an application error with HTTP status and a stable
// machine-readable code the dashboard keys remedies off
type AppError struct {
	Status    int    `json:"-"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	Err       error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, "NOT_FOUND", message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, "BAD_REQUEST", message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", message, ErrUnauthorized)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "INTERNAL", "internal server error", err)
}

// Conflict builds the terminal, user-actionable linking conflict. The
// message must name the conflicting handle or address so the UI can tell
// the user which identity to sign in with instead.
func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, "LINK_CONFLICT", message, ErrLinkConflict)
}

// Transient builds a retryable error for relay/store outages
func Transient(message string, err error) *AppError {
	e := NewAppError(http.StatusServiceUnavailable, "TRANSIENT", message, err)
	e.Retryable = true
	return e
}

// FromDomain maps a sentinel to its HTTP representation
func FromDomain(err error) *AppError {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, ErrNotFound):
		return NotFound(err.Error())
	case errors.Is(err, ErrLinkConflict):
		return Conflict(err.Error())
	case errors.Is(err, ErrProviderUnavailable):
		return NewAppError(http.StatusBadRequest, "PROVIDER_UNAVAILABLE", "no wallet provider detected; install a wallet extension", err)
	case errors.Is(err, ErrSignatureDeclined):
		return NewAppError(http.StatusBadRequest, "SIGNATURE_DECLINED", "signature request was declined; retry signing", err)
	case errors.Is(err, ErrInvalidSignature):
		return NewAppError(http.StatusBadRequest, "INVALID_SIGNATURE", "signature is malformed", err)
	case errors.Is(err, ErrChallengeExpired):
		return NewAppError(http.StatusBadRequest, "CHALLENGE_EXPIRED", "challenge expired; request a new one", err)
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthorized):
		return Unauthorized(err.Error())
	case errors.Is(err, ErrPayloadInvalid):
		// Invariant class: surfaced generically, details stay in logs.
		return Unauthorized("authentication failed")
	case errors.Is(err, ErrChannelError), errors.Is(err, ErrStoreUnavailable):
		return Transient(err.Error(), err)
	case errors.Is(err, ErrInvalidInput):
		return BadRequest(err.Error())
	default:
		return InternalError(err)
	}
}
