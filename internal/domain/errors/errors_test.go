package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	inner := errors.New("boom")
	e := NewAppError(http.StatusBadRequest, "BAD_REQUEST", "msg", inner)
	assert.Equal(t, "boom", e.Error())
	assert.ErrorIs(t, e, inner)

	noInner := NewAppError(http.StatusBadRequest, "BAD_REQUEST", "just msg", nil)
	assert.Equal(t, "just msg", noInner.Error())
}

func TestFromDomain_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{ErrLinkConflict, http.StatusConflict, "LINK_CONFLICT"},
		{ErrProviderUnavailable, http.StatusBadRequest, "PROVIDER_UNAVAILABLE"},
		{ErrSignatureDeclined, http.StatusBadRequest, "SIGNATURE_DECLINED"},
		{ErrInvalidSignature, http.StatusBadRequest, "INVALID_SIGNATURE"},
		{ErrChallengeExpired, http.StatusBadRequest, "CHALLENGE_EXPIRED"},
		{ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED"},
		{ErrPayloadInvalid, http.StatusUnauthorized, "UNAUTHORIZED"},
		{ErrChannelError, http.StatusServiceUnavailable, "TRANSIENT"},
		{ErrStoreUnavailable, http.StatusServiceUnavailable, "TRANSIENT"},
		{ErrInvalidInput, http.StatusBadRequest, "BAD_REQUEST"},
		{errors.New("anything else"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range cases {
		got := FromDomain(tc.err)
		assert.Equal(t, tc.status, got.Status, "status for %v", tc.err)
		assert.Equal(t, tc.code, got.Code, "code for %v", tc.err)
	}
}

func TestFromDomain_WrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("linking wallet: %w", ErrLinkConflict)
	got := FromDomain(wrapped)
	assert.Equal(t, http.StatusConflict, got.Status)
}

func TestFromDomain_PassesThroughAppError(t *testing.T) {
	e := Conflict("wallet already linked to @alice")
	got := FromDomain(fmt.Errorf("outer: %w", e))
	assert.Same(t, e, got)
}

func TestTransient_IsRetryable(t *testing.T) {
	e := Transient("relay down", ErrChannelError)
	assert.True(t, e.Retryable)
	assert.ErrorIs(t, e, ErrChannelError)
}
