package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"cast-deck.backend/internal/domain/entities"
	domainerrors "cast-deck.backend/internal/domain/errors"
	"cast-deck.backend/internal/interfaces/http/middleware"
)

type linkReaderStub struct {
	getFn    func(ctx context.Context, accountID uuid.UUID) (*entities.LinkRecord, error)
	unlinkFn func(ctx context.Context, accountID uuid.UUID) error
}

func (s linkReaderStub) GetLink(ctx context.Context, accountID uuid.UUID) (*entities.LinkRecord, error) {
	return s.getFn(ctx, accountID)
}
func (s linkReaderStub) UnlinkWallet(ctx context.Context, accountID uuid.UUID) error {
	return s.unlinkFn(ctx, accountID)
}

func linkRouter(h *LinkHandler, accountID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if accountID != uuid.Nil {
		r.Use(func(c *gin.Context) { c.Set(middleware.AccountIDKey, accountID) })
	}
	r.GET("/api/v1/links/me", h.Me)
	r.DELETE("/api/v1/links/me/wallet", h.UnlinkWallet)
	return r
}

func TestLinkHandler_Me(t *testing.T) {
	accountID := uuid.New()
	h := NewLinkHandler(linkReaderStub{
		getFn: func(ctx context.Context, got uuid.UUID) (*entities.LinkRecord, error) {
			assert.Equal(t, accountID, got)
			return &entities.LinkRecord{
				AccountID:     accountID,
				WalletAddress: null.StringFrom("0xabc"),
				Handle:        null.StringFrom("alice"),
			}, nil
		},
	})
	r := linkRouter(h, accountID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/links/me", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "0xabc", body["walletAddress"])
}

func TestLinkHandler_MeNotFound(t *testing.T) {
	h := NewLinkHandler(linkReaderStub{
		getFn: func(ctx context.Context, accountID uuid.UUID) (*entities.LinkRecord, error) {
			return nil, domainerrors.ErrNotFound
		},
	})
	r := linkRouter(h, uuid.New())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/links/me", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLinkHandler_MeWithoutAccount(t *testing.T) {
	h := NewLinkHandler(linkReaderStub{})
	r := linkRouter(h, uuid.Nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/links/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLinkHandler_UnlinkWallet(t *testing.T) {
	accountID := uuid.New()
	called := false
	h := NewLinkHandler(linkReaderStub{
		unlinkFn: func(ctx context.Context, got uuid.UUID) error {
			called = true
			assert.Equal(t, accountID, got)
			return nil
		},
	})
	r := linkRouter(h, accountID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/links/me/wallet", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, called)
}
