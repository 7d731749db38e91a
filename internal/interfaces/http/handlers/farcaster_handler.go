package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"cast-deck.backend/internal/domain/entities"
	domainerrors "cast-deck.backend/internal/domain/errors"
	"cast-deck.backend/internal/interfaces/http/middleware"
	"cast-deck.backend/internal/interfaces/http/response"
	"cast-deck.backend/pkg/jwt"
)

// SigninFlow drives out-of-band Farcaster sign-in attempts
type SigninFlow interface {
	Begin(ctx context.Context, current *entities.Session) (*entities.SigninSession, error)
	Status(ctx context.Context, channelToken string) (*entities.SigninSession, error)
	Cancel(ctx context.Context, channelToken string) error
}

// FarcasterHandler handles the relay sign-in endpoints
type FarcasterHandler struct {
	signin     SigninFlow
	jwtService *jwt.JWTService
}

// NewFarcasterHandler creates a new farcaster handler
func NewFarcasterHandler(signin SigninFlow, jwtService *jwt.JWTService) *FarcasterHandler {
	return &FarcasterHandler{
		signin:     signin,
		jwtService: jwtService,
	}
}

// Begin opens a relay channel; the response carries the URI the dashboard
// renders as a QR code and the token used to poll status
// POST /api/v1/auth/farcaster/channel
func (h *FarcasterHandler) Begin(c *gin.Context) {
	session, err := h.signin.Begin(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		middleware.LinkOutcomes.WithLabelValues("farcaster", outcomeLabel(err)).Inc()
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, session)
}

// Status reports an attempt's progress. Once the attempt has succeeded the
// body also carries dashboard tokens; repeated calls return the same
// outcome without redoing the linking.
// GET /api/v1/auth/farcaster/channel/status?channelToken=...
func (h *FarcasterHandler) Status(c *gin.Context) {
	token := c.Query("channelToken")
	if token == "" {
		response.Error(c, domainerrors.BadRequest("channelToken query parameter is required"))
		return
	}

	session, err := h.signin.Status(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}

	if session.State == entities.SigninSucceeded && session.Result != nil {
		middleware.LinkOutcomes.WithLabelValues("farcaster", resultOutcome(session.Result)).Inc()
		respondLinkResult(c, h.jwtService, session.Result)
		return
	}

	response.Success(c, http.StatusOK, session)
}

// Cancel abandons an attempt
// DELETE /api/v1/auth/farcaster/channel?channelToken=...
func (h *FarcasterHandler) Cancel(c *gin.Context) {
	token := c.Query("channelToken")
	if token == "" {
		response.Error(c, domainerrors.BadRequest("channelToken query parameter is required"))
		return
	}

	if err := h.signin.Cancel(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
