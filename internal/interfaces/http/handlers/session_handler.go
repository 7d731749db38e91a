package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "cast-deck.backend/internal/domain/errors"
	"cast-deck.backend/internal/interfaces/http/response"
	"cast-deck.backend/pkg/jwt"
)

// SessionHandler handles dashboard session lifecycle endpoints
type SessionHandler struct {
	jwtService *jwt.JWTService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(jwtService *jwt.JWTService) *SessionHandler {
	return &SessionHandler{jwtService: jwtService}
}

type refreshInput struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Refresh exchanges a valid refresh token for a fresh token pair
// POST /api/v1/auth/refresh
func (h *SessionHandler) Refresh(c *gin.Context) {
	var input refreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	claims, err := h.jwtService.ValidateToken(input.RefreshToken)
	if err != nil {
		response.Error(c, domainerrors.Unauthorized("invalid refresh token"))
		return
	}

	pair, err := h.jwtService.GenerateTokenPair(claims.AccountID, claims.IdentityKey)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, pair)
}
