package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cast-deck.backend/internal/domain/entities"
	domainerrors "cast-deck.backend/internal/domain/errors"
	"cast-deck.backend/internal/interfaces/http/middleware"
	"cast-deck.backend/internal/interfaces/http/response"
)

// LinkReader exposes an account's link record and wallet unlinking
type LinkReader interface {
	GetLink(ctx context.Context, accountID uuid.UUID) (*entities.LinkRecord, error)
	UnlinkWallet(ctx context.Context, accountID uuid.UUID) error
}

// LinkHandler handles link record endpoints
type LinkHandler struct {
	links LinkReader
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(links LinkReader) *LinkHandler {
	return &LinkHandler{links: links}
}

// Me returns the authenticated account's link record
// GET /api/v1/links/me
func (h *LinkHandler) Me(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	record, err := h.links.GetLink(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, record)
}

// UnlinkWallet clears the wallet binding, leaving social fields intact
// DELETE /api/v1/links/me/wallet
func (h *LinkHandler) UnlinkWallet(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	if err := h.links.UnlinkWallet(c.Request.Context(), accountID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
