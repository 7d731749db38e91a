package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cast-deck.backend/internal/domain/entities"
	domainerrors "cast-deck.backend/internal/domain/errors"
	"cast-deck.backend/internal/interfaces/http/middleware"
	"cast-deck.backend/internal/interfaces/http/response"
	"cast-deck.backend/pkg/jwt"
)

// WalletVerifier issues challenges and normalizes signed proofs
type WalletVerifier interface {
	IssueChallenge(ctx context.Context, address string) (*entities.Challenge, error)
	VerifyProof(ctx context.Context, input entities.ConnectWalletInput) (*entities.WalletProof, error)
}

// WalletLinker resolves a verified wallet into an account
type WalletLinker interface {
	LinkWallet(ctx context.Context, proof entities.WalletProof, current *entities.Session) (*entities.LinkResult, error)
}

// WalletHandler handles wallet sign-in endpoints
type WalletHandler struct {
	verifier   WalletVerifier
	linker     WalletLinker
	jwtService *jwt.JWTService
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(verifier WalletVerifier, linker WalletLinker, jwtService *jwt.JWTService) *WalletHandler {
	return &WalletHandler{
		verifier:   verifier,
		linker:     linker,
		jwtService: jwtService,
	}
}

// Challenge issues a sign-in challenge for a wallet address
// GET /api/v1/auth/wallet/challenge?address=0x...
func (h *WalletHandler) Challenge(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		response.Error(c, domainerrors.BadRequest("address query parameter is required"))
		return
	}

	challenge, err := h.verifier.IssueChallenge(c.Request.Context(), address)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, challenge)
}

// Link verifies a signed challenge and links the wallet. Anonymous callers
// get signed in (or up); authenticated callers get the wallet merged into
// their account.
// POST /api/v1/auth/wallet
func (h *WalletHandler) Link(c *gin.Context) {
	var input entities.ConnectWalletInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	proof, err := h.verifier.VerifyProof(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.linker.LinkWallet(c.Request.Context(), *proof, middleware.CurrentSession(c))
	if err != nil {
		middleware.LinkOutcomes.WithLabelValues("wallet", outcomeLabel(err)).Inc()
		response.Error(c, err)
		return
	}
	middleware.LinkOutcomes.WithLabelValues("wallet", resultOutcome(result)).Inc()

	h.respondLinked(c, result)
}

func (h *WalletHandler) respondLinked(c *gin.Context, result *entities.LinkResult) {
	respondLinkResult(c, h.jwtService, result)
}

// respondLinkResult mints dashboard tokens for the linked session and
// renders the shared link response body
func respondLinkResult(c *gin.Context, jwtService *jwt.JWTService, result *entities.LinkResult) {
	pair, err := jwtService.GenerateTokenPair(result.Session.AccountID, result.Session.IdentityKey)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusOK
	if result.NewAccount {
		status = http.StatusCreated
	}
	response.Success(c, status, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"account": gin.H{
			"id":          result.Session.AccountID,
			"identityKey": result.Session.IdentityKey,
		},
		"record":     result.Record,
		"newAccount": result.NewAccount,
		"healed":     result.Healed,
	})
}

func outcomeLabel(err error) string {
	if errors.Is(err, domainerrors.ErrLinkConflict) {
		return "conflict"
	}
	return "error"
}

func resultOutcome(result *entities.LinkResult) string {
	switch {
	case result.NewAccount:
		return "new_account"
	case result.Healed:
		return "healed"
	default:
		return "linked"
	}
}
