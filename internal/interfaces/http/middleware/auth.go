package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cast-deck.backend/internal/domain/entities"
	"cast-deck.backend/pkg/jwt"
)

const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
	// AccountIDKey is the gin context key for the authenticated account
	AccountIDKey = "accountId"
	// IdentityKeyKey is the gin context key for the session's identity key
	IdentityKeyKey = "identityKey"
)

// RequireAuth rejects requests without a valid dashboard session token
func RequireAuth(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := validateBearer(c, jwtService)
		if !ok {
			return
		}
		c.Set(AccountIDKey, claims.AccountID)
		c.Set(IdentityKeyKey, claims.IdentityKey)
		c.Next()
	}
}

// OptionalAuth populates the account when a valid token is present and
// passes anonymous requests through. Linking endpoints use it: a session
// means "merge into my account", no session means "sign me in".
// A token that is present but invalid still aborts, so an expired session
// fails loudly instead of silently creating a second account.
func OptionalAuth(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(AuthorizationHeader) == "" {
			c.Next()
			return
		}
		claims, ok := validateBearer(c, jwtService)
		if !ok {
			return
		}
		c.Set(AccountIDKey, claims.AccountID)
		c.Set(IdentityKeyKey, claims.IdentityKey)
		c.Next()
	}
}

func validateBearer(c *gin.Context, jwtService *jwt.JWTService) (*jwt.Claims, bool) {
	authHeader := c.GetHeader(AuthorizationHeader)
	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"code":    "UNAUTHORIZED",
			"message": "Authorization header is required",
		})
		return nil, false
	}
	if !strings.HasPrefix(authHeader, BearerPrefix) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"code":    "UNAUTHORIZED",
			"message": "Invalid authorization format. Use: Bearer <token>",
		})
		return nil, false
	}

	claims, err := jwtService.ValidateToken(strings.TrimPrefix(authHeader, BearerPrefix))
	if err != nil {
		message := "Invalid token"
		if err == jwt.ErrExpiredToken {
			message = "Token has expired"
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		})
		return nil, false
	}
	return claims, true
}

// GetAccountID gets the authenticated account ID from context
func GetAccountID(c *gin.Context) (uuid.UUID, bool) {
	accountID, exists := c.Get(AccountIDKey)
	if !exists {
		return uuid.Nil, false
	}
	return accountID.(uuid.UUID), true
}

// CurrentSession rebuilds the session view the linking usecases expect,
// or nil when the request is anonymous
func CurrentSession(c *gin.Context) *entities.Session {
	accountID, ok := GetAccountID(c)
	if !ok {
		return nil
	}
	identityKey, _ := c.Get(IdentityKeyKey)
	key, _ := identityKey.(string)
	return &entities.Session{AccountID: accountID, IdentityKey: key}
}
