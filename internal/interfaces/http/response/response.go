package response

import (
	"github.com/gin-gonic/gin"

	domainerrors "cast-deck.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error maps any error onto its HTTP representation. The retryable flag
// tells the dashboard whether showing a retry button makes sense.
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromDomain(err)
	c.JSON(appErr.Status, gin.H{
		"code":      appErr.Code,
		"message":   appErr.Message,
		"retryable": appErr.Retryable,
	})
}
