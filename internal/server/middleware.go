package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thep200/star-neighbours/internal/model"
)

const apiKeyHeader = "X-API-Key"

// apiKeyAuth xác thực request bằng api key trong header X-API-Key
func (h *Handler) apiKeyAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(apiKeyHeader)
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "api key is missing"})
			c.Abort()
			return
		}

		user, err := h.Service.VerifyApiKey(key)
		if err != nil {
			switch {
			case errors.Is(err, model.ErrApiKeyExpired):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "api key has expired"})
			case errors.Is(err, model.ErrApiKeyInvalid):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			default:
				h.Logger.Error(c.Request.Context(), "Failed to verify api key: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Next()
	}
}
