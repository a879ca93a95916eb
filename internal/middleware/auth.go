package middleware

import (
	"errors"
	"strings"

	"deckshare-backend/internal/config"
	"deckshare-backend/internal/services"
	"deckshare-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextUser   = "user"
	ContextUserID = "user_id"
)

func AuthMiddleware(auth *services.AuthService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			utils.Unauthorized(c, "missing access token")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(token, cfg.JWT.Secret)
		if err != nil {
			utils.Unauthorized(c, "invalid access token")
			c.Abort()
			return
		}

		user, err := auth.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				utils.Unauthorized(c, "user no longer exists")
			} else {
				utils.InternalError(c)
			}
			c.Abort()
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextUserID, user.ID)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}

	// <img>/<iframe> previews of owner files cannot send headers
	return c.Query("token")
}
