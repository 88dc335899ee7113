package middleware

import (
	"net/http"
	"strings"

	"mentorhub-api/internal/auth"
	"mentorhub-api/internal/board"
	"mentorhub-api/internal/models"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware validates JWT token in Authorization header
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get Authorization header
		authHeader := c.GetHeader("Authorization")
		tokenString := ""
		if authHeader != "" {
			// Extract token from "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		// Fallback for WebSocket/browser where custom headers cannot be set: allow token in query param
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is required",
			})
			c.Abort()
			return
		}

		// Validate token
		claims, err := auth.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		// Store identity in context for use in handlers
		c.Set("user_id", claims.UserID)
		c.Set("name", claims.Name)
		c.Set("role", string(claims.Role))

		c.Next()
	}
}

// ActorFrom rebuilds the authenticated actor from the request context.
// Returns false if the middleware did not run or the token lacked identity.
func ActorFrom(c *gin.Context) (board.Actor, bool) {
	userID := c.GetString("user_id")
	role := models.Role(c.GetString("role"))
	if userID == "" || !role.Valid() {
		return board.Actor{}, false
	}
	return board.Actor{UserID: userID, Role: role}, true
}
