package middleware

import (
	"ctchen222/morpion/internal/api/response"
	"ctchen222/morpion/internal/api/service"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const playerIDKey = "playerID"

// AuthRequired resolves the bearer token, or the token query parameter used
// by websocket clients, into the caller's player id.
func AuthRequired(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if h := c.GetHeader("Authorization"); h != "" {
			bearer, ok := strings.CutPrefix(h, "Bearer ")
			if !ok {
				response.ErrorResponse(c, http.StatusUnauthorized, "malformed authorization header")
				return
			}
			token = bearer
		}
		if token == "" {
			response.ErrorResponse(c, http.StatusUnauthorized, "missing token")
			return
		}

		playerID, err := users.ParseToken(token)
		if err != nil {
			response.ErrorResponse(c, http.StatusUnauthorized, err.Error())
			return
		}
		c.Set(playerIDKey, playerID)
		c.Next()
	}
}

// PlayerID returns the id stored by AuthRequired.
func PlayerID(c *gin.Context) string {
	return c.GetString(playerIDKey)
}
