package middleware

import (
	"net/http"

	"github.com/edventure/edventure-backend/internal/response"
	"github.com/edventure/edventure-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// CheckSingleDeviceSession rejects student tokens whose JTI no longer matches
// the active login key in Redis. A student signing in on a second device
// overwrites the key, invalidating every token minted before it.
func CheckSingleDeviceSession(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		// Parent tokens are multi-device; only students are pinned.
		if claims.TokenType == service.TokenTypeStudent {
			err := authService.ValidateStudentSession(c.Request.Context(), claims.UserID, claims.ID)
			if err != nil {
				response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
				return
			}
		}

		c.Next()
	}
}
