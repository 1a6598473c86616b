package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/edventure/edventure-backend/internal/response"
	"github.com/edventure/edventure-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ContextKeyClaims is the Gin context key for JWT claims.
const ContextKeyClaims = "claims"

// tokenExtractor pulls the raw token string out of a request.
type tokenExtractor func(c *gin.Context) (string, error)

// bearerToken reads the Authorization header. The standard extractor for
// every HTTP endpoint.
func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1], nil
		}
	}
	return "", fmt.Errorf("authorization header required")
}

// queryToken reads ?token=. Browsers cannot set headers on a WebSocket
// upgrade, so the stream endpoint authenticates through the query string.
func queryToken(c *gin.Context) (string, error) {
	if token := c.Query("token"); token != "" {
		return token, nil
	}
	return "", fmt.Errorf("token query parameter required")
}

// requireToken builds a middleware that validates a JWT from extract and
// rejects tokens of the wrong principal type.
func requireToken(authService *service.AuthService, extract tokenExtractor, tokenType service.TokenType, wrongType response.ErrCode) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := extract(c)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := authService.ValidateToken(tokenStr)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}
		if claims.TokenType != tokenType {
			response.AbortFail(c, http.StatusForbidden, wrongType)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireStudentJWT validates a student JWT from the Authorization header.
func RequireStudentJWT(authService *service.AuthService) gin.HandlerFunc {
	return requireToken(authService, bearerToken, service.TokenTypeStudent, response.ErrStudentAccessOnly)
}

// RequireParentJWT validates a parent JWT from the Authorization header.
func RequireParentJWT(authService *service.AuthService) gin.HandlerFunc {
	return requireToken(authService, bearerToken, service.TokenTypeParent, response.ErrParentAccessOnly)
}

// RequireStudentWSAuth validates a student JWT supplied as ?token= on a
// WebSocket upgrade request.
func RequireStudentWSAuth(authService *service.AuthService) gin.HandlerFunc {
	return requireToken(authService, queryToken, service.TokenTypeStudent, response.ErrStudentAccessOnly)
}

// GetClaims retrieves the JWT claims set by one of the Require middlewares,
// or nil when the route is unauthenticated.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}
