package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestIDHeader carries the request ID in and out; clients may supply
// their own for cross-service tracing.
const requestIDHeader = "X-Request-ID"

// contextKeyRequestID is the Gin context key holding the request ID.
const contextKeyRequestID = "request_id"

// RequestIDMiddleware tags every request with an ID, reusing the caller's
// header value when present, and echoes it back on the response.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(contextKeyRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
