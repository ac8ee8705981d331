package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID is echoed back on every response.
	HeaderRequestID = "X-Request-ID"

	// requestIDKey is the gin context key shared with RequestLogger.
	requestIDKey = "request_id"
)

// RequestID propagates the caller's request id, minting one when the
// header is absent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)

		c.Next()
	}
}

// RequestIDFrom returns the id set by RequestID, or "" outside the chain.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
