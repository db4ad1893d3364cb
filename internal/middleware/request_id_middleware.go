package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"messagely/pkg/logger"

	"github.com/gin-gonic/gin"
)

const RequestIDHeader = "X-Request-Id"

func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = newRequestID()
		}
		c.Writer.Header().Set(RequestIDHeader, requestID)
		ctx := context.WithValue(c.Request.Context(), logger.RequestIdKey, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// newRequestID returns 32 hex characters, or "" if the system RNG fails.
func newRequestID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
