package middleware

import (
	"messagely/internal/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records request counts and latency by matched route.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		done := metrics.RequestStarted()
		c.Next()
		done(c.Request.Method, c.FullPath(), c.Writer.Status())
	}
}
