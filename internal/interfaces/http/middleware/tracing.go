package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Tracing returns the otelgin middleware, or a pass-through when disabled.
// Spans are named after the route pattern, e.g. "POST /api/v1/pos/sales".
func Tracing(serviceName string, enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(serviceName)
}
