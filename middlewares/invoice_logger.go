package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wrenchworks/garage-app/utils"
)

// InvoiceLoggerMiddleware audit-logs invoice generation and payment posts.
func InvoiceLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		utils.InfoLogger.Printf("[INVOICE] %s %s -> %d (user_id=%v, took %v)",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			c.GetUint("user_id"),
			time.Since(start))
	}
}
